package main

import (

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pathwae/dashboard"
	"github.com/pathwae/dashboard/internal/config"
	"github.com/pathwae/dashboard/internal/stats"
	statslogger "github.com/pathwae/dashboard/internal/stats/logger"
)

var (
	// Global flags.
	apiURL     string
	configPath string
	verbose    bool
	outputJSON bool

	// Set by the root pre-run.
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pathwae-dash",
	Short: "Inspect and manage a pathwae reverse proxy",
	Long: `pathwae-dash talks to the HTTP API of a pathwae reverse proxy.

It lists the proxied backends, shows their health, TLS certificates and
hit statistics, updates backend configuration and exports fleet snapshots
to disk, S3 or Google Cloud Storage.

Configuration is read from --config (YAML), a .env file in the working
directory and PATHWAE_* environment variables. Flags win over all of them.

Examples:
  # List backends
  pathwae-dash servers

  # Check the certificate of one backend
  pathwae-dash cert example.com

  # Point a backend somewhere else
  pathwae-dash set-backend example.com --to http://10.0.0.7:8080

  # Export a snapshot of the whole fleet to S3
  pathwae-dash snapshot --output s3://my-bucket/pathwae`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "proxy API root (default "+dashboard.DefaultBaseURL+")")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output results as JSON")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configPath, func(c *config.Config) {
		if cmd.Flags().Changed("api-url") {
			c.APIURL = apiURL
		}
	})
	if err != nil {
		return err
	}

	logger = zap.NewNop()
	if verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			return err
		}
	}
	return nil
}

// newClient builds a client from the loaded configuration. Extra collectors
// receive the client metrics next to the verbose logger.
func newClient(collectors ...stats.Collector) (*dashboard.Client, error) {
	if verbose {
		collectors = append(collectors, statslogger.New(logger))
	}

	opts := []dashboard.Option{
		dashboard.WithBaseURL(cfg.APIURL),
		dashboard.WithUserAgent(cfg.UserAgent),
		dashboard.WithSnapshotConcurrency(cfg.Concurrency),
		dashboard.WithLogger(logger),
		dashboard.WithStats(stats.NewMulti(collectors...)),
	}
	if d := cfg.Timeout.Duration(); d > 0 {
		opts = append(opts, dashboard.WithRequestTimeout(d))
	}
	return dashboard.New(opts...)
}
