package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pathwae/dashboard"
	"github.com/pathwae/dashboard/internal/export"
	"github.com/pathwae/dashboard/internal/sink"
	"github.com/pathwae/dashboard/internal/sink/destination"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Export a snapshot of the whole fleet",
	Long: `Fetch the version, memory usage and every backend with its state,
hits and certificate, then write the result as JSON to a destination.

Destinations:
  ./dir or file:///dir    local directory
  s3://bucket/prefix      Amazon S3 (credentials from the AWS default chain)
  gs://bucket/prefix      Google Cloud Storage (application default credentials)
  mem://                  discard after printing, for dry runs

Each export is also written as latest.json next to the timestamped file.`,
	Args: cobra.NoArgs,
	RunE: runSnapshot,
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show [NAME]",
	Short: "Print an exported snapshot (latest by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSnapshotShow,
}

var (
	snapshotOutput      string
	snapshotCompression string
)

func init() {
	snapshotCmd.PersistentFlags().StringVarP(&snapshotOutput, "output", "o", "", "destination (default from config)")
	snapshotCmd.PersistentFlags().StringVar(&snapshotCompression, "compression", "", "zstd, gzip or none (default from config)")
	snapshotCmd.AddCommand(snapshotShowCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func openSink(cmd *cobra.Command) (sink.Sink, error) {
	dest := cfg.Export.Destination
	if snapshotOutput != "" {
		dest = snapshotOutput
	}
	compression := cfg.Export.Compression
	if snapshotCompression != "" {
		compression = snapshotCompression
	}

	s, err := destination.Open(cmd.Context(), dest, compression, destination.Options{
		S3Region:   cfg.Export.S3Region,
		S3Endpoint: cfg.Export.S3Endpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", dest, err)
	}
	return s, nil
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	dst, err := openSink(cmd)
	if err != nil {
		return err
	}
	defer dst.Close()

	store := dashboard.NewStore()
	exporter := export.New(client, dst,
		export.WithStore(store),
		export.WithLogger(logger),
	)

	res, err := exporter.Export(cmd.Context())
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(cmd.OutOrStdout(), res.Snapshot)
	}
	out := cmd.OutOrStdout()
	if err := printSnapshot(out, res.Snapshot); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nExported %d backends, %d hits (%s) to %s\n",
		len(store.Backends()), store.Hits(), export.FormatBytes(int64(res.Bytes)), res.Key)
	return nil
}

func runSnapshotShow(cmd *cobra.Command, args []string) error {
	src, err := openSink(cmd)
	if err != nil {
		return err
	}
	defer src.Close()

	var name string
	if len(args) == 1 {
		name = args[0]
	}
	snap, err := export.Load(cmd.Context(), src, name)
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(cmd.OutOrStdout(), snap)
	}
	return printSnapshot(cmd.OutOrStdout(), snap)
}
