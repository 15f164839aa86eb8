package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pathwae/dashboard"
)

var setBackendCmd = &cobra.Command{
	Use:   "set-backend NAME",
	Short: "Replace the configuration of a backend",
	Long: `Replace the configuration of a backend.

The whole entry is sent: flags left unset take their default values, not
the current ones.

Examples:
  pathwae-dash set-backend example.com --to http://10.0.0.7:8080 --force-ssl
  pathwae-dash set-backend example.com --to http://10.0.0.7:8080 --enabled=false`,
	Args: cobra.ExactArgs(1),
	RunE: runSetBackend,
}

var (
	backendTo       string
	backendForceSSL bool
	backendEnabled  bool
)

func init() {
	setBackendCmd.Flags().StringVar(&backendTo, "to", "", "URL requests are forwarded to (required)")
	setBackendCmd.Flags().BoolVar(&backendForceSSL, "force-ssl", false, "redirect plain HTTP to HTTPS")
	setBackendCmd.Flags().BoolVar(&backendEnabled, "enabled", true, "enable the backend")
	_ = setBackendCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(setBackendCmd)
}

func runSetBackend(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	name := args[0]
	b := dashboard.Backend{
		To:       backendTo,
		ForceSSL: backendForceSSL,
		Enabled:  dashboard.Bool(backendEnabled),
	}

	resp, err := client.SetBackend(cmd.Context(), name, b)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("proxy rejected update of %q: %s: %s",
			name, resp.Status, strings.TrimSpace(string(body)))
	}

	if outputJSON {
		return printJSON(cmd.OutOrStdout(), map[string]any{"name": name, "status": resp.StatusCode, "backend": b})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%s)\n", name, b.To, resp.Status)
	return nil
}
