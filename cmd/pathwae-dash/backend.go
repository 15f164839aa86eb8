package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var certCmd = &cobra.Command{
	Use:   "cert NAME",
	Short: "Show the TLS certificate served for a backend",
	Args:  cobra.ExactArgs(1),
	RunE:  runCert,
}

var stateCmd = &cobra.Command{
	Use:   "state NAME",
	Short: "Show whether a backend is up",
	Args:  cobra.ExactArgs(1),
	RunE:  runState,
}

var statsCmd = &cobra.Command{
	Use:   "stats NAME",
	Short: "Show the hits recorded for a backend",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(certCmd, stateCmd, statsCmd)
}

func runCert(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	cert, err := client.Certificate(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(cmd.OutOrStdout(), cert)
	}
	printCertificate(cmd.OutOrStdout(), cert, time.Now())
	return nil
}

func runState(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	up, err := client.BackendState(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(cmd.OutOrStdout(), map[string]any{"name": args[0], "up": up})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], stateText(up))
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	hits, err := client.BackendStats(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(cmd.OutOrStdout(), hits)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d hits\n", args[0], len(hits))
	for _, h := range hits {
		fmt.Fprintf(out, "  %s\n", h.Raw())
	}
	return nil
}
