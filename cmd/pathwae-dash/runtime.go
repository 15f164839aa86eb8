package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pathwae/dashboard/internal/export"
)

var memCmd = &cobra.Command{
	Use:   "mem",
	Short: "Show the heap memory allocated by the proxy",
	Args:  cobra.NoArgs,
	RunE:  runMem,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the proxy version",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	rootCmd.AddCommand(memCmd, versionCmd)
}

func runMem(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	alloc, err := client.MemAlloc(cmd.Context())
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(cmd.OutOrStdout(), map[string]uint64{"alloc": alloc})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d bytes (%s)\n", alloc, export.FormatBytes(int64(alloc)))
	return nil
}

func runVersion(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	version, err := client.Version(cmd.Context())
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(cmd.OutOrStdout(), map[string]string{"version": version})
	}
	fmt.Fprintln(cmd.OutOrStdout(), version)
	return nil
}
