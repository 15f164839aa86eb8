package main

import (
	"github.com/spf13/cobra"
)

var serversCmd = &cobra.Command{
	Use:     "servers",
	Aliases: []string{"backends", "ls"},
	Short:   "List the backends configured on the proxy",
	Args:    cobra.NoArgs,
	RunE:    runServers,
}

func init() {
	rootCmd.AddCommand(serversCmd)
}

func runServers(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	backends, err := client.Backends(cmd.Context())
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(cmd.OutOrStdout(), backends)
	}
	return printBackends(cmd.OutOrStdout(), backends)
}
