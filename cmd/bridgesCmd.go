package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var bridgesCmd = &cobra.Command{
	Use:   "bridges",
	Short: "Create bridges",
	Long:  `Create bridges br-<host>-0 .. br-<host>-<n-1> on a host, each bound to the controller.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("count")
		id, created, err := Manager.ProvisionBridges(cmd.Context(), vmName, cfg.Controller, n)
		for _, br := range created {
			fmt.Fprintf(cmd.OutOrStdout(), "host %d: %s\n", id.HostID, br)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(bridgesCmd)
	bridgesCmd.Flags().IntP("count", "n", 1, "number of bridges")
}
