package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var hostidCmd = &cobra.Command{
	Use:   "hostid",
	Short: "Print the host id",
	Long:  `Print the host id of a VM or of this machine: the last octet of its single 10.0.x.y address.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := Manager.Identity(cmd.Context(), vmName)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", id.HostID, id.Address)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hostidCmd)
}
