package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply Topology",
	Long:  `Apply a topology file: bridges, containers and QoS per host, then the VXLAN links between hosts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filepath, _ := cmd.Flags().GetString("from")
		tb := pkg.NewTestbed(Manager, Records, logger)
		if err := tb.ApplyTopoConfig(cmd.Context(), filepath); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Topology applied.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().StringP("from", "f", "", "Path to the topology configuration file")
	_ = applyCmd.MarkFlagRequired("from")
}
