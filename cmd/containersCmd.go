package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var containersCmd = &cobra.Command{
	Use:   "containers",
	Short: "Create containers",
	Long:  `Create containers cont-<id> on one bridge of a host, in one VLAN. Each gets the address 10.0.<vlan>.<id>.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		bridge, _ := cmd.Flags().GetInt("bridge")
		vlan, _ := cmd.Flags().GetInt("vlan")
		ids, _ := cmd.Flags().GetIntSlice("ids")

		res, err := Manager.ProvisionContainers(cmd.Context(), vmName, bridge, vlan, ids)
		out := cmd.OutOrStdout()
		for _, r := range res {
			if r.Err != nil {
				fmt.Fprintf(out, "%s: failed: %v\n", r.Record.Name, r.Err)
				continue
			}
			fmt.Fprintf(out, "%s: created on %s vlan %d\n", r.Record.Name, r.Record.Bridge, r.Record.VLAN)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(containersCmd)
	containersCmd.Flags().Int("bridge", 0, "bridge index on the host")
	containersCmd.Flags().Int("vlan", 1, "VLAN id")
	containersCmd.Flags().IntSlice("ids", nil, "container ids, e.g. 12,13")
	_ = containersCmd.MarkFlagRequired("ids")
}
