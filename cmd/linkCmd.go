package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Walid-N-bit/lxd-ovs-scripts/api"
)

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Create a VXLAN link",
	Long:  `Create a VXLAN tunnel between a bridge on host a and a bridge on host b. Both ends are created, or neither.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		var l api.Link
		l.A.VM, _ = f.GetString("a")
		l.A.Bridge, _ = f.GetInt("a-bridge")
		l.B.VM, _ = f.GetString("b")
		l.B.Bridge, _ = f.GetInt("b-bridge")
		l.Key, _ = f.GetString("key")
		l.DstPort, _ = f.GetInt("dst-port")

		port, err := Manager.CreateLink(cmd.Context(), l)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "link %s created\n", port)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(linkCmd)
	linkCmd.Flags().String("a", "", "VM of endpoint a; empty is this machine")
	linkCmd.Flags().Int("a-bridge", 0, "bridge index on host a")
	linkCmd.Flags().String("b", "", "VM of endpoint b; empty is this machine")
	linkCmd.Flags().Int("b-bridge", 0, "bridge index on host b")
	linkCmd.Flags().String("key", "", "tunnel key, \"flow\" or a VNI (default from config)")
	linkCmd.Flags().Int("dst-port", 0, "VXLAN UDP port (default from config)")
}
