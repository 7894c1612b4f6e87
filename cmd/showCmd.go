package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show Resources",
	Long:  `Show the bridges, controllers and ports currently present on the switch of a host.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		bridges, err := Manager.Show(cmd.Context(), vmName)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, br := range bridges {
			owner := "-"
			if br.Managed {
				owner = fmt.Sprintf("host %d #%d", br.HostID, br.Index)
			}
			fmt.Fprintf(out, "Bridge: %s (%s), Controller: %s, Ports: %s\n", br.Name, owner, br.Controller, strings.Join(br.Ports, ","))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
