package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/results"
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Query stored host records",
	Long:  `Print the stored host records, or those whose field --key equals --value exactly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, _ := cmd.Flags().GetString("key")
		value, _ := cmd.Flags().GetString("value")

		var (
			recs []results.Record
			err  error
		)
		if key == "" {
			recs, err = Records.All()
		} else {
			recs, err = Records.Search(key, value)
		}
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	},
}

func init() {
	rootCmd.AddCommand(recordsCmd)
	recordsCmd.Flags().String("key", "", "field to match")
	recordsCmd.Flags().String("value", "", "exact value of the field")
}
