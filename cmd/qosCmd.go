package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Walid-N-bit/lxd-ovs-scripts/api"
)

var qosCmd = &cobra.Command{
	Use:   "qos",
	Short: "Attach QoS queues to a port",
	Long: `Attach a QoS object with one queue per rate to a port, replacing the
port's previous QoS, then install the steering rules. A rule is
<bridge>:<in_port>:<queue>, where bridge is an index or a name and in_port
an OpenFlow port number or an interface name.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		var prof api.QosProfile
		prof.Port, _ = f.GetString("port")
		prof.DefaultRate, _ = f.GetInt64("rate")
		prof.Queues, _ = f.GetInt64Slice("queues")
		specs, _ := f.GetStringSlice("rule")
		for _, s := range specs {
			r, err := parseRule(s)
			if err != nil {
				return err
			}
			prof.Rules = append(prof.Rules, r)
		}

		uuid, err := Manager.ApplyQoS(cmd.Context(), vmName, prof)
		if uuid != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "qos %s on %s\n", uuid, prof.Port)
		}
		return err
	},
}

func parseRule(s string) (api.FlowSteeringRule, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return api.FlowSteeringRule{}, fmt.Errorf("rule %q: want <bridge>:<in_port>:<queue>", s)
	}
	q, err := strconv.Atoi(parts[2])
	if err != nil {
		return api.FlowSteeringRule{}, fmt.Errorf("rule %q: queue: %w", s, err)
	}
	r := api.FlowSteeringRule{Bridge: parts[0], Queue: q}
	if p, err := strconv.Atoi(parts[1]); err == nil {
		r.InPort = p
	} else {
		r.InPortName = parts[1]
	}
	return r, nil
}

func init() {
	rootCmd.AddCommand(qosCmd)
	qosCmd.Flags().String("port", "", "port the QoS object is attached to")
	qosCmd.Flags().Int64("rate", 0, "default max rate in bit/s")
	qosCmd.Flags().Int64Slice("queues", nil, "max rate of queue 0, 1, ... in bit/s")
	qosCmd.Flags().StringSlice("rule", nil, "steering rule <bridge>:<in_port>:<queue>, repeatable")
	_ = qosCmd.MarkFlagRequired("port")
	_ = qosCmd.MarkFlagRequired("rate")
}
