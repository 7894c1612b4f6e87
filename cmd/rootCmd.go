package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg"
	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/config"
	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/results"
	"github.com/Walid-N-bit/lxd-ovs-scripts/pkg/runner"
)

var (
	cfgPath string
	debug   bool
	vmName  string

	flagCfg = config.Default()

	cfg     *config.Config
	logger  *zap.SugaredLogger
	Manager *pkg.Manager
	Records *results.Records
)

var rootCmd = &cobra.Command{
	Use:   "testbed",
	Short: "SDN testbed provisioning CLI",
	Long: `Provision Open vSwitch bridges, VXLAN links, QoS queues and containers
on LXD virtual machines. Object names derive from each host's 10.0.x.<id>
address.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to the YAML configuration file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "development logging")
	rootCmd.PersistentFlags().StringVar(&vmName, "vm", "", "target LXD VM; empty targets this machine")
	flagCfg.BindFlags(rootCmd.PersistentFlags())
}

// setup loads the configuration and builds the manager shared by every
// subcommand.
func setup(cmd *cobra.Command, args []string) error {
	var (
		zl  *zap.Logger
		err error
	)
	if debug {
		zl, err = zap.NewDevelopment()
	} else {
		zl, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}
	logger = zl.Sugar()

	if cfg, err = config.Load(cfgPath); err != nil {
		return err
	}
	if err = cfg.ApplyFlags(cmd.Flags()); err != nil {
		return err
	}

	sink, err := results.NewLog(cfg.LogDir, time.Now())
	if err != nil {
		return err
	}
	Records = results.NewRecords(cfg.RecordsPath)
	local := runner.NewLocal(logger, runner.WithSudo(cfg.Sudo), runner.WithTimeout(cfg.CommandTimeout))
	Manager = pkg.NewManager(cfg, local, sink, logger)
	logger.Debugw("configured", "config", cfgPath, "log", sink.Path(), "records", cfg.RecordsPath)
	return nil
}
