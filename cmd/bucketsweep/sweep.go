package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bucketsweep/bucketsweep"
	"github.com/bucketsweep/bucketsweep/config"
	"github.com/bucketsweep/bucketsweep/scheduler"
)

var flagConfigFile string

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run configured sweep rules on their cron schedules",
	Long: `sweep loads rules from a YAML configuration file and runs each
scheduled rule until interrupted. Rules without a schedule are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfigFile)
		if err != nil {
			return err
		}

		providerName := cfg.Provider
		if providerName == "" {
			providerName = flagProvider
		}
		p, err := bucketsweep.NewProvider(providerName, cfg.RateLimit)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		sched := scheduler.New(p, cfg.BatchSize)
		sched.SetLogger(logger)

		scheduled := 0
		for _, rule := range cfg.Rules {
			if rule.Schedule == "" {
				logger.Warn("rule_has_no_schedule", "rule", rule.Name)
				continue
			}
			if err := sched.Add(ctx, rule); err != nil {
				return fmt.Errorf("rule %q: %w", rule.Name, err)
			}
			scheduled++
		}
		if scheduled == 0 {
			return fmt.Errorf("no scheduled rules in %s", flagConfigFile)
		}

		sched.Start(ctx)
		return nil
	},
}

func init() {
	sweepCmd.Flags().StringVarP(&flagConfigFile, "config", "c", "bucketsweep.yaml", "path to the configuration file")

	rootCmd.AddCommand(sweepCmd)
}
