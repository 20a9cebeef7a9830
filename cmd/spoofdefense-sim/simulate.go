package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"spoofdefense-sim/internal/admin"
	"spoofdefense-sim/internal/logging"
	"spoofdefense-sim/internal/metrics"
	"spoofdefense-sim/internal/sim"
)

var (
	simOpts      runOptions
	simPrintOnly bool
	simColor     string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a headless engagement",
	Long: "simulate selects a scenario, starts the run and streams telemetry until the swarm is neutralized " +
		"or the process is interrupted. With --admin-addr the run keeps going until interrupted so it can be driven over HTTP.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		log := logging.FromContext(ctx)

		cfg, cat, err := simOpts.load()
		if err != nil {
			return err
		}

		collector := metrics.New()
		writer, cleanup, err := newWriters(cfg, simPrintOnly, simColor, simOpts.logFile, collector)
		if err != nil {
			return err
		}
		defer cleanup()

		simulator := sim.NewSimulator(os.Getenv("RUN_ID"), cfg.Params(), cat, writer, cfg.TickInterval, simOpts.newRand())
		simulator.SetLogger(log)
		if err := simOpts.apply(cmd, simulator, cfg); err != nil {
			return err
		}

		if simOpts.adminAddr != "" {
			srv := admin.NewServer(simulator, collector.Handler())
			go func() {
				if err := srv.Start(ctx, simOpts.adminAddr, adminStatus(writer)); err != nil {
					log.Error("admin server failed", "err", err)
				}
			}()
		}

		if err := simulator.Start(); err != nil {
			return err
		}
		if simOpts.adminAddr != "" {
			simulator.Run(ctx)
		} else {
			simulator.RunUntilComplete(ctx)
		}

		st := simulator.Snapshot()
		log.Info("simulation stopped",
			"run_id", simulator.RunID(),
			"frame", st.Frame,
			"stage", st.Stage,
			"neutralized", st.Telemetry.Neutralized,
			"total", st.Telemetry.Total)
		return nil
	},
}

func init() {
	simOpts.register(simulateCmd)
	simulateCmd.Flags().BoolVar(&simPrintOnly, "print-only", false, "Print telemetry to STDOUT instead of writing to DB")
	simulateCmd.Flags().StringVar(&simColor, "color", colorAuto, "Colored STDOUT output (auto, always, never)")
}
