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

var tuiOpts runOptions

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the interactive operator console",
	Long: "tui opens a terminal console showing the arena, drone table and event log. Keys select the " +
		"scenario, start the run and activate the spoofer. Telemetry is also written to GreptimeDB when " +
		"GREPTIMEDB_ENDPOINT is set.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		log := logging.FromContext(ctx)

		cfg, cat, err := tuiOpts.load()
		if err != nil {
			return err
		}

		console := sim.NewTUIWriter(cfg.Params(), cat)
		defer console.Close()

		collector := metrics.New()
		ws := []sim.TelemetryWriter{console, collector}
		if os.Getenv("GREPTIMEDB_ENDPOINT") != "" {
			gw, err := baseWriter(cfg, false, colorNever)
			if err != nil {
				return err
			}
			ws = append(ws, gw)
		}
		cleanup := func() {}
		if tuiOpts.logFile != "" {
			fw, err := sim.NewFileWriter(tuiOpts.logFile, tuiOpts.logFile+".stage", tuiOpts.logFile+".events")
			if err != nil {
				return err
			}
			ws = append(ws, fw)
			cleanup = func() { fw.Close() }
		}
		defer cleanup()
		writer := sim.NewMultiWriter(ws...)

		simulator := sim.NewSimulator(os.Getenv("RUN_ID"), cfg.Params(), cat, writer, cfg.TickInterval, tuiOpts.newRand())
		simulator.SetLogger(log)
		console.SetController(simulator)
		if err := tuiOpts.apply(cmd, simulator, cfg); err != nil {
			return err
		}

		if tuiOpts.adminAddr != "" {
			srv := admin.NewServer(simulator, collector.Handler())
			go func() {
				if err := srv.Start(ctx, tuiOpts.adminAddr, writer); err != nil {
					log.Error("admin server failed", "err", err)
				}
			}()
		}

		go simulator.Run(ctx)

		select {
		case <-ctx.Done():
		case <-console.Done():
		}
		log.Info("console closed", "run_id", simulator.RunID())
		return nil
	},
}

func init() {
	tuiOpts.register(tuiCmd)
}
