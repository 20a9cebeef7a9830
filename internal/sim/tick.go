package sim

import (
	"context"
	"log/slog"
	"time"

	"spoofdefense-sim/internal/engine"
	"spoofdefense-sim/internal/logging"
	"spoofdefense-sim/internal/telemetry"
)

// Run starts the simulation loop and stops when the context is done.
func (s *Simulator) Run(ctx context.Context) {
	s.run(ctx, false)
}

// RunUntilComplete is Run, but it also returns once a run completes.
func (s *Simulator) RunUntilComplete(ctx context.Context) {
	s.run(ctx, true)
}

func (s *Simulator) run(ctx context.Context, stopOnComplete bool) {
	log := logging.FromContext(ctx)
	log.Info("starting simulator", "tick_interval", s.tickInterval, "run_id", s.runID)
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Step(ctx)
			if stopOnComplete && s.Snapshot().Run == engine.RunComplete {
				log.Info("run complete, stopping simulator")
				return
			}
		case <-ctx.Done():
			log.Info("stopping simulator")
			return
		}
	}
}

// Step advances one frame and writes its rows. It reports false when the run
// is not running.
func (s *Simulator) Step(ctx context.Context) bool {
	log := logging.FromContext(ctx)

	s.mu.Lock()
	prev := s.eng.Snapshot()
	if !s.eng.Tick() {
		s.mu.Unlock()
		return false
	}
	cur := s.eng.Snapshot()
	now := s.now().UTC()
	rows := s.teleGen.Telemetry(cur, now)
	stage := s.teleGen.Stage(cur, now)
	events := s.teleGen.Events(prev, cur, now)
	s.record(events)
	auto := s.autoDefense && cur.Alert.Show && cur.Alert.Message == engine.WarningMessage && !cur.DefenseActive
	s.mu.Unlock()

	for _, ev := range events {
		switch ev.EventType {
		case telemetry.EventNeutralized:
			log.Info("drones neutralized", "frame", ev.Frame, "drone_ids", ev.DroneIDs)
		case telemetry.EventStage:
			log.Info("stage changed", "frame", ev.Frame, "transition", ev.Detail)
		case telemetry.EventAlert:
			log.Warn("alert raised", "frame", ev.Frame, "message", ev.Detail)
		case telemetry.EventComplete:
			log.Info("run complete", "frame", ev.Frame, "neutralized", cur.Telemetry.Neutralized)
		}
	}
	s.emit(log, rows, &stage, events, cur)

	if auto {
		if err := s.ActivateDefense(); err != nil {
			log.Error("auto defense failed", "err", err)
		}
	}
	return true
}

// emit writes rows to the configured writer, then hands snap to subscribers.
// Both happen under writeMu so writers and subscribers see the same order.
// Writer failures are logged and never stop the simulation.
func (s *Simulator) emit(log *slog.Logger, rows []telemetry.TelemetryRow, stage *telemetry.StageRow, events []telemetry.EventRow, snap engine.State) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	defer s.broadcast(snap)
	if s.writer == nil {
		return
	}

	// Batch support if writer implements WriteBatch
	if len(rows) > 0 {
		if bw, ok := s.writer.(batchWriter); ok {
			if err := bw.WriteBatch(rows); err != nil {
				log.Error("batch write failed", "err", err)
			}
		} else {
			for _, row := range rows {
				if err := s.writer.Write(row); err != nil {
					log.Error("write failed", "drone_id", row.DroneID, "err", err)
				}
			}
		}
	}

	if sw, ok := s.writer.(StageWriter); ok && stage != nil {
		if err := sw.WriteStage(*stage); err != nil {
			log.Error("stage write failed", "err", err)
		}
	}

	if ew, ok := s.writer.(EventWriter); ok && len(events) > 0 {
		if bw, ok := s.writer.(batchEventWriter); ok {
			if err := bw.WriteEvents(events); err != nil {
				log.Error("event batch write failed", "err", err)
			}
		} else {
			for _, ev := range events {
				if err := ew.WriteEvent(ev); err != nil {
					log.Error("event write failed", "event", ev.EventType, "err", err)
				}
			}
		}
	}

	if sn, ok := s.writer.(SnapshotWriter); ok {
		if err := sn.WriteSnapshot(snap); err != nil {
			log.Error("snapshot write failed", "err", err)
		}
	}
}
