// Package metrics exposes engagement state as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"spoofdefense-sim/internal/engine"
	"spoofdefense-sim/internal/telemetry"
)

const namespace = "spoofdefense"

// Collector is a telemetry sink that keeps gauges for the latest frame and
// counters for rows and events. It owns its registry.
type Collector struct {
	reg *prometheus.Registry

	frame           prometheus.Gauge
	stage           *prometheus.GaugeVec
	threat          prometheus.Gauge
	defense         prometheus.Gauge
	intensity       prometheus.Gauge
	closest         prometheus.Gauge
	altitude        prometheus.Gauge
	maxError        prometheus.Gauge
	active          prometheus.Gauge
	neutralized     prometheus.Gauge
	positionError   *prometheus.GaugeVec
	telemetryRows   prometheus.Counter
	events          *prometheus.CounterVec
	neutralizations prometheus.Counter
}

// New creates a Collector with its own registry, including the Go runtime
// and process collectors.
func New() *Collector {
	c := &Collector{
		reg: prometheus.NewRegistry(),
		frame: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "frame",
			Help: "Frame number of the current run.",
		}),
		stage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "stage",
			Help: "Current engagement stage (1 for the active stage).",
		}, []string{"stage"}),
		threat: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "threat_level",
			Help: "Threat level from 0 (none) to 4 (critical).",
		}),
		defense: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "defense_active",
			Help: "1 while the spoofing defense is active.",
		}),
		intensity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "spoof_intensity_percent",
			Help: "Configured spoofing intensity.",
		}),
		closest: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "closest_distance",
			Help: "Distance of the closest active drone to the sensitive area.",
		}),
		altitude: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "altitude",
			Help: "Scenario altitude while drones are active.",
		}),
		maxError: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "max_position_error",
			Help: "Largest perceived position error among active drones.",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "drones_active",
			Help: "Drones not yet neutralized.",
		}),
		neutralized: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "drones_neutralized",
			Help: "Drones neutralized in the current run.",
		}),
		positionError: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "drone_position_error",
			Help: "Perceived position error per drone.",
		}, []string{"drone_id", "control"}),
		telemetryRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "telemetry_rows_total",
			Help: "Telemetry rows observed.",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "events_total",
			Help: "Engagement events by type.",
		}, []string{"type"}),
		neutralizations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "neutralizations_total",
			Help: "Drones neutralized across all runs.",
		}),
	}
	c.reg.MustRegister(
		c.frame, c.stage, c.threat, c.defense, c.intensity, c.closest,
		c.altitude, c.maxError, c.active, c.neutralized, c.positionError,
		c.telemetryRows, c.events, c.neutralizations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry returns the registry backing the collector.
func (c *Collector) Registry() *prometheus.Registry { return c.reg }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

// Write records the position error of one drone.
func (c *Collector) Write(row telemetry.TelemetryRow) error {
	c.telemetryRows.Inc()
	c.positionError.WithLabelValues(row.DroneID, row.Control).Set(row.PositionError)
	return nil
}

// WriteStage updates the frame gauges.
func (c *Collector) WriteStage(row telemetry.StageRow) error {
	c.frame.Set(float64(row.Frame))
	for _, st := range engine.Stages {
		v := 0.0
		if string(st) == row.Stage {
			v = 1
		}
		c.stage.WithLabelValues(string(st)).Set(v)
	}
	var level engine.ThreatLevel
	if err := level.UnmarshalText([]byte(row.Threat)); err == nil {
		c.threat.Set(float64(level))
	}
	c.defense.Set(boolGauge(row.DefenseActive))
	c.intensity.Set(row.Intensity)
	c.closest.Set(row.ClosestDistance)
	c.altitude.Set(row.Altitude)
	c.maxError.Set(row.MaxPositionError)
	c.active.Set(float64(row.Active))
	c.neutralized.Set(float64(row.Neutralized))
	return nil
}

// WriteEvent counts an engagement event. Per-drone gauges are cleared when a
// new run starts.
func (c *Collector) WriteEvent(e telemetry.EventRow) error {
	c.events.WithLabelValues(e.EventType).Inc()
	switch {
	case e.EventType == telemetry.EventNeutralized:
		c.neutralizations.Add(float64(len(e.DroneIDs)))
	case e.EventType == telemetry.EventIntent && (e.Detail == "start" || e.Detail == "reset"):
		c.positionError.Reset()
	}
	return nil
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
