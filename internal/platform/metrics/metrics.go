package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the deck controller.
type Metrics struct {
	registry              *prometheus.Registry
	requestsTotal         prometheus.Counter
	commandsTotal         *prometheus.CounterVec
	commandErrorsTotal    prometheus.Counter
	sceneSwitchesTotal    prometheus.Counter
	rendererLaunchesTotal prometheus.Counter
	scenesActive          prometheus.Gauge
	errorsTotal           prometheus.Counter
}

// New creates and registers Prometheus metrics for the controller.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "deck_requests_total",
		Help: "Total number of HTTP requests received",
	})
	commandsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "deck_commands_total",
		Help: "Total number of control commands accepted, by command name",
	}, []string{"command"})
	commandErrorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "deck_command_errors_total",
		Help: "Total number of control commands that failed",
	})
	sceneSwitchesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "deck_scene_switches_total",
		Help: "Total number of capture container switches issued",
	})
	rendererLaunchesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "deck_renderer_launches_total",
		Help: "Total number of external renderer launches",
	})
	scenesActive := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "deck_scenes_active",
		Help: "Number of capture containers synthesized for the loaded program",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "deck_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})

	registry.MustRegister(
		requestsTotal,
		commandsTotal,
		commandErrorsTotal,
		sceneSwitchesTotal,
		rendererLaunchesTotal,
		scenesActive,
		errorsTotal,
	)

	return &Metrics{
		registry:              registry,
		requestsTotal:         requestsTotal,
		commandsTotal:         commandsTotal,
		commandErrorsTotal:    commandErrorsTotal,
		sceneSwitchesTotal:    sceneSwitchesTotal,
		rendererLaunchesTotal: rendererLaunchesTotal,
		scenesActive:          scenesActive,
		errorsTotal:           errorsTotal,
	}
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncCommand increments the per-command counter for the given command name.
func (m *Metrics) IncCommand(name string) {
	m.commandsTotal.WithLabelValues(name).Inc()
}

// IncCommandErrors increments the failed command counter.
func (m *Metrics) IncCommandErrors() {
	m.commandErrorsTotal.Inc()
}

// IncSceneSwitches increments the container switch counter.
func (m *Metrics) IncSceneSwitches() {
	m.sceneSwitchesTotal.Inc()
}

// IncRendererLaunches increments the renderer launch counter.
func (m *Metrics) IncRendererLaunches() {
	m.rendererLaunchesTotal.Inc()
}

// SetScenesActive sets the synthesized container gauge.
func (m *Metrics) SetScenesActive(n int) {
	m.scenesActive.Set(float64(n))
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values
// (e.g. the synthesized container count).
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
