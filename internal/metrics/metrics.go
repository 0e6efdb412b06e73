package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lead_assistant"

// Metrics groups the Prometheus instruments of the bot.
type Metrics struct {
	registry *prometheus.Registry

	Turns           *prometheus.CounterVec
	ModelFailures   prometheus.Counter
	ModelLatency    prometheus.Histogram
	ContactsSaved   *prometheus.CounterVec
	ContactFailures *prometheus.CounterVec
	SendFailures    prometheus.Counter
}

// New registers every instrument on a fresh registry together with the
// process and Go runtime collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Turns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Completed dialog turns by route.",
		}, []string{"route"}),
		ModelFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_failures_total",
			Help:      "Model calls that ended in an error or timeout.",
		}),
		ModelLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_latency_seconds",
			Help:      "Latency of model calls.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		}),
		ContactsSaved: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contacts_saved_total",
			Help:      "Persisted leads by source.",
		}, []string{"source"}),
		ContactFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contact_save_failures_total",
			Help:      "Leads that could not be persisted, by source.",
		}, []string{"source"}),
		SendFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "send_failures_total",
			Help:      "Outbound Telegram messages that failed.",
		}),
	}
}

func (m *Metrics) TurnCompleted(route string) {
	m.Turns.WithLabelValues(route).Inc()
}

func (m *Metrics) ModelCall(elapsed time.Duration, err error) {
	m.ModelLatency.Observe(elapsed.Seconds())
	if err != nil {
		m.ModelFailures.Inc()
	}
}

func (m *Metrics) ContactSaved(source string, ok bool) {
	if ok {
		m.ContactsSaved.WithLabelValues(source).Inc()
		return
	}
	m.ContactFailures.WithLabelValues(source).Inc()
}

func (m *Metrics) SendFailed() {
	m.SendFailures.Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
