package host

import (
	"github.com/prometheus/client_golang/prometheus"
)

const resultOK = "ok"

type Metrics struct {
	calls  *prometheus.CounterVec
	assets prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "collectables",
			Name:      "calls_total",
			Help:      "Applied calls by kind and result.",
		}, []string{"call", "result"}),
		assets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "collectables",
			Name:      "assets",
			Help:      "Assets in the registry.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.calls, m.assets)
	}
	return m
}

func (m *Metrics) observe(act *Action) {
	result := resultOK
	if act.Error != "" {
		result = act.Error
	}
	m.calls.WithLabelValues(act.Call.Kind, result).Inc()
}
