package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	promDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "file_appender_deliveries_total",
			Help: "Event batches delivered to agents, by outcome",
		},
		[]string{"agent", "status"},
	)
	promEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "file_appender_events_total",
			Help: "Events handed to agents",
		},
		[]string{"agent"},
	)
	promReceiveDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "file_appender_receive_duration_seconds",
			Help:    "Time spent in an agent's receive, including remote round trips",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"agent"},
	)
	promWorking = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "file_appender_agent_working",
			Help: "1 when the agent's last health check passed",
		},
		[]string{"agent"},
	)
)

func init() {
	prometheus.MustRegister(promDeliveries)
	prometheus.MustRegister(promEvents)
	prometheus.MustRegister(promReceiveDuration)
	prometheus.MustRegister(promWorking)
}

// ObserveReceive records one Receive call.
func ObserveReceive(agentID string, events int, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	promDeliveries.WithLabelValues(agentID, status).Inc()
	promEvents.WithLabelValues(agentID).Add(float64(events))
	promReceiveDuration.WithLabelValues(agentID).Observe(d.Seconds())
}

func SetWorking(agentID string, working bool) {
	v := 0.0
	if working {
		v = 1
	}
	promWorking.WithLabelValues(agentID).Set(v)
}
