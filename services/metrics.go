package services

import "github.com/prometheus/client_golang/prometheus"

var (
	eventsProposed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progress_events_proposed_total",
			Help: "Catalog events proposed by the resolver and written for a user",
		},
		[]string{"kind"},
	)
	insightsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_generated_total",
			Help: "Insight statements returned to premium users",
		},
		[]string{"kind"},
	)
	pushDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_deliveries_total",
			Help: "Push notification delivery attempts by outcome",
		},
		[]string{"outcome"},
	)
)

// InitMetrics registers the domain counters. Call this from main.go
func InitMetrics(reg prometheus.Registerer) {
	reg.MustRegister(eventsProposed, insightsGenerated, pushDeliveries)
}
