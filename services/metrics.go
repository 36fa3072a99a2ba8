package services

import "github.com/prometheus/client_golang/prometheus"

var (
	resourcesUpsertedCounter *prometheus.CounterVec
	sourceFailuresCounter    *prometheus.CounterVec
	interactionsCounter      *prometheus.CounterVec
)

func init() {
	resourcesUpsertedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnhub_resources_upserted_total",
			Help: "Total number of resources written to the database, by kind.",
		},
		[]string{"kind"},
	)
	sourceFailuresCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnhub_source_failures_total",
			Help: "Total number of failed searches against external sources.",
		},
		[]string{"source"},
	)
	interactionsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnhub_interactions_total",
			Help: "Total number of recorded interactions, by kind and type (view or rating).",
		},
		[]string{"kind", "type"},
	)
	prometheus.MustRegister(resourcesUpsertedCounter, sourceFailuresCounter, interactionsCounter)
}
