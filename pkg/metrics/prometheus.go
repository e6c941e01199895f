package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	EmailsFetched     prometheus.Counter
	RecordsExtracted  *prometheus.CounterVec
	ReconcileOutcomes *prometheus.CounterVec
	Notifications     *prometheus.CounterVec
	CycleDuration     prometheus.Histogram
	ErrorsCount       *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics on the given registerer.
// Pass prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		EmailsFetched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_fetched_total",
			Help:      "The total number of booking emails fetched from the mailbox",
		}),
		RecordsExtracted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_extracted_total",
			Help:      "The total number of booking records extracted, by extractor stage",
		}, []string{"stage"}),
		ReconcileOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_outcomes_total",
			Help:      "The total number of reconciled records, by outcome",
		}, []string{"outcome"}),
		Notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "The total number of booking notifications, by result",
		}, []string{"result"}),
		CycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Time taken by one fetch-extract-reconcile-notify cycle",
			Buckets:   prometheus.DefBuckets,
		}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
