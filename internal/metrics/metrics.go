// Package metrics exposes prometheus instrumentation for the ingestion path.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Ingest struct {
	ReadingsTotal  *prometheus.CounterVec
	IngestDuration prometheus.Histogram
	TxRetriesTotal prometheus.Counter
	CreditSettled  prometheus.Counter
}

func NewIngest() *Ingest {
	return NewIngestWith(prometheus.DefaultRegisterer)
}

// NewIngestWith registers the ingestion collectors on reg. Tests pass an
// isolated registry so repeated construction never collides.
func NewIngestWith(reg prometheus.Registerer) *Ingest {
	factory := promauto.With(reg)
	return &Ingest{
		ReadingsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aquabill",
			Subsystem: "ingest",
			Name:      "readings_total",
			Help:      "Reading submissions by outcome.",
		}, []string{"outcome"}),
		IngestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "aquabill",
			Subsystem: "ingest",
			Name:      "duration_seconds",
			Help:      "Wall time of the reading ingestion transaction.",
			Buckets:   prometheus.DefBuckets,
		}),
		TxRetriesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "aquabill",
			Subsystem: "ingest",
			Name:      "tx_retries_total",
			Help:      "Ingestion transactions retried after a serialization conflict.",
		}),
		CreditSettled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "aquabill",
			Subsystem: "ingest",
			Name:      "credit_settled_total",
			Help:      "Invoices settled (fully or partially) from prepaid credit.",
		}),
	}
}
