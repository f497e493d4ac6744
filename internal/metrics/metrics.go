package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Recorder counts checkout synchronisation operations.
type Recorder struct {
	operations *prometheus.CounterVec
	cacheHits  *prometheus.CounterVec
}

// New registers the checkout collectors on reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "checkout",
			Name:      "operations_total",
			Help:      "Checkout operations by name and outcome.",
		}, []string{"operation", "outcome"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "checkout",
			Name:      "cache_lookups_total",
			Help:      "Checkout cache lookups by result.",
		}, []string{"result"}),
	}
	if reg != nil {
		reg.MustRegister(r.operations, r.cacheHits)
	}
	return r
}

// Observe records one operation; err decides the outcome label.
func (r *Recorder) Observe(operation string, err error) {
	if r == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	r.operations.WithLabelValues(operation, outcome).Inc()
}

// CacheLookup records a cache hit or miss.
func (r *Recorder) CacheLookup(hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheHits.WithLabelValues(result).Inc()
}
