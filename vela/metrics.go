package vela

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	cacheAST     = "ast"
	cacheResult  = "result"
	cachePattern = "pattern"

	entryProgram    = "program"
	entryExpression = "expression"

	outcomeOK    = "ok"
	outcomeError = "error"
)

type metrics struct {
	hits        *prometheus.CounterVec
	misses      *prometheus.CounterVec
	evictions   *prometheus.CounterVec
	evaluations *prometheus.CounterVec
	calls       *prometheus.CounterVec

	nativeCalls prometheus.Counter
	userCalls   prometheus.Counter
	elidedCalls prometheus.Counter
}

// newMetrics registers the interpreter's collectors with reg. A nil reg
// yields working but unregistered collectors.
func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		hits: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "vela_cache_hits_total",
			Help: "Total number of cache hits.",
		}, []string{"cache"}),
		misses: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "vela_cache_misses_total",
			Help: "Total number of cache misses.",
		}, []string{"cache"}),
		evictions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "vela_cache_evictions_total",
			Help: "Total number of cache entries evicted to make room.",
		}, []string{"cache"}),
		evaluations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "vela_evaluations_total",
			Help: "Total number of top-level evaluations by entry point and outcome.",
		}, []string{"entry", "outcome"}),
		calls: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "vela_function_calls_total",
			Help: "Total number of function invocations by executor kind.",
		}, []string{"kind"}),
	}

	m.nativeCalls = m.calls.WithLabelValues("native")
	m.userCalls = m.calls.WithLabelValues("user")
	m.elidedCalls = m.calls.WithLabelValues("elided")

	return m
}

func (m *metrics) lookup(cache string, hit bool) {
	if hit {
		m.hits.WithLabelValues(cache).Inc()
	} else {
		m.misses.WithLabelValues(cache).Inc()
	}
}

func (m *metrics) evicted(cache string, evicted bool) {
	if evicted {
		m.evictions.WithLabelValues(cache).Inc()
	}
}

func (m *metrics) evaluated(entry string, err error) {
	outcome := outcomeOK
	if err != nil {
		outcome = outcomeError
	}

	m.evaluations.WithLabelValues(entry, outcome).Inc()
}
