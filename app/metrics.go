// app/metrics.go
package app

import (
	"context"

	"github.com/Ahmed-Ibrahim-0/switches-controller/lifecycle"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	Submissions *prometheus.CounterVec
	Allocated   prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "switches",
			Name:      "submissions_total",
			Help:      "Create and replace submissions by outcome.",
		}, []string{"op", "outcome"}),
		Allocated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "switches",
			Name:      "keys_allocated_total",
			Help:      "uniqueKeys handed out by the sequence allocator.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Submissions, m.Allocated)
	}
	return m
}

// Observe records the outcome of a create or replace call.
func (m *Metrics) Observe(op string, err error) {
	outcome := "accepted"
	if err != nil {
		outcome = lifecycle.KindOf(err).String()
	}
	m.Submissions.WithLabelValues(op, outcome).Inc()
}

type countingAllocator struct {
	lifecycle.Allocator
	n prometheus.Counter
}

func (c countingAllocator) Next(ctx context.Context) (int64, error) {
	k, err := c.Allocator.Next(ctx)
	if err == nil {
		c.n.Inc()
	}
	return k, err
}

// CountAllocations wraps an allocator so every issued key is counted.
func (m *Metrics) CountAllocations(a lifecycle.Allocator) lifecycle.Allocator {
	return countingAllocator{Allocator: a, n: m.Allocated}
}
