// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuditWritten counts audit rows inserted by the recorder workers.
	AuditWritten = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "inventory",
		Subsystem: "audit",
		Name:      "records_written_total",
		Help:      "Audit records persisted.",
	})

	// AuditFailed counts audit rows that could not be inserted.
	AuditFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "inventory",
		Subsystem: "audit",
		Name:      "records_failed_total",
		Help:      "Audit records dropped after an insert error.",
	})

	// AuditDeferred counts submissions that found the queue full and were
	// handed to an overflow goroutine.
	AuditDeferred = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "inventory",
		Subsystem: "audit",
		Name:      "records_deferred_total",
		Help:      "Audit records submitted while the queue was full.",
	})

	// AuditDropped counts submissions refused because both the queue and
	// the overflow slots were full.
	AuditDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "inventory",
		Subsystem: "audit",
		Name:      "records_dropped_total",
		Help:      "Audit records dropped while the recorder was saturated.",
	})

	// RefreshOutcomes counts refresh-token exchanges by result.
	RefreshOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inventory",
		Subsystem: "auth",
		Name:      "refresh_total",
		Help:      "Refresh token exchanges by outcome.",
	}, []string{"outcome"})

	// LoginOutcomes counts login attempts by result.
	LoginOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inventory",
		Subsystem: "auth",
		Name:      "login_total",
		Help:      "Login attempts by outcome.",
	}, []string{"outcome"})
)
