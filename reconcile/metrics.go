package reconcile

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// operations counts reconciliation operations.
// Labels: op (touch, mark_deleted), outcome (applied, unchanged, not_found, failed)
var operations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "quick_form",
	Subsystem: "reconcile",
	Name:      "operations_total",
	Help:      "Reconciliation operations by outcome",
}, []string{"op", "outcome"})
