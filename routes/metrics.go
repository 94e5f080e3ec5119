package routes

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// submissions counts response submissions.
// Labels: outcome (accepted, rejected, failed)
var submissions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "quick_form",
	Subsystem: "responses",
	Name:      "submissions_total",
	Help:      "Response submissions by outcome",
}, []string{"outcome"})
