package spore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// sporesIntegrated counts integrate_spore outcomes.
	// Labels: result (success, invalid, incompatible, nonconformant, failed)
	sporesIntegrated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "semspore",
		Subsystem: "integrator",
		Name:      "spores_total",
		Help:      "Spore integrations by result",
	}, []string{"result"})

	// batchesIntegrated counts integrate_concurrent outcomes.
	// Labels: result (success, precheck_failed, apply_failed)
	batchesIntegrated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "semspore",
		Subsystem: "integrator",
		Name:      "batches_total",
		Help:      "Batched spore integrations by result",
	}, []string{"result"})

	// integrationDuration measures integrate_spore wall time.
	integrationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "semspore",
		Subsystem: "integrator",
		Name:      "duration_seconds",
		Help:      "Time to integrate one spore",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
	})

	// patchesApplied counts apply_patch outcomes.
	// Labels: result (success, failed)
	patchesApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "semspore",
		Subsystem: "applier",
		Name:      "patches_total",
		Help:      "Patch applications by result",
	}, []string{"result"})

	// operationsApplied counts applied operations.
	// Labels: kind (add_class, remove_class, add_object_property, remove_object_property)
	operationsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "semspore",
		Subsystem: "applier",
		Name:      "operations_total",
		Help:      "Applied patch operations by kind",
	}, []string{"kind"})

	// conflictsFound counts declarations reported by FindConflicts.
	conflictsFound = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "semspore",
		Subsystem: "integrator",
		Name:      "conflicts_total",
		Help:      "Declarations present in both a spore graph and a model graph",
	})
)
