package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	slotToggles = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "semainier",
			Name:      "slot_toggles_total",
			Help:      "Count of slot selections toggled.",
		},
	)

	pastes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "semainier",
			Name:      "pastes_total",
			Help:      "Count of paste operations by mode.",
		},
		[]string{"mode"},
	)

	recaps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "semainier",
			Name:      "recaps_total",
			Help:      "Count of recap computations by scope.",
		},
		[]string{"scope"},
	)

	reconciliations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "semainier",
			Name:      "grid_reconciliations_total",
			Help:      "Count of snapshot reconciliations after grid changes.",
		},
	)

	persistFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "semainier",
			Name:      "persist_failures_total",
			Help:      "Count of failed snapshot persists.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(slotToggles, pastes, recaps, reconciliations, persistFailures)
	})
}

func IncSlotToggle() {
	slotToggles.Inc()
}

func IncPaste(mode string) {
	pastes.WithLabelValues(mode).Inc()
}

func IncRecap(scope string) {
	recaps.WithLabelValues(scope).Inc()
}

func IncReconciliation() {
	reconciliations.Inc()
}

func IncPersistFailure() {
	persistFailures.Inc()
}
