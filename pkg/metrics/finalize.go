package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// FinalizeMetrics records the outcome of page finalization attempts across
// every trigger path (webhook, poll, capture, operator).
type FinalizeMetrics struct {
	duration  *prometheus.HistogramVec
	outcomes  *prometheus.CounterVec
	promotion *prometheus.CounterVec
}

// NewFinalizeMetrics registers finalize metrics on the provided registerer.
func NewFinalizeMetrics(reg prometheus.Registerer) *FinalizeMetrics {
	if reg == nil {
		return &FinalizeMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "finalize_duration_seconds",
		Help:    "Duration of finalize attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"trigger"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "finalize_outcomes_total",
		Help: "Finalize attempts by trigger and outcome.",
	}, []string{"trigger", "outcome"})
	promotion := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "asset_promotions_total",
		Help: "Media promotion attempts by result.",
	}, []string{"result"})
	reg.MustRegister(duration, outcomes, promotion)
	return &FinalizeMetrics{
		duration:  duration,
		outcomes:  outcomes,
		promotion: promotion,
	}
}

// Outcome labels for ObserveFinalize.
const (
	OutcomeCreated       = "created"
	OutcomeAlreadyDone   = "already_completed"
	OutcomeLostRace      = "lost_race"
	OutcomeDraftNotFound = "draft_not_found"
	OutcomeError         = "error"
)

// ObserveFinalize records one finalize attempt.
func (m *FinalizeMetrics) ObserveFinalize(trigger, outcome string, duration time.Duration) {
	if m == nil || m.outcomes == nil {
		return
	}
	m.outcomes.WithLabelValues(normalizeLabel(trigger), normalizeLabel(outcome)).Inc()
	m.duration.WithLabelValues(normalizeLabel(trigger)).Observe(duration.Seconds())
}

// Promotion result labels.
const (
	PromotionMoved     = "moved"
	PromotionSkipped   = "skipped"
	PromotionRecovered = "recovered"
	PromotionFailed    = "failed"
)

// ObservePromotion records one media promotion attempt.
func (m *FinalizeMetrics) ObservePromotion(result string) {
	if m == nil || m.promotion == nil {
		return
	}
	m.promotion.WithLabelValues(normalizeLabel(result)).Inc()
}
