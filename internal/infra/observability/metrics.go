package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/savings-circle/backend/internal/domain/entity"
	domainerror "github.com/savings-circle/backend/internal/domain/error"
)

// LedgerPostings counts balance postings by kind and outcome.
var LedgerPostings = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "circle",
	Subsystem: "ledger",
	Name:      "postings_total",
	Help:      "Total ledger postings by kind (contribution, rejection, payout) and outcome.",
}, []string{"kind", "outcome"})

// UnitOfWorkRetries counts re-runs of a unit of work after a write conflict.
var UnitOfWorkRetries = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "circle",
	Subsystem: "store",
	Name:      "tx_retries_total",
	Help:      "Total unit-of-work attempts re-run after a write conflict.",
})

// UnitOfWorkContention counts units of work that gave up after the retry budget.
var UnitOfWorkContention = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "circle",
	Subsystem: "store",
	Name:      "tx_contention_total",
	Help:      "Total units of work abandoned after exhausting their attempts.",
})

// EventsEmitted counts events accepted by the dispatcher, by type.
var EventsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "circle",
	Subsystem: "events",
	Name:      "emitted_total",
	Help:      "Total events accepted for dispatch by type.",
}, []string{"type"})

// EventsDropped counts events discarded because the dispatch buffer was full.
var EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "circle",
	Subsystem: "events",
	Name:      "dropped_total",
	Help:      "Total events dropped because the dispatch buffer was full.",
})

// EventHandlerFailures counts handler errors by handler name.
var EventHandlerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "circle",
	Subsystem: "events",
	Name:      "handler_failures_total",
	Help:      "Total event handler failures by handler.",
}, []string{"handler"})

// SubscriptionsExpired counts memberships flipped to expired by the sweep.
var SubscriptionsExpired = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "circle",
	Subsystem: "subscription",
	Name:      "expired_total",
	Help:      "Total subscriptions marked expired by the sweep.",
})

// HTTPRequestDuration tracks request latency by route and status.
var HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "circle",
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency by method, route and status.",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "route", "status"})

// StoreObserver reports unit-of-work retries to the store counters.
type StoreObserver struct{}

// ObserveRetry counts one retried attempt.
func (StoreObserver) ObserveRetry() {
	UnitOfWorkRetries.Inc()
}

// ObserveContention counts one abandoned unit of work.
func (StoreObserver) ObserveContention() {
	UnitOfWorkContention.Inc()
}

// PostingMetrics records ledger posting outcomes.
type PostingMetrics struct{}

// RecordPosting counts one posting. The outcome is "ok" or the error kind.
func (PostingMetrics) RecordPosting(kind string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = domainerror.KindOf(err).String()
	}
	LedgerPostings.WithLabelValues(kind, outcome).Inc()
}

// ExpiryMetrics records subscription sweep results.
type ExpiryMetrics struct{}

// ObserveExpired counts memberships flipped to expired.
func (ExpiryMetrics) ObserveExpired(n int) {
	SubscriptionsExpired.Add(float64(n))
}

// EventMetrics records event dispatch outcomes.
type EventMetrics struct{}

// ObserveEmitted counts one accepted event.
func (EventMetrics) ObserveEmitted(eventType entity.EventType) {
	EventsEmitted.WithLabelValues(string(eventType)).Inc()
}

// ObserveDropped counts one dropped event.
func (EventMetrics) ObserveDropped() {
	EventsDropped.Inc()
}

// ObserveHandlerFailure counts one failed delivery.
func (EventMetrics) ObserveHandlerFailure(handler string) {
	EventHandlerFailures.WithLabelValues(handler).Inc()
}

// RateLimited counts requests refused by the rate limiter.
var RateLimited = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "circle",
	Subsystem: "http",
	Name:      "rate_limited_total",
	Help:      "Total requests refused by the rate limiter.",
})

// HTTPMetrics records request latency and throttling.
type HTTPMetrics struct{}

// ObserveRequest records the latency of one served request.
func (HTTPMetrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// ObserveRateLimited counts one refused request.
func (HTTPMetrics) ObserveRateLimited() {
	RateLimited.Inc()
}
