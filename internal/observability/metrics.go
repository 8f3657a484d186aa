package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/continu8/backoffice/internal/domain"
)

// Metrics holds the service's Prometheus collectors. All methods are safe
// on a nil receiver.
type Metrics struct {
	requests       *prometheus.CounterVec
	latency        *prometheus.HistogramVec
	errors         *prometheus.CounterVec
	ticketsCreated *prometheus.CounterVec
	leadScores     prometheus.Histogram
	leadTiers      *prometheus.CounterVec
	notifications  *prometheus.CounterVec
}

// NewMetrics registers collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "backoffice_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "backoffice_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "backoffice_http_errors_total",
			Help: "Error responses by route and error code.",
		}, []string{"route", "method", "code"}),
		ticketsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "backoffice_tickets_created_total",
			Help: "Tickets created by priority.",
		}, []string{"priority"}),
		leadScores: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "backoffice_lead_score",
			Help:    "Scores of submitted intake forms.",
			Buckets: []float64{20, 40, 60, 80, 100},
		}),
		leadTiers: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "backoffice_leads_scored_total",
			Help: "Scored leads by tier.",
		}, []string{"tier"}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "backoffice_notifications_total",
			Help: "Notification deliveries by event, channel and result.",
		}, []string{"event", "channel", "result"}),
	}
}

// RecordRequest counts a finished request.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError counts an error response.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(route, method, code).Inc()
}

// TicketCreated counts a new ticket.
func (m *Metrics) TicketCreated(priority domain.TicketPriority) {
	if m == nil {
		return
	}
	m.ticketsCreated.WithLabelValues(string(priority)).Inc()
}

// LeadScored records a qualification result.
func (m *Metrics) LeadScored(score int, tier domain.LeadTier) {
	if m == nil {
		return
	}
	m.leadScores.Observe(float64(score))
	m.leadTiers.WithLabelValues(string(tier)).Inc()
}

// NotificationSent records one delivery attempt.
func (m *Metrics) NotificationSent(event, channel string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.notifications.WithLabelValues(event, channel, result).Inc()
}
