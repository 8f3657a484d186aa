package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/continu8/backoffice/internal/domain"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordRequest("/tickets/:id", "GET", 200, 15*time.Millisecond)
	m.RecordRequest("/tickets/:id", "GET", 200, 5*time.Millisecond)
	m.TicketCreated(domain.TicketPriorityUrgent)
	m.LeadScored(95, domain.LeadTierHot)
	m.NotificationSent("ticket.created", "email", nil)
	m.NotificationSent("ticket.created", "email", errors.New("refused"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/tickets/:id", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ticketsCreated.WithLabelValues("urgent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.leadTiers.WithLabelValues("hot")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("ticket.created", "email", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("ticket.created", "email", "error")))
}

func TestMetrics_NilReceiverIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "NOT_FOUND")
		m.TicketCreated(domain.TicketPriorityLow)
		m.LeadScored(10, domain.LeadTierCold)
		m.NotificationSent("x", "slack", nil)
	})
}
