package ticketing

import (
	"errors"

	"github.com/continu8/backoffice/internal/domain"
)

var (
	// ErrStatusForbidden is returned when the actor may not change status.
	ErrStatusForbidden = errors.New("only staff can change ticket status")
	// ErrUnknownStatus is returned for a status outside the ticket enum.
	ErrUnknownStatus = errors.New("unknown ticket status")
)

// Statuses lists the ticket statuses in their usual order of progress.
var Statuses = []domain.TicketStatus{
	domain.TicketStatusOpen,
	domain.TicketStatusInProgress,
	domain.TicketStatusWaitingClient,
	domain.TicketStatusResolved,
	domain.TicketStatusClosed,
}

// ValidStatus reports whether s is a ticket status.
func ValidStatus(s domain.TicketStatus) bool {
	for _, candidate := range Statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanSetStatus reports whether role may write a ticket status. Any staff
// role may; clients never may.
func CanSetStatus(role domain.Role) bool {
	return role.IsStaff()
}

// CheckTransition validates a status change. Any status may move to any
// other status, including skipping intermediate ones; only the actor's role
// is checked. The current status is accepted for symmetry with callers but
// does not restrict the move.
func CheckTransition(role domain.Role, _ domain.TicketStatus, next domain.TicketStatus) error {
	if !ValidStatus(next) {
		return ErrUnknownStatus
	}
	if !CanSetStatus(role) {
		return ErrStatusForbidden
	}
	return nil
}
