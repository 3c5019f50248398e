package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// nextStatus is the full transition table of the lifecycle state machine:
// a strict linear order with no skip edges and no back edges. CLOSED is
// terminal and has no entry.
var nextStatus = map[TicketStatus]TicketStatus{
	TicketStatusOpen:       TicketStatusInProgress,
	TicketStatusInProgress: TicketStatusResolved,
	TicketStatusResolved:   TicketStatusClosed,
}

// CanTransitionTo reports whether the single-step forward rule permits
// moving from the current status to next.
func (s TicketStatus) CanTransitionTo(next TicketStatus) bool {
	allowed, ok := nextStatus[s]
	return ok && allowed == next
}

// Terminal reports whether no transition leaves this status.
func (s TicketStatus) Terminal() bool {
	_, ok := nextStatus[s]
	return !ok
}

// ParseTicketStatus validates a status string.
func ParseTicketStatus(value string) (TicketStatus, bool) {
	switch TicketStatus(value) {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return TicketStatus(value), true
	}
	return "", false
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// ParseTicketPriority validates a priority string.
func ParseTicketPriority(value string) (TicketPriority, bool) {
	switch TicketPriority(value) {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return TicketPriority(value), true
	}
	return "", false
}

// Ticket is the aggregate for support requests. CreatedByID is immutable
// after creation; AssignedToID, when set, must reference a staff role.
type Ticket struct {
	ID           int64
	Title        string
	Description  string
	Status       TicketStatus
	Priority     TicketPriority
	CreatedByID  int64
	AssignedToID *int64
	CreatedAt    time.Time
}
