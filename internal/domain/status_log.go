package domain

import "time"

// TicketStatusLog is an append-only audit record written in the same
// transaction as the status change it captures. Rows are never mutated
// or deleted while the ticket exists.
type TicketStatusLog struct {
	ID          int64
	TicketID    int64
	OldStatus   TicketStatus
	NewStatus   TicketStatus
	ChangedByID int64
	ChangedAt   time.Time
}
