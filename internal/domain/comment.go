package domain

import "time"

// TicketComment is a discussion entry scoped to a parent ticket. AuthorID
// and TicketID are immutable; only Text may change after creation.
type TicketComment struct {
	ID        int64
	TicketID  int64
	AuthorID  int64
	Text      string
	CreatedAt time.Time
}
