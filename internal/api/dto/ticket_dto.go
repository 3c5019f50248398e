package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-api/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	UserID int64 `json:"user_id"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// TicketResponse describes a ticket.
type TicketResponse struct {
	ID           int64                 `json:"id"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	Status       domain.TicketStatus   `json:"status"`
	Priority     domain.TicketPriority `json:"priority"`
	CreatedByID  int64                 `json:"created_by_id"`
	AssignedToID *int64                `json:"assigned_to_id"`
	CreatedAt    time.Time             `json:"created_at"`
}

// PageMeta carries pagination bookkeeping for list responses.
type PageMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// TicketListResponse is a page of tickets.
type TicketListResponse struct {
	Data []TicketResponse `json:"data"`
	Meta PageMeta         `json:"meta"`
}

// StatusLogResponse describes one audit trail entry.
type StatusLogResponse struct {
	ID          int64               `json:"id"`
	TicketID    int64               `json:"ticket_id"`
	OldStatus   domain.TicketStatus `json:"old_status"`
	NewStatus   domain.TicketStatus `json:"new_status"`
	ChangedByID int64               `json:"changed_by_id"`
	ChangedAt   time.Time           `json:"changed_at"`
}
