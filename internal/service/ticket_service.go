package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-api/internal/domain"
	"github.com/spec-kit/helpdesk-api/internal/events"
	"github.com/spec-kit/helpdesk-api/internal/policy"
	"github.com/spec-kit/helpdesk-api/internal/repository"
	"github.com/spec-kit/helpdesk-api/pkg/util"
)

const (
	minTitleLength       = 5
	minDescriptionLength = 10

	defaultPageSize = 10
	maxPageSize     = 100
)

// TicketService owns the ticket lifecycle: creation, assignment, status
// transitions, deletion, and the audit trail. Every operation resolves
// existence before access: a missing entity is NotFound even when the
// principal would also have been denied.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	statusLogs repository.StatusLogRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo    repository.TicketRepository
	UserRepo      repository.UserRepository
	StatusLogRepo repository.StatusLogRepository
	Dispatcher    events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
}

// TicketListFilter describes listing filters on top of the policy scope.
type TicketListFilter struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	SearchTerm *string
	Page       int
	PageSize   int
}

// TicketPage is one page of a scoped ticket listing.
type TicketPage struct {
	Items      []domain.Ticket
	Total      int64
	Page       int
	PageSize   int
	TotalPages int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		statusLogs: deps.StatusLogRepo,
		dispatcher: deps.Dispatcher,
	}
}

// Create files a new ticket for the principal. SUPPORT cannot create
// tickets; MANAGER and USER can.
func (s *TicketService) Create(ctx context.Context, p policy.Principal, input TicketCreateInput) (*domain.Ticket, error) {
	if !policy.CanCreateTicket(p) {
		return nil, util.NewForbidden("role may not create tickets")
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	details := map[string]any{}
	if utf8.RuneCountInString(title) < minTitleLength {
		details["title"] = fmt.Sprintf("must be at least %d characters", minTitleLength)
	}
	if utf8.RuneCountInString(description) < minDescriptionLength {
		details["description"] = fmt.Sprintf("must be at least %d characters", minDescriptionLength)
	}
	if len(details) > 0 {
		return nil, util.NewValidationError("invalid ticket payload", details)
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: description,
		Status:      domain.TicketStatusOpen,
		Priority:    input.Priority,
		CreatedByID: p.UserID,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    actor(p),
		Payload: events.TicketCreatedPayload{
			Title:    ticket.Title,
			Priority: ticket.Priority,
		},
	})
	return ticket, nil
}

// List returns a page of tickets visible to the principal: the policy's
// view scope is applied first, then the caller's filters, newest first.
func (s *TicketService) List(ctx context.Context, p policy.Principal, filter TicketListFilter) (*TicketPage, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	repoFilter := repository.TicketFilter{
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
		SearchTerm: filter.SearchTerm,
		Limit:      pageSize,
		Offset:     (page - 1) * pageSize,
	}
	scope := policy.ScopeForList(p)
	repoFilter.CreatedByID = scope.CreatedByID
	repoFilter.AssignedToID = scope.AssignedToID

	total, err := s.tickets.CountWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	items, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Ticket{}
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &TicketPage{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Get fetches a single ticket within the principal's view scope.
func (s *TicketService) Get(ctx context.Context, p policy.Principal, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.AllowsTicket(p, policy.ActionViewTicket, ticket) {
		return nil, util.NewForbidden("ticket is outside your scope")
	}
	return ticket, nil
}

// Assign sets the ticket's assignee. The target must exist and hold a
// staff role; reassigning to the current assignee is a no-op success.
func (s *TicketService) Assign(ctx context.Context, p policy.Principal, ticketID, targetUserID int64) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.AllowsTicket(p, policy.ActionAssignTicket, ticket) {
		return nil, util.NewForbidden("role may not assign tickets")
	}

	target, err := s.users.GetByID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("user", map[string]any{"user_id": targetUserID})
		}
		return nil, err
	}
	if !target.Role.Assignable() {
		return nil, util.NewInvalidAssignment(
			"cannot assign ticket to a USER role, only MANAGER or SUPPORT allowed",
			map[string]any{"user_id": targetUserID})
	}

	if ticket.AssignedToID != nil && *ticket.AssignedToID == targetUserID {
		return ticket, nil
	}

	if err := s.tickets.UpdateAssignee(ctx, ticket.ID, &targetUserID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, err
	}
	ticket.AssignedToID = &targetUserID

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Actor:    actor(p),
		Payload:  events.TicketAssignedPayload{AssigneeID: targetUserID},
	})
	return ticket, nil
}

// UpdateStatus advances the ticket one step along the lifecycle and appends
// the audit entry atomically with the change. A concurrent transition
// surfaces as a conflict for the caller to retry.
func (s *TicketService) UpdateStatus(ctx context.Context, p policy.Principal, ticketID int64, newStatus domain.TicketStatus) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.AllowsTicket(p, policy.ActionChangeStatus, ticket) {
		return nil, util.NewForbidden("role may not change ticket status")
	}
	if !ticket.Status.CanTransitionTo(newStatus) {
		return nil, util.NewInvalidTransition(
			fmt.Sprintf("invalid status transition %s -> %s, only forward steps allowed: OPEN->IN_PROGRESS->RESOLVED->CLOSED", ticket.Status, newStatus),
			map[string]any{"current": ticket.Status, "requested": newStatus})
	}

	entry := &domain.TicketStatusLog{
		TicketID:    ticket.ID,
		OldStatus:   ticket.Status,
		NewStatus:   newStatus,
		ChangedByID: p.UserID,
	}
	if err := s.tickets.TransitionStatus(ctx, entry); err != nil {
		switch {
		case errors.Is(err, repository.ErrStatusConflict):
			return nil, util.NewConflict("ticket status changed concurrently, retry with current state", nil)
		case errors.Is(err, pgx.ErrNoRows):
			return nil, util.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		default:
			return nil, err
		}
	}
	ticket.Status = newStatus

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    actor(p),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: entry.OldStatus,
			NewStatus: entry.NewStatus,
		},
	})
	return ticket, nil
}

// Delete removes a ticket. Comments and status logs go with it through the
// persistence layer's cascade; this service does not re-implement it.
func (s *TicketService) Delete(ctx context.Context, p policy.Principal, ticketID int64) error {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if !policy.AllowsTicket(p, policy.ActionDeleteTicket, ticket) {
		return util.NewForbidden("only MANAGER may delete tickets")
	}
	if err := s.tickets.Delete(ctx, ticket.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return util.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: ticket.ID,
		Actor:    actor(p),
	})
	return nil
}

// StatusHistory returns the audit trail for a ticket within view scope.
func (s *TicketService) StatusHistory(ctx context.Context, p policy.Principal, ticketID int64) ([]domain.TicketStatusLog, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.AllowsTicket(p, policy.ActionViewTicket, ticket) {
		return nil, util.NewForbidden("ticket is outside your scope")
	}
	entries, err := s.statusLogs.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.TicketStatusLog{}
	}
	return entries, nil
}

func (s *TicketService) loadTicket(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func actor(p policy.Principal) events.Actor {
	return events.Actor{UserID: p.UserID, Role: p.Role}
}
