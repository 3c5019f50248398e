package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-api/internal/domain"
	"github.com/spec-kit/helpdesk-api/internal/events"
	"github.com/spec-kit/helpdesk-api/internal/policy"
	"github.com/spec-kit/helpdesk-api/internal/repository"
	"github.com/spec-kit/helpdesk-api/pkg/util"
)

// CommentService owns the comment lifecycle. Add and list authorize against
// the parent ticket's scope rule; edit and delete authorize against
// authorship. The two predicates are distinct on purpose.
type CommentService struct {
	comments   repository.CommentRepository
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
}

// CommentDependencies bundles repositories for comment service.
type CommentDependencies struct {
	CommentRepo repository.CommentRepository
	TicketRepo  repository.TicketRepository
	Dispatcher  events.Dispatcher
}

// NewCommentService constructs the service.
func NewCommentService(deps CommentDependencies) *CommentService {
	return &CommentService{
		comments:   deps.CommentRepo,
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
	}
}

// Add appends a comment to a ticket the principal may comment on.
func (s *CommentService) Add(ctx context.Context, p policy.Principal, ticketID int64, text string) (*domain.TicketComment, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.AllowsTicket(p, policy.ActionComment, ticket) {
		return nil, util.NewForbidden("ticket is outside your comment scope")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, util.NewValidationError("comment text required", nil)
	}

	comment := &domain.TicketComment{
		TicketID: ticket.ID,
		AuthorID: p.UserID,
		Text:     text,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventCommentAdded,
			TicketID:  ticket.ID,
			Actor:     actor(p),
			Timestamp: time.Now(),
			Payload: events.CommentAddedPayload{
				CommentID: comment.ID,
				AuthorID:  comment.AuthorID,
			},
		})
	}
	return comment, nil
}

// List returns a ticket's comments in chronological order, gated by the
// same scope rule as Add.
func (s *CommentService) List(ctx context.Context, p policy.Principal, ticketID int64) ([]domain.TicketComment, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.AllowsTicket(p, policy.ActionComment, ticket) {
		return nil, util.NewForbidden("ticket is outside your comment scope")
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []domain.TicketComment{}
	}
	return comments, nil
}

// Edit changes a comment's text. Author and ticket linkage are immutable.
func (s *CommentService) Edit(ctx context.Context, p policy.Principal, commentID int64, text string) (*domain.TicketComment, error) {
	comment, err := s.loadComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if !policy.CanModerateComment(p, comment) {
		return nil, util.NewForbidden("you can only edit your own comments")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, util.NewValidationError("comment text required", nil)
	}

	if err := s.comments.UpdateText(ctx, comment.ID, text); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("comment", map[string]any{"comment_id": commentID})
		}
		return nil, err
	}
	comment.Text = text
	return comment, nil
}

// Delete hard-deletes a comment under the same authorization as Edit.
func (s *CommentService) Delete(ctx context.Context, p policy.Principal, commentID int64) error {
	comment, err := s.loadComment(ctx, commentID)
	if err != nil {
		return err
	}
	if !policy.CanModerateComment(p, comment) {
		return util.NewForbidden("you can only delete your own comments")
	}
	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return util.NewNotFound("comment", map[string]any{"comment_id": commentID})
		}
		return err
	}
	return nil
}

func (s *CommentService) loadTicket(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, err
	}
	return ticket, nil
}

func (s *CommentService) loadComment(ctx context.Context, commentID int64) (*domain.TicketComment, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("comment", map[string]any{"comment_id": commentID})
		}
		return nil, err
	}
	return comment, nil
}
