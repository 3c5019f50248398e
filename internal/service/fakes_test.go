package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-api/internal/domain"
	"github.com/spec-kit/helpdesk-api/internal/events"
	"github.com/spec-kit/helpdesk-api/internal/repository"
)

// memStore is an in-memory stand-in for the persistence gateway. It
// implements all repository interfaces against shared maps so transactional
// coupling (status change + audit row) can be asserted in one place.
type memStore struct {
	nextID   int64
	now      time.Time
	users    map[int64]*domain.User
	tickets  map[int64]*domain.Ticket
	comments map[int64]*domain.TicketComment
	logs     []domain.TicketStatusLog
}

func newMemStore() *memStore {
	return &memStore{
		now:      time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		users:    map[int64]*domain.User{},
		tickets:  map[int64]*domain.Ticket{},
		comments: map[int64]*domain.TicketComment{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

// tick returns a strictly increasing timestamp so ordering is deterministic.
func (m *memStore) tick() time.Time {
	m.now = m.now.Add(time.Minute)
	return m.now
}

func (m *memStore) addUser(name string, role domain.Role) *domain.User {
	user := &domain.User{
		ID:        m.id(),
		Name:      name,
		Email:     strings.ToLower(name) + "@example.com",
		Role:      role,
		CreatedAt: m.tick(),
	}
	m.users[user.ID] = user
	return user
}

// --- UserRepository ---

func (m *memStore) Create(ctx context.Context, user *domain.User) error {
	user.ID = m.id()
	user.CreatedAt = m.tick()
	m.users[user.ID] = user
	return nil
}

func (m *memStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (m *memStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memStore) List(ctx context.Context) ([]domain.User, error) {
	result := make([]domain.User, 0, len(m.users))
	for _, user := range m.users {
		result = append(result, *user)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// ticketRepo adapts memStore to repository.TicketRepository; separate
// receivers keep the method sets of the two Create/GetByID pairs apart.
type ticketRepo struct{ *memStore }

func (m ticketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	ticket.ID = m.id()
	ticket.CreatedAt = m.tick()
	copied := *ticket
	m.tickets[ticket.ID] = &copied
	return nil
}

func (m ticketRepo) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, ok := m.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (m ticketRepo) UpdateAssignee(ctx context.Context, ticketID int64, assigneeID *int64) error {
	ticket, ok := m.tickets[ticketID]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.AssignedToID = assigneeID
	return nil
}

func (m ticketRepo) TransitionStatus(ctx context.Context, entry *domain.TicketStatusLog) error {
	ticket, ok := m.tickets[entry.TicketID]
	if !ok {
		return pgx.ErrNoRows
	}
	if ticket.Status != entry.OldStatus {
		return repository.ErrStatusConflict
	}
	ticket.Status = entry.NewStatus
	entry.ID = m.id()
	entry.ChangedAt = m.tick()
	m.logs = append(m.logs, *entry)
	return nil
}

func (m ticketRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.tickets, id)
	for cid, comment := range m.comments {
		if comment.TicketID == id {
			delete(m.comments, cid)
		}
	}
	kept := m.logs[:0]
	for _, entry := range m.logs {
		if entry.TicketID != id {
			kept = append(kept, entry)
		}
	}
	m.logs = kept
	return nil
}

func (m ticketRepo) matches(ticket *domain.Ticket, filter repository.TicketFilter) bool {
	if filter.CreatedByID != nil && ticket.CreatedByID != *filter.CreatedByID {
		return false
	}
	if filter.AssignedToID != nil {
		if ticket.AssignedToID == nil || *ticket.AssignedToID != *filter.AssignedToID {
			return false
		}
	}
	if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
		return false
	}
	if len(filter.Priorities) > 0 && !containsPriority(filter.Priorities, ticket.Priority) {
		return false
	}
	if filter.SearchTerm != nil {
		term := strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
		if term != "" &&
			!strings.Contains(strings.ToLower(ticket.Title), term) &&
			!strings.Contains(strings.ToLower(ticket.Description), term) {
			return false
		}
	}
	return true
}

func (m ticketRepo) filtered(filter repository.TicketFilter) []domain.Ticket {
	var result []domain.Ticket
	for _, ticket := range m.tickets {
		if m.matches(ticket, filter) {
			result = append(result, *ticket)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result
}

func (m ticketRepo) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	result := m.filtered(filter)
	if filter.Offset >= len(result) {
		return nil, nil
	}
	result = result[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (m ticketRepo) CountWithFilter(ctx context.Context, filter repository.TicketFilter) (int64, error) {
	return int64(len(m.filtered(filter))), nil
}

// commentRepo adapts memStore to repository.CommentRepository.
type commentRepo struct{ *memStore }

func (m commentRepo) Create(ctx context.Context, comment *domain.TicketComment) error {
	comment.ID = m.id()
	comment.CreatedAt = m.tick()
	copied := *comment
	m.comments[comment.ID] = &copied
	return nil
}

func (m commentRepo) GetByID(ctx context.Context, id int64) (*domain.TicketComment, error) {
	comment, ok := m.comments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *comment
	return &copied, nil
}

func (m commentRepo) UpdateText(ctx context.Context, id int64, text string) error {
	comment, ok := m.comments[id]
	if !ok {
		return pgx.ErrNoRows
	}
	comment.Text = text
	return nil
}

func (m commentRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.comments[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.comments, id)
	return nil
}

func (m commentRepo) ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketComment, error) {
	var result []domain.TicketComment
	for _, comment := range m.comments {
		if comment.TicketID == ticketID {
			result = append(result, *comment)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// logRepo adapts memStore to repository.StatusLogRepository.
type logRepo struct{ *memStore }

func (m logRepo) ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketStatusLog, error) {
	var result []domain.TicketStatusLog
	for _, entry := range m.logs {
		if entry.TicketID == ticketID {
			result = append(result, entry)
		}
	}
	return result, nil
}

// captureDispatcher records published events for assertions.
type captureDispatcher struct {
	published []events.Event
}

func (d *captureDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *captureDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {}

func (d *captureDispatcher) byType(eventType events.EventType) []events.Event {
	var result []events.Event
	for _, event := range d.published {
		if event.Type == eventType {
			result = append(result, event)
		}
	}
	return result
}

func containsStatus(list []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, candidate := range list {
		if candidate == status {
			return true
		}
	}
	return false
}

func containsPriority(list []domain.TicketPriority, priority domain.TicketPriority) bool {
	for _, candidate := range list {
		if candidate == priority {
			return true
		}
	}
	return false
}

func newTicketService(store *memStore, dispatcher events.Dispatcher) *TicketService {
	return NewTicketService(TicketDependencies{
		TicketRepo:    ticketRepo{store},
		UserRepo:      store,
		StatusLogRepo: logRepo{store},
		Dispatcher:    dispatcher,
	})
}

func newCommentService(store *memStore, dispatcher events.Dispatcher) *CommentService {
	return NewCommentService(CommentDependencies{
		CommentRepo: commentRepo{store},
		TicketRepo:  ticketRepo{store},
		Dispatcher:  dispatcher,
	})
}
