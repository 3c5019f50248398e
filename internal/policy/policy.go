// Package policy holds the pure access decisions for the ticket core.
// Every lifecycle operation consults the same declarative table instead of
// branching on roles at each call site. Functions here take already-loaded
// entities, so existence (NotFound) is always decided by the caller before
// scope (Forbidden) is decided here.
package policy

import "github.com/spec-kit/helpdesk-api/internal/domain"

// Principal is the authenticated actor for a request, as supplied by the
// identity layer. The core trusts it as already authenticated.
type Principal struct {
	UserID int64
	Role   domain.Role
}

// TicketAction enumerates the per-ticket operations the policy governs.
type TicketAction string

const (
	ActionViewTicket   TicketAction = "view_ticket"
	ActionAssignTicket TicketAction = "assign_ticket"
	ActionChangeStatus TicketAction = "change_status"
	ActionDeleteTicket TicketAction = "delete_ticket"
	ActionComment      TicketAction = "comment"
)

// relationship is the scope predicate a role must satisfy for an action.
type relationship int

const (
	relDenied   relationship = iota // role may never perform the action
	relAny                          // no relationship required
	relCreator                      // principal must be the ticket creator
	relAssignee                     // principal must be the ticket assignee
)

// ticketRules is the role x action table. Missing entries deny.
var ticketRules = map[TicketAction]map[domain.Role]relationship{
	ActionViewTicket: {
		domain.RoleManager: relAny,
		domain.RoleSupport: relAssignee,
		domain.RoleUser:    relCreator,
	},
	ActionAssignTicket: {
		domain.RoleManager: relAny,
		domain.RoleSupport: relAny,
	},
	ActionChangeStatus: {
		domain.RoleManager: relAny,
		domain.RoleSupport: relAny,
	},
	ActionDeleteTicket: {
		domain.RoleManager: relAny,
	},
	ActionComment: {
		domain.RoleManager: relAny,
		domain.RoleSupport: relAssignee,
		domain.RoleUser:    relCreator,
	},
}

// CanCreateTicket reports whether the role may file new tickets. SUPPORT
// works tickets but never opens them.
func CanCreateTicket(p Principal) bool {
	return p.Role == domain.RoleManager || p.Role == domain.RoleUser
}

// AllowsTicket decides a ticket action for an already-loaded ticket.
func AllowsTicket(p Principal, action TicketAction, ticket *domain.Ticket) bool {
	rule, ok := ticketRules[action][p.Role]
	if !ok {
		return false
	}
	switch rule {
	case relAny:
		return true
	case relCreator:
		return ticket.CreatedByID == p.UserID
	case relAssignee:
		return ticket.AssignedToID != nil && *ticket.AssignedToID == p.UserID
	default:
		return false
	}
}

// CanModerateComment decides comment edit/delete: the author always may,
// and MANAGER may override for any comment. This predicate is authorship
// based and deliberately independent of the parent ticket's scope rule.
func CanModerateComment(p Principal, comment *domain.TicketComment) bool {
	return p.Role == domain.RoleManager || comment.AuthorID == p.UserID
}

// ListScope is the view filter a principal's role imposes on ticket lists.
type ListScope struct {
	// All grants unrestricted listing (MANAGER).
	All bool
	// CreatedByID restricts to tickets the principal filed (USER).
	CreatedByID *int64
	// AssignedToID restricts to tickets assigned to the principal (SUPPORT).
	AssignedToID *int64
}

// ScopeForList returns the listing restriction for the principal.
func ScopeForList(p Principal) ListScope {
	switch p.Role {
	case domain.RoleManager:
		return ListScope{All: true}
	case domain.RoleSupport:
		id := p.UserID
		return ListScope{AssignedToID: &id}
	default:
		id := p.UserID
		return ListScope{CreatedByID: &id}
	}
}
