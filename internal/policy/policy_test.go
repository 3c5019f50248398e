package policy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-api/internal/domain"
)

func TestCanCreateTicket(t *testing.T) {
	require.True(t, CanCreateTicket(Principal{UserID: 1, Role: domain.RoleManager}))
	require.True(t, CanCreateTicket(Principal{UserID: 2, Role: domain.RoleUser}))
	require.False(t, CanCreateTicket(Principal{UserID: 3, Role: domain.RoleSupport}))
}

func TestAllowsTicketMatrix(t *testing.T) {
	const (
		creatorID  = int64(10)
		assigneeID = int64(20)
		otherID    = int64(30)
	)
	assignee := assigneeID
	ticket := &domain.Ticket{
		ID:           1,
		Status:       domain.TicketStatusOpen,
		CreatedByID:  creatorID,
		AssignedToID: &assignee,
	}

	tests := []struct {
		name   string
		p      Principal
		action TicketAction
		want   bool
	}{
		{"manager views any", Principal{otherID, domain.RoleManager}, ActionViewTicket, true},
		{"assigned support views", Principal{assigneeID, domain.RoleSupport}, ActionViewTicket, true},
		{"unassigned support denied view", Principal{otherID, domain.RoleSupport}, ActionViewTicket, false},
		{"creator views own", Principal{creatorID, domain.RoleUser}, ActionViewTicket, true},
		{"other user denied view", Principal{otherID, domain.RoleUser}, ActionViewTicket, false},

		{"manager assigns", Principal{otherID, domain.RoleManager}, ActionAssignTicket, true},
		{"support assigns", Principal{otherID, domain.RoleSupport}, ActionAssignTicket, true},
		{"user never assigns", Principal{creatorID, domain.RoleUser}, ActionAssignTicket, false},

		{"manager changes status", Principal{otherID, domain.RoleManager}, ActionChangeStatus, true},
		{"support changes status", Principal{otherID, domain.RoleSupport}, ActionChangeStatus, true},
		{"creator never changes status", Principal{creatorID, domain.RoleUser}, ActionChangeStatus, false},

		{"manager deletes", Principal{otherID, domain.RoleManager}, ActionDeleteTicket, true},
		{"support never deletes", Principal{assigneeID, domain.RoleSupport}, ActionDeleteTicket, false},
		{"user never deletes", Principal{creatorID, domain.RoleUser}, ActionDeleteTicket, false},

		{"manager comments", Principal{otherID, domain.RoleManager}, ActionComment, true},
		{"assigned support comments", Principal{assigneeID, domain.RoleSupport}, ActionComment, true},
		{"unassigned support denied comment", Principal{otherID, domain.RoleSupport}, ActionComment, false},
		{"creator comments", Principal{creatorID, domain.RoleUser}, ActionComment, true},
		{"other user denied comment", Principal{otherID, domain.RoleUser}, ActionComment, false},

		{"unknown action denied", Principal{otherID, domain.RoleManager}, TicketAction("export"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, AllowsTicket(tt.p, tt.action, ticket))
		})
	}
}

func TestAllowsTicketUnassigned(t *testing.T) {
	ticket := &domain.Ticket{ID: 2, Status: domain.TicketStatusOpen, CreatedByID: 10}

	require.False(t, AllowsTicket(Principal{20, domain.RoleSupport}, ActionViewTicket, ticket))
	require.False(t, AllowsTicket(Principal{20, domain.RoleSupport}, ActionComment, ticket))
	require.True(t, AllowsTicket(Principal{99, domain.RoleManager}, ActionViewTicket, ticket))
}

func TestCanModerateComment(t *testing.T) {
	comment := &domain.TicketComment{ID: 1, TicketID: 1, AuthorID: 10}

	require.True(t, CanModerateComment(Principal{10, domain.RoleUser}, comment))
	require.False(t, CanModerateComment(Principal{11, domain.RoleUser}, comment))
	require.True(t, CanModerateComment(Principal{99, domain.RoleManager}, comment))
	require.False(t, CanModerateComment(Principal{12, domain.RoleSupport}, comment))
}

func TestScopeForList(t *testing.T) {
	manager := ScopeForList(Principal{1, domain.RoleManager})
	require.True(t, manager.All)
	require.Nil(t, manager.CreatedByID)
	require.Nil(t, manager.AssignedToID)

	support := ScopeForList(Principal{2, domain.RoleSupport})
	require.False(t, support.All)
	require.NotNil(t, support.AssignedToID)
	require.EqualValues(t, 2, *support.AssignedToID)

	user := ScopeForList(Principal{3, domain.RoleUser})
	require.False(t, user.All)
	require.NotNil(t, user.CreatedByID)
	require.EqualValues(t, 3, *user.CreatedByID)
}
