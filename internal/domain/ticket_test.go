package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanTransitionTo(t *testing.T) {
	statuses := []TicketStatus{TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed}

	allowed := map[TicketStatus]TicketStatus{
		TicketStatusOpen:       TicketStatusInProgress,
		TicketStatusInProgress: TicketStatusResolved,
		TicketStatusResolved:   TicketStatusClosed,
	}
	for _, from := range statuses {
		for _, to := range statuses {
			want := allowed[from] == to
			require.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestTerminal(t *testing.T) {
	require.False(t, TicketStatusOpen.Terminal())
	require.False(t, TicketStatusInProgress.Terminal())
	require.False(t, TicketStatusResolved.Terminal())
	require.True(t, TicketStatusClosed.Terminal())
}

func TestParseTicketStatus(t *testing.T) {
	status, ok := ParseTicketStatus("IN_PROGRESS")
	require.True(t, ok)
	require.Equal(t, TicketStatusInProgress, status)

	_, ok = ParseTicketStatus("in_progress")
	require.False(t, ok)
	_, ok = ParseTicketStatus("REOPENED")
	require.False(t, ok)
}

func TestParseTicketPriority(t *testing.T) {
	priority, ok := ParseTicketPriority("URGENT")
	require.True(t, ok)
	require.Equal(t, TicketPriorityUrgent, priority)

	_, ok = ParseTicketPriority("CRITICAL")
	require.False(t, ok)
}

func TestRoleAssignable(t *testing.T) {
	require.True(t, RoleManager.Assignable())
	require.True(t, RoleSupport.Assignable())
	require.False(t, RoleUser.Assignable())
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("SUPPORT")
	require.True(t, ok)
	require.Equal(t, RoleSupport, role)

	_, ok = ParseRole("ADMIN")
	require.False(t, ok)
	_, ok = ParseRole("support")
	require.False(t, ok)
}
