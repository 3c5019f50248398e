package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-api/internal/domain"
	"github.com/spec-kit/helpdesk-api/internal/events"
	"github.com/spec-kit/helpdesk-api/pkg/util"
)

func TestAddComment(t *testing.T) {
	store := newMemStore()
	dispatcher := &captureDispatcher{}
	ticketSvc := newTicketService(store, nil)
	svc := newCommentService(store, dispatcher)
	manager := store.addUser("mara", domain.RoleManager)
	support := store.addUser("sam", domain.RoleSupport)
	alice := store.addUser("alice", domain.RoleUser)
	bob := store.addUser("bob", domain.RoleUser)

	ticket, err := ticketSvc.Create(context.Background(), principalOf(alice), TicketCreateInput{
		Title:       "Printer broken",
		Description: "Office printer jams on every print job",
	})
	require.NoError(t, err)

	t.Run("ticket not found", func(t *testing.T) {
		_, err := svc.Add(context.Background(), principalOf(alice), 9999, "hello")
		require.True(t, util.IsCode(err, "NOT_FOUND"))
	})

	t.Run("unassigned support denied", func(t *testing.T) {
		_, err := svc.Add(context.Background(), principalOf(support), ticket.ID, "looking into this")
		require.True(t, util.IsCode(err, "FORBIDDEN"))
		require.Empty(t, store.comments, "denied comment must not persist")
	})

	t.Run("unrelated user denied", func(t *testing.T) {
		_, err := svc.Add(context.Background(), principalOf(bob), ticket.ID, "me too")
		require.True(t, util.IsCode(err, "FORBIDDEN"))
	})

	t.Run("empty text rejected", func(t *testing.T) {
		_, err := svc.Add(context.Background(), principalOf(alice), ticket.ID, "   \t ")
		require.True(t, util.IsCode(err, "VALIDATION_FAILED"))
	})

	t.Run("creator comments", func(t *testing.T) {
		comment, err := svc.Add(context.Background(), principalOf(alice), ticket.ID, "  any update?  ")
		require.NoError(t, err)
		require.Equal(t, "any update?", comment.Text)
		require.Equal(t, alice.ID, comment.AuthorID)
		require.Equal(t, ticket.ID, comment.TicketID)
		require.Len(t, dispatcher.byType(events.EventCommentAdded), 1)
	})

	t.Run("assigned support comments", func(t *testing.T) {
		_, err := ticketSvc.Assign(context.Background(), principalOf(manager), ticket.ID, support.ID)
		require.NoError(t, err)
		_, err = svc.Add(context.Background(), principalOf(support), ticket.ID, "taking a look")
		require.NoError(t, err)
	})

	t.Run("manager comments anywhere", func(t *testing.T) {
		_, err := svc.Add(context.Background(), principalOf(manager), ticket.ID, "escalating")
		require.NoError(t, err)
	})
}

func TestListComments(t *testing.T) {
	store := newMemStore()
	ticketSvc := newTicketService(store, nil)
	svc := newCommentService(store, nil)
	alice := store.addUser("alice", domain.RoleUser)
	bob := store.addUser("bob", domain.RoleUser)

	ticket, err := ticketSvc.Create(context.Background(), principalOf(alice), TicketCreateInput{
		Title:       "Printer broken",
		Description: "Office printer jams on every print job",
	})
	require.NoError(t, err)

	for _, text := range []string{"first", "second", "third"} {
		_, err := svc.Add(context.Background(), principalOf(alice), ticket.ID, text)
		require.NoError(t, err)
	}

	comments, err := svc.List(context.Background(), principalOf(alice), ticket.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	require.Equal(t, "first", comments[0].Text)
	require.Equal(t, "third", comments[2].Text)

	_, err = svc.List(context.Background(), principalOf(bob), ticket.ID)
	require.True(t, util.IsCode(err, "FORBIDDEN"))
}

func TestEditComment(t *testing.T) {
	store := newMemStore()
	ticketSvc := newTicketService(store, nil)
	svc := newCommentService(store, nil)
	manager := store.addUser("mara", domain.RoleManager)
	alice := store.addUser("alice", domain.RoleUser)
	bob := store.addUser("bob", domain.RoleUser)

	ticket, err := ticketSvc.Create(context.Background(), principalOf(alice), TicketCreateInput{
		Title:       "Printer broken",
		Description: "Office printer jams on every print job",
	})
	require.NoError(t, err)
	comment, err := svc.Add(context.Background(), principalOf(alice), ticket.ID, "original text")
	require.NoError(t, err)

	t.Run("author edits", func(t *testing.T) {
		updated, err := svc.Edit(context.Background(), principalOf(alice), comment.ID, "revised text")
		require.NoError(t, err)
		require.Equal(t, "revised text", updated.Text)
		require.Equal(t, alice.ID, updated.AuthorID, "authorship is immutable")
	})

	t.Run("non-author denied", func(t *testing.T) {
		_, err := svc.Edit(context.Background(), principalOf(bob), comment.ID, "hijacked")
		require.True(t, util.IsCode(err, "FORBIDDEN"))
		require.Equal(t, "revised text", store.comments[comment.ID].Text)
	})

	t.Run("manager overrides", func(t *testing.T) {
		_, err := svc.Edit(context.Background(), principalOf(manager), comment.ID, "moderated")
		require.NoError(t, err)
	})

	t.Run("empty replacement rejected", func(t *testing.T) {
		_, err := svc.Edit(context.Background(), principalOf(alice), comment.ID, "  ")
		require.True(t, util.IsCode(err, "VALIDATION_FAILED"))
	})

	t.Run("missing comment", func(t *testing.T) {
		_, err := svc.Edit(context.Background(), principalOf(alice), 9999, "whatever")
		require.True(t, util.IsCode(err, "NOT_FOUND"))
	})
}

func TestDeleteComment(t *testing.T) {
	store := newMemStore()
	ticketSvc := newTicketService(store, nil)
	svc := newCommentService(store, nil)
	manager := store.addUser("mara", domain.RoleManager)
	alice := store.addUser("alice", domain.RoleUser)
	bob := store.addUser("bob", domain.RoleUser)

	ticket, err := ticketSvc.Create(context.Background(), principalOf(alice), TicketCreateInput{
		Title:       "Printer broken",
		Description: "Office printer jams on every print job",
	})
	require.NoError(t, err)

	mine, err := svc.Add(context.Background(), principalOf(alice), ticket.ID, "please fix")
	require.NoError(t, err)
	other, err := svc.Add(context.Background(), principalOf(manager), ticket.ID, "on it")
	require.NoError(t, err)

	t.Run("non-author denied", func(t *testing.T) {
		err := svc.Delete(context.Background(), principalOf(bob), mine.ID)
		require.True(t, util.IsCode(err, "FORBIDDEN"))
	})

	t.Run("author deletes own", func(t *testing.T) {
		require.NoError(t, svc.Delete(context.Background(), principalOf(alice), mine.ID))
		_, ok := store.comments[mine.ID]
		require.False(t, ok)
	})

	t.Run("manager deletes any", func(t *testing.T) {
		require.NoError(t, svc.Delete(context.Background(), principalOf(manager), other.ID))
	})

	t.Run("missing comment", func(t *testing.T) {
		err := svc.Delete(context.Background(), principalOf(manager), other.ID)
		require.True(t, util.IsCode(err, "NOT_FOUND"))
	})
}
