package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-api/internal/auth"
	"github.com/spec-kit/helpdesk-api/internal/domain"
	"github.com/spec-kit/helpdesk-api/pkg/util"
)

const testBcryptCost = 4

func TestCreateUser(t *testing.T) {
	store := newMemStore()
	svc := NewUserService(store, testBcryptCost)
	manager := store.addUser("mara", domain.RoleManager)
	support := store.addUser("sam", domain.RoleSupport)

	t.Run("manager creates support account", func(t *testing.T) {
		user, err := svc.Create(context.Background(), principalOf(manager), UserCreateInput{
			Name:     "Nadia",
			Email:    "  Nadia@Example.COM ",
			Password: "correct horse",
			Role:     domain.RoleSupport,
		})
		require.NoError(t, err)
		require.Equal(t, "nadia@example.com", user.Email, "email is normalized")
		require.Equal(t, domain.RoleSupport, user.Role)
		require.NotEqual(t, "correct horse", user.PasswordHash)
		require.NoError(t, auth.ComparePassword(user.PasswordHash, "correct horse"))
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		_, err := svc.Create(context.Background(), principalOf(manager), UserCreateInput{
			Name:     "Other",
			Email:    "nadia@example.com",
			Password: "whatever",
			Role:     domain.RoleUser,
		})
		require.True(t, util.IsCode(err, "VALIDATION_FAILED"))
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		_, err := svc.Create(context.Background(), principalOf(manager), UserCreateInput{
			Name:     "Eve",
			Email:    "eve@example.com",
			Password: "whatever",
			Role:     domain.Role("ADMIN"),
		})
		require.True(t, util.IsCode(err, "VALIDATION_FAILED"))
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		_, err := svc.Create(context.Background(), principalOf(manager), UserCreateInput{
			Name: "  ", Email: "x@example.com", Password: "pw", Role: domain.RoleUser,
		})
		require.True(t, util.IsCode(err, "VALIDATION_FAILED"))
	})

	t.Run("non-manager denied", func(t *testing.T) {
		_, err := svc.Create(context.Background(), principalOf(support), UserCreateInput{
			Name:     "Sneaky",
			Email:    "sneaky@example.com",
			Password: "pw",
			Role:     domain.RoleUser,
		})
		require.True(t, util.IsCode(err, "FORBIDDEN"))
	})
}

func TestListUsers(t *testing.T) {
	store := newMemStore()
	svc := NewUserService(store, testBcryptCost)
	manager := store.addUser("mara", domain.RoleManager)
	user := store.addUser("alice", domain.RoleUser)

	users, err := svc.List(context.Background(), principalOf(manager))
	require.NoError(t, err)
	require.Len(t, users, 2)

	_, err = svc.List(context.Background(), principalOf(user))
	require.True(t, util.IsCode(err, "FORBIDDEN"))
}
