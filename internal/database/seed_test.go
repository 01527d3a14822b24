package database

import (
	"context"
	"testing"

	"github.com/clientdesk/backend/internal/models"
	"github.com/clientdesk/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureAdminCreatesOnce(t *testing.T) {
	users := testutil.NewUserRepository()
	seed := AdminSeed{Email: " Admin@Example.com", Password: "Sup3rSecret!"}

	created, err := EnsureAdmin(context.Background(), users, testutil.HasherStub{}, seed)
	require.NoError(t, err)
	assert.True(t, created)

	admin, err := users.FindByEmail(context.Background(), "admin@example.com")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)
	assert.Equal(t, "Admin User", admin.Name)
	assert.Equal(t, "hash:Sup3rSecret!", admin.Password)
	assert.Equal(t, models.StatusActive, admin.Status)

	created, err = EnsureAdmin(context.Background(), users, testutil.HasherStub{}, seed)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 1, users.Len())
}

func TestEnsureAdminLeavesExistingUserAlone(t *testing.T) {
	users := testutil.NewUserRepository(models.User{Email: "admin@example.com", Name: "Someone"})

	created, err := EnsureAdmin(context.Background(), users, testutil.HasherStub{}, AdminSeed{Email: "admin@example.com", Password: "Sup3rSecret!"})
	require.NoError(t, err)
	assert.False(t, created)

	u, err := users.FindByEmail(context.Background(), "admin@example.com")
	require.NoError(t, err)
	assert.False(t, u.IsAdmin)
}

func TestEnsureAdminRejectsBadSeed(t *testing.T) {
	users := testutil.NewUserRepository()

	_, err := EnsureAdmin(context.Background(), users, testutil.HasherStub{}, AdminSeed{Email: "admin@example.com"})
	require.Error(t, err)

	_, err = EnsureAdmin(context.Background(), users, testutil.HasherStub{}, AdminSeed{Email: "admin@example.com", Password: "short"})
	require.Error(t, err)
	assert.Zero(t, users.Len())
}
