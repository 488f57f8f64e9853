package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventrite/eventrite/models"
)

func TestMemoryCreateAssignsIDs(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	first := &models.User{Name: "Ada", Email: "ada@example.com", Username: "ada"}
	second := &models.User{Name: "Grace", Email: "grace@example.com", Username: "grace"}

	require.NoError(t, s.Create(ctx, first))
	require.NoError(t, s.Create(ctx, second))

	assert.NotZero(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, s.Count())
}

func TestMemoryRejectsDuplicateEmail(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &models.User{Email: "ada@example.com", Username: "ada"}))

	err := s.Create(ctx, &models.User{Email: "ada@example.com", Username: "ada2"})
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t, 1, s.Count())
}

func TestMemoryRejectsDuplicateUsername(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &models.User{Email: "ada@example.com", Username: "ada"}))

	err := s.Create(ctx, &models.User{Email: "other@example.com", Username: "ada"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
	assert.Equal(t, 1, s.Count())
}

func TestMemoryLookups(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	u := &models.User{Name: "Ada", Email: "ada@example.com", Username: "ada"}
	require.NoError(t, s.Create(ctx, u))

	byEmail, err := s.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byName, err := s.FindByUsername(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	byID, err := s.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", byID.Email)

	_, err = s.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}
