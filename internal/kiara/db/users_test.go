package db

import (
	"context"
	"testing"

	e "github.com/Alexistodj124/kiarasoftwareback/internal/kiara/errors"
	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserCRUD(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	u := &models.User{Username: "ana", PasswordHash: "hash"}
	require.NoError(t, repo.CreateUser(ctx, u))
	assert.False(t, u.CreadoEn.IsZero())

	err := repo.CreateUser(ctx, &models.User{Username: "ana", PasswordHash: "other"})
	assert.ErrorIs(t, err, e.ErrConflict)

	got, err := repo.GetUserByUsername(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = repo.GetUserByUsername(ctx, "Ana")
	assert.ErrorIs(t, err, e.ErrNotFound, "usernames match case-sensitively")

	exists, err := repo.UsernameExists(ctx, "ana", u.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.DeleteUser(ctx, u.ID))
	assert.ErrorIs(t, repo.DeleteUser(ctx, u.ID), e.ErrNotFound)
}
