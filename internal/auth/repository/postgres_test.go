package repository

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/omnipos-stockroom/internal/model"
	"github.com/fekuna/omnipos-stockroom/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndLookup(t *testing.T) {
	repo := NewPGRepository(testutil.NewTestDB(t))
	ctx := context.Background()

	u := &model.User{ID: "u-1", Username: "alice", PasswordHash: "hash", Role: model.RoleManager, CreatedAt: time.Now().UTC()}
	require.NoError(t, repo.Create(ctx, u))

	byName, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, "u-1", byName.ID)
	assert.Equal(t, "hash", byName.PasswordHash)

	byID, err := repo.GetByID(ctx, "u-1")
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, model.RoleManager, byID.Role)

	missing, err := repo.GetByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Nil(t, missing)

	assert.Error(t, repo.Create(ctx, &model.User{ID: "u-2", Username: "alice", PasswordHash: "x", Role: model.RoleStaff, CreatedAt: time.Now().UTC()}))
}
