package auth_test

import (
	"context"
	"testing"

	"disaster-backend/internal/auth"
	"disaster-backend/internal/models"
	"disaster-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	first, err := auth.CreateUser(ctx, db, "A", "a@x.com", "p", models.RoleCitizen)
	require.NoError(t, err)

	_, err = auth.CreateUser(ctx, db, "B", " A@X.com ", "q", models.RoleVolunteer)
	require.ErrorIs(t, err, auth.ErrEmailTaken)

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, first.ID, users[0].ID)
	assert.Equal(t, "A", users[0].Name)
	assert.Equal(t, models.RoleCitizen, users[0].Role)
	assert.True(t, auth.CheckPassword(users[0].PasswordHash, "p"))
}

func TestVerifyCredentials(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	testutil.CreateUser(t, db, "A", "a@x.com", "p", models.RoleCitizen)

	user, err := auth.VerifyCredentials(ctx, db, "A@x.com", "p")
	require.NoError(t, err)
	assert.Equal(t, "A", user.Name)

	_, err = auth.VerifyCredentials(ctx, db, "a@x.com", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = auth.VerifyCredentials(ctx, db, "nobody@x.com", "p")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestEnsureAdmin_Idempotent(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	require.NoError(t, auth.EnsureAdmin(ctx, db, "Root", "root@x.com", "first"))
	require.NoError(t, auth.EnsureAdmin(ctx, db, "Other", "root@x.com", "second"))

	var admins []models.User
	require.NoError(t, db.Where("role = ?", models.RoleAdmin).Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.Equal(t, "Root", admins[0].Name)
	assert.True(t, auth.CheckPassword(admins[0].PasswordHash, "first"))
}
