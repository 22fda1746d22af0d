package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "github.com/ATT-Acelerar-e-Transformar-o-Turismo/user-service/internal/errors"
	"github.com/ATT-Acelerar-e-Transformar-o-Turismo/user-service/internal/model"
)

func newTestRepo(t *testing.T) UserRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.User{}))

	return NewUserRepository(db)
}

func seedUser(t *testing.T, repo UserRepository, email, role string) *model.User {
	t.Helper()
	user := &model.User{
		Email:        email,
		PasswordHash: "$2a$04$notarealhashnotarealhashnotarealhash",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created := seedUser(t, repo, "a@example.com", model.RoleUser)
	assert.NotEqual(t, uuid.Nil, created.ID)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", byID.Email)

	byEmail, err := repo.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	repo := newTestRepo(t)

	seedUser(t, repo, "a@example.com", model.RoleUser)

	dup := &model.User{
		Email:        "a@example.com",
		PasswordHash: "x",
		Role:         model.RoleUser,
	}
	err := repo.Create(context.Background(), dup)
	assert.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
}

func TestUserRepository_UpdateFields(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u := seedUser(t, repo, "a@example.com", model.RoleUser)

	now := time.Now().UTC().Truncate(time.Second)
	err := repo.UpdateFields(ctx, u.ID, map[string]interface{}{
		"full_name":     "Alice",
		"last_login_at": now,
	})
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.FullName)
	require.NotNil(t, got.LastLoginAt)
	assert.True(t, got.LastLoginAt.Equal(now))

	// Unknown id is a no-op, not an error.
	err = repo.UpdateFields(ctx, uuid.New(), map[string]interface{}{"full_name": "Nobody"})
	assert.NoError(t, err)
}

func TestUserRepository_Delete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u := seedUser(t, repo, "a@example.com", model.RoleUser)

	deleted, err := repo.Delete(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestUserRepository_Counts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	a := seedUser(t, repo, "a@example.com", model.RoleAdmin)
	seedUser(t, repo, "b@example.com", model.RoleAdmin)
	seedUser(t, repo, "u@example.com", model.RoleUser)

	admins, err := repo.CountByRole(ctx, model.RoleAdmin)
	require.NoError(t, err)
	assert.EqualValues(t, 2, admins)

	users, err := repo.CountByRole(ctx, model.RoleUser)
	require.NoError(t, err)
	assert.EqualValues(t, 1, users)

	others, err := repo.CountByRoleExcluding(ctx, model.RoleAdmin, a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, others)

	others, err = repo.CountByRoleExcluding(ctx, model.RoleAdmin, uuid.New())
	require.NoError(t, err)
	assert.EqualValues(t, 2, others)
}

func TestUserRepository_ListPage_Ordering(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	var want []string
	for i := 0; i < 5; i++ {
		email := fmt.Sprintf("u%d@example.com", i)
		u := &model.User{
			Email:        email,
			PasswordHash: "x",
			Role:         model.RoleUser,
			IsActive:     true,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(ctx, u))
		want = append(want, email)
	}

	page, err := repo.ListPage(ctx, 0, 3)
	require.NoError(t, err)
	require.Len(t, page, 3)
	for i, u := range page {
		assert.Equal(t, want[i], u.Email)
	}

	page, err = repo.ListPage(ctx, 3, 3)
	require.NoError(t, err)
	require.Len(t, page, 2)
	for i, u := range page {
		assert.Equal(t, want[3+i], u.Email)
	}
}

func TestUserRepository_UpdateRoleGuarded(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	a := seedUser(t, repo, "a@example.com", model.RoleAdmin)
	b := seedUser(t, repo, "b@example.com", model.RoleAdmin)

	// Demoting one of two admins goes through.
	updated, err := repo.UpdateRoleGuarded(ctx, a.ID, model.RoleUser)
	require.NoError(t, err)
	assert.True(t, updated)

	// The guard refuses to demote the last admin.
	updated, err = repo.UpdateRoleGuarded(ctx, b.ID, model.RoleUser)
	require.NoError(t, err)
	assert.False(t, updated)

	got, err := repo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, got.Role)

	// admin -> admin is allowed even for the sole admin.
	updated, err = repo.UpdateRoleGuarded(ctx, b.ID, model.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, updated)

	// Promoting a plain user is never guarded.
	updated, err = repo.UpdateRoleGuarded(ctx, a.ID, model.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, updated)

	// Unknown id reports no rows touched.
	updated, err = repo.UpdateRoleGuarded(ctx, uuid.New(), model.RoleUser)
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestUserRepository_DeleteGuarded(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	a := seedUser(t, repo, "a@example.com", model.RoleAdmin)
	b := seedUser(t, repo, "b@example.com", model.RoleAdmin)
	u := seedUser(t, repo, "u@example.com", model.RoleUser)

	// Plain users go regardless of the admin count.
	deleted, err := repo.DeleteGuarded(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	// One of two admins may be removed.
	deleted, err = repo.DeleteGuarded(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	// The last admin may not.
	deleted, err = repo.DeleteGuarded(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	count, err := repo.CountByRole(ctx, model.RoleAdmin)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
