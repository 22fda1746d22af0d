package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/ATT-Acelerar-e-Transformar-o-Turismo/user-service/internal/errors"
	"github.com/ATT-Acelerar-e-Transformar-o-Turismo/user-service/internal/model"
)

// UserRepository defines user persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	CountByRole(ctx context.Context, role string) (int64, error)
	CountByRoleExcluding(ctx context.Context, role string, id uuid.UUID) (int64, error)
	ListPage(ctx context.Context, offset, limit int) ([]model.User, error)
	// Guarded mutations: count-and-mutate as one statement so two concurrent
	// requests cannot demote or delete their way to zero admins.
	UpdateRoleGuarded(ctx context.Context, id uuid.UUID, role string) (bool, error)
	DeleteGuarded(ctx context.Context, id uuid.UUID) (bool, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user. A unique-index violation on email is reported
// as ErrUserAlreadyExists, closing the register check-then-insert race.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

// FindByID finds a user by ID.
func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateFields applies the given column values. Idempotent no-op if the id
// does not exist.
func (r *userRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// Delete removes a user, reporting whether a row was removed.
func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.User{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CountByRole counts users holding the given role.
func (r *userRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("role = ?", role).
		Count(&count).Error
	return count, err
}

// CountByRoleExcluding counts users holding the given role, leaving out the
// given account. Callers feed the result to the role policy.
func (r *userRepository) CountByRoleExcluding(ctx context.Context, role string, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("role = ? AND id <> ?", role, id).
		Count(&count).Error
	return count, err
}

// ListPage returns a page of users in insertion order.
func (r *userRepository) ListPage(ctx context.Context, offset, limit int) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Order("created_at, id").
		Offset(offset).
		Limit(limit).
		Find(&users).Error
	return users, err
}

// UpdateRoleGuarded changes the role unless that would demote the sole
// remaining admin. The admin count and the mutation run as one statement,
// so the check cannot go stale between read and write. Returns whether a
// row was updated.
func (r *userRepository) UpdateRoleGuarded(ctx context.Context, id uuid.UUID, role string) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE users SET role = ?, updated_at = ?
		WHERE id = ?
		  AND (role <> 'admin' OR ? = 'admin' OR EXISTS (
			SELECT 1 FROM (SELECT id FROM users WHERE role = 'admin') AS admins
			WHERE admins.id <> ?))`,
		role, time.Now().UTC(), id, role, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteGuarded removes the user unless they are the last admin, under the
// same single-statement guard as UpdateRoleGuarded.
func (r *userRepository) DeleteGuarded(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		DELETE FROM users
		WHERE id = ?
		  AND (role <> 'admin' OR EXISTS (
			SELECT 1 FROM (SELECT id FROM users WHERE role = 'admin') AS admins
			WHERE admins.id <> ?))`,
		id, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
