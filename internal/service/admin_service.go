package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ATT-Acelerar-e-Transformar-o-Turismo/user-service/internal/cache"
	apperrors "github.com/ATT-Acelerar-e-Transformar-o-Turismo/user-service/internal/errors"
	"github.com/ATT-Acelerar-e-Transformar-o-Turismo/user-service/internal/model"
	"github.com/ATT-Acelerar-e-Transformar-o-Turismo/user-service/internal/repository"
)

const (
	userCacheTTL     = 5 * time.Minute
	defaultPageLimit = 100
	maxPageLimit     = 1000
)

func userCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id)
}

// AdminService exposes the user management operations behind the admin
// routes, plus default-admin bootstrap.
type AdminService interface {
	ListUsers(ctx context.Context, offset, limit int) ([]model.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ChangeRole(ctx context.Context, id uuid.UUID, role string) (*model.User, error)
	DeleteUser(ctx context.Context, requesterID, targetID uuid.UUID) error
	EnsureDefaultAdmin(ctx context.Context, email, password, fullName string) (*model.User, error)
}

type adminService struct {
	repo   repository.UserRepository
	auth   AuthService
	policy *RolePolicy
	cache  *cache.Client
}

// NewAdminService creates a new admin service.
func NewAdminService(repo repository.UserRepository, authSvc AuthService, policy *RolePolicy, cacheClient *cache.Client) AdminService {
	return &adminService{
		repo:   repo,
		auth:   authSvc,
		policy: policy,
		cache:  cacheClient,
	}
}

// ListUsers returns one offset/limit page in insertion order.
func (s *adminService) ListUsers(ctx context.Context, offset, limit int) ([]model.User, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return s.repo.ListPage(ctx, offset, limit)
}

// GetUser returns a user by id, served from the cache when possible.
func (s *adminService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, userCacheKey(id)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, userCacheKey(id), payload, userCacheTTL)
	}
	return user, nil
}

// GetUserByEmail returns a user by email.
func (s *adminService) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// ChangeRole updates a user's role. The policy pre-check produces the
// domain error; the guarded repository statement is what actually holds
// the last-admin invariant under concurrent requests.
func (s *adminService) ChangeRole(ctx context.Context, id uuid.UUID, role string) (*model.User, error) {
	if !s.policy.IsValidRole(role) {
		return nil, apperrors.ErrInvalidRole
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	otherAdmins, err := s.repo.CountByRoleExcluding(ctx, model.RoleAdmin, id)
	if err != nil {
		return nil, fmt.Errorf("count admins: %w", err)
	}
	if err := s.policy.CanChangeRole(user.Role, role, otherAdmins); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateRoleGuarded(ctx, id, role)
	if err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	if !updated {
		// The guard refused: either the row vanished or a concurrent change
		// made this the last admin after our pre-check.
		if _, err := s.repo.FindByID(ctx, id); errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.ErrLastAdminProtection
	}
	_ = s.cache.Delete(ctx, userCacheKey(id))

	user, err = s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload user: %w", err)
	}
	return user, nil
}

// DeleteUser removes a user. Admins cannot delete their own account, and
// the last admin cannot be deleted by anyone.
func (s *adminService) DeleteUser(ctx context.Context, requesterID, targetID uuid.UUID) error {
	if requesterID == targetID {
		return apperrors.ErrSelfDeleteForbidden
	}

	user, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	otherAdmins, err := s.repo.CountByRoleExcluding(ctx, model.RoleAdmin, targetID)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if err := s.policy.CanDelete(user.Role, otherAdmins); err != nil {
		return err
	}

	deleted, err := s.repo.DeleteGuarded(ctx, targetID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if !deleted {
		if _, err := s.repo.FindByID(ctx, targetID); errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.ErrLastAdminProtection
	}
	_ = s.cache.Delete(ctx, userCacheKey(targetID))

	return nil
}

// EnsureDefaultAdmin creates the bootstrap administrator once. Safe to call
// on every process start: an existing account with that email is left
// untouched.
func (s *adminService) EnsureDefaultAdmin(ctx context.Context, email, password, fullName string) (*model.User, error) {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check default admin: %w", err)
	}

	admin, err := s.auth.Register(ctx, email, password, fullName, model.RoleAdmin)
	if err != nil {
		// A concurrent boot may have won the insert; that still satisfies
		// the bootstrap.
		if errors.Is(err, apperrors.ErrUserAlreadyExists) {
			return nil, nil
		}
		return nil, fmt.Errorf("create default admin: %w", err)
	}

	log.Printf("default admin user created: %s", email)
	return admin, nil
}
