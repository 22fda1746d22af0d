package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ATT-Acelerar-e-Transformar-o-Turismo/user-service/internal/auth"
	"github.com/ATT-Acelerar-e-Transformar-o-Turismo/user-service/internal/cache"
	apperrors "github.com/ATT-Acelerar-e-Transformar-o-Turismo/user-service/internal/errors"
	"github.com/ATT-Acelerar-e-Transformar-o-Turismo/user-service/internal/model"
	"github.com/ATT-Acelerar-e-Transformar-o-Turismo/user-service/internal/repository"
)

// ProfileUpdate carries the optional fields of a partial profile update.
// Nil fields are left untouched.
type ProfileUpdate struct {
	Email    *string
	FullName *string
	IsActive *bool
}

// Empty reports whether no field is set.
func (u ProfileUpdate) Empty() bool {
	return u.Email == nil && u.FullName == nil && u.IsActive == nil
}

// AuthService handles registration, login and profile maintenance.
type AuthService interface {
	Register(ctx context.Context, email, password, fullName, role string) (*model.User, error)
	Login(ctx context.Context, email, password string, rememberMe bool) (token string, user *model.User, err error)
	CurrentUser(ctx context.Context, email string) (*model.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*model.User, error)
}

type authService struct {
	repo   repository.UserRepository
	hasher *auth.PasswordHasher
	jwt    *auth.JWTService
	policy *RolePolicy
	cache  *cache.Client
}

// NewAuthService creates a new authentication service.
func NewAuthService(repo repository.UserRepository, hasher *auth.PasswordHasher, jwtService *auth.JWTService, policy *RolePolicy, cacheClient *cache.Client) AuthService {
	return &authService{
		repo:   repo,
		hasher: hasher,
		jwt:    jwtService,
		policy: policy,
		cache:  cacheClient,
	}
}

// Register creates a new user with a hashed password. An empty role
// defaults to "user".
func (s *authService) Register(ctx context.Context, email, password, fullName, role string) (*model.User, error) {
	if role == "" {
		role = model.RoleUser
	}
	if !s.policy.IsValidRole(role) {
		return nil, apperrors.ErrInvalidRole
	}

	// Read-before-write gives the friendly error; the unique index on email
	// is what actually closes the race, via Create's duplicate translation.
	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrUserAlreadyExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: digest,
		FullName:     fullName,
		Role:         role,
		IsActive:     true,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrUserAlreadyExists) {
			return nil, apperrors.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Login authenticates by email and password and mints a bearer token.
// Unknown email and wrong password return the same error, and the unknown
// path still burns a bcrypt comparison so timing gives nothing away.
func (s *authService) Login(ctx context.Context, email, password string, rememberMe bool) (string, *model.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.hasher.VerifyDummy(password)
			return "", nil, apperrors.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("find user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.jwt.IssueToken(user.Email, s.jwt.Lifetime(rememberMe))
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateFields(ctx, user.ID, map[string]interface{}{"last_login_at": now}); err == nil {
		user.LastLoginAt = &now
	}
	_ = s.cache.Delete(ctx, userCacheKey(user.ID))

	return token, user, nil
}

// CurrentUser resolves a verified token subject back to its account. A
// subject that no longer exists reads as an invalid token.
func (s *authService) CurrentUser(ctx context.Context, email string) (*model.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// UpdateProfile applies the provided fields only. Role and password are
// out of reach on this path.
func (s *authService) UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*model.User, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	fields := map[string]interface{}{}
	if update.Email != nil {
		fields["email"] = *update.Email
	}
	if update.FullName != nil {
		fields["full_name"] = *update.FullName
	}
	if update.IsActive != nil {
		fields["is_active"] = *update.IsActive
	}

	if len(fields) > 0 {
		if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, apperrors.ErrUserAlreadyExists
			}
			return nil, fmt.Errorf("update user: %w", err)
		}
	}
	_ = s.cache.Delete(ctx, userCacheKey(id))

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload user: %w", err)
	}
	return user, nil
}
