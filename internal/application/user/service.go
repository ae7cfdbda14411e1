package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/go-library-cms/internal/config"
	"github.com/go-library-cms/internal/domain"
	"github.com/go-library-cms/internal/pkg/clock"
	"github.com/go-library-cms/internal/pkg/id"
	"github.com/go-library-cms/internal/pkg/reqctx"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldUsername     = "username"
	fieldEmail        = "email"
	fieldFullName     = "full_name"
	fieldRole         = "role"
	fieldPasswordHash = "password_hash"
	fieldUpdatedAt    = "updated_at"
)

// CachePrefix namespaces every cached user list.
const CachePrefix = "users:"

type Service interface {
	Register(ctx context.Context, rc reqctx.RequestContext, req domain.RegisterUserRequest) (*domain.User, error)
	List(ctx context.Context, rc reqctx.RequestContext, order domain.SortOrder) ([]domain.User, error)
	Update(ctx context.Context, rc reqctx.RequestContext, userID string, req domain.UpdateUserRequest) (*domain.User, error)
	Delete(ctx context.Context, rc reqctx.RequestContext, userID string) error
	SeedSuperAdmin(ctx context.Context, admin config.SuperAdmin) (bool, error)
}

type userStore interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Save(ctx context.Context, u *domain.User) error
	List(ctx context.Context) ([]domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	Delete(ctx context.Context, userID string) error
	CountAll(ctx context.Context) (int64, error)
}

type passwordHasher interface {
	Hash(plain string) (string, error)
}

type auditRecorder interface {
	Record(ctx context.Context, rc reqctx.RequestContext, action, resourceType, resourceID, actorOverride string)
}

type listCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, v interface{}) error
	InvalidatePrefix(ctx context.Context, prefix string) error
}

type service struct {
	repo   userStore
	hasher passwordHasher
	audit  auditRecorder
	cache  listCache
	clock  clock.Clock
}

type ServiceDeps struct {
	UserRepo userStore
	Hasher   passwordHasher
	Audit    auditRecorder
	Cache    listCache
	Clock    clock.Clock
}

func NewService(deps ServiceDeps) Service {
	clk := deps.Clock
	if clk == nil {
		clk = clock.System{}
	}
	return &service{
		repo:   deps.UserRepo,
		hasher: deps.Hasher,
		audit:  deps.Audit,
		cache:  deps.Cache,
		clock:  clk,
	}
}

func (s *service) Register(ctx context.Context, rc reqctx.RequestContext, req domain.RegisterUserRequest) (*domain.User, error) {
	if err := s.ensureAvailable(ctx, "", req.Username, req.Email); err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	u := &domain.User{
		UserID:       id.NewAt(now),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		Role:         domain.RoleViewer,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Save(ctx, u); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.audit.Record(ctx, rc, domain.ActionCreateUser, domain.ResourceUser, u.UserID, "")
	return u, nil
}

func (s *service) List(ctx context.Context, rc reqctx.RequestContext, order domain.SortOrder) ([]domain.User, error) {
	key := CachePrefix + "all_" + string(order)
	var users []domain.User
	hit, err := s.cache.Get(ctx, key, &users)
	if err != nil {
		slog.Warn("user cache read failed", "key", key, "err", err)
	}
	if !hit {
		users, err = s.repo.List(ctx)
		if err != nil {
			return nil, err
		}
		sortByCreated(users, order)
		if err := s.cache.Set(ctx, key, users); err != nil {
			slog.Warn("user cache write failed", "key", key, "err", err)
		}
	}
	s.audit.Record(ctx, rc, domain.ActionListUsers, domain.ResourceUser, "ALL", "")
	return users, nil
}

// Update replaces every editable field. The password is always re-hashed.
func (s *service) Update(ctx context.Context, rc reqctx.RequestContext, userID string, req domain.UpdateUserRequest) (*domain.User, error) {
	if _, err := s.repo.Get(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.ensureAvailable(ctx, userID, req.Username, req.Email); err != nil {
		return nil, err
	}
	if !domain.ValidRole(req.Role) {
		return nil, fmt.Errorf("invalid role: %w", domain.ErrBadRequest)
	}
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{
		fieldUsername:     req.Username,
		fieldEmail:        req.Email,
		fieldFullName:     req.FullName,
		fieldRole:         req.Role,
		fieldPasswordHash: hash,
		fieldUpdatedAt:    s.clock.Now(),
	}
	if err := s.repo.Update(ctx, userID, updates); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.audit.Record(ctx, rc, domain.ActionUpdateUser, domain.ResourceUser, userID, "")
	return s.repo.Get(ctx, userID)
}

func (s *service) Delete(ctx context.Context, rc reqctx.RequestContext, userID string) error {
	if _, err := s.repo.Get(ctx, userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.audit.Record(ctx, rc, domain.ActionDeleteUser, domain.ResourceUser, userID, "")
	return nil
}

// SeedSuperAdmin creates the first account when the user table is empty. It
// reports whether an account was created.
func (s *service) SeedSuperAdmin(ctx context.Context, admin config.SuperAdmin) (bool, error) {
	n, err := s.repo.CountAll(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if admin.Password == "" {
		return false, errors.New("SUPER_ADMIN_PASSWORD must be set to seed an empty user table")
	}
	hash, err := s.hasher.Hash(admin.Password)
	if err != nil {
		return false, err
	}
	now := s.clock.Now()
	u := &domain.User{
		UserID:       id.NewAt(now),
		Username:     admin.Username,
		Email:        admin.Email,
		PasswordHash: hash,
		FullName:     admin.FullName,
		Role:         domain.RoleSuperAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Save(ctx, u); err != nil {
		return false, err
	}
	s.invalidate(ctx)
	return true, nil
}

// ensureAvailable rejects a username or email held by a user other than selfID.
func (s *service) ensureAvailable(ctx context.Context, selfID, username, email string) error {
	if u, err := s.repo.GetByUsername(ctx, username); err == nil && u.UserID != selfID {
		return fmt.Errorf("username already taken: %w", domain.ErrConflict)
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if u, err := s.repo.GetByEmail(ctx, email); err == nil && u.UserID != selfID {
		return fmt.Errorf("email already registered: %w", domain.ErrConflict)
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

func (s *service) invalidate(ctx context.Context) {
	if err := s.cache.InvalidatePrefix(ctx, CachePrefix); err != nil {
		slog.Warn("user cache invalidation failed", "err", err)
	}
}

func sortByCreated(users []domain.User, order domain.SortOrder) {
	sort.SliceStable(users, func(i, j int) bool {
		if order == domain.SortAsc {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
}
