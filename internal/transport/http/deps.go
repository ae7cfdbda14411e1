package http

import (
	"context"
	"time"

	"github.com/go-library-cms/internal/application/article"
	"github.com/go-library-cms/internal/application/audit"
	"github.com/go-library-cms/internal/application/auth"
	"github.com/go-library-cms/internal/application/ratelimit"
	"github.com/go-library-cms/internal/application/user"
	"github.com/go-library-cms/internal/domain"
	jwtinfra "github.com/go-library-cms/internal/infrastructure/jwt"
	"github.com/go-library-cms/internal/infrastructure/smtp"
	"github.com/go-library-cms/internal/pkg/clock"
	"github.com/go-library-cms/internal/pkg/password"
	"github.com/go-library-cms/internal/transport/http/handler"
)

// UserRepository is the minimal interface the router requires from a user store.
type UserRepository interface {
	Save(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	Delete(ctx context.Context, userID string) error
	List(ctx context.Context) ([]domain.User, error)
	CountAll(ctx context.Context) (int64, error)
}

// ArticleRepository is the minimal interface the router requires from an article store.
type ArticleRepository interface {
	Save(ctx context.Context, a *domain.Article) error
	Get(ctx context.Context, articleID string) (*domain.Article, error)
	List(ctx context.Context) ([]domain.Article, error)
	ListPublic(ctx context.Context) ([]domain.Article, error)
	Delete(ctx context.Context, articleID string) error
}

// AuditRepository is append-only.
type AuditRepository interface {
	Put(ctx context.Context, l *domain.AuditLog) error
	List(ctx context.Context) ([]domain.AuditLog, error)
}

// ListCache caches list responses under prefixed keys.
type ListCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, v interface{}) error
	InvalidatePrefix(ctx context.Context, prefix string) error
}

// CounterStore backs the fixed-window rate limiter.
type CounterStore interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Get(ctx context.Context, key string) (int64, bool, error)
}

// TokenProvider signs and verifies session tokens.
type TokenProvider interface {
	Sign(subjectID, username, role string, now time.Time) (string, error)
	Verify(token string) (*jwtinfra.Claims, error)
}

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo    UserRepository
	ArticleRepo ArticleRepository
	AuditRepo   AuditRepository
	Cache       ListCache
	Counters    CounterStore
	Mailer      smtp.Mailer
	Tokens      TokenProvider
	Passwords   password.Bcrypt
	Clock       clock.Clock

	// HealthChecks back GET /health-check/ready, keyed by dependency name.
	HealthChecks map[string]handler.HealthCheck
}

// Services is the application layer built from Deps.
type Services struct {
	Audit   audit.Service
	Auth    auth.Service
	User    user.Service
	Article article.Service
	Limiter *ratelimit.Limiter
	Tokens  TokenProvider
	Health  map[string]handler.HealthCheck
}

// BuildServices wires every application service onto deps.
func BuildServices(deps *Deps) *Services {
	clk := deps.Clock
	if clk == nil {
		clk = clock.System{}
	}
	auditSvc := audit.NewService(deps.AuditRepo, clk)
	return &Services{
		Audit: auditSvc,
		Auth: auth.NewService(auth.ServiceDeps{
			UserRepo:    deps.UserRepo,
			Verifier:    deps.Passwords,
			TokenIssuer: deps.Tokens,
			Audit:       auditSvc,
			Cache:       deps.Cache,
			Mailer:      deps.Mailer,
			Clock:       clk,
		}),
		User: user.NewService(user.ServiceDeps{
			UserRepo: deps.UserRepo,
			Hasher:   deps.Passwords,
			Audit:    auditSvc,
			Cache:    deps.Cache,
			Clock:    clk,
		}),
		Article: article.NewService(article.ServiceDeps{
			ArticleRepo: deps.ArticleRepo,
			Audit:       auditSvc,
			Cache:       deps.Cache,
			Clock:       clk,
		}),
		Limiter: ratelimit.NewLimiter(deps.Counters),
		Tokens:  deps.Tokens,
		Health:  deps.HealthChecks,
	}
}
