package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-library-cms/internal/domain"
	"github.com/go-library-cms/internal/pkg/clock"
	"github.com/go-library-cms/internal/pkg/reqctx"
)

// State is where a login attempt stands after a call returns.
type State int

const (
	StateUnauthenticated State = iota
	StateAwaitingOTP
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAwaitingOTP:
		return "awaiting_otp"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// UserListCachePrefix is shared with the user service; a login stamps
// last_login, which appears in cached user lists.
const UserListCachePrefix = "users:"

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type VerifyOTPRequest struct {
	Username string `json:"username" validate:"required"`
	OTP      string `json:"otp" validate:"required"`
}

type LoginStep1Result struct {
	Message  string `json:"message"`
	Username string `json:"username"`
	State    State  `json:"-"`
}

type LoginResult struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Message  string `json:"message"`
	Token    string `json:"token"`
	State    State  `json:"-"`
}

type Service interface {
	LoginStep1(ctx context.Context, rc reqctx.RequestContext, req LoginRequest) (*LoginStep1Result, error)
	VerifyOTP(ctx context.Context, rc reqctx.RequestContext, req VerifyOTPRequest) (*LoginResult, error)
}

type userStore interface {
	FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	Save(ctx context.Context, u *domain.User) error
}

type credentialVerifier interface {
	Verify(hash, plain string) bool
	Hash(plain string) (string, error)
}

// timingPlaceholder is hashed once at construction. Unknown identifiers are
// compared against it so they cost as much as a wrong password.
const timingPlaceholder = "no-such-account"

type tokenSigner interface {
	Sign(subjectID, username, role string, now time.Time) (string, error)
}

type auditRecorder interface {
	Record(ctx context.Context, rc reqctx.RequestContext, action, resourceType, resourceID, actorOverride string)
}

type cacheInvalidator interface {
	InvalidatePrefix(ctx context.Context, prefix string) error
}

type service struct {
	users     userStore
	verifier  credentialVerifier
	dummyHash string
	tokens    tokenSigner
	audit     auditRecorder
	cache     cacheInvalidator
	lockout   LockoutPolicy
	otp       *OTPManager
	clock     clock.Clock
}

type ServiceDeps struct {
	UserRepo    userStore
	Verifier    credentialVerifier
	TokenIssuer tokenSigner
	Audit       auditRecorder
	Cache       cacheInvalidator
	Mailer      mailer
	Clock       clock.Clock
}

func NewService(deps ServiceDeps) Service {
	clk := deps.Clock
	if clk == nil {
		clk = clock.System{}
	}
	dummy, err := deps.Verifier.Hash(timingPlaceholder)
	if err != nil {
		slog.Warn("placeholder hash failed, unknown logins will return faster", "err", err)
	}
	return &service{
		users:     deps.UserRepo,
		verifier:  deps.Verifier,
		dummyHash: dummy,
		tokens:    deps.TokenIssuer,
		audit:     deps.Audit,
		cache:     deps.Cache,
		lockout:   NewLockoutPolicy(),
		otp:       NewOTPManager(deps.Mailer),
		clock:     clk,
	}
}

func (s *service) LoginStep1(ctx context.Context, rc reqctx.RequestContext, req LoginRequest) (*LoginStep1Result, error) {
	u, err := s.resolve(ctx, rc, req.Username, domain.ActionLoginFailed)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidLogin) {
			s.verifier.Verify(s.dummyHash, req.Password)
		}
		return nil, err
	}
	now := s.clock.Now()
	if err := s.ensureNotLocked(ctx, rc, u, now); err != nil {
		return nil, err
	}

	if !s.verifier.Verify(u.PasswordHash, req.Password) {
		decision := s.lockout.RecordFailure(u, now)
		if err := s.users.Save(ctx, u); err != nil {
			return nil, fmt.Errorf("save failed attempt: %w", err)
		}
		s.audit.Record(ctx, rc, domain.ActionLoginFailed, domain.ResourceAuth, u.UserID, req.Username)
		if decision.Locked {
			slog.Warn("account locked", "user_id", u.UserID, "until", decision.Until)
			s.audit.Record(ctx, rc, domain.ActionAccountLocked, domain.ResourceAuth, u.UserID, u.Username)
		}
		return nil, fmt.Errorf("password mismatch: %w", domain.ErrInvalidLogin)
	}

	code, err := s.otp.Issue(u, now)
	if err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, u); err != nil {
		return nil, fmt.Errorf("save otp: %w", err)
	}
	s.otp.Deliver(ctx, u.Email, code)
	s.audit.Record(ctx, rc, domain.ActionOTPSent, domain.ResourceAuth, u.UserID, u.Username)

	return &LoginStep1Result{
		Message:  "OTP has been sent to your email",
		Username: u.Username,
		State:    StateAwaitingOTP,
	}, nil
}

func (s *service) VerifyOTP(ctx context.Context, rc reqctx.RequestContext, req VerifyOTPRequest) (*LoginResult, error) {
	u, err := s.resolve(ctx, rc, req.Username, domain.ActionLoginOTPFailed)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	if err := s.ensureNotLocked(ctx, rc, u, now); err != nil {
		return nil, err
	}

	if res := s.otp.Verify(u, req.OTP, now); res != OTPValid {
		s.lockout.RecordFailure(u, now)
		if err := s.users.Save(ctx, u); err != nil {
			return nil, fmt.Errorf("save failed otp: %w", err)
		}
		s.audit.Record(ctx, rc, domain.ActionLoginOTPFailed, domain.ResourceAuth, u.UserID, u.Username)
		if res == OTPExpired {
			return nil, domain.ErrOTPExpired
		}
		return nil, domain.ErrOTPMismatch
	}

	s.lockout.Reset(u)
	s.otp.Clear(u)
	stamp := now
	u.LastLoginAt = &stamp
	if err := s.users.Save(ctx, u); err != nil {
		return nil, fmt.Errorf("save login: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.InvalidatePrefix(ctx, UserListCachePrefix); err != nil {
			slog.Warn("user cache invalidation failed", "err", err)
		}
	}

	token, err := s.tokens.Sign(u.UserID, u.Username, u.Role, now)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, rc, domain.ActionLoginSuccess, domain.ResourceAuth, u.UserID, u.Username)

	return &LoginResult{
		UserID:   u.UserID,
		Username: u.Username,
		Message:  "Login success",
		Token:    token,
		State:    StateAuthenticated,
	}, nil
}

// resolve looks the identifier up as username or email. An unknown identifier
// is audited under failAction and reported exactly like a wrong password.
func (s *service) resolve(ctx context.Context, rc reqctx.RequestContext, identifier, failAction string) (*domain.User, error) {
	u, err := s.users.FindByIdentifier(ctx, identifier)
	if errors.Is(err, domain.ErrNotFound) {
		s.audit.Record(ctx, rc, failAction, domain.ResourceAuth, "", identifier)
		return nil, fmt.Errorf("unknown identifier: %w", domain.ErrInvalidLogin)
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (s *service) ensureNotLocked(ctx context.Context, rc reqctx.RequestContext, u *domain.User, now time.Time) error {
	if !s.lockout.IsLocked(u, now) {
		return nil
	}
	s.audit.Record(ctx, rc, domain.ActionLoginLocked, domain.ResourceAuth, u.UserID, u.Username)
	return &domain.AccountLockedError{
		Until:     *u.AccountLockedUntil,
		Remaining: s.lockout.Remaining(u, now),
	}
}
