package jwtinfra

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-library-cms/internal/config"
	"github.com/go-library-cms/internal/domain"
	"github.com/go-library-cms/internal/pkg/clock"
	"github.com/golang-jwt/jwt/v5"
)

// Lifetime is the fixed validity of every session token.
const Lifetime = 12 * time.Hour

const minSecretLen = 32

// Claims holds the JWT payload fields. Subject carries the user id.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) UserID() string { return c.Subject }

// Provider signs and verifies HS256 session tokens.
type Provider struct {
	secret []byte
	expiry time.Duration
	clock  clock.Clock
	parser *jwt.Parser
}

func NewProvider(cfg *config.Config, clk clock.Clock) (*Provider, error) {
	if len(cfg.JWTSecret) < minSecretLen {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretLen)
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &Provider{
		secret: []byte(cfg.JWTSecret),
		expiry: Lifetime,
		clock:  clk,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithTimeFunc(clk.Now),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
			jwt.WithStrictDecoding(),
		),
	}, nil
}

// Expiry is the fixed lifetime stamped into every token.
func (p *Provider) Expiry() time.Duration { return p.expiry }

func (p *Provider) Sign(subjectID, username, role string, now time.Time) (string, error) {
	claims := Claims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify returns the claims of a valid token. Every rejection is reported as
// domain.ErrInvalidToken; the specific cause only reaches the debug log.
func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	token, err := p.parser.ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return p.secret, nil
	})
	if err != nil {
		slog.Debug("token rejected", "cause", rejectionCause(err), "err", err)
		return nil, domain.ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		slog.Debug("token rejected", "cause", "claims")
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

func rejectionCause(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "signature"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return "unverifiable"
	default:
		return "other"
	}
}
