package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"time"

	"github.com/go-library-cms/internal/domain"
)

const OTPTTL = 5 * time.Minute

const (
	otpMin   = 100000
	otpSpan  = 900000
	otpTitle = "Your login code"
)

type OTPResult int

const (
	OTPValid OTPResult = iota
	OTPExpired
	OTPMismatch
)

func (r OTPResult) String() string {
	switch r {
	case OTPValid:
		return "valid"
	case OTPExpired:
		return "expired"
	default:
		return "mismatch"
	}
}

type mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// OTPManager issues and checks six-digit one-time codes stored on the user record.
type OTPManager struct {
	mailer mailer
	rand   io.Reader
	ttl    time.Duration
}

func NewOTPManager(m mailer) *OTPManager {
	return &OTPManager{mailer: m, rand: rand.Reader, ttl: OTPTTL}
}

// Issue stores a fresh code on u, replacing any previous one.
func (o *OTPManager) Issue(u *domain.User, now time.Time) (string, error) {
	n, err := rand.Int(o.rand, big.NewInt(otpSpan))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64()+otpMin)
	u.SetOTP(code, now.Add(o.ttl))
	return code, nil
}

// Verify checks code against u. Expiry wins over a matching code. It never
// clears the stored code.
func (o *OTPManager) Verify(u *domain.User, code string, now time.Time) OTPResult {
	if u.OTPExpiresAt != nil && now.After(*u.OTPExpiresAt) {
		return OTPExpired
	}
	if u.OTPCode == nil || u.OTPExpiresAt == nil || *u.OTPCode != code {
		return OTPMismatch
	}
	return OTPValid
}

func (o *OTPManager) Clear(u *domain.User) { u.ClearOTP() }

// Deliver mails the code. Failures are logged and dropped.
func (o *OTPManager) Deliver(ctx context.Context, to, code string) {
	if o.mailer == nil {
		return
	}
	body := fmt.Sprintf("Your login code is %s. It expires in %d minutes.", code, int(o.ttl/time.Minute))
	if err := o.mailer.SendEmail(ctx, to, otpTitle, body); err != nil {
		slog.Warn("otp delivery failed", "to", to, "err", err)
	}
}
