package domain

import "time"

// User is the identity record. Lock state is derived from AccountLockedUntil
// alone; there is no separate locked flag.
type User struct {
	UserID       string    `json:"id" dynamodbav:"user_id"`
	Username     string    `json:"username" dynamodbav:"username"`
	Email        string    `json:"email" dynamodbav:"email"`
	PasswordHash string    `json:"-" dynamodbav:"password_hash"`
	FullName     string    `json:"full_name" dynamodbav:"full_name"`
	Role         string    `json:"role" dynamodbav:"role"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated" dynamodbav:"updated_at"`

	LastLoginAt *time.Time `json:"last_login,omitempty" dynamodbav:"last_login_at,omitempty"`

	OTPCode      *string    `json:"-" dynamodbav:"otp_code,omitempty"`
	OTPExpiresAt *time.Time `json:"-" dynamodbav:"otp_expires_at,omitempty"`

	FailedLoginCount   int        `json:"-" dynamodbav:"failed_login_count"`
	LastFailedLoginAt  *time.Time `json:"-" dynamodbav:"last_failed_login_at,omitempty"`
	AccountLockedUntil *time.Time `json:"-" dynamodbav:"account_locked_until,omitempty"`
}

// SetOTP stores a code together with its expiry.
func (u *User) SetOTP(code string, expiresAt time.Time) {
	u.OTPCode = &code
	u.OTPExpiresAt = &expiresAt
}

// ClearOTP removes the code and its expiry together.
func (u *User) ClearOTP() {
	u.OTPCode = nil
	u.OTPExpiresAt = nil
}

type RegisterUserRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"required"`
}

type UpdateUserRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"required"`
	Role     string `json:"role" validate:"required,role"`
}
