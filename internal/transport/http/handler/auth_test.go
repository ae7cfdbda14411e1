package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-library-cms/internal/application/auth"
	"github.com/go-library-cms/internal/domain"
	"github.com/go-library-cms/internal/pkg/reqctx"
	"github.com/go-library-cms/internal/transport/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockAuthSvc struct{ mock.Mock }

func (m *mockAuthSvc) LoginStep1(ctx context.Context, rc reqctx.RequestContext, req auth.LoginRequest) (*auth.LoginStep1Result, error) {
	args := m.Called(ctx, rc, req)
	if res, _ := args.Get(0).(*auth.LoginStep1Result); res != nil {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthSvc) VerifyOTP(ctx context.Context, rc reqctx.RequestContext, req auth.VerifyOTPRequest) (*auth.LoginResult, error) {
	args := m.Called(ctx, rc, req)
	if res, _ := args.Get(0).(*auth.LoginResult); res != nil {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- helpers ---

func postJSON(t *testing.T, h http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.RemoteAddr = "10.0.0.1:5555"
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) middleware.ErrorBody {
	t.Helper()
	var body middleware.ErrorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

// --- Login ---

func TestLogin_Success(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("LoginStep1", mock.Anything, mock.MatchedBy(func(rc reqctx.RequestContext) bool {
		return rc.SourceAddress == "10.0.0.1" && rc.Path == "/login" && rc.Principal == nil
	}), auth.LoginRequest{Username: "alice", Password: "pw"}).
		Return(&auth.LoginStep1Result{Message: "OTP has been sent to your email", Username: "alice", State: auth.StateAwaitingOTP}, nil)

	rr := postJSON(t, NewAuthHandler(svc).Login, "/login", map[string]string{"username": "alice", "password": "pw"})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"OTP has been sent to your email","username":"alice"}`, rr.Body.String())
	svc.AssertExpectations(t)
}

func TestLogin_ValidationError(t *testing.T) {
	svc := &mockAuthSvc{}

	rr := postJSON(t, NewAuthHandler(svc).Login, "/login", map[string]string{"username": "alice"})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "BAD_REQUEST", decodeError(t, rr).Error)
	svc.AssertNotCalled(t, "LoginStep1", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("LoginStep1", mock.Anything, mock.Anything, mock.Anything).Return(nil, domain.ErrInvalidLogin)

	rr := postJSON(t, NewAuthHandler(svc).Login, "/login", map[string]string{"username": "alice", "password": "x"})

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	body := decodeError(t, rr)
	assert.Equal(t, 401, body.Status)
	assert.Equal(t, "INVALID_CREDENTIALS", body.Error)
	assert.Equal(t, "/login", body.Path)
	assert.False(t, body.Timestamp.IsZero())
}

func TestLogin_Locked(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("LoginStep1", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &domain.AccountLockedError{Remaining: 24*time.Minute + 30*time.Second})

	rr := postJSON(t, NewAuthHandler(svc).Login, "/login", map[string]string{"username": "alice", "password": "x"})

	assert.Equal(t, http.StatusLocked, rr.Code)
	body := decodeError(t, rr)
	assert.Equal(t, "ACCOUNT_LOCKED", body.Error)
	assert.Contains(t, body.Message, "24 minutes")
}

// --- VerifyOTP ---

func TestVerifyOTP_Success(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("VerifyOTP", mock.Anything, mock.Anything, auth.VerifyOTPRequest{Username: "alice", OTP: "123456"}).
		Return(&auth.LoginResult{UserID: "u1", Username: "alice", Message: "Login success", Token: "a.b.c"}, nil)

	rr := postJSON(t, NewAuthHandler(svc).VerifyOTP, "/verify-otp", map[string]string{"username": "alice", "otp": "123456"})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"userId":"u1","username":"alice","message":"Login success","token":"a.b.c"}`, rr.Body.String())
}

func TestVerifyOTP_ExpiredVsMismatch(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{domain.ErrOTPExpired, domain.ErrOTPExpired.Error()},
		{domain.ErrOTPMismatch, domain.ErrOTPMismatch.Error()},
	}
	for _, tc := range cases {
		svc := &mockAuthSvc{}
		svc.On("VerifyOTP", mock.Anything, mock.Anything, mock.Anything).Return(nil, tc.err)

		rr := postJSON(t, NewAuthHandler(svc).VerifyOTP, "/verify-otp", map[string]string{"username": "alice", "otp": "1"})

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		body := decodeError(t, rr)
		assert.Equal(t, "INVALID_OTP", body.Error)
		assert.Equal(t, tc.want, body.Message)
	}
}
