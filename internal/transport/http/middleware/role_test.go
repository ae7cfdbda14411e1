package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-library-cms/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestRequireRole(t *testing.T) {
	p, _ := newTestProvider(t)
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	h := Authenticate(p)(RequireRole(domain.RoleSuperAdmin)(ok))

	cases := []struct {
		name   string
		role   string
		status int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"editor", domain.RoleEditor, http.StatusForbidden},
		{"super admin", domain.RoleSuperAdmin, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/users", nil)
			if tc.role != "" {
				req.Header.Set("Authorization", "Bearer "+signedToken(t, p, "u", tc.role))
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			assert.Equal(t, tc.status, rr.Code)
		})
	}
}

func TestRoleDecision(t *testing.T) {
	assert.True(t, RoleDecision(domain.RoleEditor, domain.RoleSuperAdmin, domain.RoleEditor).Allowed)

	d := RoleDecision(domain.RoleViewer, domain.RoleSuperAdmin)
	assert.False(t, d.Allowed)
	assert.Contains(t, d.Reason, "VIEWER")

	assert.False(t, RoleDecision("", domain.RoleSuperAdmin).Allowed)
}
