package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/ats-assistant/internal/types"
)

// testTokenValidator is a test implementation of TokenValidator for unit tests.
type testTokenValidator struct {
	validTokens map[string]testClaims
}

func newTestTokenValidator() *testTokenValidator {
	return &testTokenValidator{validTokens: make(map[string]testClaims)}
}

func (v *testTokenValidator) addValidToken(token string, userID uuid.UUID, role types.Role) {
	v.validTokens[token] = testClaims{userID: userID, role: role}
}

func (v *testTokenValidator) ValidateToken(tokenString string) (Principal, error) {
	c, ok := v.validTokens[tokenString]
	if !ok {
		return nil, fmt.Errorf("invalid token")
	}
	return &c, nil
}

type testClaims struct {
	userID uuid.UUID
	role   types.Role
}

func (c *testClaims) GetUserID() uuid.UUID { return c.userID }
func (c *testClaims) GetRole() types.Role  { return c.role }

func identityHandler(t *testing.T, gotID *uuid.UUID, gotRole *types.Role) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := GetUserID(r)
		require.NoError(t, err)
		role, err := GetRole(r)
		require.NoError(t, err)
		*gotID, *gotRole = id, role
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	v := newTestTokenValidator()
	userID := uuid.New()
	v.addValidToken("admin-token", userID, types.RoleAdmin)

	var gotID uuid.UUID
	var gotRole types.Role
	handler := AuthMiddleware(v, nil)(identityHandler(t, &gotID, &gotRole))

	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	req.Header.Set("Authorization", "bearer admin-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID, gotID)
	assert.Equal(t, types.RoleAdmin, gotRole)
}

func TestAuthMiddleware_DefaultsToRecruiter(t *testing.T) {
	v := newTestTokenValidator()
	v.addValidToken("t", uuid.New(), "")

	var gotID uuid.UUID
	var gotRole types.Role
	handler := AuthMiddleware(v, nil)(identityHandler(t, &gotID, &gotRole))

	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	req.Header.Set("Authorization", "Bearer t")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, types.RoleRecruiter, gotRole)
}

func TestAuthMiddleware_ResolverOverridesClaim(t *testing.T) {
	v := newTestTokenValidator()
	userID := uuid.New()
	v.addValidToken("t", userID, types.RoleAdmin)

	var resolved uuid.UUID
	resolve := func(_ context.Context, id uuid.UUID) (types.Role, error) {
		resolved = id
		return types.RoleCandidate, nil
	}

	var gotID uuid.UUID
	var gotRole types.Role
	handler := AuthMiddleware(v, resolve)(identityHandler(t, &gotID, &gotRole))

	req := httptest.NewRequest(http.MethodGet, "/me/profile", nil)
	req.Header.Set("Authorization", "Bearer t")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID, resolved)
	assert.Equal(t, types.RoleCandidate, gotRole)
}

func TestAuthMiddleware_ResolverError(t *testing.T) {
	v := newTestTokenValidator()
	v.addValidToken("t", uuid.New(), types.RoleAdmin)
	resolve := func(context.Context, uuid.UUID) (types.Role, error) { return "", fmt.Errorf("db down") }

	handler := AuthMiddleware(v, resolve)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	req.Header.Set("Authorization", "Bearer t")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	v := newTestTokenValidator()
	v.addValidToken("good", uuid.New(), types.RoleAdmin)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "wrong scheme", header: "Basic good"},
		{name: "no token", header: "Bearer"},
		{name: "extra parts", header: "Bearer good extra"},
		{name: "unknown token", header: "Bearer bad"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := AuthMiddleware(v, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				t.Fatal("handler should not be called")
			}))
			req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	staffOnly := RequireRole(types.RoleAdmin, types.RoleRecruiter, types.RoleManager)(ok)

	tests := []struct {
		role types.Role
		want int
	}{
		{types.RoleAdmin, http.StatusNoContent},
		{types.RoleManager, http.StatusNoContent},
		{types.RoleCandidate, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
			req = req.WithContext(WithIdentity(req.Context(), uuid.New(), tt.role))
			w := httptest.NewRecorder()
			staffOnly.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}

	t.Run("no identity", func(t *testing.T) {
		w := httptest.NewRecorder()
		staffOnly.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/jobs", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestGetUserID_Missing(t *testing.T) {
	_, err := GetUserID(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Error(t, err)
	_, err = GetRole(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Error(t, err)
}
