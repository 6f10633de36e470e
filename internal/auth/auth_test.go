package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/workforce-service/pkg/util/errorutil"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", "workforce-service", time.Hour)

	token, expiresAt, err := tm.GenerateToken("planner-1", RolePlanner)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "planner-1", claims.SubjectID)
	assert.Equal(t, RolePlanner, claims.Role)
}

func TestParseTokenRejects(t *testing.T) {
	tm := NewTokenManager("secret", "workforce-service", time.Hour)
	valid, _, err := tm.GenerateToken("a", RoleAdmin)
	require.NoError(t, err)

	expired := NewTokenManager("secret", "workforce-service", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	stale, _, err := expired.GenerateToken("a", RoleAdmin)
	require.NoError(t, err)

	otherIssuer, _, err := NewTokenManager("secret", "someone-else", time.Hour).GenerateToken("a", RoleAdmin)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		tm    *TokenManager
	}{
		{name: "wrong secret", token: valid, tm: NewTokenManager("other", "workforce-service", time.Hour)},
		{name: "expired", token: stale, tm: tm},
		{name: "issuer mismatch", token: otherIssuer, tm: tm},
		{name: "garbage", token: "not-a-jwt", tm: tm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.tm.ParseToken(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestGenerateTokenUnknownRole(t *testing.T) {
	_, _, err := NewTokenManager("secret", "", time.Hour).GenerateToken("a", Role("root"))
	assert.Error(t, err)
}

func newTestApp(tm *TokenManager, guard fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).SendString(domainErr.Code)
		},
	})
	app.Post("/write", NewAuthMiddleware(tm).Handle, guard, func(c *fiber.Ctx) error {
		principal, _ := PrincipalFromContext(c)
		return c.SendString(principal.SubjectID)
	})
	return app
}

func TestMiddlewareAndRoles(t *testing.T) {
	tm := NewTokenManager("secret", "workforce-service", time.Hour)
	planner, _, err := tm.GenerateToken("planner-1", RolePlanner)
	require.NoError(t, err)
	viewer, _, err := tm.GenerateToken("viewer-1", RoleViewer)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "missing header", header: "", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "bad token", header: "Bearer nope", status: http.StatusUnauthorized},
		{name: "viewer cannot write", header: "Bearer " + viewer, status: http.StatusForbidden},
		{name: "planner can write", header: "Bearer " + planner, status: http.StatusOK},
	}

	app := newTestApp(tm, RequireWriter())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/write", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleViewer.Valid())
	assert.False(t, Role("").Valid())
}
