package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/workforce-service/pkg/util/errorutil"
)

// Role grants access to API surfaces.
type Role string

const (
	RoleAdmin   Role = "admin"
	RolePlanner Role = "planner"
	RoleViewer  Role = "viewer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RolePlanner, RoleViewer:
		return true
	}
	return false
}

// RequireRole ensures the principal has one of the allowed roles.
func RequireRole(allowed ...Role) fiber.Handler {
	allowedSet := make(map[Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireWriter admits roles that may change forecasts and schedules.
func RequireWriter() fiber.Handler {
	return RequireRole(RoleAdmin, RolePlanner)
}

// RequireReader admits every authenticated role.
func RequireReader() fiber.Handler {
	return RequireRole(RoleAdmin, RolePlanner, RoleViewer)
}
