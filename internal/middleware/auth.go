package middleware

import (
	"strings"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"

	"github.com/dimitrije/accounts-api/internal/services"
)

const (
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
	UserRoleKey  = "user_role"
)

// Auth authenticates the request from the Authorization header, falling
// back to the "auth" cookie set by the OAuth callback.
func Auth(jwtService *services.JWTService) drift.HandlerFunc {
	return func(c *drift.Context) {
		var token string

		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				c.Unauthorized("invalid authorization header format")
				return
			}
			token = parts[1]
		} else if cookie, err := c.Request.Cookie("auth"); err == nil {
			token = cookie.Value
		}

		if token == "" {
			c.Unauthorized("missing authorization header")
			return
		}

		claims, err := jwtService.ValidateAccessToken(token)
		if err != nil {
			c.Unauthorized("invalid or expired token")
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserEmailKey, claims.Email)
		c.Set(UserRoleKey, claims.Role)

		c.Next()
	}
}

// RoleAllowed reports whether role is one of allowed. Roles are exact
// strings; there is no hierarchy between them.
func RoleAllowed(role string, allowed []string) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

// RequireRoles guards a route group. It must run after Auth, which is
// what puts the role into the context.
func RequireRoles(roles ...string) drift.HandlerFunc {
	return func(c *drift.Context) {
		if !RoleAllowed(GetUserRole(c), roles) {
			c.Forbidden("insufficient role")
			return
		}
		c.Next()
	}
}

func GetUserID(c *drift.Context) uuid.UUID {
	if id, ok := c.Get(UserIDKey); ok {
		if uid, ok := id.(uuid.UUID); ok {
			return uid
		}
	}
	return uuid.Nil
}

func GetUserEmail(c *drift.Context) string {
	if email, ok := c.Get(UserEmailKey); ok {
		if e, ok := email.(string); ok {
			return e
		}
	}
	return ""
}

func GetUserRole(c *drift.Context) string {
	if role, ok := c.Get(UserRoleKey); ok {
		if r, ok := role.(string); ok {
			return r
		}
	}
	return ""
}
