package httpapi

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/shopcore/identity/internal/accounts"
	"github.com/shopcore/identity/internal/auth"
	"github.com/shopcore/identity/internal/common"
)

const claimsKey = "authClaims"

// requireAuth extracts and verifies the bearer token, making the claims
// available to downstream handlers.
func (s *Server) requireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)

		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			return s.respondError(c, common.ErrInvalidToken)
		}

		claims, err := s.tokens.VerifyAccess(strings.TrimPrefix(header, prefix))
		if err != nil {
			return s.respondError(c, common.ErrInvalidToken)
		}

		c.Locals(claimsKey, claims)
		return c.Next()
	}
}

// requireRole fails closed when the verified role does not match the role
// the route is gated on.
func (s *Server) requireRole(role accounts.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := claimsFromCtx(c)
		if claims == nil || claims.Role != role {
			return s.respondError(c, common.ErrForbidden)
		}
		return c.Next()
	}
}

func claimsFromCtx(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(claimsKey).(*auth.Claims)
	return claims
}
