package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/shopcore/identity/internal/accounts"
)

// Middleware is attached per route rather than per group: a group-level Use
// on "/admin" would also intercept the unauthenticated "/admin/auth/*"
// surface, which shares the prefix.
func (s *Server) registerRoutes() {
	// user and seller surfaces carry the full credential lifecycle
	s.registerAuthRoutes(s.app.Group("/auth"), accounts.RoleUser)
	s.registerAuthRoutes(s.app.Group("/seller/auth"), accounts.RoleSeller)

	// admins are provisioned, never self-registered
	adminAuth := s.app.Group("/admin/auth")
	adminAuth.Post("/login", s.handleLogin(accounts.RoleAdmin, true))
	adminAuth.Post("/refresh-token", s.handleRefreshToken)
	adminAuth.Put("/change-password", s.requireAuth(), s.handleChangePassword)

	admin := s.app.Group("/admin")
	admin.Get("/accounts", s.requireAuth(), s.requireRole(accounts.RoleAdmin), s.handleListAccounts)
	admin.Post("/accounts", s.requireAuth(), s.requireRole(accounts.RoleAdmin), s.handleCreateAccount)

	s.registerProfileRoutes("/user", accounts.RoleUser)
	s.registerProfileRoutes("/seller", accounts.RoleSeller)
	s.registerProfileRoutes("/admin", accounts.RoleAdmin)
}

func (s *Server) registerAuthRoutes(g fiber.Router, surface accounts.Role) {
	g.Post("/register", s.handleRegister(surface))
	g.Post("/login", s.handleLogin(surface, true))
	g.Get("/verify-email/:token", s.handleVerifyEmail)
	g.Post("/forgot-password", s.handleForgotPassword(surface))
	g.Post("/reset-password/:token", s.handleResetPassword)
	g.Put("/change-password", s.requireAuth(), s.handleChangePassword)
	g.Post("/refresh-token", s.handleRefreshToken)
}

func (s *Server) registerProfileRoutes(prefix string, role accounts.Role) {
	g := s.app.Group(prefix)
	g.Get("/profile", s.requireAuth(), s.requireRole(role), s.handleProfile)
	g.Put("/profile", s.requireAuth(), s.requireRole(role), s.handleUpdateProfile)
	g.Delete("/profile", s.requireAuth(), s.requireRole(role), s.handleDeleteProfile)
}
