// Package httpapi exposes the identity engine over REST. It owns route
// wiring, bearer-token extraction, payload validation, and the mapping from
// sentinel errors to status codes; all business rules live in the engine.
package httpapi

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/shopcore/identity/internal/accounts"
	"github.com/shopcore/identity/internal/auth"
	"github.com/shopcore/identity/internal/config"
	"github.com/shopcore/identity/internal/identity"
	"github.com/shopcore/identity/internal/logging"
)

// maxAvatarSize caps avatar uploads at 5MB.
const maxAvatarSize = 5 << 20

// Identity is the slice of the identity engine the handlers consume.
type Identity interface {
	Register(ctx context.Context, in identity.RegisterInput) (*accounts.Account, error)
	VerifyEmail(ctx context.Context, token string) error
	Login(ctx context.Context, email, pw string, surface accounts.Role, withRefresh bool) (*identity.TokenPair, error)
	ForgotPassword(ctx context.Context, email string, surface accounts.Role) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) error
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Profile(ctx context.Context, accountID string) (*accounts.Account, error)
	UpdateProfile(ctx context.Context, accountID string, in identity.ProfileUpdate) (*accounts.Account, error)
	Delete(ctx context.Context, accountID string) error
	ListAccounts(ctx context.Context, filter map[string]any, page *accounts.Page) ([]*accounts.Account, int, error)
}

// TokenVerifier verifies bearer tokens for the auth middleware.
type TokenVerifier interface {
	VerifyAccess(token string) (*auth.Claims, error)
}

type Server struct {
	app      *fiber.App
	cfg      *config.Config
	log      logging.Logger
	identity Identity
	tokens   TokenVerifier
}

func NewServer(cfg *config.Config, log logging.Logger, svc Identity, tokens TokenVerifier) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "identity",
		DisableStartupMessage: true,
		BodyLimit:             maxAvatarSize + 1<<20,
	})

	s := &Server{
		app:      app,
		cfg:      cfg,
		log:      log.With("component", "httpapi"),
		identity: svc,
		tokens:   tokens,
	}
	s.registerRoutes()

	return s
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(s.cfg.HTTPAddr)
	}()

	s.log.Info(ctx, "http server listening", "addr", s.cfg.HTTPAddr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.app.ShutdownWithTimeout(5 * time.Second)
	}
}
