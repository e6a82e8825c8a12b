// Package identity orchestrates the account lifecycle: registration, login,
// email verification, password reset and change, refresh-token rotation, and
// account deletion. It enforces the account status state machine and the
// role gate on every credential operation.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/shopcore/identity/internal/accounts"
	"github.com/shopcore/identity/internal/auth"
	"github.com/shopcore/identity/internal/blob"
	"github.com/shopcore/identity/internal/common"
	"github.com/shopcore/identity/internal/config"
	"github.com/shopcore/identity/internal/logging"
	"github.com/shopcore/identity/internal/mailer"
	"github.com/shopcore/identity/internal/password"
)

// TokenPair is what a successful login yields. RefreshToken is empty on
// surfaces that do not support refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RegisterInput carries a registration request. Provisioned accounts (and
// all admin accounts) start active and skip the verification mail.
type RegisterInput struct {
	Email       string
	Password    string
	Name        string
	Role        accounts.Role
	Provisioned bool
}

type Service struct {
	store   accounts.Store
	tokens  *auth.Service
	mail    mailer.Mailer
	blobs   blob.Store
	log     logging.Logger
	baseURL string
}

func NewService(store accounts.Store, tokens *auth.Service, mail mailer.Mailer, blobs blob.Store, log logging.Logger, cfg *config.Config) *Service {
	return &Service{
		store:   store,
		tokens:  tokens,
		mail:    mail,
		blobs:   blobs,
		log:     log.With("component", "identity"),
		baseURL: cfg.PublicBaseURL,
	}
}

// internal logs the underlying failure and returns the opaque sentinel; the
// detail never reaches a client.
func (s *Service) internal(ctx context.Context, op string, err error) error {
	s.log.Error(ctx, "operation failed", "op", op, "err", err)
	return common.ErrInternal
}

// Register creates an account. The email existence check runs before the
// insert, accepting a narrow race window over relying on the unique
// constraint. A failure to send the verification mail is logged, not
// surfaced: the account exists and the token can be re-sent.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*accounts.Account, error) {
	if in.Email == "" {
		return nil, fmt.Errorf("%w: empty email", common.ErrValidation)
	}

	hash, err := password.Hash(in.Password)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			return nil, err
		}
		return nil, s.internal(ctx, "register", err)
	}

	_, err = s.store.FindByField(ctx, "Email", in.Email)
	if err == nil {
		return nil, common.ErrEmailTaken
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, s.internal(ctx, "register", err)
	}

	role := in.Role
	if role == "" {
		role = accounts.RoleUser
	}
	provisioned := in.Provisioned || role == accounts.RoleAdmin

	fields := map[string]any{
		"Email":        in.Email,
		"PasswordHash": hash,
		"Role":         role,
	}
	if in.Name != "" {
		fields["Name"] = in.Name
	}

	verificationToken := ""
	if provisioned {
		fields["Status"] = accounts.StatusActive
	} else {
		verificationToken = uuid.NewString()
		fields["Status"] = accounts.StatusPendingVerification
		fields["EmailVerificationToken"] = verificationToken
	}

	acc, err := s.store.Insert(ctx, fields)
	if err != nil {
		return nil, s.internal(ctx, "register", err)
	}

	if !provisioned {
		link := s.baseURL + "/auth/verify-email/" + verificationToken
		body := "Welcome! Confirm your email address by visiting " + link
		if err := s.mail.Send(ctx, acc.Email, "Verify your email", body); err != nil {
			s.log.Warn(ctx, "verification mail not sent", "account_id", acc.ID, "err", err)
		}
	}

	return acc, nil
}

// VerifyEmail consumes a verification token, activating the account. The
// token is single-use: clearing it makes a replay fail.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return common.ErrInvalidToken
	}

	acc, err := s.store.FindByField(ctx, "EmailVerificationToken", token)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrInvalidToken
		}
		return s.internal(ctx, "verify email", err)
	}

	_, err = s.store.Update(ctx, acc.ID, map[string]any{
		"Status":                 accounts.StatusActive,
		"EmailVerificationToken": nil,
	})
	if err != nil {
		return s.internal(ctx, "verify email", err)
	}

	return nil
}

// Login authenticates an account against one surface. Every failure mode —
// unknown email, wrong password, unverified or suspended account, wrong role
// — collapses into ErrInvalidCredentials so responses cannot be used to
// enumerate accounts.
func (s *Service) Login(ctx context.Context, email, pw string, surface accounts.Role, withRefresh bool) (*TokenPair, error) {
	acc, err := s.store.FindByField(ctx, "Email", email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// burn a comparison so a miss takes as long as a mismatch
			password.VerifyDecoy(pw)
			return nil, common.ErrInvalidCredentials
		}
		return nil, s.internal(ctx, "login", err)
	}

	// the password check runs before the surface and status gates so every
	// rejection path pays for one comparison
	if !password.Verify(pw, acc.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}
	if acc.Role != surface || acc.Status != accounts.StatusActive {
		return nil, common.ErrInvalidCredentials
	}

	access, err := s.tokens.IssueAccess(acc.ID, acc.Role, nil)
	if err != nil {
		return nil, s.internal(ctx, "login", err)
	}

	pair := &TokenPair{AccessToken: access}

	if withRefresh {
		refresh, err := s.tokens.IssueRefresh(acc.ID)
		if err != nil {
			return nil, s.internal(ctx, "login", err)
		}
		// Last write wins: a concurrent login legitimately invalidates the
		// refresh token issued first.
		if _, err := s.store.Update(ctx, acc.ID, map[string]any{"RefreshToken": refresh}); err != nil {
			return nil, s.internal(ctx, "login", err)
		}
		pair.RefreshToken = refresh
	}

	return pair, nil
}

// ForgotPassword stores a fresh reset token and mails a reset link. Unlike
// login, a missing account is reported as such; the enumeration asymmetry is
// a documented product trade-off.
func (s *Service) ForgotPassword(ctx context.Context, email string, surface accounts.Role) error {
	acc, err := s.store.FindByField(ctx, "Email", email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return s.internal(ctx, "forgot password", err)
	}

	if acc.Role != surface {
		return common.ErrNotFound
	}

	token := uuid.NewString()
	if _, err := s.store.Update(ctx, acc.ID, map[string]any{"ResetPasswordToken": token}); err != nil {
		return s.internal(ctx, "forgot password", err)
	}

	link := s.baseURL + "/auth/reset-password/" + token
	body := "Reset your password by visiting " + link
	if err := s.mail.Send(ctx, acc.Email, "Password reset", body); err != nil {
		return s.internal(ctx, "forgot password", err)
	}

	return nil
}

// ResetPassword consumes a reset token and stores the new password hash.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return common.ErrInvalidToken
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			return err
		}
		return s.internal(ctx, "reset password", err)
	}

	acc, err := s.store.FindByField(ctx, "ResetPasswordToken", token)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrInvalidToken
		}
		return s.internal(ctx, "reset password", err)
	}

	_, err = s.store.Update(ctx, acc.ID, map[string]any{
		"PasswordHash":       hash,
		"ResetPasswordToken": nil,
	})
	if err != nil {
		return s.internal(ctx, "reset password", err)
	}

	return nil
}

// ChangePassword replaces the password of an authenticated account after
// checking the old one.
func (s *Service) ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) error {
	hash, err := password.Hash(newPassword)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			return err
		}
		return s.internal(ctx, "change password", err)
	}

	acc, err := s.store.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return s.internal(ctx, "change password", err)
	}

	if !password.Verify(oldPassword, acc.PasswordHash) {
		return common.ErrInvalidCredentials
	}

	if _, err := s.store.Update(ctx, acc.ID, map[string]any{"PasswordHash": hash}); err != nil {
		return s.internal(ctx, "change password", err)
	}

	return nil
}

// Refresh exchanges a refresh token for a new access token. The token must
// verify and equal the value stored on the account; anything older than the
// latest login has been overwritten and fails here.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return "", common.ErrInvalidToken
	}

	acc, err := s.store.FindByID(ctx, claims.AccountID())
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrInvalidToken
		}
		return "", s.internal(ctx, "refresh", err)
	}

	if acc.RefreshToken == nil || *acc.RefreshToken != refreshToken {
		return "", common.ErrInvalidToken
	}

	access, err := s.tokens.IssueAccess(acc.ID, acc.Role, nil)
	if err != nil {
		return "", s.internal(ctx, "refresh", err)
	}

	return access, nil
}
