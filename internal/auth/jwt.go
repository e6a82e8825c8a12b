// Package auth issues and verifies the signed tokens that authenticate
// requests: short-lived access tokens carrying the account role, and
// longer-lived refresh tokens that are additionally matched against the
// value stored on the account row.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shopcore/identity/internal/common"
	"github.com/shopcore/identity/internal/config"
)

const (
	useAccess  = "access"
	useRefresh = "refresh"
)

// Claims is the verified claim set extracted from a token.
type Claims struct {
	jwt.RegisteredClaims
	Role     string `json:"role,omitempty"`
	TokenUse string `json:"token_use,omitempty"`
}

// AccountID returns the subject the token was issued for.
func (c *Claims) AccountID() string {
	return c.Subject
}

// Service signs and validates tokens with an HMAC secret loaded once at
// startup. Issuance and verification are pure computations; the service
// holds no mutable state.
type Service struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewService(cfg *config.Config) *Service {
	return &Service{
		secret:     []byte(cfg.SecretKey),
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
	}
}

// IssueAccess signs an access token for the account. Extra claims are merged
// into the claim set; reserved claim names are not overridable.
func (s *Service) IssueAccess(accountID, role string, extra map[string]any) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{}
	for k, v := range extra {
		claims[k] = v
	}
	claims["sub"] = accountID
	claims["role"] = role
	claims["token_use"] = useAccess
	claims["iat"] = jwt.NewNumericDate(now)
	claims["exp"] = jwt.NewNumericDate(now.Add(s.accessTTL))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing access token: %w", err)
	}

	return signed, nil
}

// IssueRefresh signs a refresh token for the account. The caller persists the
// returned value verbatim on the account row; a later presentation must match
// it by equality, which is what makes single-slot revocation work.
func (s *Service) IssueRefresh(accountID string) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
		},
		TokenUse: useRefresh,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing refresh token: %w", err)
	}

	return signed, nil
}

// VerifyAccess validates an access token and returns its claims. Expired,
// malformed and wrongly-signed tokens are indistinguishable to the caller.
func (s *Service) VerifyAccess(tokenString string) (*Claims, error) {
	return s.verify(tokenString, useAccess)
}

// VerifyRefresh validates a refresh token and returns its claims.
func (s *Service) VerifyRefresh(tokenString string) (*Claims, error) {
	return s.verify(tokenString, useRefresh)
}

func (s *Service) verify(tokenString, use string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.TokenUse != use {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
