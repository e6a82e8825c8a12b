package httpapi

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/shopcore/identity/internal/accounts"
	"github.com/shopcore/identity/internal/common"
	"github.com/shopcore/identity/internal/identity"
)

func (s *Server) handleRegister(surface accounts.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req registerRequest
		if err := c.BodyParser(&req); err != nil {
			return s.respondError(c, fmt.Errorf("%w: malformed body", common.ErrValidation))
		}
		if err := req.Validate(); err != nil {
			return s.respondError(c, fmt.Errorf("%w: %v", common.ErrValidation, err))
		}

		_, err := s.identity.Register(c.UserContext(), identity.RegisterInput{
			Email:    req.Email,
			Password: req.Password,
			Name:     req.Name,
			Role:     surface,
		})
		if err != nil {
			return s.respondError(c, err)
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "registered, check your inbox to verify the account",
		})
	}
}

func (s *Server) handleLogin(surface accounts.Role, withRefresh bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := c.BodyParser(&req); err != nil {
			return s.respondError(c, fmt.Errorf("%w: malformed body", common.ErrValidation))
		}
		if err := req.Validate(); err != nil {
			return s.respondError(c, fmt.Errorf("%w: %v", common.ErrValidation, err))
		}

		pair, err := s.identity.Login(c.UserContext(), req.Email, req.Password, surface, withRefresh)
		if err != nil {
			return s.respondError(c, err)
		}

		resp := fiber.Map{"accessToken": pair.AccessToken}
		if pair.RefreshToken != "" {
			resp["refreshToken"] = pair.RefreshToken
		}
		return c.JSON(resp)
	}
}

func (s *Server) handleVerifyEmail(c *fiber.Ctx) error {
	if err := s.identity.VerifyEmail(c.UserContext(), c.Params("token")); err != nil {
		// a bad link token is a malformed request, not a failed authentication
		if errors.Is(err, common.ErrInvalidToken) {
			err = fmt.Errorf("%w: invalid verification token", common.ErrValidation)
		}
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "email verified"})
}

func (s *Server) handleForgotPassword(surface accounts.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req forgotPasswordRequest
		if err := c.BodyParser(&req); err != nil {
			return s.respondError(c, fmt.Errorf("%w: malformed body", common.ErrValidation))
		}
		if err := req.Validate(); err != nil {
			return s.respondError(c, fmt.Errorf("%w: %v", common.ErrValidation, err))
		}

		if err := s.identity.ForgotPassword(c.UserContext(), req.Email, surface); err != nil {
			return s.respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "password reset email sent"})
	}
}

func (s *Server) handleResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, fmt.Errorf("%w: malformed body", common.ErrValidation))
	}
	if err := req.Validate(); err != nil {
		return s.respondError(c, fmt.Errorf("%w: %v", common.ErrValidation, err))
	}

	if err := s.identity.ResetPassword(c.UserContext(), c.Params("token"), req.Password); err != nil {
		if errors.Is(err, common.ErrInvalidToken) {
			err = fmt.Errorf("%w: invalid reset token", common.ErrValidation)
		}
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "password reset"})
}

func (s *Server) handleChangePassword(c *fiber.Ctx) error {
	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, fmt.Errorf("%w: malformed body", common.ErrValidation))
	}
	if err := req.Validate(); err != nil {
		return s.respondError(c, fmt.Errorf("%w: %v", common.ErrValidation, err))
	}

	claims := claimsFromCtx(c)
	if claims == nil {
		return s.respondError(c, common.ErrInvalidToken)
	}

	if err := s.identity.ChangePassword(c.UserContext(), claims.AccountID(), req.OldPassword, req.NewPassword); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "password changed"})
}

func (s *Server) handleRefreshToken(c *fiber.Ctx) error {
	var req refreshTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, fmt.Errorf("%w: malformed body", common.ErrValidation))
	}
	if err := req.Validate(); err != nil {
		return s.respondError(c, fmt.Errorf("%w: %v", common.ErrValidation, err))
	}

	access, err := s.identity.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"accessToken": access})
}
