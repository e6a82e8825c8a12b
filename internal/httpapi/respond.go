package httpapi

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/shopcore/identity/internal/accounts"
	"github.com/shopcore/identity/internal/common"
)

func statusForError(err error) int {
	switch {
	case errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrEmailTaken):
		return fiber.StatusBadRequest
	case errors.Is(err, common.ErrInvalidCredentials), errors.Is(err, common.ErrInvalidToken):
		return fiber.StatusUnauthorized
	case errors.Is(err, common.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, common.ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func (s *Server) respondError(c *fiber.Ctx, err error) error {
	status := statusForError(err)

	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		// never leak internal detail; the engine already logged it
		msg = common.ErrInternal.Error()
	}

	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// accountResponse is the client-facing projection of an account. The
// password hash and the stored tokens never leave the service.
type accountResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name,omitempty"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	Address     string    `json:"address,omitempty"`
	AvatarURL   string    `json:"avatarUrl,omitempty"`
	Role        string    `json:"role"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toAccountResponse(a *accounts.Account) accountResponse {
	return accountResponse{
		ID:          a.ID,
		Email:       a.Email,
		Name:        a.Name,
		PhoneNumber: a.PhoneNumber,
		Address:     a.Address,
		AvatarURL:   a.AvatarURL,
		Role:        a.Role,
		Status:      a.Status,
		CreatedAt:   a.CreatedAt,
	}
}
