package httpapi

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/shopcore/identity/internal/accounts"
	"github.com/shopcore/identity/internal/common"
	"github.com/shopcore/identity/internal/identity"
)

func (s *Server) handleProfile(c *fiber.Ctx) error {
	claims := claimsFromCtx(c)

	acc, err := s.identity.Profile(c.UserContext(), claims.AccountID())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(toAccountResponse(acc))
}

func (s *Server) handleUpdateProfile(c *fiber.Ctx) error {
	claims := claimsFromCtx(c)

	var in identity.ProfileUpdate

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		if v := c.FormValue("name"); v != "" {
			in.Name = &v
		}
		if v := c.FormValue("phoneNumber"); v != "" {
			in.PhoneNumber = &v
		}
		if v := c.FormValue("address"); v != "" {
			in.Address = &v
		}

		file, err := c.FormFile("avatar")
		if err == nil {
			if file.Size > maxAvatarSize {
				return s.respondError(c, fmt.Errorf("%w: avatar exceeds 5MB", common.ErrValidation))
			}
			contentType := file.Header.Get(fiber.HeaderContentType)
			if !strings.HasPrefix(contentType, "image/") {
				return s.respondError(c, fmt.Errorf("%w: avatar must be an image", common.ErrValidation))
			}

			f, err := file.Open()
			if err != nil {
				return s.respondError(c, fmt.Errorf("%w: unreadable avatar upload", common.ErrValidation))
			}
			defer f.Close()

			in.Avatar = &identity.AvatarUpload{Content: f, ContentType: contentType}
		}
	} else {
		var req updateProfileRequest
		if err := c.BodyParser(&req); err != nil {
			return s.respondError(c, fmt.Errorf("%w: malformed body", common.ErrValidation))
		}
		in.Name = req.Name
		in.PhoneNumber = req.PhoneNumber
		in.Address = req.Address
	}

	acc, err := s.identity.UpdateProfile(c.UserContext(), claims.AccountID(), in)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(toAccountResponse(acc))
}

func (s *Server) handleDeleteProfile(c *fiber.Ctx) error {
	claims := claimsFromCtx(c)

	if err := s.identity.Delete(c.UserContext(), claims.AccountID()); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "account deleted"})
}

func (s *Server) handleListAccounts(c *fiber.Ctx) error {
	filter := map[string]any{}
	if v := c.Query("role"); v != "" {
		filter["Role"] = v
	}
	if v := c.Query("status"); v != "" {
		filter["Status"] = v
	}
	if v := c.Query("email"); v != "" {
		filter["Email"] = v
	}

	limit := c.QueryInt("limit", 0)
	offset := c.QueryInt("offset", 0)

	// an offset is meaningless without a page size; rejecting it beats
	// silently returning the unpaged list
	if offset > 0 && limit <= 0 {
		return s.respondError(c, fmt.Errorf("%w: offset requires a limit", common.ErrValidation))
	}

	var page *accounts.Page
	if limit > 0 {
		page = &accounts.Page{Limit: limit, Offset: offset}
	}

	rows, total, err := s.identity.ListAccounts(c.UserContext(), filter, page)
	if err != nil {
		return s.respondError(c, err)
	}

	out := make([]accountResponse, 0, len(rows))
	for _, a := range rows {
		out = append(out, toAccountResponse(a))
	}

	resp := fiber.Map{"accounts": out, "total": total}
	if limit > 0 {
		resp["totalPages"] = (total + limit - 1) / limit
	}
	return c.JSON(resp)
}

func (s *Server) handleCreateAccount(c *fiber.Ctx) error {
	var req createAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, fmt.Errorf("%w: malformed body", common.ErrValidation))
	}
	if err := req.Validate(); err != nil {
		return s.respondError(c, fmt.Errorf("%w: %v", common.ErrValidation, err))
	}

	acc, err := s.identity.Register(c.UserContext(), identity.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		Role:        req.Role,
		Provisioned: true,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toAccountResponse(acc))
}
