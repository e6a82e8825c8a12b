package accounts

import "fmt"

// columnForField maps logical field names used by callers to users table
// columns. Only names present here may appear in filters, inserts or
// updates; anything else is rejected before SQL text is built, so a
// caller-controlled string can never become a column identifier.
// The mapping is bijective.
var columnForField = map[string]string{
	"ID":                     "id",
	"Email":                  "email",
	"PasswordHash":           "password_hash",
	"Name":                   "name",
	"PhoneNumber":            "phone_number",
	"Address":                "address",
	"AvatarURL":              "avatar_url",
	"Role":                   "role",
	"Status":                 "status",
	"EmailVerificationToken": "email_verification_token",
	"ResetPasswordToken":     "reset_password_token",
	"RefreshToken":           "refresh_token",
}

func columnFor(field string) (string, error) {
	col, ok := columnForField[field]
	if !ok {
		return "", fmt.Errorf("unknown account field %q", field)
	}
	return col, nil
}
