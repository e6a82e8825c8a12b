// Package accounts defines the account model and the store that persists it.
// Every identity operation goes through the store's small relational-algebra
// shaped contract over the single users relation.
package accounts

import "time"

// Role is the fixed capability class of an account. It never changes after
// creation.
type Role = string

const (
	RoleUser   Role = "user"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// Status is the account lifecycle state gating login eligibility.
// Transitions: pending_verification -> active, active <-> suspended.
type Status = string

const (
	StatusPendingVerification Status = "pending_verification"
	StatusActive              Status = "active"
	StatusSuspended           Status = "suspended"
)

// Account is one row in the users relation. The three token fields are
// pointers because NULL is meaningful for them: a pending account has a
// non-nil verification token, an active one has none.
type Account struct {
	ID                     string
	Email                  string
	PasswordHash           string
	Name                   string
	PhoneNumber            string
	Address                string
	AvatarURL              string
	Role                   Role
	Status                 Status
	EmailVerificationToken *string
	ResetPasswordToken     *string
	RefreshToken           *string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}
