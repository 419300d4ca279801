package storage

import "time"

// Host is a named network endpoint. Optional text fields are empty when unset.
type Host struct {
	ID         int64
	Name       string
	IPv4       string
	IPv6       string
	MAC        string
	Note       string
	SSLEnabled bool
}

// Alias is an additional name pointing at a host name or an IP literal.
type Alias struct {
	ID         int64
	Name       string
	Target     string
	Note       string
	SSLEnabled bool
}

// UserStatus is the account state checked at login.
type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserDisabled UserStatus = "disabled"
	UserLocked   UserStatus = "locked"
)

// User is an operator account. The audit fields are advisory.
type User struct {
	ID                int64
	Username          string
	PasswordHash      string
	Email             string
	IsAdmin           bool
	Modules           []string // e.g., ["dns", "dhcp"]
	Status            UserStatus
	FailedAttempts    int
	LastFailedAt      *time.Time
	LastLoginAt       *time.Time
	PasswordChangedAt *time.Time
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewUser carries the fields needed to create a user.
type NewUser struct {
	Username     string
	PasswordHash string
	Email        string
	IsAdmin      bool
	Modules      []string
}

// Setting keys seeded at first initialization.
const (
	SettingDomain       = "domain"
	SettingExternalIPv4 = "external_ipv4"
)
