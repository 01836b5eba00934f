package domain

import "time"

// AccountStatus is the lifecycle status of an account.
type AccountStatus string

const (
	AccountActive   AccountStatus = "active"
	AccountInactive AccountStatus = "inactive"
)

// Account represents a billable account. Accounts are created and updated by
// an external account service; this engine treats them as read-only.
type Account struct {
	AccountNumber   string
	ClientID        string
	MasterReference string
	Status          AccountStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsSlave reports whether the account rolls up into a master account.
// Slave accounts are excluded from aggregate batch operations.
func (a *Account) IsSlave() bool {
	return a.MasterReference != ""
}

// IsActive reports whether the account is active.
func (a *Account) IsActive() bool {
	return a.Status == AccountActive
}
