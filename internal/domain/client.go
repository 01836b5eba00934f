package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Client owns one or more accounts. Like accounts, clients are managed by an
// external service and read-only here.
type Client struct {
	ID           string
	Name         string
	ExchangeRate decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
