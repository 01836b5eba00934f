package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/osolis/billingcore/internal/domain"
)

// ChargeFilter selects charges by parent, optionally restricted to statuses.
// Results are ordered by movement date; zero value means ascending.
type ChargeFilter struct {
	ParentID   string
	ParentType domain.ParentType
	Statuses   []domain.ChargeStatus
	Descending bool
}

// PaymentFilter selects payments by parent, optionally restricted to
// statuses. Results are ordered by payment date; zero value means ascending.
type PaymentFilter struct {
	ParentID   string
	ParentType domain.ParentType
	Statuses   []domain.PaymentStatus
	Descending bool
}

// ChargePatch is a partial update of a charge. Nil fields are left untouched.
// Updates to unknown identifiers must fail with domain.ErrChargeNotFound.
type ChargePatch struct {
	ID              string
	Status          *domain.ChargeStatus
	PreviousBalance *decimal.Decimal
}

// PaymentPatch is a partial update of a payment. Nil fields are left
// untouched. Updates to unknown identifiers must fail with
// domain.ErrPaymentNotFound.
type PaymentPatch struct {
	ID      string
	Status  *domain.PaymentStatus
	Details *[]domain.PaymentDetail
}

// ChargeRepository defines data access for charges.
type ChargeRepository interface {
	Create(ctx context.Context, charge *domain.Charge) error
	GetByID(ctx context.Context, id string) (*domain.Charge, error)
	List(ctx context.Context, filter ChargeFilter) ([]*domain.Charge, error)
	Update(ctx context.Context, patch ChargePatch) error
	UpdateTx(ctx context.Context, tx Transaction, patch ChargePatch) error
}

// PaymentRepository defines data access for payments.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	List(ctx context.Context, filter PaymentFilter) ([]*domain.Payment, error)
	Update(ctx context.Context, patch PaymentPatch) error
	UpdateTx(ctx context.Context, tx Transaction, patch PaymentPatch) error
}

// AccountRepository defines read access to accounts. Accounts are owned by an
// external account service.
type AccountRepository interface {
	GetByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)
	ListByClient(ctx context.Context, clientID string) ([]*domain.Account, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// ClientRepository defines read access to clients.
type ClientRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Client, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier retries an operation on transient storage failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Cache defines caching operations for derived reports.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
