package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osolis/billingcore/internal/domain"
)

// AccountRepository implements usecase.AccountRepository. Accounts are
// maintained by the provisioning system; this repository only reads them.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = `account_number, client_id, master_reference, status, created_at, updated_at`

// GetByNumber retrieves an account by its account number.
func (r *AccountRepository) GetByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE account_number = $1`, accountNumber)

	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return account, nil
}

// ListByClient retrieves all accounts belonging to a client.
func (r *AccountRepository) ListByClient(ctx context.Context, clientID string) ([]*domain.Account, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE client_id = $1
		ORDER BY account_number`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAccounts(rows)
}

// List retrieves accounts with pagination, ordered by account number.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		ORDER BY account_number
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAccounts(rows)
}

func collectAccounts(rows pgx.Rows) ([]*domain.Account, error) {
	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account          domain.Account
		status           string
		created, updated pgtype.Timestamptz
	)

	err := row.Scan(
		&account.AccountNumber,
		&account.ClientID,
		&account.MasterReference,
		&status,
		&created,
		&updated,
	)
	if err != nil {
		return nil, err
	}

	account.Status = domain.AccountStatus(status)
	account.CreatedAt = created.Time
	account.UpdatedAt = updated.Time

	return &account, nil
}
