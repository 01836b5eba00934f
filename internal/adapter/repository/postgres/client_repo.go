package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osolis/billingcore/internal/domain"
)

// ClientRepository implements usecase.ClientRepository.
type ClientRepository struct {
	pool *pgxpool.Pool
}

// NewClientRepository creates a new ClientRepository.
func NewClientRepository(pool *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{pool: pool}
}

// GetByID retrieves a client by ID.
func (r *ClientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, exchange_rate, created_at, updated_at
		FROM clients
		WHERE id = $1`, id)

	var (
		client           domain.Client
		rate             pgtype.Numeric
		created, updated pgtype.Timestamptz
	)

	err := row.Scan(&client.ID, &client.Name, &rate, &created, &updated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrClientNotFound
		}

		return nil, err
	}

	client.ExchangeRate = numericToDecimal(rate)
	client.CreatedAt = created.Time
	client.UpdatedAt = updated.Time

	return &client, nil
}
