package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osolis/billingcore/internal/domain"
	"github.com/osolis/billingcore/internal/usecase"
)

// ChargeRepository implements usecase.ChargeRepository.
type ChargeRepository struct {
	pool *pgxpool.Pool
}

// NewChargeRepository creates a new ChargeRepository.
func NewChargeRepository(pool *pgxpool.Pool) *ChargeRepository {
	return &ChargeRepository{pool: pool}
}

const chargeColumns = `id, parent_id, parent_type, movement_date, total, status, previous_balance, exchange_rate, created_at, updated_at`

// Create inserts a new charge.
func (r *ChargeRepository) Create(ctx context.Context, charge *domain.Charge) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO charges (`+chargeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		charge.ID,
		charge.ParentID,
		string(charge.ParentType),
		timeToPgTimestamptz(charge.MovementDate),
		decimalToNumeric(charge.Total),
		string(charge.Status),
		decimalToNumeric(charge.PreviousBalance),
		decimalToNumeric(charge.ExchangeRate),
		timeToPgTimestamptz(charge.CreatedAt),
		timeToPgTimestamptz(charge.UpdatedAt),
	)

	return err
}

// GetByID retrieves a charge by ID.
func (r *ChargeRepository) GetByID(ctx context.Context, id string) (*domain.Charge, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+chargeColumns+`
		FROM charges
		WHERE id = $1`, id)

	charge, err := scanCharge(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrChargeNotFound
		}

		return nil, err
	}

	return charge, nil
}

// List retrieves a parent's charges ordered by movement date.
func (r *ChargeRepository) List(ctx context.Context, filter usecase.ChargeFilter) ([]*domain.Charge, error) {
	query := `
		SELECT ` + chargeColumns + `
		FROM charges
		WHERE parent_id = $1 AND parent_type = $2`
	args := []any{filter.ParentID, string(filter.ParentType)}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		args = append(args, statuses)
		query += fmt.Sprintf(" AND status = ANY($%d)", len(args))
	}

	query += " ORDER BY movement_date"
	if filter.Descending {
		query += " DESC"
	}
	query += ", id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var charges []*domain.Charge
	for rows.Next() {
		charge, err := scanCharge(rows)
		if err != nil {
			return nil, err
		}
		charges = append(charges, charge)
	}

	return charges, rows.Err()
}

// Update applies a charge patch.
func (r *ChargeRepository) Update(ctx context.Context, patch usecase.ChargePatch) error {
	return r.update(ctx, r.pool, patch)
}

// UpdateTx applies a charge patch inside a transaction.
func (r *ChargeRepository) UpdateTx(ctx context.Context, tx usecase.Transaction, patch usecase.ChargePatch) error {
	return r.update(ctx, tx.(*Tx).PgxTx(), patch)
}

func (r *ChargeRepository) update(ctx context.Context, db dbtx, patch usecase.ChargePatch) error {
	set := "updated_at = now()"
	args := []any{patch.ID}

	if patch.Status != nil {
		args = append(args, string(*patch.Status))
		set += fmt.Sprintf(", status = $%d", len(args))
	}
	if patch.PreviousBalance != nil {
		args = append(args, decimalToNumeric(*patch.PreviousBalance))
		set += fmt.Sprintf(", previous_balance = $%d", len(args))
	}

	tag, err := db.Exec(ctx, "UPDATE charges SET "+set+" WHERE id = $1", args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrChargeNotFound
	}

	return nil
}

func scanCharge(row pgx.Row) (*domain.Charge, error) {
	var (
		charge                         domain.Charge
		parentType, status             string
		movementDate, created, updated pgtype.Timestamptz
		total, previous, exchange      pgtype.Numeric
	)

	err := row.Scan(
		&charge.ID,
		&charge.ParentID,
		&parentType,
		&movementDate,
		&total,
		&status,
		&previous,
		&exchange,
		&created,
		&updated,
	)
	if err != nil {
		return nil, err
	}

	charge.ParentType = domain.ParentType(parentType)
	charge.Status = domain.ChargeStatus(status)
	charge.MovementDate = movementDate.Time
	charge.CreatedAt = created.Time
	charge.UpdatedAt = updated.Time
	charge.Total = numericToDecimal(total)
	charge.PreviousBalance = numericToDecimal(previous)
	charge.ExchangeRate = numericToDecimal(exchange)

	return &charge, nil
}
