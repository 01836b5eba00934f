package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osolis/billingcore/internal/domain"
	"github.com/osolis/billingcore/internal/usecase"
)

// PaymentRepository implements usecase.PaymentRepository. Allocation details
// are stored as a JSONB document alongside the payment row.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

const paymentColumns = `id, parent_id, parent_type, payment_date, amount_paid, status, details, created_at, updated_at`

// Create inserts a new payment.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	details, err := marshalDetails(payment.Details)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO payments (`+paymentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		payment.ID,
		payment.ParentID,
		string(payment.ParentType),
		timeToPgTimestamptz(payment.PaymentDate),
		decimalToNumeric(payment.AmountPaid),
		string(payment.Status),
		details,
		timeToPgTimestamptz(payment.CreatedAt),
		timeToPgTimestamptz(payment.UpdatedAt),
	)

	return err
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE id = $1`, id)

	payment, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}

		return nil, err
	}

	return payment, nil
}

// List retrieves a parent's payments ordered by payment date.
func (r *PaymentRepository) List(ctx context.Context, filter usecase.PaymentFilter) ([]*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
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

	query += " ORDER BY payment_date"
	if filter.Descending {
		query += " DESC"
	}
	query += ", id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}

	return payments, rows.Err()
}

// Update applies a payment patch.
func (r *PaymentRepository) Update(ctx context.Context, patch usecase.PaymentPatch) error {
	return r.update(ctx, r.pool, patch)
}

// UpdateTx applies a payment patch inside a transaction.
func (r *PaymentRepository) UpdateTx(ctx context.Context, tx usecase.Transaction, patch usecase.PaymentPatch) error {
	return r.update(ctx, tx.(*Tx).PgxTx(), patch)
}

func (r *PaymentRepository) update(ctx context.Context, db dbtx, patch usecase.PaymentPatch) error {
	set := "updated_at = now()"
	args := []any{patch.ID}

	if patch.Status != nil {
		args = append(args, string(*patch.Status))
		set += fmt.Sprintf(", status = $%d", len(args))
	}
	if patch.Details != nil {
		details, err := marshalDetails(*patch.Details)
		if err != nil {
			return err
		}
		args = append(args, details)
		set += fmt.Sprintf(", details = $%d", len(args))
	}

	tag, err := db.Exec(ctx, "UPDATE payments SET "+set+" WHERE id = $1", args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}

	return nil
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var (
		payment                       domain.Payment
		parentType, status            string
		paymentDate, created, updated pgtype.Timestamptz
		amount                        pgtype.Numeric
		details                       []byte
	)

	err := row.Scan(
		&payment.ID,
		&payment.ParentID,
		&parentType,
		&paymentDate,
		&amount,
		&status,
		&details,
		&created,
		&updated,
	)
	if err != nil {
		return nil, err
	}

	payment.ParentType = domain.ParentType(parentType)
	payment.Status = domain.PaymentStatus(status)
	payment.PaymentDate = paymentDate.Time
	payment.CreatedAt = created.Time
	payment.UpdatedAt = updated.Time
	payment.AmountPaid = numericToDecimal(amount)

	if len(details) > 0 {
		if err := json.Unmarshal(details, &payment.Details); err != nil {
			return nil, err
		}
	}

	return &payment, nil
}

func marshalDetails(details []domain.PaymentDetail) ([]byte, error) {
	if details == nil {
		details = []domain.PaymentDetail{}
	}

	return json.Marshal(details)
}
