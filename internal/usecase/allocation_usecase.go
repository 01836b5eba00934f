package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/osolis/billingcore/internal/domain"
	"github.com/osolis/billingcore/internal/infrastructure/metrics"
)

// AllocationUseCase creates payments and distributes them across pending
// charges. All allocation decisions for one parent run under its lock so the
// set of existing allocations stays consistent while a decision is in flight.
type AllocationUseCase struct {
	txManager   TransactionManager
	chargeRepo  ChargeRepository
	paymentRepo PaymentRepository
	accountRepo AccountRepository
	idGen       IDGenerator
	cache       Cache
	locker      *AccountLocker
	metrics     *metrics.Metrics
}

// NewAllocationUseCase creates a new AllocationUseCase.
func NewAllocationUseCase(
	txManager TransactionManager,
	chargeRepo ChargeRepository,
	paymentRepo PaymentRepository,
	accountRepo AccountRepository,
	idGen IDGenerator,
	cache Cache,
	locker *AccountLocker,
	metrics *metrics.Metrics,
) *AllocationUseCase {
	return &AllocationUseCase{
		txManager:   txManager,
		chargeRepo:  chargeRepo,
		paymentRepo: paymentRepo,
		accountRepo: accountRepo,
		idGen:       idGen,
		cache:       cache,
		locker:      locker,
		metrics:     metrics,
	}
}

// CreatePaymentInput represents input for creating a payment.
type CreatePaymentInput struct {
	ParentID    string
	ParentType  domain.ParentType
	PaymentDate time.Time
	AmountPaid  decimal.Decimal
	// Status defaults to unassigned. Credit, batch and online payments are
	// created with their channel status and keep it where applicable.
	Status domain.PaymentStatus
}

// CreatePayment persists a new payment and immediately allocates it against
// the parent's pending charges.
func (uc *AllocationUseCase) CreatePayment(ctx context.Context, input CreatePaymentInput) (*domain.Payment, *domain.AllocationResult, error) {
	if err := domain.ValidateAmount(input.AmountPaid); err != nil {
		return nil, nil, err
	}
	if err := domain.ValidateParentType(input.ParentType); err != nil {
		return nil, nil, err
	}
	if input.Status == "" {
		input.Status = domain.PaymentUnassigned
	}
	if err := domain.ValidatePaymentStatus(input.Status); err != nil {
		return nil, nil, err
	}
	if input.ParentType == domain.ParentAccount {
		if _, err := uc.accountRepo.GetByNumber(ctx, input.ParentID); err != nil {
			return nil, nil, err
		}
	}

	now := time.Now().UTC()
	payment := &domain.Payment{
		ID:          uc.idGen.Generate(),
		ParentID:    input.ParentID,
		ParentType:  input.ParentType,
		PaymentDate: input.PaymentDate,
		AmountPaid:  domain.Round2(input.AmountPaid),
		Status:      input.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.paymentRepo.Create(ctx, payment); err != nil {
		return nil, nil, err
	}

	result, err := uc.AllocatePayment(ctx, payment.ID)
	if err != nil {
		return nil, nil, err
	}
	payment.Details = result.Details
	payment.Status = result.Status

	return payment, result, nil
}

// AllocatePayment distributes a payment's amount across the parent's pending
// charges, oldest first, and persists the resulting allocations and status
// transitions atomically. Fetch failures abort: allocation cannot proceed
// without the authoritative outstanding amounts.
func (uc *AllocationUseCase) AllocatePayment(ctx context.Context, paymentID string) (*domain.AllocationResult, error) {
	start := time.Now()

	payment, err := uc.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	unlock := uc.locker.Lock(payment.ParentID)
	defer unlock()

	pending, err := uc.chargeRepo.List(ctx, ChargeFilter{
		ParentID:   payment.ParentID,
		ParentType: payment.ParentType,
		Statuses:   []domain.ChargeStatus{domain.ChargePending},
	})
	if err != nil {
		return nil, err
	}

	siblings, err := uc.paymentRepo.List(ctx, PaymentFilter{
		ParentID:   payment.ParentID,
		ParentType: payment.ParentType,
	})
	if err != nil {
		return nil, err
	}

	coverage := domain.CoverageByCharge(siblings, payment.ID)
	result := domain.AllocatePayment(payment, pending, coverage)

	if err := uc.persist(ctx, payment, &result); err != nil {
		if uc.metrics != nil {
			uc.metrics.AllocationErrors.WithLabelValues("persist").Inc()
		}
		return nil, err
	}

	uc.invalidate(ctx, payment.ParentType, payment.ParentID)

	if uc.metrics != nil {
		uc.metrics.PaymentsAllocated.Inc()
		uc.metrics.ChargesSettled.Add(float64(len(result.PaidChargeIDs)))
		uc.metrics.AllocationDuration.Observe(time.Since(start).Seconds())
		if result.Advance.IsPositive() {
			advance, _ := result.Advance.Float64()
			uc.metrics.AdvanceAmount.Observe(advance)
		}
	}

	return &result, nil
}

// persist writes the payment's new details/status and every covered charge's
// transition to paid in one transaction.
func (uc *AllocationUseCase) persist(ctx context.Context, payment *domain.Payment, result *domain.AllocationResult) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	details := result.Details
	status := result.Status
	err = uc.paymentRepo.UpdateTx(ctx, tx, PaymentPatch{
		ID:      payment.ID,
		Status:  &status,
		Details: &details,
	})
	if err != nil {
		return err
	}

	paid := domain.ChargePaid
	for _, chargeID := range result.PaidChargeIDs {
		err = uc.chargeRepo.UpdateTx(ctx, tx, ChargePatch{ID: chargeID, Status: &paid})
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetPayment retrieves a payment by ID.
func (uc *AllocationUseCase) GetPayment(ctx context.Context, id string) (*domain.Payment, error) {
	return uc.paymentRepo.GetByID(ctx, id)
}

// ListPayments lists a parent's payments in payment date order.
func (uc *AllocationUseCase) ListPayments(ctx context.Context, filter PaymentFilter) ([]*domain.Payment, error) {
	return uc.paymentRepo.List(ctx, filter)
}

func (uc *AllocationUseCase) invalidate(ctx context.Context, parentType domain.ParentType, parentID string) {
	if uc.cache == nil {
		return
	}
	_ = uc.cache.Delete(ctx, BalanceCacheKey(parentType, parentID))
}
