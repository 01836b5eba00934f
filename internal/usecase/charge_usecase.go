package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/osolis/billingcore/internal/domain"
)

// ChargeUseCase handles receipt (charge) creation and lookup.
type ChargeUseCase struct {
	chargeRepo  ChargeRepository
	paymentRepo PaymentRepository
	accountRepo AccountRepository
	idGen       IDGenerator
	cache       Cache
	locker      *AccountLocker
}

// NewChargeUseCase creates a new ChargeUseCase.
func NewChargeUseCase(
	chargeRepo ChargeRepository,
	paymentRepo PaymentRepository,
	accountRepo AccountRepository,
	idGen IDGenerator,
	cache Cache,
	locker *AccountLocker,
) *ChargeUseCase {
	return &ChargeUseCase{
		chargeRepo:  chargeRepo,
		paymentRepo: paymentRepo,
		accountRepo: accountRepo,
		idGen:       idGen,
		cache:       cache,
		locker:      locker,
	}
}

// CreateChargeInput represents input for creating a charge.
type CreateChargeInput struct {
	ParentID     string
	ParentType   domain.ParentType
	MovementDate time.Time
	Total        decimal.Decimal
	ExchangeRate decimal.Decimal
}

// CreateCharge creates a pending charge, computing its previous balance from
// the parent's current history. The previous balance is only recomputed again
// during a rebuild.
func (uc *ChargeUseCase) CreateCharge(ctx context.Context, input CreateChargeInput) (*domain.Charge, error) {
	if err := domain.ValidateAmount(input.Total); err != nil {
		return nil, err
	}
	if err := domain.ValidateParentType(input.ParentType); err != nil {
		return nil, err
	}
	if input.ParentType == domain.ParentAccount {
		if _, err := uc.accountRepo.GetByNumber(ctx, input.ParentID); err != nil {
			return nil, err
		}
	}

	unlock := uc.locker.Lock(input.ParentID)
	defer unlock()

	previous, err := uc.currentRunningBalance(ctx, input.ParentID, input.ParentType)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	charge := &domain.Charge{
		ID:              uc.idGen.Generate(),
		ParentID:        input.ParentID,
		ParentType:      input.ParentType,
		MovementDate:    input.MovementDate,
		Total:           domain.Round2(input.Total),
		Status:          domain.ChargePending,
		PreviousBalance: previous,
		ExchangeRate:    input.ExchangeRate,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := uc.chargeRepo.Create(ctx, charge); err != nil {
		return nil, err
	}

	uc.invalidate(ctx, input.ParentType, input.ParentID)
	return charge, nil
}

// GetCharge retrieves a charge by ID.
func (uc *ChargeUseCase) GetCharge(ctx context.Context, id string) (*domain.Charge, error) {
	return uc.chargeRepo.GetByID(ctx, id)
}

// ListCharges lists a parent's charges in movement date order.
func (uc *ChargeUseCase) ListCharges(ctx context.Context, filter ChargeFilter) ([]*domain.Charge, error) {
	return uc.chargeRepo.List(ctx, filter)
}

// currentRunningBalance is the parent's balance before a new charge lands:
// counted payments minus counted charges, matching the rebuild convention.
func (uc *ChargeUseCase) currentRunningBalance(ctx context.Context, parentID string, parentType domain.ParentType) (decimal.Decimal, error) {
	charges, err := uc.chargeRepo.List(ctx, ChargeFilter{ParentID: parentID, ParentType: parentType})
	if err != nil {
		return decimal.Zero, err
	}
	payments, err := uc.paymentRepo.List(ctx, PaymentFilter{ParentID: parentID, ParentType: parentType})
	if err != nil {
		return decimal.Zero, err
	}

	running := decimal.Zero
	for _, p := range payments {
		if p.CountsTowardBalance() {
			running = domain.Round2(running.Add(p.AmountPaid))
		}
	}
	for _, c := range charges {
		if c.CountsTowardBalance() {
			running = domain.Round2(running.Sub(c.Total))
		}
	}
	return running, nil
}

func (uc *ChargeUseCase) invalidate(ctx context.Context, parentType domain.ParentType, parentID string) {
	if uc.cache == nil {
		return
	}
	_ = uc.cache.Delete(ctx, BalanceCacheKey(parentType, parentID))
}
