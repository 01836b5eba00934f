package usecase

import (
	"context"

	"github.com/osolis/billingcore/internal/domain"
)

// StatementUseCase produces the merged chronological view of an account's
// charges and payments.
type StatementUseCase struct {
	accountRepo AccountRepository
	chargeRepo  ChargeRepository
	paymentRepo PaymentRepository
}

// NewStatementUseCase creates a new StatementUseCase.
func NewStatementUseCase(
	accountRepo AccountRepository,
	chargeRepo ChargeRepository,
	paymentRepo PaymentRepository,
) *StatementUseCase {
	return &StatementUseCase{
		accountRepo: accountRepo,
		chargeRepo:  chargeRepo,
		paymentRepo: paymentRepo,
	}
}

// AccountStatement returns the account's ledger entries in date order with a
// running balance. Note the running balance adds payments and subtracts
// charges, the opposite polarity of BalanceReport.Total.
func (uc *StatementUseCase) AccountStatement(ctx context.Context, accountNumber string) ([]domain.StatementLine, error) {
	if _, err := uc.accountRepo.GetByNumber(ctx, accountNumber); err != nil {
		return nil, err
	}

	charges, err := uc.chargeRepo.List(ctx, ChargeFilter{ParentID: accountNumber, ParentType: domain.ParentAccount})
	if err != nil {
		return nil, err
	}
	payments, err := uc.paymentRepo.List(ctx, PaymentFilter{ParentID: accountNumber, ParentType: domain.ParentAccount})
	if err != nil {
		return nil, err
	}

	return domain.MergeChronological(charges, payments), nil
}
