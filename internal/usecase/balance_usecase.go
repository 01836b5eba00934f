package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/osolis/billingcore/internal/domain"
	"github.com/osolis/billingcore/internal/infrastructure/metrics"
)

// BalanceUseCase computes outstanding balances and pending-charge views for
// accounts and clients.
type BalanceUseCase struct {
	accountRepo AccountRepository
	clientRepo  ClientRepository
	chargeRepo  ChargeRepository
	paymentRepo PaymentRepository
	cache       Cache
	cacheTTL    time.Duration
	metrics     *metrics.Metrics
}

// NewBalanceUseCase creates a new BalanceUseCase. cache may be nil to disable
// report caching, cacheTTL of zero falls back to the default, and metrics may
// be nil to disable instrumentation.
func NewBalanceUseCase(
	accountRepo AccountRepository,
	clientRepo ClientRepository,
	chargeRepo ChargeRepository,
	paymentRepo PaymentRepository,
	cache Cache,
	cacheTTL time.Duration,
	m *metrics.Metrics,
) *BalanceUseCase {
	if cacheTTL <= 0 {
		cacheTTL = DefaultBalanceCacheTTL
	}
	return &BalanceUseCase{
		accountRepo: accountRepo,
		clientRepo:  clientRepo,
		chargeRepo:  chargeRepo,
		paymentRepo: paymentRepo,
		cache:       cache,
		cacheTTL:    cacheTTL,
		metrics:     m,
	}
}

// PartialPayment is the portion of one payment covering a pending charge.
type PartialPayment struct {
	PaymentID string          `json:"payment_id"`
	Amount    decimal.Decimal `json:"amount"`
	Credit    bool            `json:"credit"`
}

// PendingChargeView is a pending charge together with the payments partially
// covering it. Credited amounts reduce the outstanding balance but are
// reported separately from paid amounts.
type PendingChargeView struct {
	Charge          *domain.Charge   `json:"charge"`
	PartialPayments []PartialPayment `json:"partial_payments"`
	PaidAmount      decimal.Decimal  `json:"paid_amount"`
	CreditedAmount  decimal.Decimal  `json:"credited_amount"`
	Outstanding     decimal.Decimal  `json:"outstanding"`
}

// BalanceReport is the outcome of a balance computation. Errors holds
// non-fatal sub-fetch failures; the report itself is best-effort.
type BalanceReport struct {
	ParentID       string              `json:"parent_id"`
	ParentType     domain.ParentType   `json:"parent_type"`
	ClientName     string              `json:"client_name,omitempty"`
	Total          decimal.Decimal     `json:"total"`
	PendingCharges []PendingChargeView `json:"pending_charges"`
	Errors         []string            `json:"errors"`
}

// AccountBalance computes the outstanding balance for a single account:
// total = sum of counted charge totals minus counted payment amounts.
// The account lookup is a prerequisite and aborts the computation; the
// client name lookup degrades into the Errors list.
func (uc *BalanceUseCase) AccountBalance(ctx context.Context, accountNumber string) (*BalanceReport, error) {
	account, err := uc.accountRepo.GetByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	if report, ok := uc.cachedReport(ctx, domain.ParentAccount, accountNumber); ok {
		uc.recordReport(domain.ParentAccount)
		return report, nil
	}

	report := &BalanceReport{
		ParentID:       accountNumber,
		ParentType:     domain.ParentAccount,
		Total:          decimal.Zero,
		PendingCharges: []PendingChargeView{},
		Errors:         []string{},
	}

	charges, err := uc.chargeRepo.List(ctx, ChargeFilter{ParentID: accountNumber, ParentType: domain.ParentAccount})
	if err != nil {
		return nil, err
	}
	payments, err := uc.paymentRepo.List(ctx, PaymentFilter{ParentID: accountNumber, ParentType: domain.ParentAccount})
	if err != nil {
		return nil, err
	}

	uc.accumulate(report, charges, payments)

	if account.ClientID != "" {
		client, err := uc.clientRepo.GetByID(ctx, account.ClientID)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("client %s: %v", account.ClientID, err))
		} else {
			report.ClientName = client.Name
		}
	}

	uc.storeReport(ctx, report)
	uc.recordReport(domain.ParentAccount)
	return report, nil
}

// ClientBalance computes the aggregated balance across every account under a
// client, plus charges and payments parented directly to the client. The
// client lookup aborts; per-account fetch failures degrade into Errors.
func (uc *BalanceUseCase) ClientBalance(ctx context.Context, clientID string) (*BalanceReport, error) {
	client, err := uc.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if report, ok := uc.cachedReport(ctx, domain.ParentClient, clientID); ok {
		uc.recordReport(domain.ParentClient)
		return report, nil
	}

	report := &BalanceReport{
		ParentID:       clientID,
		ParentType:     domain.ParentClient,
		ClientName:     client.Name,
		Total:          decimal.Zero,
		PendingCharges: []PendingChargeView{},
		Errors:         []string{},
	}

	charges, err := uc.chargeRepo.List(ctx, ChargeFilter{ParentID: clientID, ParentType: domain.ParentClient})
	if err != nil {
		return nil, err
	}
	payments, err := uc.paymentRepo.List(ctx, PaymentFilter{ParentID: clientID, ParentType: domain.ParentClient})
	if err != nil {
		return nil, err
	}
	uc.accumulate(report, charges, payments)

	accounts, err := uc.accountRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	for _, account := range accounts {
		charges, err := uc.chargeRepo.List(ctx, ChargeFilter{ParentID: account.AccountNumber, ParentType: domain.ParentAccount})
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("account %s charges: %v", account.AccountNumber, err))
			continue
		}
		payments, err := uc.paymentRepo.List(ctx, PaymentFilter{ParentID: account.AccountNumber, ParentType: domain.ParentAccount})
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("account %s payments: %v", account.AccountNumber, err))
			continue
		}
		uc.accumulate(report, charges, payments)
	}

	uc.storeReport(ctx, report)
	uc.recordReport(domain.ParentClient)
	return report, nil
}

// accumulate folds one parent's charges and payments into the report:
// the running total plus the pending-charges-with-partial-payments view.
func (uc *BalanceUseCase) accumulate(report *BalanceReport, charges []*domain.Charge, payments []*domain.Payment) {
	for _, c := range charges {
		if c.CountsTowardBalance() {
			report.Total = domain.Round2(report.Total.Add(c.Total))
		}
	}
	for _, p := range payments {
		if p.CountsTowardBalance() {
			report.Total = domain.Round2(report.Total.Sub(p.AmountPaid))
		}
	}

	for _, c := range charges {
		if c.Status != domain.ChargePending {
			continue
		}

		view := PendingChargeView{
			Charge:          c,
			PartialPayments: []PartialPayment{},
			PaidAmount:      decimal.Zero,
			CreditedAmount:  decimal.Zero,
		}

		for _, p := range payments {
			if !p.CountsTowardBalance() {
				continue
			}
			for _, d := range p.Details {
				if d.ChargeID != c.ID {
					continue
				}
				view.PartialPayments = append(view.PartialPayments, PartialPayment{
					PaymentID: p.ID,
					Amount:    d.Amount,
					Credit:    p.IsCredit(),
				})
				if p.IsCredit() {
					view.CreditedAmount = domain.Round2(view.CreditedAmount.Add(d.Amount))
				} else {
					view.PaidAmount = domain.Round2(view.PaidAmount.Add(d.Amount))
				}
			}
		}

		view.Outstanding = c.Outstanding(view.PaidAmount, view.CreditedAmount)
		if view.Outstanding.IsPositive() {
			report.PendingCharges = append(report.PendingCharges, view)
		}
	}
}

func (uc *BalanceUseCase) cachedReport(ctx context.Context, parentType domain.ParentType, parentID string) (*BalanceReport, bool) {
	if uc.cache == nil {
		return nil, false
	}
	raw, err := uc.cache.Get(ctx, BalanceCacheKey(parentType, parentID))
	if err != nil || len(raw) == 0 {
		uc.recordCache(false)
		return nil, false
	}
	var report BalanceReport
	if err := json.Unmarshal(raw, &report); err != nil {
		uc.recordCache(false)
		return nil, false
	}
	uc.recordCache(true)
	return &report, true
}

func (uc *BalanceUseCase) recordReport(parentType domain.ParentType) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.BalanceReports.WithLabelValues(string(parentType)).Inc()
}

func (uc *BalanceUseCase) recordCache(hit bool) {
	if uc.metrics == nil {
		return
	}
	if hit {
		uc.metrics.CacheHits.Inc()
	} else {
		uc.metrics.CacheMisses.Inc()
	}
}

func (uc *BalanceUseCase) storeReport(ctx context.Context, report *BalanceReport) {
	if uc.cache == nil {
		return
	}
	raw, err := json.Marshal(report)
	if err != nil {
		return
	}
	// Cache writes are best-effort; a miss just recomputes.
	_ = uc.cache.Set(ctx, BalanceCacheKey(report.ParentType, report.ParentID), raw, uc.cacheTTL)
}

// BalanceCacheKey is the cache key for a parent's balance report. Allocation
// and rebuild delete this key after mutating the parent's history.
func BalanceCacheKey(parentType domain.ParentType, parentID string) string {
	return fmt.Sprintf("balance:%s:%s", parentType, parentID)
}
