package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/osolis/billingcore/internal/domain"
	"github.com/osolis/billingcore/internal/infrastructure/metrics"
)

// RebuildConfig tunes the batch rebuild. Zero values fall back to defaults.
type RebuildConfig struct {
	// Workers is how many accounts are rebuilt in parallel.
	Workers int
	// AccountTimeout bounds each account's rebuild.
	AccountTimeout time.Duration
}

// RebuildUseCase recomputes derived state (previous balances, allocations,
// statuses) from the raw charge/payment history, repairing drift from
// out-of-order inserts, corrections, or migrated data.
type RebuildUseCase struct {
	accountRepo AccountRepository
	chargeRepo  ChargeRepository
	paymentRepo PaymentRepository
	retrier     Retrier
	cache       Cache
	locker      *AccountLocker
	cfg         RebuildConfig
	metrics     *metrics.Metrics
}

// NewRebuildUseCase creates a new RebuildUseCase.
func NewRebuildUseCase(
	accountRepo AccountRepository,
	chargeRepo ChargeRepository,
	paymentRepo PaymentRepository,
	retrier Retrier,
	cache Cache,
	locker *AccountLocker,
	cfg RebuildConfig,
	metrics *metrics.Metrics,
) *RebuildUseCase {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultRebuildWorkers
	}
	if cfg.AccountTimeout <= 0 {
		cfg.AccountTimeout = DefaultRebuildAccountTimeout
	}
	return &RebuildUseCase{
		accountRepo: accountRepo,
		chargeRepo:  chargeRepo,
		paymentRepo: paymentRepo,
		retrier:     retrier,
		cache:       cache,
		locker:      locker,
		cfg:         cfg,
		metrics:     metrics,
	}
}

// RebuildResult reports one account's rebuild: how many rows were written and
// which writes failed. Persistence is best-effort; failures do not abort the
// remaining items.
type RebuildResult struct {
	AccountNumber   string   `json:"account_number"`
	ChargesUpdated  int      `json:"charges_updated"`
	PaymentsUpdated int      `json:"payments_updated"`
	Errors          []string `json:"errors"`
}

// BatchResult reports a whole-fleet rebuild.
type BatchResult struct {
	Total     int      `json:"total"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors"`
}

// RebuildAccount recomputes every charge's previous balance and every
// payment's allocations for one account from scratch, discarding prior
// derived state, then persists the result item by item. Running it twice on
// unchanged history yields identical state.
func (uc *RebuildUseCase) RebuildAccount(ctx context.Context, accountNumber string) (*RebuildResult, error) {
	start := time.Now()

	account, err := uc.accountRepo.GetByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	unlock := uc.locker.Lock(account.AccountNumber)
	defer unlock()

	charges, err := uc.chargeRepo.List(ctx, ChargeFilter{ParentID: accountNumber, ParentType: domain.ParentAccount})
	if err != nil {
		return nil, err
	}
	payments, err := uc.paymentRepo.List(ctx, PaymentFilter{ParentID: accountNumber, ParentType: domain.ParentAccount})
	if err != nil {
		return nil, err
	}

	rebuiltCharges, rebuiltPayments := domain.ReplayHistory(charges, payments)

	result := &RebuildResult{AccountNumber: accountNumber, Errors: []string{}}

	for _, c := range rebuiltCharges {
		status := c.Status
		previous := c.PreviousBalance
		patch := ChargePatch{ID: c.ID, Status: &status, PreviousBalance: &previous}

		err := uc.retrier.Retry(ctx, func() error {
			return uc.chargeRepo.Update(ctx, patch)
		})
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("charge %s: %v", c.ID, err))
			continue
		}
		result.ChargesUpdated++
	}

	for _, p := range rebuiltPayments {
		status := p.Status
		details := p.Details
		patch := PaymentPatch{ID: p.ID, Status: &status, Details: &details}

		err := uc.retrier.Retry(ctx, func() error {
			return uc.paymentRepo.Update(ctx, patch)
		})
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("payment %s: %v", p.ID, err))
			continue
		}
		result.PaymentsUpdated++
	}

	uc.invalidate(ctx, domain.ParentAccount, accountNumber)

	if uc.metrics != nil {
		uc.metrics.RebuildsTotal.Inc()
		uc.metrics.RebuildDuration.Observe(time.Since(start).Seconds())
		if len(result.Errors) > 0 {
			uc.metrics.RebuildFailures.Inc()
		}
	}

	return result, nil
}

// RebuildAllAccounts rebuilds every active, non-slave account. Accounts are
// independent, so the batch fans out across a bounded worker pool; a single
// account failing or timing out does not stop the rest.
func (uc *RebuildUseCase) RebuildAllAccounts(ctx context.Context) (*BatchResult, error) {
	batch := &BatchResult{Errors: []string{}}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, uc.cfg.Workers)
	)

	offset := 0
	for {
		accounts, err := uc.accountRepo.List(ctx, accountPageSize, offset)
		if err != nil {
			return nil, err
		}
		if len(accounts) == 0 {
			break
		}
		offset += len(accounts)

		for _, account := range accounts {
			if !account.IsActive() || account.IsSlave() {
				continue
			}
			batch.Total++

			wg.Add(1)
			sem <- struct{}{}
			go func(accountNumber string) {
				defer wg.Done()
				defer func() { <-sem }()

				accountCtx, cancel := context.WithTimeout(ctx, uc.cfg.AccountTimeout)
				defer cancel()

				result, err := uc.RebuildAccount(accountCtx, accountNumber)

				mu.Lock()
				defer mu.Unlock()
				switch {
				case err != nil:
					batch.Failed++
					batch.Errors = append(batch.Errors, fmt.Sprintf("account %s: %v", accountNumber, err))
				case len(result.Errors) > 0:
					batch.Failed++
					batch.Errors = append(batch.Errors, fmt.Sprintf("account %s: %d item failures", accountNumber, len(result.Errors)))
				default:
					batch.Succeeded++
				}
			}(account.AccountNumber)
		}
	}

	wg.Wait()
	return batch, nil
}

func (uc *RebuildUseCase) invalidate(ctx context.Context, parentType domain.ParentType, parentID string) {
	if uc.cache == nil {
		return
	}
	_ = uc.cache.Delete(ctx, BalanceCacheKey(parentType, parentID))
}
