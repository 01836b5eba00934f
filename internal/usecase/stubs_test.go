package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/osolis/billingcore/internal/domain"
	"github.com/osolis/billingcore/internal/usecase"
)

// Hand-rolled stubs shared by the usecase tests. Each Fn field overrides the
// default in-memory behavior.

type stubChargeRepo struct {
	mu      sync.Mutex
	charges map[string]*domain.Charge

	createFn   func(ctx context.Context, charge *domain.Charge) error
	getByIDFn  func(ctx context.Context, id string) (*domain.Charge, error)
	listFn     func(ctx context.Context, filter usecase.ChargeFilter) ([]*domain.Charge, error)
	updateFn   func(ctx context.Context, patch usecase.ChargePatch) error
	updateTxFn func(ctx context.Context, tx usecase.Transaction, patch usecase.ChargePatch) error
}

func newStubChargeRepo(charges ...*domain.Charge) *stubChargeRepo {
	r := &stubChargeRepo{charges: make(map[string]*domain.Charge)}
	for _, c := range charges {
		r.charges[c.ID] = c
	}
	return r
}

func (r *stubChargeRepo) Create(ctx context.Context, charge *domain.Charge) error {
	if r.createFn != nil {
		return r.createFn(ctx, charge)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.charges[charge.ID] = charge
	return nil
}

func (r *stubChargeRepo) GetByID(ctx context.Context, id string) (*domain.Charge, error) {
	if r.getByIDFn != nil {
		return r.getByIDFn(ctx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.charges[id]; ok {
		return c, nil
	}
	return nil, domain.ErrChargeNotFound
}

func (r *stubChargeRepo) List(ctx context.Context, filter usecase.ChargeFilter) ([]*domain.Charge, error) {
	if r.listFn != nil {
		return r.listFn(ctx, filter)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Charge
	for _, c := range r.charges {
		if c.ParentID != filter.ParentID || c.ParentType != filter.ParentType {
			continue
		}
		if len(filter.Statuses) > 0 && !chargeStatusIn(c.Status, filter.Statuses) {
			continue
		}
		out = append(out, c)
	}
	sortChargesByDate(out)
	return out, nil
}

func (r *stubChargeRepo) Update(ctx context.Context, patch usecase.ChargePatch) error {
	if r.updateFn != nil {
		return r.updateFn(ctx, patch)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.charges[patch.ID]
	if !ok {
		return domain.ErrChargeNotFound
	}
	if patch.Status != nil {
		c.Status = *patch.Status
	}
	if patch.PreviousBalance != nil {
		c.PreviousBalance = *patch.PreviousBalance
	}
	return nil
}

func (r *stubChargeRepo) UpdateTx(ctx context.Context, tx usecase.Transaction, patch usecase.ChargePatch) error {
	if r.updateTxFn != nil {
		return r.updateTxFn(ctx, tx, patch)
	}
	return r.Update(ctx, patch)
}

type stubPaymentRepo struct {
	mu       sync.Mutex
	payments map[string]*domain.Payment

	createFn   func(ctx context.Context, payment *domain.Payment) error
	getByIDFn  func(ctx context.Context, id string) (*domain.Payment, error)
	listFn     func(ctx context.Context, filter usecase.PaymentFilter) ([]*domain.Payment, error)
	updateFn   func(ctx context.Context, patch usecase.PaymentPatch) error
	updateTxFn func(ctx context.Context, tx usecase.Transaction, patch usecase.PaymentPatch) error
}

func newStubPaymentRepo(payments ...*domain.Payment) *stubPaymentRepo {
	r := &stubPaymentRepo{payments: make(map[string]*domain.Payment)}
	for _, p := range payments {
		r.payments[p.ID] = p
	}
	return r
}

func (r *stubPaymentRepo) Create(ctx context.Context, payment *domain.Payment) error {
	if r.createFn != nil {
		return r.createFn(ctx, payment)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments[payment.ID] = payment
	return nil
}

func (r *stubPaymentRepo) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	if r.getByIDFn != nil {
		return r.getByIDFn(ctx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.payments[id]; ok {
		return p, nil
	}
	return nil, domain.ErrPaymentNotFound
}

func (r *stubPaymentRepo) List(ctx context.Context, filter usecase.PaymentFilter) ([]*domain.Payment, error) {
	if r.listFn != nil {
		return r.listFn(ctx, filter)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Payment
	for _, p := range r.payments {
		if p.ParentID != filter.ParentID || p.ParentType != filter.ParentType {
			continue
		}
		if len(filter.Statuses) > 0 && !paymentStatusIn(p.Status, filter.Statuses) {
			continue
		}
		out = append(out, p)
	}
	sortPaymentsByDate(out)
	return out, nil
}

func (r *stubPaymentRepo) Update(ctx context.Context, patch usecase.PaymentPatch) error {
	if r.updateFn != nil {
		return r.updateFn(ctx, patch)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[patch.ID]
	if !ok {
		return domain.ErrPaymentNotFound
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.Details != nil {
		p.Details = *patch.Details
	}
	return nil
}

func (r *stubPaymentRepo) UpdateTx(ctx context.Context, tx usecase.Transaction, patch usecase.PaymentPatch) error {
	if r.updateTxFn != nil {
		return r.updateTxFn(ctx, tx, patch)
	}
	return r.Update(ctx, patch)
}

type stubAccountRepo struct {
	getByNumberFn  func(ctx context.Context, accountNumber string) (*domain.Account, error)
	listByClientFn func(ctx context.Context, clientID string) ([]*domain.Account, error)
	listFn         func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

func (r *stubAccountRepo) GetByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	if r.getByNumberFn != nil {
		return r.getByNumberFn(ctx, accountNumber)
	}
	return &domain.Account{AccountNumber: accountNumber, Status: domain.AccountActive}, nil
}

func (r *stubAccountRepo) ListByClient(ctx context.Context, clientID string) ([]*domain.Account, error) {
	if r.listByClientFn != nil {
		return r.listByClientFn(ctx, clientID)
	}
	return nil, nil
}

func (r *stubAccountRepo) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if r.listFn != nil {
		return r.listFn(ctx, limit, offset)
	}
	return nil, nil
}

type stubClientRepo struct {
	getByIDFn func(ctx context.Context, id string) (*domain.Client, error)
}

func (r *stubClientRepo) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	if r.getByIDFn != nil {
		return r.getByIDFn(ctx, id)
	}
	return &domain.Client{ID: id, Name: "Client " + id}, nil
}

type stubTx struct{}

func (stubTx) Commit(context.Context) error   { return nil }
func (stubTx) Rollback(context.Context) error { return nil }

type stubTxManager struct{}

func (stubTxManager) Begin(context.Context) (usecase.Transaction, error) { return stubTx{}, nil }

type stubIDGen struct {
	mu sync.Mutex
	n  int
}

func (g *stubIDGen) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return "id-" + string(rune('a'+g.n-1))
}

type passthroughRetrier struct{}

func (passthroughRetrier) Retry(ctx context.Context, operation func() error) error {
	return operation()
}

func chargeStatusIn(s domain.ChargeStatus, set []domain.ChargeStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func paymentStatusIn(s domain.PaymentStatus, set []domain.PaymentStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func sortChargesByDate(charges []*domain.Charge) {
	for i := 1; i < len(charges); i++ {
		for j := i; j > 0 && charges[j].MovementDate.Before(charges[j-1].MovementDate); j-- {
			charges[j], charges[j-1] = charges[j-1], charges[j]
		}
	}
}

func sortPaymentsByDate(payments []*domain.Payment) {
	for i := 1; i < len(payments); i++ {
		for j := i; j > 0 && payments[j].PaymentDate.Before(payments[j-1].PaymentDate); j-- {
			payments[j], payments[j-1] = payments[j-1], payments[j]
		}
	}
}

func mustDate(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}
