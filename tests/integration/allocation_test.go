package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/osolis/billingcore/internal/adapter/http/dto"
	"github.com/osolis/billingcore/internal/domain"
)

func TestPaymentAllocationFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.db.CreateTestClient(ctx, "cl-1", "Acme Corp")
	env.db.CreateTestAccount(ctx, "0100023", "cl-1")

	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)

	var c1, c2 dto.ChargeResponse
	w := env.do(t, http.MethodPost, "/api/v1/charges", dto.CreateChargeRequest{
		ParentID:     "0100023",
		ParentType:   "account",
		MovementDate: jan,
		Total:        mustDecimal(t, "500.00"),
	}, &c1)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating charge, got %d: %s", w.Code, w.Body.String())
	}
	w = env.do(t, http.MethodPost, "/api/v1/charges", dto.CreateChargeRequest{
		ParentID:     "0100023",
		ParentType:   "account",
		MovementDate: feb,
		Total:        mustDecimal(t, "300.00"),
	}, &c2)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating charge, got %d: %s", w.Code, w.Body.String())
	}

	var allocation dto.AllocationResponse
	w = env.do(t, http.MethodPost, "/api/v1/payments", dto.CreatePaymentRequest{
		ParentID:    "0100023",
		ParentType:  "account",
		PaymentDate: time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
		AmountPaid:  mustDecimal(t, "600.00"),
	}, &allocation)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating payment, got %d: %s", w.Code, w.Body.String())
	}

	if allocation.Payment.Status != string(domain.PaymentAssigned) {
		t.Fatalf("expected assigned payment, got %s", allocation.Payment.Status)
	}
	if len(allocation.Payment.Details) != 2 {
		t.Fatalf("expected 2 allocation details, got %d", len(allocation.Payment.Details))
	}
	if allocation.Payment.Details[0].ChargeID != c1.ID || !allocation.Payment.Details[0].Amount.Equal(mustDecimal(t, "500.00")) {
		t.Fatalf("expected oldest charge fully covered, got %+v", allocation.Payment.Details[0])
	}
	if allocation.Payment.Details[1].ChargeID != c2.ID || !allocation.Payment.Details[1].Amount.Equal(mustDecimal(t, "100.00")) {
		t.Fatalf("expected 100.00 on second charge, got %+v", allocation.Payment.Details[1])
	}
	if len(allocation.Paid) != 1 || allocation.Paid[0] != c1.ID {
		t.Fatalf("expected only oldest charge settled, got %v", allocation.Paid)
	}

	// Charge statuses persisted
	stored1, err := env.chargeRepo.GetByID(ctx, c1.ID)
	if err != nil {
		t.Fatalf("failed to fetch charge: %v", err)
	}
	if stored1.Status != domain.ChargePaid {
		t.Fatalf("expected first charge paid, got %s", stored1.Status)
	}
	stored2, err := env.chargeRepo.GetByID(ctx, c2.ID)
	if err != nil {
		t.Fatalf("failed to fetch charge: %v", err)
	}
	if stored2.Status != domain.ChargePending {
		t.Fatalf("expected second charge still pending, got %s", stored2.Status)
	}
}

func TestAllocateEndpointAssignsUnassignedPayment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.db.CreateTestClient(ctx, "cl-1", "Acme Corp")
	env.db.CreateTestAccount(ctx, "0200031", "cl-1")

	charge := env.db.CreateTestCharge(ctx, "0200031", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "250.00", domain.ChargePending)
	payment := env.db.CreateTestPayment(ctx, "0200031", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), "250.00", domain.PaymentUnassigned, nil)

	var allocation dto.AllocationResponse
	w := env.do(t, http.MethodPost, "/api/v1/payments/"+payment.ID+"/allocate", nil, &allocation)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if allocation.Payment.Status != string(domain.PaymentAssigned) {
		t.Fatalf("expected assigned, got %s", allocation.Payment.Status)
	}
	if len(allocation.Paid) != 1 || allocation.Paid[0] != charge.ID {
		t.Fatalf("expected charge settled, got %v", allocation.Paid)
	}
	if !allocation.Advance.IsZero() {
		t.Fatalf("expected no advance, got %s", allocation.Advance)
	}
}

func TestOverpaymentBecomesAdvance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.db.CreateTestClient(ctx, "cl-1", "Acme Corp")
	env.db.CreateTestAccount(ctx, "0300047", "cl-1")
	env.db.CreateTestCharge(ctx, "0300047", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), "100.00", domain.ChargePending)

	var allocation dto.AllocationResponse
	w := env.do(t, http.MethodPost, "/api/v1/payments", dto.CreatePaymentRequest{
		ParentID:    "0300047",
		ParentType:  "account",
		PaymentDate: time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC),
		AmountPaid:  mustDecimal(t, "150.00"),
	}, &allocation)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	if allocation.Payment.Status != string(domain.PaymentAdvanced) {
		t.Fatalf("expected advanced payment, got %s", allocation.Payment.Status)
	}
	if !allocation.Advance.Equal(mustDecimal(t, "50.00")) {
		t.Fatalf("expected 50.00 advance, got %s", allocation.Advance)
	}
}

func TestCreditPaymentKeepsStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.db.CreateTestClient(ctx, "cl-1", "Acme Corp")
	env.db.CreateTestAccount(ctx, "0400055", "cl-1")
	env.db.CreateTestCharge(ctx, "0400055", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), "80.00", domain.ChargePending)

	var allocation dto.AllocationResponse
	w := env.do(t, http.MethodPost, "/api/v1/payments", dto.CreatePaymentRequest{
		ParentID:    "0400055",
		ParentType:  "account",
		PaymentDate: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
		AmountPaid:  mustDecimal(t, "80.00"),
		Status:      string(domain.PaymentCredit),
	}, &allocation)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	if allocation.Payment.Status != string(domain.PaymentCredit) {
		t.Fatalf("expected credit status preserved, got %s", allocation.Payment.Status)
	}
}
