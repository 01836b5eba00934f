package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPaymentValidate(t *testing.T) {
	tests := []struct {
		name    string
		payment *Payment
		wantErr error
	}{
		{
			name: "valid payment",
			payment: &Payment{
				ParentType: ParentAccount,
				AmountPaid: decimal.NewFromInt(100),
				Status:     PaymentAssigned,
				Details: []PaymentDetail{
					{ChargeID: "c1", Amount: decimal.NewFromInt(100)},
				},
			},
		},
		{
			name: "negative amount",
			payment: &Payment{
				ParentType: ParentAccount,
				AmountPaid: decimal.NewFromInt(-1),
				Status:     PaymentAssigned,
			},
			wantErr: ErrInvalidAmount,
		},
		{
			name: "over-allocated details",
			payment: &Payment{
				ParentType: ParentAccount,
				AmountPaid: decimal.NewFromInt(100),
				Status:     PaymentAssigned,
				Details: []PaymentDetail{
					{ChargeID: "c1", Amount: decimal.NewFromInt(80)},
					{ChargeID: "c2", Amount: decimal.NewFromInt(30)},
				},
			},
			wantErr: ErrOverAllocated,
		},
		{
			name: "negative detail amount",
			payment: &Payment{
				ParentType: ParentAccount,
				AmountPaid: decimal.NewFromInt(100),
				Status:     PaymentAssigned,
				Details: []PaymentDetail{
					{ChargeID: "c1", Amount: decimal.NewFromInt(-10)},
				},
			},
			wantErr: ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payment.Validate()
			if err != tt.wantErr {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestPaymentUnallocated(t *testing.T) {
	p := &Payment{
		AmountPaid: decimal.NewFromInt(100),
		Details: []PaymentDetail{
			{ChargeID: "c1", Amount: decimal.RequireFromString("59.99")},
		},
	}

	if got := p.Unallocated(); !got.Equal(decimal.RequireFromString("40.01")) {
		t.Errorf("expected 40.01, got %s", got)
	}
}

func TestPaymentCountsTowardBalance(t *testing.T) {
	for _, s := range []PaymentStatus{PaymentCancelled, PaymentError} {
		p := &Payment{Status: s}
		if p.CountsTowardBalance() {
			t.Errorf("status %s must not count toward balance", s)
		}
	}
	for _, s := range []PaymentStatus{PaymentPaid, PaymentAdvanced, PaymentAssigned, PaymentUnassigned, PaymentCredit, PaymentBatch, PaymentOnline} {
		p := &Payment{Status: s}
		if !p.CountsTowardBalance() {
			t.Errorf("status %s must count toward balance", s)
		}
	}
}

func TestChargeOutstanding(t *testing.T) {
	c := &Charge{Total: decimal.NewFromInt(100)}

	out := c.Outstanding(decimal.NewFromInt(60), decimal.NewFromInt(30))
	if !out.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected 10, got %s", out)
	}

	// Over-covered charges clamp at zero.
	out = c.Outstanding(decimal.NewFromInt(90), decimal.NewFromInt(30))
	if !out.IsZero() {
		t.Errorf("expected 0, got %s", out)
	}
}
