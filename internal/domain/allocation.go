package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Coverage tracks the amounts already applied to a charge by other payments,
// split into cash and credit portions. Credited amounts reduce what is
// outstanding without counting as paid.
type Coverage struct {
	Paid     decimal.Decimal
	Credited decimal.Decimal
}

// CoverageByCharge sums existing allocations per charge across the given
// payments, excluding the payment identified by excludePaymentID (the one
// being allocated) and any cancelled or error payments.
func CoverageByCharge(payments []*Payment, excludePaymentID string) map[string]Coverage {
	coverage := make(map[string]Coverage)
	for _, p := range payments {
		if p.ID == excludePaymentID || !p.CountsTowardBalance() {
			continue
		}
		addCoverage(coverage, p)
	}
	return coverage
}

func addCoverage(coverage map[string]Coverage, p *Payment) {
	for _, d := range p.Details {
		cov := coverage[d.ChargeID]
		if p.IsCredit() {
			cov.Credited = Round2(cov.Credited.Add(d.Amount))
		} else {
			cov.Paid = Round2(cov.Paid.Add(d.Amount))
		}
		coverage[d.ChargeID] = cov
	}
}

// AllocationResult is the outcome of distributing one payment across pending
// charges. Persisting it is the caller's responsibility.
type AllocationResult struct {
	// Details are the produced allocations, in charge date order.
	Details []PaymentDetail
	// PaidChargeIDs lists charges fully covered by this allocation, to be
	// transitioned from pending to paid.
	PaidChargeIDs []string
	// Advance is the unallocated remainder held after all eligible charges
	// are covered. It produces no allocation entry.
	Advance decimal.Decimal
	// Status is the payment's resulting status.
	Status PaymentStatus
}

// AllocatePayment distributes a payment's amount across the given pending
// charges, oldest movement date first. A charge whose outstanding amount is
// fully covered receives exactly that outstanding amount; the last charge
// reached may be partially covered. Whatever remains after every charge is
// settled becomes the payment's advance.
//
// The resulting status is assigned when the payment was fully absorbed,
// advanced when a surplus remains, and credit payments keep their status
// verbatim either way.
//
// The input slices are not mutated.
func AllocatePayment(p *Payment, pending []*Charge, coverage map[string]Coverage) AllocationResult {
	charges := make([]*Charge, len(pending))
	copy(charges, pending)
	sort.SliceStable(charges, func(i, j int) bool {
		return charges[i].MovementDate.Before(charges[j].MovementDate)
	})

	result := AllocationResult{Details: []PaymentDetail{}, PaidChargeIDs: []string{}}
	remaining := Round2(p.AmountPaid)

	for _, c := range charges {
		if remaining.IsZero() {
			break
		}
		if c.Status != ChargePending {
			continue
		}

		cov := coverage[c.ID]
		outstanding := c.Outstanding(cov.Paid, cov.Credited)
		if outstanding.IsZero() {
			continue
		}

		if remaining.GreaterThanOrEqual(outstanding) {
			result.Details = append(result.Details, PaymentDetail{ChargeID: c.ID, Amount: outstanding})
			result.PaidChargeIDs = append(result.PaidChargeIDs, c.ID)
			remaining = Round2(remaining.Sub(outstanding))
		} else {
			result.Details = append(result.Details, PaymentDetail{ChargeID: c.ID, Amount: remaining})
			remaining = decimal.Zero
		}
	}

	result.Advance = remaining
	switch {
	case p.IsCredit():
		result.Status = PaymentCredit
	case remaining.IsPositive():
		result.Status = PaymentAdvanced
	default:
		result.Status = PaymentAssigned
	}

	return result
}

// ReplayHistory rebuilds an account's derived state from its raw history:
// every charge's previous balance, every payment's allocations, and both
// sides' statuses. Prior allocations are discarded, which makes the replay
// idempotent on unchanged history.
//
// Cancelled and error entries are filtered out entirely; the returned slices
// hold only the surviving entities, mutated in place.
func ReplayHistory(charges []*Charge, payments []*Payment) (rebuiltCharges []*Charge, rebuiltPayments []*Payment) {
	rebuiltCharges = make([]*Charge, 0, len(charges))
	for _, c := range charges {
		if c.CountsTowardBalance() {
			rebuiltCharges = append(rebuiltCharges, c)
		}
	}
	rebuiltPayments = make([]*Payment, 0, len(payments))
	for _, p := range payments {
		if p.CountsTowardBalance() {
			rebuiltPayments = append(rebuiltPayments, p)
		}
	}

	sort.SliceStable(rebuiltCharges, func(i, j int) bool {
		return rebuiltCharges[i].MovementDate.Before(rebuiltCharges[j].MovementDate)
	})
	sort.SliceStable(rebuiltPayments, func(i, j int) bool {
		return rebuiltPayments[i].PaymentDate.Before(rebuiltPayments[j].PaymentDate)
	})

	assignPreviousBalances(rebuiltCharges, rebuiltPayments)

	// Discard derived state before re-allocating.
	for _, c := range rebuiltCharges {
		c.Status = ChargePending
	}
	for _, p := range rebuiltPayments {
		p.Details = nil
	}

	coverage := make(map[string]Coverage)
	for _, p := range rebuiltPayments {
		res := AllocatePayment(p, rebuiltCharges, coverage)
		p.Details = res.Details
		p.Status = res.Status
		addCoverage(coverage, p)
		for _, id := range res.PaidChargeIDs {
			markChargePaid(rebuiltCharges, id)
		}
	}

	return rebuiltCharges, rebuiltPayments
}

// assignPreviousBalances walks charges and payments with two pointers in date
// order. A charge consumes the current running balance as its previous
// balance, then subtracts its total; a payment adds its amount. A charge wins
// a date tie, matching the chronological merge.
func assignPreviousBalances(charges []*Charge, payments []*Payment) {
	running := decimal.Zero

	ci, pi := 0, 0
	for ci < len(charges) || pi < len(payments) {
		takeCharge := pi >= len(payments) ||
			(ci < len(charges) && !charges[ci].MovementDate.After(payments[pi].PaymentDate))

		if takeCharge {
			charges[ci].PreviousBalance = running
			running = Round2(running.Sub(charges[ci].Total))
			ci++
		} else {
			running = Round2(running.Add(payments[pi].AmountPaid))
			pi++
		}
	}
}

func markChargePaid(charges []*Charge, id string) {
	for _, c := range charges {
		if c.ID == id {
			c.Status = ChargePaid
			return
		}
	}
}
