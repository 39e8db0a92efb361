package ledger

import (
	"testing"

	"primanota/internal/core"
)

func TestNewReversal(t *testing.T) {
	original := settledOutflow(42, 5000, 200, core.NewDate(2025, 2, 10))
	original.SiteRef = "site-7"

	rev, err := NewReversal(original)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rev.Kind != core.Reversal || rev.Category != core.CategoryReversal {
		t.Fatalf("bad kind/category: %+v", rev)
	}
	if rev.Amount.Cents != 5000 || rev.Commission.Cents != 200 {
		t.Fatalf("amount/commission not copied: %+v", rev)
	}
	if rev.CounterpartyRef != "supplier-1" || rev.SiteRef != "site-7" {
		t.Fatalf("refs not copied: %+v", rev)
	}
	if rev.ReversedMovementID != 42 {
		t.Fatalf("link: got %d, want 42", rev.ReversedMovementID)
	}
	// The reversal credits amount+commission regardless of the original sign.
	if got := rev.SignedTotal().Cents; got != 5200 {
		t.Fatalf("signed total: got %d, want 5200", got)
	}
}

func TestNewReversalRejectsReversal(t *testing.T) {
	rev := core.Movement{ID: 9, Kind: core.Reversal, ReversedMovementID: 1}
	if _, err := NewReversal(rev); err != core.ErrReversalTarget {
		t.Fatalf("got %v, want ErrReversalTarget", err)
	}
}

func TestReversalRestoresRealBalance(t *testing.T) {
	opening := core.Money{Cents: 100000}
	original := settledOutflow(1, 5000, 200, core.NewDate(2025, 2, 10))
	before := RealBalance(opening, []core.Movement{original})

	rev, err := NewReversal(original)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rev.ID = 2
	rev.Settled = true
	rev.MovementDate = core.NewDate(2025, 2, 11)

	after := RealBalance(opening, []core.Movement{original, rev})
	if diff := after.Sub(before); diff.Cents != 5200 {
		t.Fatalf("reversal must credit exactly amount+commission, got %d", diff.Cents)
	}
	if after != opening {
		t.Fatalf("storno of the only outflow must restore the opening balance")
	}
}

func TestReversedDate(t *testing.T) {
	original := settledOutflow(5, 1000, 0, core.NewDate(2025, 1, 20))
	rev, _ := NewReversal(original)
	rev.ID = 6

	set := []core.Movement{original, rev}
	date, ok := ReversedDate(set, rev)
	if !ok || !date.Equal(core.NewDate(2025, 1, 20).Time) {
		t.Fatalf("got %v ok=%v", date, ok)
	}
	if _, ok := ReversedDate(set, original); ok {
		t.Fatalf("non-reversal must not resolve a target date")
	}

	orphan := rev
	orphan.ReversedMovementID = 999
	if _, ok := ReversedDate(set, orphan); ok {
		t.Fatalf("dangling link must not resolve")
	}
}

func TestHasReversals(t *testing.T) {
	original := settledOutflow(5, 1000, 0, core.NewDate(2025, 1, 20))
	rev, _ := NewReversal(original)
	rev.ID = 6
	set := []core.Movement{original, rev}

	if !HasReversals(set, 5) {
		t.Fatalf("expected reversal reference on 5")
	}
	if HasReversals(set, 6) {
		t.Fatalf("no reversal references the reversal itself")
	}
}
