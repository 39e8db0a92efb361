package core

import (
	"testing"
	"time"
)

func validOutflow() Movement {
	return Movement{
		Kind:            Outflow,
		Category:        CategoryWireTransfer,
		CounterpartyRef: "supplier-1",
		Description:     "materiali cantiere",
		Amount:          Money{Cents: 10000},
		Commission:      Money{Cents: 150},
		MovementDate:    NewDate(2025, 3, 10),
		Settled:         true,
	}
}

func TestMovementValidate(t *testing.T) {
	if err := validOutflow().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name    string
		mutate  func(*Movement)
		wantErr error
	}{
		{"missing amount", func(m *Movement) { m.Amount = Money{} }, ErrInvalidAmount},
		{"empty description", func(m *Movement) { m.Description = "  " }, ErrEmptyDescription},
		{"empty counterparty", func(m *Movement) { m.CounterpartyRef = "" }, ErrEmptyCounterparty},
		{"bad kind", func(m *Movement) { m.Kind = "transfer" }, ErrInvalidKind},
		{"bad category", func(m *Movement) { m.Category = "lottery" }, ErrInvalidCategory},
		{"settled without movement date", func(m *Movement) { m.MovementDate = Date{} }, ErrMissingMovementDate},
		{"unsettled outflow without due date", func(m *Movement) {
			m.Settled = false
			m.MovementDate = Date{}
			m.DueDate = Date{}
		}, ErrMissingDueDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := validOutflow()
			tc.mutate(&m)
			if err := m.Validate(); err != tc.wantErr {
				t.Fatalf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestReversalValidate(t *testing.T) {
	rev := Movement{
		Kind:               Reversal,
		Category:           CategoryReversal,
		CounterpartyRef:    "supplier-1",
		Description:        "storno bonifico",
		Amount:             Money{Cents: 5000},
		Commission:         Money{Cents: 200},
		ReversedMovementID: 42,
	}
	if err := rev.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	// A reversal needs the link but not an amount of its own.
	rev.Amount = Money{}
	if err := rev.Validate(); err != nil {
		t.Fatalf("zero-amount reversal should validate, got %v", err)
	}
	rev.ReversedMovementID = 0
	if err := rev.Validate(); err != ErrMissingReversalLink {
		t.Fatalf("got %v, want ErrMissingReversalLink", err)
	}

	// Non-reversals must not carry the link.
	m := validOutflow()
	m.ReversedMovementID = 7
	if err := m.Validate(); err == nil {
		t.Fatalf("expected error for linked non-reversal")
	}
}

func TestSignedTotal(t *testing.T) {
	cases := []struct {
		kind MovementKind
		want int64
	}{
		{Inflow, 10150},
		{Outflow, -10150},
		{Reversal, 10150},
	}
	for _, tc := range cases {
		m := Movement{Kind: tc.kind, Amount: Money{Cents: 10000}, Commission: Money{Cents: 150}}
		if got := m.SignedTotal().Cents; got != tc.want {
			t.Fatalf("%s: got %d, want %d", tc.kind, got, tc.want)
		}
	}
}

func TestReferenceDate(t *testing.T) {
	m := Movement{MovementDate: NewDate(2025, 3, 10), DueDate: NewDate(2025, 4, 1)}
	if got := m.ReferenceDate(); !got.Equal(NewDate(2025, 3, 10).Time) {
		t.Fatalf("expected movement date, got %v", got)
	}
	m.MovementDate = Date{}
	if got := m.ReferenceDate(); !got.Equal(NewDate(2025, 4, 1).Time) {
		t.Fatalf("expected due date, got %v", got)
	}
}

func TestDateSortKey(t *testing.T) {
	dated := NewDate(2025, 6, 15)
	var undated Date
	if !dated.SortKey().Before(undated.SortKey()) {
		t.Fatalf("undated movements must sort last")
	}
}

func TestPeriodValidate(t *testing.T) {
	if err := (Period{Month: 3, Year: 2025}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Period{Month: 0, Year: 2025}).Validate(); err != ErrInvalidMonth {
		t.Fatalf("got %v, want ErrInvalidMonth", err)
	}
	if err := (Period{Month: 13, Year: 2025}).Validate(); err != ErrInvalidMonth {
		t.Fatalf("got %v, want ErrInvalidMonth", err)
	}
	if err := (Period{Month: 1, Year: 0}).Validate(); err != ErrInvalidYear {
		t.Fatalf("got %v, want ErrInvalidYear", err)
	}
}

func TestPeriodContains(t *testing.T) {
	p := Period{Month: 3, Year: 2025}
	if !p.Contains(time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected march 2025 to be contained")
	}
	if p.Contains(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("april must not be contained")
	}
}
