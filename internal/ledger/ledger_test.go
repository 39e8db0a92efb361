package ledger

import (
	"testing"
	"time"

	"primanota/internal/core"
)

func settledInflow(id int64, cents int64, date core.Date) core.Movement {
	return core.Movement{
		ID: id, Kind: core.Inflow, Category: core.CategoryWireTransfer,
		CounterpartyRef: "client-1", Description: "incasso",
		Amount: core.Money{Cents: cents}, MovementDate: date, Settled: true,
	}
}

func settledOutflow(id int64, cents, commission int64, date core.Date) core.Movement {
	return core.Movement{
		ID: id, Kind: core.Outflow, Category: core.CategoryWireTransfer,
		CounterpartyRef: "supplier-1", Description: "pagamento",
		Amount: core.Money{Cents: cents}, Commission: core.Money{Cents: commission},
		MovementDate: date, Settled: true,
	}
}

func TestSortOrder(t *testing.T) {
	undated := core.Movement{ID: 1, Kind: core.Outflow, DueDate: core.NewDate(2025, 5, 1)}
	early := settledInflow(2, 100, core.NewDate(2025, 1, 10))
	late := settledInflow(3, 100, core.NewDate(2025, 4, 2))
	sameDayA := settledInflow(4, 100, core.NewDate(2025, 2, 1))
	sameDayB := settledInflow(5, 100, core.NewDate(2025, 2, 1))

	sorted := Sort([]core.Movement{undated, late, sameDayA, sameDayB, early})
	wantIDs := []int64{2, 4, 5, 3, 1}
	for i, want := range wantIDs {
		if sorted[i].ID != want {
			t.Fatalf("position %d: got id %d, want %d", i, sorted[i].ID, want)
		}
	}
}

func TestSortStableTies(t *testing.T) {
	date := core.NewDate(2025, 3, 3)
	var ms []core.Movement
	for i := int64(1); i <= 5; i++ {
		ms = append(ms, settledInflow(i, 100, date))
	}
	sorted := Sort(ms)
	for i, m := range sorted {
		if m.ID != int64(i+1) {
			t.Fatalf("ties must keep insertion order, got %d at %d", m.ID, i)
		}
	}
}

func TestStatementRunningBalance(t *testing.T) {
	ms := []core.Movement{
		settledInflow(1, 50000, core.NewDate(2025, 3, 1)),
		{ // unsettled outflow must not move the running balance
			ID: 2, Kind: core.Outflow, Category: core.CategoryTaxForm,
			CounterpartyRef: "supplier-2", Description: "F24 in scadenza",
			Amount: core.Money{Cents: 10000}, DueDate: core.NewDate(2025, 3, 10),
		},
		settledOutflow(3, 20000, 100, core.NewDate(2025, 3, 15)),
	}
	rows := Statement(core.Money{}, ms)
	wantRunning := []int64{50000, 50000, 29900}
	for i, want := range wantRunning {
		if rows[i].Running.Cents != want {
			t.Fatalf("row %d: running %d, want %d", i, rows[i].Running.Cents, want)
		}
	}
}

func TestRealAndProjectedBalance(t *testing.T) {
	// Spec'd example: opening 0, settled inflow 500, settled outflow 200
	// with commission 1 -> real = 500 - 201 = 299.
	ms := []core.Movement{
		settledInflow(1, 50000, core.NewDate(2025, 3, 1)),
		settledOutflow(2, 20000, 100, core.NewDate(2025, 3, 2)),
	}
	if got := RealBalance(core.Money{}, ms); got.Cents != 29900 {
		t.Fatalf("real: got %d, want 29900", got.Cents)
	}

	unsettled := core.Movement{
		ID: 3, Kind: core.Outflow, Category: core.CategoryDirectDebit,
		CounterpartyRef: "supplier-3", Description: "rid",
		Amount: core.Money{Cents: 5000}, DueDate: core.NewDate(2025, 3, 20),
	}
	ms = append(ms, unsettled)

	real := RealBalance(core.Money{}, ms)
	projected := ProjectedBalance(core.Money{}, ms)
	if real.Cents != 29900 {
		t.Fatalf("real after unsettled: got %d, want 29900", real.Cents)
	}
	// projected - real equals the sum of unsettled signed totals
	if diff := projected.Sub(real); diff.Cents != -5000 {
		t.Fatalf("projected-real: got %d, want -5000", diff.Cents)
	}
}

func TestMonthEndProjection(t *testing.T) {
	now := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
	ms := []core.Movement{
		settledInflow(1, 100000, core.NewDate(2025, 3, 1)),
		{ // due this month, counts
			ID: 2, Kind: core.Outflow, Category: core.CategoryTaxForm,
			CounterpartyRef: "erario", Description: "F24",
			Amount: core.Money{Cents: 30000}, DueDate: core.NewDate(2025, 3, 16),
		},
		{ // due next month, ignored
			ID: 3, Kind: core.Outflow, Category: core.CategoryInstallmentNotice,
			CounterpartyRef: "leasing", Description: "rata",
			Amount: core.Money{Cents: 40000}, DueDate: core.NewDate(2025, 4, 16),
		},
	}
	got := MonthEndProjection(core.Money{}, ms, now)
	if got.Cents != 70000 {
		t.Fatalf("got %d, want 70000", got.Cents)
	}
}

func TestSummarizeExcludesReversals(t *testing.T) {
	ms := []core.Movement{
		settledInflow(1, 50000, core.NewDate(2025, 3, 1)),
		settledOutflow(2, 20000, 150, core.NewDate(2025, 3, 2)),
		{
			ID: 3, Kind: core.Reversal, Category: core.CategoryReversal,
			CounterpartyRef: "supplier-1", Description: "Storno: pagamento",
			Amount: core.Money{Cents: 20000}, Commission: core.Money{Cents: 150},
			ReversedMovementID: 2, MovementDate: core.NewDate(2025, 3, 3), Settled: true,
		},
		{
			ID: 4, Kind: core.Outflow, Category: core.CategoryDirectDebit,
			CounterpartyRef: "supplier-3", Description: "rid",
			Amount: core.Money{Cents: 5000}, DueDate: core.NewDate(2025, 3, 20),
		},
	}
	totals := Summarize(ms)
	if totals.Inflow.Cents != 50000 || totals.SettledInflow.Cents != 50000 {
		t.Fatalf("inflow: %+v", totals)
	}
	if totals.Outflow.Cents != 25150 {
		t.Fatalf("outflow: got %d, want 25150", totals.Outflow.Cents)
	}
	if totals.SettledOutflow.Cents != 20150 {
		t.Fatalf("settled outflow: got %d, want 20150", totals.SettledOutflow.Cents)
	}
	if totals.Reversals.Cents != 20150 {
		t.Fatalf("reversals: got %d, want 20150", totals.Reversals.Cents)
	}
}
