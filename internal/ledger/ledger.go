// Package ledger derives balances from a snapshot of cash movements.
//
// Every function is pure: it takes the opening balance and an immutable
// movement slice and recomputes from scratch. Nothing here caches derived
// state; the caller owns the snapshot lifecycle.
package ledger

import (
	"sort"
	"time"

	"primanota/internal/core"
)

// StatementRow pairs a movement with the running balance after it. Only
// settled movements advance the running balance; unsettled rows carry the
// previous value unchanged.
type StatementRow struct {
	Movement core.Movement
	Running  core.Money
}

// Totals are the aggregate reporting values for a movement set. Reversals
// are excluded from the inflow/outflow buckets and reported on their own to
// avoid double counting.
type Totals struct {
	Inflow         core.Money
	Outflow        core.Money
	SettledInflow  core.Money
	SettledOutflow core.Money
	Reversals      core.Money
}

// Sort returns a copy ordered by movement date ascending, undated movements
// last, ties preserved in insertion order.
func Sort(movements []core.Movement) []core.Movement {
	out := make([]core.Movement, len(movements))
	copy(out, movements)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MovementDate.SortKey().Before(out[j].MovementDate.SortKey())
	})
	return out
}

// Statement returns the date-ordered movement sequence with a running
// balance column starting from the opening balance.
func Statement(opening core.Money, movements []core.Movement) []StatementRow {
	sorted := Sort(movements)
	rows := make([]StatementRow, len(sorted))
	running := opening
	for i, m := range sorted {
		if m.Settled {
			running = running.Add(m.SignedTotal())
		}
		rows[i] = StatementRow{Movement: m, Running: running}
	}
	return rows
}

// RealBalance is the opening balance plus the signed totals of settled
// movements only.
func RealBalance(opening core.Money, movements []core.Movement) core.Money {
	balance := opening
	for _, m := range movements {
		if m.Settled {
			balance = balance.Add(m.SignedTotal())
		}
	}
	return balance
}

// ProjectedBalance is the opening balance plus the signed totals of all
// movements, settled or not.
func ProjectedBalance(opening core.Money, movements []core.Movement) core.Money {
	balance := opening
	for _, m := range movements {
		balance = balance.Add(m.SignedTotal())
	}
	return balance
}

// MonthEndProjection is the real balance plus every unsettled movement whose
// reference date falls in now's calendar month.
func MonthEndProjection(opening core.Money, movements []core.Movement, now time.Time) core.Money {
	balance := RealBalance(opening, movements)
	period := core.PeriodOf(now)
	for _, m := range movements {
		if m.Settled {
			continue
		}
		ref := m.ReferenceDate()
		if ref.IsEmpty() || !period.Contains(ref.Time) {
			continue
		}
		balance = balance.Add(m.SignedTotal())
	}
	return balance
}

// Summarize computes the aggregate totals for a movement set.
func Summarize(movements []core.Movement) Totals {
	var t Totals
	for _, m := range movements {
		total := core.Money{Cents: m.Amount.Cents + m.Commission.Cents}
		switch m.Kind {
		case core.Reversal:
			t.Reversals = t.Reversals.Add(total)
		case core.Inflow:
			t.Inflow = t.Inflow.Add(total)
			if m.Settled {
				t.SettledInflow = t.SettledInflow.Add(total)
			}
		case core.Outflow:
			t.Outflow = t.Outflow.Add(total)
			if m.Settled {
				t.SettledOutflow = t.SettledOutflow.Add(total)
			}
		}
	}
	return t
}
