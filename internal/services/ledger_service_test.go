package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"primanota/internal/commission"
	"primanota/internal/core"
	"primanota/internal/store/memory"
)

func newLedgerService(t *testing.T) (*LedgerService, context.Context) {
	t.Helper()
	return NewLedgerService(memory.New().Tenant("acme")), context.Background()
}

func wireRule(value string) map[core.MovementCategory]commission.Rule {
	return map[core.MovementCategory]commission.Rule{
		core.CategoryWireTransfer: {Mode: commission.ModeFixed, Value: decimal.RequireFromString(value)},
	}
}

func outflow(cents int64) core.Movement {
	return core.Movement{
		Kind:            core.Outflow,
		Category:        core.CategoryWireTransfer,
		CounterpartyRef: "supplier-1",
		Description:     "bonifico fornitore",
		Amount:          core.Money{Cents: cents},
		MovementDate:    core.NewDate(2025, 3, 10),
		Settled:         true,
	}
}

func TestCreateMovementStampsCommission(t *testing.T) {
	svc, ctx := newLedgerService(t)
	_, err := svc.SaveRuleTable(ctx, wireRule("1.50"))
	require.NoError(t, err)

	created, err := svc.CreateMovement(ctx, outflow(10000))
	require.NoError(t, err)
	assert.Equal(t, int64(150), created.Commission.Cents)
	assert.Equal(t, int64(1), created.RuleVersion)

	// -101.50 on a 100.00 outflow with a 1.50 commission.
	assert.Equal(t, int64(-10150), created.SignedTotal().Cents)
}

func TestRuleEditsAreNotRetroactive(t *testing.T) {
	svc, ctx := newLedgerService(t)
	_, err := svc.SaveRuleTable(ctx, wireRule("1.50"))
	require.NoError(t, err)

	created, err := svc.CreateMovement(ctx, outflow(10000))
	require.NoError(t, err)

	_, err = svc.SaveRuleTable(ctx, wireRule("9.99"))
	require.NoError(t, err)

	stored, err := svc.GetMovement(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(150), stored.Commission.Cents, "stored commission must not move with the table")
	assert.Equal(t, int64(1), stored.RuleVersion)

	// A fresh movement picks up the new rule and version.
	fresh, err := svc.CreateMovement(ctx, outflow(10000))
	require.NoError(t, err)
	assert.Equal(t, int64(999), fresh.Commission.Cents)
	assert.Equal(t, int64(2), fresh.RuleVersion)
}

func TestCreateMovementValidationBeforeWrite(t *testing.T) {
	svc, ctx := newLedgerService(t)

	bad := outflow(0)
	_, err := svc.CreateMovement(ctx, bad)
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	movements, err := svc.stores.ListMovements(ctx)
	require.NoError(t, err)
	assert.Empty(t, movements, "no partial state on validation failure")
}

func TestCreateStorno(t *testing.T) {
	svc, ctx := newLedgerService(t)
	_, err := svc.SaveRuleTable(ctx, wireRule("2.00"))
	require.NoError(t, err)

	original, err := svc.CreateMovement(ctx, outflow(5000))
	require.NoError(t, err)

	storno, err := svc.CreateStorno(ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, core.Reversal, storno.Kind)
	assert.Equal(t, original.ID, storno.ReversedMovementID)
	assert.Equal(t, original.Amount, storno.Amount)
	assert.Equal(t, original.Commission, storno.Commission)
	assert.Equal(t, int64(5200), storno.SignedTotal().Cents)

	// Reversing a settled outflow credits the real balance right away.
	assert.True(t, storno.Settled)
	assert.False(t, storno.MovementDate.IsEmpty())
	balances, err := svc.Balances(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(0), balances.Real.Cents)

	// The original is untouched.
	stored, err := svc.GetMovement(ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, original, stored)

	// Reversing a reversal is refused, as is deleting a reversed original.
	_, err = svc.CreateStorno(ctx, storno.ID)
	assert.ErrorIs(t, err, core.ErrReversalTarget)
	err = svc.DeleteMovement(ctx, original.ID)
	assert.ErrorIs(t, err, core.ErrHasReversals)

	// Deleting the storno first unblocks the original.
	require.NoError(t, svc.DeleteMovement(ctx, storno.ID))
	require.NoError(t, svc.DeleteMovement(ctx, original.ID))
}

func TestBalances(t *testing.T) {
	svc, ctx := newLedgerService(t)
	require.NoError(t, svc.SetOpeningBalance(ctx, core.Money{Cents: 0}))

	_, err := svc.CreateMovement(ctx, core.Movement{
		Kind: core.Inflow, Category: core.CategoryWireTransfer,
		CounterpartyRef: "client-1", Description: "incasso SAL",
		Amount: core.Money{Cents: 50000}, MovementDate: core.NewDate(2025, 3, 1), Settled: true,
	})
	require.NoError(t, err)

	out := outflow(20000)
	out.Commission = core.Money{Cents: 100}
	_, err = svc.CreateMovement(ctx, out)
	require.NoError(t, err)

	// Unsettled outflow due this month.
	_, err = svc.CreateMovement(ctx, core.Movement{
		Kind: core.Outflow, Category: core.CategoryTaxForm,
		CounterpartyRef: "erario", Description: "F24",
		Amount: core.Money{Cents: 10000}, DueDate: core.NewDate(2025, 3, 16),
	})
	require.NoError(t, err)

	now := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	balances, err := svc.Balances(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(29900), balances.Real.Cents)
	assert.Equal(t, int64(19900), balances.Projected.Cents)
	assert.Equal(t, int64(19900), balances.MonthEnd.Cents)
	assert.Equal(t, int64(50000), balances.Totals.Inflow.Cents)
	assert.Equal(t, int64(30100), balances.Totals.Outflow.Cents)

	rows, err := svc.Statement(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, int64(29900), rows[len(rows)-1].Running.Cents)
}
