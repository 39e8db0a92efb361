// Package services orchestrates the engine's operations over the store
// ports: validation before any write, commission stamping, reversal linkage
// and snapshot-based balance reads.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"primanota/internal/commission"
	"primanota/internal/core"
	"primanota/internal/ledger"
	"primanota/internal/store"
)

// LedgerService owns the movement side: CRUD with derived-commission
// stamping, storno creation and balance reads. All derived values are
// recomputed from a full snapshot on every call.
type LedgerService struct {
	stores store.Bundle
}

// Balances is the full derived-balance view for one tenant.
type Balances struct {
	Opening   core.Money
	Real      core.Money
	Projected core.Money
	MonthEnd  core.Money
	Totals    ledger.Totals
}

func NewLedgerService(stores store.Bundle) *LedgerService {
	return &LedgerService{stores: stores}
}

// CreateMovement validates and persists a movement. When the caller leaves
// the commission at zero it is derived from the current rule table; the
// table version is stamped either way so the applied rule set is known.
func (s *LedgerService) CreateMovement(ctx context.Context, m core.Movement) (core.Movement, error) {
	stamped, err := s.stampCommission(ctx, m)
	if err != nil {
		return core.Movement{}, err
	}
	if err := stamped.Validate(); err != nil {
		return core.Movement{}, err
	}
	created, err := s.stores.CreateMovement(ctx, stamped)
	if err != nil {
		return core.Movement{}, fmt.Errorf("save movement: %w", err)
	}
	return created, nil
}

// UpdateMovement re-applies the current rule table (a movement edit counts
// as a new application of the rules, same as creation) and persists with
// last-write-wins semantics.
func (s *LedgerService) UpdateMovement(ctx context.Context, m core.Movement) (core.Movement, error) {
	stamped, err := s.stampCommission(ctx, m)
	if err != nil {
		return core.Movement{}, err
	}
	if err := stamped.Validate(); err != nil {
		return core.Movement{}, err
	}
	updated, err := s.stores.UpdateMovement(ctx, stamped)
	if err != nil {
		return core.Movement{}, fmt.Errorf("update movement: %w", err)
	}
	return updated, nil
}

// DeleteMovement refuses to delete a movement that has reversals pointing
// at it: the storno would dangle. Delete the storno first.
func (s *LedgerService) DeleteMovement(ctx context.Context, id int64) error {
	movements, err := s.stores.ListMovements(ctx)
	if err != nil {
		return fmt.Errorf("load movements: %w", err)
	}
	if ledger.HasReversals(movements, id) {
		return core.ErrHasReversals
	}
	if err := s.stores.DeleteMovement(ctx, id); err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}
	return nil
}

func (s *LedgerService) GetMovement(ctx context.Context, id int64) (core.Movement, error) {
	return s.stores.GetMovement(ctx, id)
}

// CreateStorno records a reversal of the given movement. The original is
// read, never written.
func (s *LedgerService) CreateStorno(ctx context.Context, originalID int64) (core.Movement, error) {
	original, err := s.stores.GetMovement(ctx, originalID)
	if err != nil {
		return core.Movement{}, fmt.Errorf("load original movement: %w", err)
	}
	rev, err := ledger.NewReversal(original)
	if err != nil {
		return core.Movement{}, err
	}

	// A storno of a settled movement is itself a cash event: the credit hits
	// the account now, so it is recorded settled as of today. Reversing an
	// unsettled movement only cancels a scheduled one.
	if original.Settled {
		now := time.Now().UTC()
		rev.Settled = true
		rev.MovementDate = core.NewDate(now.Year(), int(now.Month()), now.Day())
	}

	created, err := s.stores.CreateMovement(ctx, rev)
	if err != nil {
		return core.Movement{}, fmt.Errorf("save storno: %w", err)
	}

	slog.InfoContext(ctx, "Storno recorded",
		"id", created.ID,
		"reversed_movement_id", originalID,
		"amount_cents", created.Amount.Cents,
		"commission_cents", created.Commission.Cents)

	return created, nil
}

// Statement returns the date-ordered movements with running balances.
func (s *LedgerService) Statement(ctx context.Context) ([]ledger.StatementRow, error) {
	opening, movements, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.Statement(opening, movements), nil
}

// Balances recomputes every derived balance from the current snapshot.
func (s *LedgerService) Balances(ctx context.Context, now time.Time) (Balances, error) {
	opening, movements, err := s.snapshot(ctx)
	if err != nil {
		return Balances{}, err
	}
	return Balances{
		Opening:   opening,
		Real:      ledger.RealBalance(opening, movements),
		Projected: ledger.ProjectedBalance(opening, movements),
		MonthEnd:  ledger.MonthEndProjection(opening, movements, now),
		Totals:    ledger.Summarize(movements),
	}, nil
}

// RuleTable returns the tenant's current commission rules.
func (s *LedgerService) RuleTable(ctx context.Context) (commission.RuleTable, error) {
	return s.stores.RuleTable(ctx)
}

// SaveRuleTable validates and persists a new rule set, bumping the version.
// Movements stamped with earlier versions keep their stored commissions.
func (s *LedgerService) SaveRuleTable(ctx context.Context, rules map[core.MovementCategory]commission.Rule) (commission.RuleTable, error) {
	current, err := s.stores.RuleTable(ctx)
	if err != nil {
		return commission.RuleTable{}, fmt.Errorf("load rule table: %w", err)
	}
	table := commission.RuleTable{Version: current.Version + 1, Rules: rules}
	if err := table.Validate(); err != nil {
		return commission.RuleTable{}, err
	}
	saved, err := s.stores.SaveRuleTable(ctx, table)
	if err != nil {
		return commission.RuleTable{}, fmt.Errorf("save rule table: %w", err)
	}
	return saved, nil
}

func (s *LedgerService) OpeningBalance(ctx context.Context) (core.Money, error) {
	return s.stores.OpeningBalance(ctx)
}

func (s *LedgerService) SetOpeningBalance(ctx context.Context, m core.Money) error {
	if err := s.stores.SetOpeningBalance(ctx, m); err != nil {
		return fmt.Errorf("save opening balance: %w", err)
	}
	return nil
}

func (s *LedgerService) snapshot(ctx context.Context) (core.Money, []core.Movement, error) {
	opening, err := s.stores.OpeningBalance(ctx)
	if err != nil {
		return core.Money{}, nil, fmt.Errorf("load opening balance: %w", err)
	}
	movements, err := s.stores.ListMovements(ctx)
	if err != nil {
		return core.Money{}, nil, fmt.Errorf("load movements: %w", err)
	}
	return opening, movements, nil
}

func (s *LedgerService) stampCommission(ctx context.Context, m core.Movement) (core.Movement, error) {
	table, err := s.stores.RuleTable(ctx)
	if err != nil {
		return core.Movement{}, fmt.Errorf("load rule table: %w", err)
	}
	if m.Commission.IsZero() {
		m.Commission = commission.Calculate(table, m.Category, m.Amount)
	}
	m.RuleVersion = table.Version
	return m, nil
}
