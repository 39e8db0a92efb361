package ledger

import "primanota/internal/core"

// NewReversal builds a storno movement cancelling the original. Amount,
// commission, counterparty and site are copied from the original, which is
// never touched. The caller persists the result; the original's settlement
// state is irrelevant since a reversal always credits the balance.
func NewReversal(original core.Movement) (core.Movement, error) {
	if original.Kind == core.Reversal {
		return core.Movement{}, core.ErrReversalTarget
	}
	if original.ID == 0 {
		return core.Movement{}, core.ErrNotFound
	}
	return core.Movement{
		Kind:               core.Reversal,
		Category:           core.CategoryReversal,
		CounterpartyRef:    original.CounterpartyRef,
		SiteRef:            original.SiteRef,
		Description:        "Storno: " + original.Description,
		Amount:             original.Amount,
		Commission:         original.Commission,
		ReversedMovementID: original.ID,
		RuleVersion:        original.RuleVersion,
	}, nil
}

// ReversedDate resolves the movement date of a reversal's target for
// display. It is a derived value, never stored.
func ReversedDate(movements []core.Movement, reversal core.Movement) (core.Date, bool) {
	if reversal.Kind != core.Reversal || reversal.ReversedMovementID == 0 {
		return core.Date{}, false
	}
	for _, m := range movements {
		if m.ID == reversal.ReversedMovementID {
			return m.MovementDate, true
		}
	}
	return core.Date{}, false
}

// HasReversals reports whether any movement in the set references id.
func HasReversals(movements []core.Movement, id int64) bool {
	for _, m := range movements {
		if m.Kind == core.Reversal && m.ReversedMovementID == id {
			return true
		}
	}
	return false
}
