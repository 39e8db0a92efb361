// Package commission maps a movement category and amount to a bank
// commission under a per-tenant, versioned rule table.
package commission

import (
	"errors"

	"github.com/shopspring/decimal"

	"primanota/internal/core"
)

const (
	ModeFixed      RuleMode = "fixed"
	ModePercentage RuleMode = "percentage"
)

type (
	RuleMode string

	// Rule determines the commission for one movement category: either a
	// fixed euro amount or a percentage of the principal.
	Rule struct {
		Mode  RuleMode        `json:"mode"`
		Value decimal.Decimal `json:"value"`
	}

	// RuleTable is the tenant's full rule set. The version is bumped on every
	// save and stamped on movements at create/edit time, so editing the table
	// never retroactively changes stored commissions.
	RuleTable struct {
		Version int64                          `json:"version"`
		Rules   map[core.MovementCategory]Rule `json:"rules"`
	}
)

var ErrInvalidRule = errors.New("invalid commission rule")

func (m RuleMode) IsValid() bool {
	switch m {
	case ModeFixed, ModePercentage:
		return true
	}
	return false
}

func (r Rule) Validate() error {
	if !r.Mode.IsValid() {
		return ErrInvalidRule
	}
	if r.Value.IsNegative() {
		return ErrInvalidRule
	}
	return nil
}

// Validate checks every rule and its category key.
func (t RuleTable) Validate() error {
	for cat, rule := range t.Rules {
		if !cat.IsValid() {
			return core.ErrInvalidCategory
		}
		if err := rule.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ParseRuleValue parses a rule value from its decimal string form.
func ParseRuleValue(s string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, ErrInvalidRule
	}
	return value, nil
}

var oneHundred = decimal.NewFromInt(100)

// Calculate returns the commission for a category and amount. Fixed rules
// ignore the amount; percentage rules compute amount * value / 100 rounded
// half-up to two decimals. Unknown categories cost nothing. Pure and
// deterministic: same table, category and amount always give the same result.
func Calculate(table RuleTable, category core.MovementCategory, amount core.Money) core.Money {
	rule, ok := table.Rules[category]
	if !ok {
		return core.Money{}
	}
	switch rule.Mode {
	case ModeFixed:
		return toCents(rule.Value)
	case ModePercentage:
		principal := decimal.New(amount.Cents, -2)
		return toCents(principal.Mul(rule.Value).Div(oneHundred))
	}
	return core.Money{}
}

// toCents rounds a euro decimal half-up to two places and converts to cents.
func toCents(d decimal.Decimal) core.Money {
	return core.Money{Cents: d.Round(2).Shift(2).IntPart()}
}
