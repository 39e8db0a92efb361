package commission

import (
	"testing"

	"github.com/shopspring/decimal"

	"primanota/internal/core"
)

func table(rules map[core.MovementCategory]Rule) RuleTable {
	return RuleTable{Version: 1, Rules: rules}
}

func TestCalculateFixed(t *testing.T) {
	tbl := table(map[core.MovementCategory]Rule{
		core.CategoryWireTransfer: {Mode: ModeFixed, Value: decimal.RequireFromString("1.50")},
	})

	// Fixed rules ignore the amount entirely.
	for _, cents := range []int64{0, 1, 10000, 123456789} {
		got := Calculate(tbl, core.CategoryWireTransfer, core.Money{Cents: cents})
		if got.Cents != 150 {
			t.Fatalf("amount %d: got %d, want 150", cents, got.Cents)
		}
	}
}

func TestCalculatePercentage(t *testing.T) {
	tbl := table(map[core.MovementCategory]Rule{
		core.CategoryBankDraft: {Mode: ModePercentage, Value: decimal.RequireFromString("0.15")},
		core.CategoryTopUp:     {Mode: ModePercentage, Value: decimal.RequireFromString("2")},
	})

	cases := []struct {
		category core.MovementCategory
		amount   int64
		want     int64
	}{
		{core.CategoryBankDraft, 10000, 15},   // 100.00 * 0.15% = 0.15
		{core.CategoryBankDraft, 333, 0},      // 3.33 * 0.15% = 0.004995 -> 0.00
		{core.CategoryBankDraft, 334000, 501}, // 3340.00 * 0.15% = 5.01
		{core.CategoryTopUp, 12550, 251},      // 125.50 * 2% = 2.51
		{core.CategoryTopUp, 25, 1},           // 0.25 * 2% = 0.005 -> rounds up
		{core.CategoryTopUp, 0, 0},
	}
	for _, tc := range cases {
		got := Calculate(tbl, tc.category, core.Money{Cents: tc.amount})
		if got.Cents != tc.want {
			t.Fatalf("%s/%d: got %d, want %d", tc.category, tc.amount, got.Cents, tc.want)
		}
	}
}

func TestCalculateUnknownCategory(t *testing.T) {
	tbl := table(map[core.MovementCategory]Rule{
		core.CategoryWireTransfer: {Mode: ModeFixed, Value: decimal.RequireFromString("1.50")},
	})
	if got := Calculate(tbl, core.CategoryInterest, core.Money{Cents: 99999}); !got.IsZero() {
		t.Fatalf("unknown category must cost nothing, got %d", got.Cents)
	}
	if got := Calculate(RuleTable{}, core.CategoryWireTransfer, core.Money{Cents: 100}); !got.IsZero() {
		t.Fatalf("empty table must cost nothing, got %d", got.Cents)
	}
}

func TestRuleTableValidate(t *testing.T) {
	good := table(map[core.MovementCategory]Rule{
		core.CategoryStampDuty: {Mode: ModeFixed, Value: decimal.RequireFromString("2.00")},
	})
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	badMode := table(map[core.MovementCategory]Rule{
		core.CategoryStampDuty: {Mode: "flat", Value: decimal.RequireFromString("2.00")},
	})
	if err := badMode.Validate(); err != ErrInvalidRule {
		t.Fatalf("got %v, want ErrInvalidRule", err)
	}

	badValue := table(map[core.MovementCategory]Rule{
		core.CategoryStampDuty: {Mode: ModeFixed, Value: decimal.RequireFromString("-1")},
	})
	if err := badValue.Validate(); err != ErrInvalidRule {
		t.Fatalf("got %v, want ErrInvalidRule", err)
	}

	badCategory := table(map[core.MovementCategory]Rule{
		"lottery": {Mode: ModeFixed, Value: decimal.RequireFromString("2.00")},
	})
	if err := badCategory.Validate(); err != core.ErrInvalidCategory {
		t.Fatalf("got %v, want ErrInvalidCategory", err)
	}
}
