package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"primanota/internal/commission"
	"primanota/internal/core"
)

// RuleTable loads the tenant's commission rule table. A tenant that never
// saved one gets an empty table at version zero.
func (t *TenantStore) RuleTable(ctx context.Context) (commission.RuleTable, error) {
	var (
		blob    string
		version int64
	)
	row := t.db.QueryRowContext(ctx,
		`SELECT rule_table, rule_version FROM tenant_settings WHERE tenant_id = ?`, t.tenant)
	if err := row.Scan(&blob, &version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return commission.RuleTable{}, nil
		}
		return commission.RuleTable{}, fmt.Errorf("load rule table: %w", err)
	}

	var rules map[core.MovementCategory]commission.Rule
	if err := json.Unmarshal([]byte(blob), &rules); err != nil {
		return commission.RuleTable{}, fmt.Errorf("decode rule table: %w", err)
	}
	return commission.RuleTable{Version: version, Rules: rules}, nil
}

// SaveRuleTable persists the table as a JSON blob together with its version.
func (t *TenantStore) SaveRuleTable(ctx context.Context, table commission.RuleTable) (commission.RuleTable, error) {
	blob, err := json.Marshal(table.Rules)
	if err != nil {
		return commission.RuleTable{}, fmt.Errorf("encode rule table: %w", err)
	}

	_, err = t.db.ExecContext(ctx, `
		INSERT INTO tenant_settings (tenant_id, rule_table, rule_version) VALUES (?, ?, ?)
		ON CONFLICT(tenant_id) DO UPDATE SET rule_table = excluded.rule_table,
			rule_version = excluded.rule_version`,
		t.tenant, string(blob), table.Version)
	if err != nil {
		return commission.RuleTable{}, fmt.Errorf("save rule table: %w", err)
	}

	slog.InfoContext(ctx, "Commission rule table saved",
		"version", table.Version,
		"rules", len(table.Rules))

	return table, nil
}

func (t *TenantStore) OpeningBalance(ctx context.Context) (core.Money, error) {
	var cents int64
	row := t.db.QueryRowContext(ctx,
		`SELECT opening_balance_cents FROM tenant_settings WHERE tenant_id = ?`, t.tenant)
	if err := row.Scan(&cents); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Money{}, nil
		}
		return core.Money{}, fmt.Errorf("load opening balance: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

func (t *TenantStore) SetOpeningBalance(ctx context.Context, m core.Money) error {
	_, err := t.db.ExecContext(ctx, `
		INSERT INTO tenant_settings (tenant_id, opening_balance_cents) VALUES (?, ?)
		ON CONFLICT(tenant_id) DO UPDATE SET opening_balance_cents = excluded.opening_balance_cents`,
		t.tenant, m.Cents)
	if err != nil {
		return fmt.Errorf("save opening balance: %w", err)
	}
	return nil
}
