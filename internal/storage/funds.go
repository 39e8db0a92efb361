package storage

import (
	"context"
	"fmt"

	"primanota/internal/core"
)

func (t *TenantStore) ListFundTotals(ctx context.Context) ([]core.FundTotal, error) {
	rows, err := t.db.QueryContext(ctx, `
		SELECT id, fund_name, month, year, accrual_cents, contribution_cents,
			welfare_cents, territorial_fund_cents, national_fund_cents,
			sickness_reserve_cents, severance_cents
		FROM fund_totals WHERE tenant_id = ? ORDER BY year, month, fund_name`, t.tenant)
	if err != nil {
		return nil, fmt.Errorf("list fund totals: %w", err)
	}
	defer rows.Close()

	var out []core.FundTotal
	for rows.Next() {
		var ft core.FundTotal
		err := rows.Scan(&ft.ID, &ft.FundName, &ft.Period.Month, &ft.Period.Year,
			&ft.Components.Accrual.Cents, &ft.Components.Contribution.Cents,
			&ft.Components.Welfare.Cents, &ft.Components.TerritorialFund.Cents,
			&ft.Components.NationalFund.Cents, &ft.Components.SicknessReserve.Cents,
			&ft.Components.Severance.Cents)
		if err != nil {
			return nil, fmt.Errorf("scan fund total: %w", err)
		}
		out = append(out, ft)
	}
	return out, rows.Err()
}

func (t *TenantStore) CreateFundTotal(ctx context.Context, ft core.FundTotal) (core.FundTotal, error) {
	res, err := t.db.ExecContext(ctx, `
		INSERT INTO fund_totals (tenant_id, fund_name, month, year, accrual_cents,
			contribution_cents, welfare_cents, territorial_fund_cents,
			national_fund_cents, sickness_reserve_cents, severance_cents)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.tenant, ft.FundName, ft.Period.Month, ft.Period.Year,
		ft.Components.Accrual.Cents, ft.Components.Contribution.Cents,
		ft.Components.Welfare.Cents, ft.Components.TerritorialFund.Cents,
		ft.Components.NationalFund.Cents, ft.Components.SicknessReserve.Cents,
		ft.Components.Severance.Cents)
	if err != nil {
		return core.FundTotal{}, fmt.Errorf("create fund total: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.FundTotal{}, fmt.Errorf("fund total id: %w", err)
	}
	ft.ID = id
	return ft, nil
}

func (t *TenantStore) UpdateFundTotal(ctx context.Context, ft core.FundTotal) (core.FundTotal, error) {
	res, err := t.db.ExecContext(ctx, `
		UPDATE fund_totals SET fund_name = ?, month = ?, year = ?, accrual_cents = ?,
			contribution_cents = ?, welfare_cents = ?, territorial_fund_cents = ?,
			national_fund_cents = ?, sickness_reserve_cents = ?, severance_cents = ?
		WHERE tenant_id = ? AND id = ?`,
		ft.FundName, ft.Period.Month, ft.Period.Year,
		ft.Components.Accrual.Cents, ft.Components.Contribution.Cents,
		ft.Components.Welfare.Cents, ft.Components.TerritorialFund.Cents,
		ft.Components.NationalFund.Cents, ft.Components.SicknessReserve.Cents,
		ft.Components.Severance.Cents,
		t.tenant, ft.ID)
	if err != nil {
		return core.FundTotal{}, fmt.Errorf("update fund total: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.FundTotal{}, core.ErrNotFound
	}
	return ft, nil
}

func (t *TenantStore) DeleteFundTotal(ctx context.Context, id int64) error {
	res, err := t.db.ExecContext(ctx,
		`DELETE FROM fund_totals WHERE tenant_id = ? AND id = ?`, t.tenant, id)
	if err != nil {
		return fmt.Errorf("delete fund total: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (t *TenantStore) ListSites(ctx context.Context) ([]core.Site, error) {
	rows, err := t.db.QueryContext(ctx,
		`SELECT id, name, fund FROM sites WHERE tenant_id = ? ORDER BY id`, t.tenant)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	defer rows.Close()

	var out []core.Site
	for rows.Next() {
		var s core.Site
		if err := rows.Scan(&s.ID, &s.Name, &s.Fund); err != nil {
			return nil, fmt.Errorf("scan site: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
