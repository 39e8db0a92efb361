package storage

import (
	"context"
	"fmt"
	"log/slog"

	"primanota/internal/core"
)

const contributionColumns = `id, worker_ref, site_ref, month, year, day_start, day_end,
	accrual_cents, contribution_cents, welfare_cents, territorial_fund_cents,
	national_fund_cents, sickness_reserve_cents, severance_cents, created_at`

func (t *TenantStore) ListContributions(ctx context.Context) ([]core.ContributionEntry, error) {
	return t.queryContributions(ctx,
		`SELECT `+contributionColumns+` FROM contribution_entries WHERE tenant_id = ? ORDER BY id`,
		t.tenant)
}

func (t *TenantStore) ListContributionsForPeriod(ctx context.Context, period core.Period) ([]core.ContributionEntry, error) {
	return t.queryContributions(ctx,
		`SELECT `+contributionColumns+` FROM contribution_entries
		 WHERE tenant_id = ? AND year = ? AND month = ? ORDER BY id`,
		t.tenant, period.Year, period.Month)
}

func (t *TenantStore) queryContributions(ctx context.Context, query string, args ...any) ([]core.ContributionEntry, error) {
	rows, err := t.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contributions: %w", err)
	}
	defer rows.Close()

	var out []core.ContributionEntry
	for rows.Next() {
		var e core.ContributionEntry
		err := rows.Scan(&e.ID, &e.WorkerRef, &e.SiteRef, &e.Period.Month, &e.Period.Year,
			&e.Days.Start, &e.Days.End,
			&e.Components.Accrual.Cents, &e.Components.Contribution.Cents,
			&e.Components.Welfare.Cents, &e.Components.TerritorialFund.Cents,
			&e.Components.NationalFund.Cents, &e.Components.SicknessReserve.Cents,
			&e.Components.Severance.Cents, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan contribution: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (t *TenantStore) CreateContribution(ctx context.Context, e core.ContributionEntry) (core.ContributionEntry, error) {
	res, err := t.db.ExecContext(ctx, insertContributionSQL,
		insertContributionArgs(t.tenant, e)...)
	if err != nil {
		return core.ContributionEntry{}, fmt.Errorf("create contribution: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.ContributionEntry{}, fmt.Errorf("contribution id: %w", err)
	}
	e.ID = id
	return e, nil
}

func (t *TenantStore) UpdateContribution(ctx context.Context, e core.ContributionEntry) (core.ContributionEntry, error) {
	res, err := t.db.ExecContext(ctx, `
		UPDATE contribution_entries SET worker_ref = ?, site_ref = ?, month = ?, year = ?,
			day_start = ?, day_end = ?, accrual_cents = ?, contribution_cents = ?,
			welfare_cents = ?, territorial_fund_cents = ?, national_fund_cents = ?,
			sickness_reserve_cents = ?, severance_cents = ?
		WHERE tenant_id = ? AND id = ?`,
		e.WorkerRef, e.SiteRef, e.Period.Month, e.Period.Year,
		e.Days.Start, e.Days.End,
		e.Components.Accrual.Cents, e.Components.Contribution.Cents,
		e.Components.Welfare.Cents, e.Components.TerritorialFund.Cents,
		e.Components.NationalFund.Cents, e.Components.SicknessReserve.Cents,
		e.Components.Severance.Cents,
		t.tenant, e.ID)
	if err != nil {
		return core.ContributionEntry{}, fmt.Errorf("update contribution: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ContributionEntry{}, core.ErrNotFound
	}
	return e, nil
}

func (t *TenantStore) DeleteContribution(ctx context.Context, id int64) error {
	res, err := t.db.ExecContext(ctx,
		`DELETE FROM contribution_entries WHERE tenant_id = ? AND id = ?`, t.tenant, id)
	if err != nil {
		return fmt.Errorf("delete contribution: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// ReplaceContributions swaps every entry of one site and period for the
// given set inside a single transaction, so an edited aggregate never leaves
// the period half-written.
func (t *TenantStore) ReplaceContributions(ctx context.Context, siteRef string, period core.Period, entries []core.ContributionEntry) ([]core.ContributionEntry, error) {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM contribution_entries
		WHERE tenant_id = ? AND site_ref = ? AND year = ? AND month = ?`,
		t.tenant, siteRef, period.Year, period.Month)
	if err != nil {
		return nil, fmt.Errorf("replace contributions: clear period: %w", err)
	}

	out := make([]core.ContributionEntry, 0, len(entries))
	for _, e := range entries {
		e.SiteRef = siteRef
		e.Period = period
		res, err := tx.ExecContext(ctx, insertContributionSQL, insertContributionArgs(t.tenant, e)...)
		if err != nil {
			return nil, fmt.Errorf("replace contributions: insert worker %s: %w", e.WorkerRef, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("replace contributions: id: %w", err)
		}
		e.ID = id
		out = append(out, e)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit replace: %w", err)
	}

	slog.InfoContext(ctx, "Contribution entries replaced",
		"site", siteRef,
		"year", period.Year,
		"month", period.Month,
		"entries", len(out))

	return out, nil
}

const insertContributionSQL = `
	INSERT INTO contribution_entries (tenant_id, worker_ref, site_ref, month, year,
		day_start, day_end, accrual_cents, contribution_cents, welfare_cents,
		territorial_fund_cents, national_fund_cents, sickness_reserve_cents, severance_cents)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func insertContributionArgs(tenant string, e core.ContributionEntry) []any {
	return []any{
		tenant, e.WorkerRef, e.SiteRef, e.Period.Month, e.Period.Year,
		e.Days.Start, e.Days.End,
		e.Components.Accrual.Cents, e.Components.Contribution.Cents,
		e.Components.Welfare.Cents, e.Components.TerritorialFund.Cents,
		e.Components.NationalFund.Cents, e.Components.SicknessReserve.Cents,
		e.Components.Severance.Cents,
	}
}
