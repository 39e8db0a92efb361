package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"primanota/internal/core"
)

const movementColumns = `id, kind, category, counterparty_ref, site_ref, description,
	amount_cents, commission_cents, movement_date, due_date, settled,
	reversed_movement_id, rule_version, note, created_at`

func (t *TenantStore) ListMovements(ctx context.Context) ([]core.Movement, error) {
	rows, err := t.db.QueryContext(ctx,
		`SELECT `+movementColumns+` FROM movements WHERE tenant_id = ? ORDER BY id`, t.tenant)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var out []core.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (t *TenantStore) GetMovement(ctx context.Context, id int64) (core.Movement, error) {
	row := t.db.QueryRowContext(ctx,
		`SELECT `+movementColumns+` FROM movements WHERE tenant_id = ? AND id = ?`, t.tenant, id)
	m, err := scanMovement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Movement{}, core.ErrNotFound
	}
	if err != nil {
		return core.Movement{}, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

func (t *TenantStore) CreateMovement(ctx context.Context, m core.Movement) (core.Movement, error) {
	res, err := t.db.ExecContext(ctx, `
		INSERT INTO movements (tenant_id, kind, category, counterparty_ref, site_ref,
			description, amount_cents, commission_cents, movement_date, due_date,
			settled, reversed_movement_id, rule_version, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.tenant, m.Kind, m.Category, m.CounterpartyRef, m.SiteRef,
		m.Description, m.Amount.Cents, m.Commission.Cents,
		dateParam(m.MovementDate), dateParam(m.DueDate),
		m.Settled, reversalParam(m.ReversedMovementID), m.RuleVersion, m.Note)
	if err != nil {
		return core.Movement{}, fmt.Errorf("create movement: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Movement{}, fmt.Errorf("movement id: %w", err)
	}

	slog.InfoContext(ctx, "Movement saved",
		"id", id,
		"kind", m.Kind,
		"category", m.Category,
		"amount_cents", m.Amount.Cents,
		"commission_cents", m.Commission.Cents)

	return t.GetMovement(ctx, id)
}

func (t *TenantStore) UpdateMovement(ctx context.Context, m core.Movement) (core.Movement, error) {
	res, err := t.db.ExecContext(ctx, `
		UPDATE movements SET kind = ?, category = ?, counterparty_ref = ?, site_ref = ?,
			description = ?, amount_cents = ?, commission_cents = ?, movement_date = ?,
			due_date = ?, settled = ?, reversed_movement_id = ?, rule_version = ?, note = ?
		WHERE tenant_id = ? AND id = ?`,
		m.Kind, m.Category, m.CounterpartyRef, m.SiteRef,
		m.Description, m.Amount.Cents, m.Commission.Cents,
		dateParam(m.MovementDate), dateParam(m.DueDate),
		m.Settled, reversalParam(m.ReversedMovementID), m.RuleVersion, m.Note,
		t.tenant, m.ID)
	if err != nil {
		return core.Movement{}, fmt.Errorf("update movement: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Movement{}, core.ErrNotFound
	}
	return t.GetMovement(ctx, m.ID)
}

func (t *TenantStore) DeleteMovement(ctx context.Context, id int64) error {
	res, err := t.db.ExecContext(ctx,
		`DELETE FROM movements WHERE tenant_id = ? AND id = ?`, t.tenant, id)
	if err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovement(row rowScanner) (core.Movement, error) {
	var (
		m            core.Movement
		movementDate sql.NullString
		dueDate      sql.NullString
		reversedID   sql.NullInt64
	)
	err := row.Scan(&m.ID, &m.Kind, &m.Category, &m.CounterpartyRef, &m.SiteRef,
		&m.Description, &m.Amount.Cents, &m.Commission.Cents,
		&movementDate, &dueDate, &m.Settled, &reversedID, &m.RuleVersion,
		&m.Note, &m.CreatedAt)
	if err != nil {
		return core.Movement{}, err
	}
	m.MovementDate = parseDate(movementDate)
	m.DueDate = parseDate(dueDate)
	m.ReversedMovementID = reversedID.Int64
	return m, nil
}

func dateParam(d core.Date) any {
	if d.IsEmpty() {
		return nil
	}
	return d.Format("2006-01-02")
}

func reversalParam(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func parseDate(s sql.NullString) core.Date {
	if !s.Valid || s.String == "" {
		return core.Date{}
	}
	t, err := time.Parse("2006-01-02", s.String)
	if err != nil {
		return core.Date{}
	}
	return core.Date{Time: t}
}
