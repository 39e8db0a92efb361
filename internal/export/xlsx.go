// Package export renders the monthly workbook: the movement statement with
// running balances, the per-site contribution breakdown and the fund
// reconciliation report, one sheet each.
package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"primanota/internal/contrib"
	"primanota/internal/core"
	"primanota/internal/ledger"
)

const (
	SheetMovements      = "Movimenti"
	SheetSiteBreakdown  = "Cantieri"
	SheetReconciliation = "Riconciliazione"
)

// Workbook is everything one export run needs, already loaded and derived.
type Workbook struct {
	Tenant    string
	Period    core.Period
	Opening   core.Money
	Statement []ledger.StatementRow
	Totals    ledger.Totals
	Breakdown []contrib.SiteContribution
	Reports   []contrib.Report
}

// Filename returns the canonical workbook name for one tenant and period.
func Filename(tenant string, period core.Period) string {
	return fmt.Sprintf("primanota-%s-%04d-%02d.xlsx", tenant, period.Year, period.Month)
}

// Build renders the workbook into an in-memory XLSX file.
func Build(wb Workbook) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := writeMovements(f, wb); err != nil {
		return nil, fmt.Errorf("write movements sheet: %w", err)
	}
	if err := writeSiteBreakdown(f, wb.Breakdown); err != nil {
		return nil, fmt.Errorf("write site breakdown sheet: %w", err)
	}
	if err := writeReconciliation(f, wb.Reports); err != nil {
		return nil, fmt.Errorf("write reconciliation sheet: %w", err)
	}

	// The default sheet excelize creates is replaced by ours.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}
	idx, err := f.GetSheetIndex(SheetMovements)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)

	return f, nil
}

func writeMovements(f *excelize.File, wb Workbook) error {
	if _, err := f.NewSheet(SheetMovements); err != nil {
		return err
	}

	headers := []any{
		"Data", "Tipo", "Categoria", "Controparte", "Cantiere",
		"Descrizione", "Importo", "Commissione", "Totale", "Saldo", "Stato",
	}
	if err := setRow(f, SheetMovements, 1, headers); err != nil {
		return err
	}

	row := 2
	for _, sr := range wb.Statement {
		m := sr.Movement
		status := "da saldare"
		if m.Settled {
			status = "saldato"
		}
		cells := []any{
			formatDate(m.MovementDate),
			string(m.Kind),
			string(m.Category),
			m.CounterpartyRef,
			m.SiteRef,
			m.Description,
			m.Amount.Euros(),
			m.Commission.Euros(),
			m.SignedTotal().Euros(),
			sr.Running.Euros(),
			status,
		}
		if err := setRow(f, SheetMovements, row, cells); err != nil {
			return err
		}
		row++
	}

	row++
	footer := [][]any{
		{"Saldo iniziale", wb.Opening.Euros()},
		{"Totale entrate", wb.Totals.Inflow.Euros()},
		{"Totale uscite", wb.Totals.Outflow.Euros()},
		{"Totale storni", wb.Totals.Reversals.Euros()},
	}
	for _, line := range footer {
		if err := setRow(f, SheetMovements, row, line); err != nil {
			return err
		}
		row++
	}
	return nil
}

func writeSiteBreakdown(f *excelize.File, rows []contrib.SiteContribution) error {
	if _, err := f.NewSheet(SheetSiteBreakdown); err != nil {
		return err
	}

	headers := []any{"Cassa", "Cantiere", "Nome", "Voci"}
	for _, name := range core.ComponentNames {
		headers = append(headers, name)
	}
	headers = append(headers, "Totale")
	if err := setRow(f, SheetSiteBreakdown, 1, headers); err != nil {
		return err
	}

	for i, sc := range rows {
		cells := []any{sc.Fund, sc.SiteID, sc.SiteName, sc.EntryCount}
		for _, name := range core.ComponentNames {
			cells = append(cells, sc.Components.Get(name).Euros())
		}
		cells = append(cells, sc.Total.Euros())
		if err := setRow(f, SheetSiteBreakdown, i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

func writeReconciliation(f *excelize.File, reports []contrib.Report) error {
	if _, err := f.NewSheet(SheetReconciliation); err != nil {
		return err
	}

	headers := []any{"Cassa", "Voce", "Somma lavoratori", "Totale cassa", "Differenza", "Segnalata"}
	if err := setRow(f, SheetReconciliation, 1, headers); err != nil {
		return err
	}

	row := 2
	for _, report := range reports {
		for _, cd := range report.Components {
			flagged := ""
			if cd.Flagged {
				flagged = "X"
			}
			cells := []any{
				report.Fund,
				cd.Name,
				cd.WorkerSum.Euros(),
				cd.FundTotal.Euros(),
				cd.Diff.Euros(),
				flagged,
			}
			if err := setRow(f, SheetReconciliation, row, cells); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, cells []any) error {
	for i, value := range cells {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return err
		}
	}
	return nil
}

func formatDate(d core.Date) string {
	if d.IsEmpty() {
		return ""
	}
	return d.Format(time.DateOnly)
}
