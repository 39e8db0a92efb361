package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"primanota/internal/contrib"
	"primanota/internal/core"
	"primanota/internal/ledger"
)

func TestFilename(t *testing.T) {
	got := Filename("acme", core.Period{Month: 3, Year: 2025})
	assert.Equal(t, "primanota-acme-2025-03.xlsx", got)
}

func TestBuildWorkbook(t *testing.T) {
	movements := []core.Movement{
		{
			ID: 1, Kind: core.Inflow, Category: core.CategoryWireTransfer,
			CounterpartyRef: "client-1", Description: "incasso SAL",
			Amount:       core.Money{Cents: 50000},
			MovementDate: core.NewDate(2025, 3, 1), Settled: true,
		},
		{
			ID: 2, Kind: core.Outflow, Category: core.CategoryWireTransfer,
			CounterpartyRef: "supplier-1", SiteRef: "site-a", Description: "bonifico fornitore",
			Amount: core.Money{Cents: 20000}, Commission: core.Money{Cents: 150},
			MovementDate: core.NewDate(2025, 3, 10), Settled: true,
		},
	}
	opening := core.Money{Cents: 10000}

	wb := Workbook{
		Tenant:    "acme",
		Period:    core.Period{Month: 3, Year: 2025},
		Opening:   opening,
		Statement: ledger.Statement(opening, movements),
		Totals:    ledger.Summarize(movements),
		Breakdown: []contrib.SiteContribution{
			{
				SiteID: "site-a", SiteName: "Cantiere Via Roma", Fund: "EdilCassa",
				EntryCount: 2,
				Components: core.ComponentSet{Accrual: core.Money{Cents: 15000}},
				Total:      core.Money{Cents: 15000},
			},
		},
		Reports: []contrib.Report{
			{
				Fund:   "EdilCassa",
				Period: core.Period{Month: 3, Year: 2025},
				Components: []contrib.ComponentDiff{
					{
						Name:      core.ComponentAccrual,
						WorkerSum: core.Money{Cents: 25000},
						FundTotal: core.Money{Cents: 26000},
						Diff:      core.Money{Cents: -1000},
						Flagged:   true,
					},
				},
			},
		},
	}

	f, err := Build(wb)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.ElementsMatch(t, []string{SheetMovements, SheetSiteBreakdown, SheetReconciliation}, sheets)

	cell := func(sheet, ref string) string {
		t.Helper()
		v, err := f.GetCellValue(sheet, ref)
		require.NoError(t, err)
		return v
	}

	// Statement rows come out date-ordered with a running balance.
	assert.Equal(t, "Data", cell(SheetMovements, "A1"))
	assert.Equal(t, "2025-03-01", cell(SheetMovements, "A2"))
	assert.Equal(t, "incasso SAL", cell(SheetMovements, "F2"))
	assert.Equal(t, "600", cell(SheetMovements, "J2"), "running after inflow: 100 + 500")
	assert.Equal(t, "bonifico fornitore", cell(SheetMovements, "F3"))
	assert.Equal(t, "-201.5", cell(SheetMovements, "I3"), "signed total includes commission")
	assert.Equal(t, "398.5", cell(SheetMovements, "J3"))

	// Footer totals sit one blank row below the statement.
	assert.Equal(t, "Saldo iniziale", cell(SheetMovements, "A5"))
	assert.Equal(t, "100", cell(SheetMovements, "B5"))
	assert.Equal(t, "Totale uscite", cell(SheetMovements, "A7"))
	assert.Equal(t, "201.5", cell(SheetMovements, "B7"))

	assert.Equal(t, "EdilCassa", cell(SheetSiteBreakdown, "A2"))
	assert.Equal(t, "site-a", cell(SheetSiteBreakdown, "B2"))
	assert.Equal(t, "150", cell(SheetSiteBreakdown, "E2"), "accrual column")
	assert.Equal(t, "150", cell(SheetSiteBreakdown, "L2"), "total column")

	assert.Equal(t, "accrual", cell(SheetReconciliation, "B2"))
	assert.Equal(t, "-10", cell(SheetReconciliation, "E2"))
	assert.Equal(t, "X", cell(SheetReconciliation, "F2"))
}
