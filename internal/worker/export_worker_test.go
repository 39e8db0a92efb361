package worker

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"primanota/internal/amqp"
	"primanota/internal/core"
	"primanota/internal/store/memory"
)

func seedTenant(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.New()
	s.SeedSites("acme", []core.Site{
		{ID: "site-a", Name: "Cantiere Via Roma", Fund: "EdilCassa"},
	})

	stores := s.Tenant("acme")
	ctx := context.Background()

	require.NoError(t, stores.SetOpeningBalance(ctx, core.Money{Cents: 10000}))
	_, err := stores.CreateMovement(ctx, core.Movement{
		Kind: core.Inflow, Category: core.CategoryWireTransfer,
		CounterpartyRef: "client-1", Description: "incasso SAL",
		Amount:       core.Money{Cents: 50000},
		MovementDate: core.NewDate(2025, 3, 1), Settled: true,
	})
	require.NoError(t, err)

	_, err = stores.CreateContribution(ctx, core.ContributionEntry{
		WorkerRef: "w1", SiteRef: "site-a",
		Period: core.Period{Month: 3, Year: 2025},
		Days:   core.DayRange{Start: 1, End: 31},
		Components: core.ComponentSet{
			Accrual: core.Money{Cents: 12000},
		},
	})
	require.NoError(t, err)

	return s
}

func TestHandleExportRequest(t *testing.T) {
	dir := t.TempDir()
	w := NewExportWorker(seedTenant(t), dir)
	ctx := context.Background()

	msg := amqp.NewExportRequestMessage("acme", 2025, 3)
	require.NoError(t, w.HandleExportRequest(ctx, msg))

	path := filepath.Join(dir, "primanota-acme-2025-03.xlsx")
	_, err := os.Stat(path)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue("Movimenti", "F2")
	require.NoError(t, err)
	assert.Equal(t, "incasso SAL", v)

	v, err = f.GetCellValue("Cantieri", "A2")
	require.NoError(t, err)
	assert.Equal(t, "EdilCassa", v)

	// One reconciliation block per fund named by the tenant's sites.
	v, err = f.GetCellValue("Riconciliazione", "A2")
	require.NoError(t, err)
	assert.Equal(t, "EdilCassa", v)
}

func TestHandleExportRequestRejectsBadPeriod(t *testing.T) {
	w := NewExportWorker(memory.New(), t.TempDir())

	msg := amqp.NewExportRequestMessage("acme", 2025, 13)
	err := w.HandleExportRequest(context.Background(), msg)
	assert.ErrorIs(t, err, core.ErrInvalidMonth)

	msg = amqp.NewExportRequestMessage("", 2025, 3)
	err = w.HandleExportRequest(context.Background(), msg)
	assert.Error(t, err)
}
