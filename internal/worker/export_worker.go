// Package worker builds the monthly XLSX workbooks requested over AMQP.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"primanota/internal/amqp"
	"primanota/internal/contrib"
	"primanota/internal/core"
	"primanota/internal/export"
	"primanota/internal/log"
	"primanota/internal/services"
	"primanota/internal/store"
)

// ExportWorker consumes export requests and writes one workbook per request
// into the export directory. Everything is re-read from the store at build
// time; the message only names tenant and period.
type ExportWorker struct {
	provider  store.Provider
	exportDir string

	mu   sync.Mutex
	seen map[exportKey]struct{}
}

type exportKey struct {
	tenant string
	period core.Period
}

func NewExportWorker(provider store.Provider, exportDir string) *ExportWorker {
	return &ExportWorker{
		provider:  provider,
		exportDir: exportDir,
		seen:      make(map[exportKey]struct{}),
	}
}

// Run consumes export requests and periodically rebuilds every workbook seen
// since startup, so a workbook removed or corrupted on disk heals on the
// next tick. Both goroutines stop on context cancellation.
func (w *ExportWorker) Run(ctx context.Context, client *amqp.Client, interval time.Duration) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return client.ConsumeExportRequests(ctx, func(msg *amqp.ExportRequestMessage) error {
			return w.HandleExportRequest(ctx, msg)
		})
	})

	g.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				w.rebuildSeen(ctx)
			}
		}
	})

	return g.Wait()
}

func (w *ExportWorker) rebuildSeen(ctx context.Context) {
	w.mu.Lock()
	keys := make([]exportKey, 0, len(w.seen))
	for k := range w.seen {
		keys = append(keys, k)
	}
	w.mu.Unlock()

	for _, k := range keys {
		if _, err := w.buildWorkbook(ctx, k.tenant, k.period); err != nil {
			fields := log.NewFields().
				WithComponent(log.ComponentWorker).
				WithTenant(k.tenant).
				WithPeriod(k.period.Year, k.period.Month).
				WithError(err)
			slog.ErrorContext(ctx, "Periodic workbook rebuild failed", fields.ToSlice()...)
		}
	}
}

// HandleExportRequest builds and saves the workbook for one message.
func (w *ExportWorker) HandleExportRequest(ctx context.Context, msg *amqp.ExportRequestMessage) error {
	period := core.Period{Month: msg.Month, Year: msg.Year}
	if err := period.Validate(); err != nil {
		return fmt.Errorf("export request %s: %w", msg.JobID, err)
	}
	if msg.Tenant == "" {
		return fmt.Errorf("export request %s: empty tenant", msg.JobID)
	}

	started := time.Now()
	path, err := w.buildWorkbook(ctx, msg.Tenant, period)
	if err != nil {
		return fmt.Errorf("build workbook for %s: %w", msg.Tenant, err)
	}

	w.mu.Lock()
	w.seen[exportKey{tenant: msg.Tenant, period: period}] = struct{}{}
	w.mu.Unlock()

	fields := log.NewFields().
		WithComponent(log.ComponentWorker).
		WithOperation(log.OpExport).
		WithTenant(msg.Tenant).
		WithPeriod(period.Year, period.Month)
	fields[log.FieldJobID] = msg.JobID.String()
	fields[log.FieldPath] = path
	fields[log.FieldDuration] = time.Since(started).Milliseconds()
	slog.InfoContext(ctx, "Workbook exported", fields.ToSlice()...)

	return nil
}

func (w *ExportWorker) buildWorkbook(ctx context.Context, tenant string, period core.Period) (string, error) {
	stores := w.provider.Tenant(tenant)
	ledgerSvc := services.NewLedgerService(stores)
	contribSvc := services.NewContributionService(stores)

	opening, err := ledgerSvc.OpeningBalance(ctx)
	if err != nil {
		return "", err
	}
	statement, err := ledgerSvc.Statement(ctx)
	if err != nil {
		return "", err
	}
	balances, err := ledgerSvc.Balances(ctx, time.Now())
	if err != nil {
		return "", err
	}
	breakdown, err := contribSvc.SiteBreakdown(ctx, period)
	if err != nil {
		return "", err
	}
	reports, err := reconcileAllFunds(ctx, stores, contribSvc, period)
	if err != nil {
		return "", err
	}

	f, err := export.Build(export.Workbook{
		Tenant:    tenant,
		Period:    period,
		Opening:   opening,
		Statement: statement,
		Totals:    balances.Totals,
		Breakdown: breakdown,
		Reports:   reports,
	})
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := os.MkdirAll(w.exportDir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(w.exportDir, export.Filename(tenant, period))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return path, nil
}

// reconcileAllFunds runs one reconciliation per distinct fund named by the
// tenant's sites, in stable order.
func reconcileAllFunds(ctx context.Context, stores store.Bundle, svc *services.ContributionService, period core.Period) ([]contrib.Report, error) {
	sites, err := stores.ListSites(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sites: %w", err)
	}

	seen := make(map[string]bool)
	var funds []string
	for _, s := range sites {
		if s.Fund == "" || seen[s.Fund] {
			continue
		}
		seen[s.Fund] = true
		funds = append(funds, s.Fund)
	}
	sort.Strings(funds)

	reports := make([]contrib.Report, 0, len(funds))
	for _, fund := range funds {
		report, err := svc.Reconcile(ctx, fund, period)
		if err != nil {
			return nil, fmt.Errorf("reconcile fund %s: %w", fund, err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}
