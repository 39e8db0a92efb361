package services

import (
	"context"
	"fmt"

	"primanota/internal/contrib"
	"primanota/internal/core"
	"primanota/internal/store"
)

// ContributionService owns the labor-fund side: worker contribution entries,
// fund-declared totals and the reconciliation between them.
type ContributionService struct {
	stores store.Bundle
}

func NewContributionService(stores store.Bundle) *ContributionService {
	return &ContributionService{stores: stores}
}

func (s *ContributionService) ListEntries(ctx context.Context, period core.Period) ([]core.ContributionEntry, error) {
	return s.stores.ListContributionsForPeriod(ctx, period)
}

func (s *ContributionService) CreateEntry(ctx context.Context, e core.ContributionEntry) (core.ContributionEntry, error) {
	if err := e.Validate(); err != nil {
		return core.ContributionEntry{}, err
	}
	created, err := s.stores.CreateContribution(ctx, e)
	if err != nil {
		return core.ContributionEntry{}, fmt.Errorf("save contribution: %w", err)
	}
	return created, nil
}

func (s *ContributionService) UpdateEntry(ctx context.Context, e core.ContributionEntry) (core.ContributionEntry, error) {
	if err := e.Validate(); err != nil {
		return core.ContributionEntry{}, err
	}
	updated, err := s.stores.UpdateContribution(ctx, e)
	if err != nil {
		return core.ContributionEntry{}, fmt.Errorf("update contribution: %w", err)
	}
	return updated, nil
}

func (s *ContributionService) DeleteEntry(ctx context.Context, id int64) error {
	if err := s.stores.DeleteContribution(ctx, id); err != nil {
		return fmt.Errorf("delete contribution: %w", err)
	}
	return nil
}

// ReplaceForPeriod swaps all entries of one site and period. Every entry is
// validated before the first write, so a validation failure leaves the
// stored period untouched.
func (s *ContributionService) ReplaceForPeriod(ctx context.Context, siteRef string, period core.Period, entries []core.ContributionEntry) ([]core.ContributionEntry, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].SiteRef = siteRef
		entries[i].Period = period
		if err := entries[i].Validate(); err != nil {
			return nil, fmt.Errorf("entry %d (worker %s): %w", i, entries[i].WorkerRef, err)
		}
	}
	replaced, err := s.stores.ReplaceContributions(ctx, siteRef, period, entries)
	if err != nil {
		return nil, fmt.Errorf("replace contributions: %w", err)
	}
	return replaced, nil
}

func (s *ContributionService) ListFundTotals(ctx context.Context) ([]core.FundTotal, error) {
	return s.stores.ListFundTotals(ctx)
}

func (s *ContributionService) CreateFundTotal(ctx context.Context, t core.FundTotal) (core.FundTotal, error) {
	if err := t.Validate(); err != nil {
		return core.FundTotal{}, err
	}
	created, err := s.stores.CreateFundTotal(ctx, t)
	if err != nil {
		return core.FundTotal{}, fmt.Errorf("save fund total: %w", err)
	}
	return created, nil
}

func (s *ContributionService) UpdateFundTotal(ctx context.Context, t core.FundTotal) (core.FundTotal, error) {
	if err := t.Validate(); err != nil {
		return core.FundTotal{}, err
	}
	updated, err := s.stores.UpdateFundTotal(ctx, t)
	if err != nil {
		return core.FundTotal{}, fmt.Errorf("update fund total: %w", err)
	}
	return updated, nil
}

func (s *ContributionService) DeleteFundTotal(ctx context.Context, id int64) error {
	if err := s.stores.DeleteFundTotal(ctx, id); err != nil {
		return fmt.Errorf("delete fund total: %w", err)
	}
	return nil
}

// Reconcile loads the current snapshot and produces the per-component
// discrepancy report for one fund and period. Flags are warnings for the
// caller to display; they never block anything.
func (s *ContributionService) Reconcile(ctx context.Context, fund string, period core.Period) (contrib.Report, error) {
	if err := period.Validate(); err != nil {
		return contrib.Report{}, err
	}
	sites, err := s.stores.ListSites(ctx)
	if err != nil {
		return contrib.Report{}, fmt.Errorf("load sites: %w", err)
	}
	entries, err := s.stores.ListContributionsForPeriod(ctx, period)
	if err != nil {
		return contrib.Report{}, fmt.Errorf("load contributions: %w", err)
	}
	totals, err := s.stores.ListFundTotals(ctx)
	if err != nil {
		return contrib.Report{}, fmt.Errorf("load fund totals: %w", err)
	}
	return contrib.Reconcile(fund, period, sites, entries, totals), nil
}

// SiteBreakdown is the export-only per-site aggregation grouped by fund.
func (s *ContributionService) SiteBreakdown(ctx context.Context, period core.Period) ([]contrib.SiteContribution, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	sites, err := s.stores.ListSites(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sites: %w", err)
	}
	entries, err := s.stores.ListContributionsForPeriod(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("load contributions: %w", err)
	}
	return contrib.SiteBreakdown(sites, entries, period), nil
}
