// Package memory implements the store ports with a mutex-guarded in-memory
// record set. It backs the development backend and the test suites.
package memory

import (
	"context"
	"sync"
	"time"

	"primanota/internal/commission"
	"primanota/internal/core"
	"primanota/internal/store"
)

// Store is the in-memory provider. Each tenant gets an isolated record set.
type Store struct {
	mu      sync.Mutex
	tenants map[string]*tenantData
}

type tenantData struct {
	mu sync.Mutex

	movements      []core.Movement
	nextMovementID int64

	entries     []core.ContributionEntry
	nextEntryID int64

	fundTotals  []core.FundTotal
	nextTotalID int64

	rules   commission.RuleTable
	opening core.Money
	sites   []core.Site
}

func New() *Store {
	return &Store{tenants: make(map[string]*tenantData)}
}

// Tenant returns the scoped bundle for one tenant, creating it on first use.
func (s *Store) Tenant(id string) store.Bundle {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.tenants[id]
	if !ok {
		data = &tenantData{nextMovementID: 1, nextEntryID: 1, nextTotalID: 1}
		s.tenants[id] = data
	}
	return &TenantStore{data: data}
}

// SeedSites installs site master data for a tenant. Dev and test helper; the
// engine itself only reads sites.
func (s *Store) SeedSites(tenant string, sites []core.Site) {
	ts := s.Tenant(tenant).(*TenantStore)
	ts.data.mu.Lock()
	defer ts.data.mu.Unlock()
	ts.data.sites = append([]core.Site(nil), sites...)
}

// TenantStore implements store.Bundle over one tenant's records.
type TenantStore struct {
	data *tenantData
}

var _ store.Bundle = (*TenantStore)(nil)

func (t *TenantStore) ListMovements(_ context.Context) ([]core.Movement, error) {
	t.data.mu.Lock()
	defer t.data.mu.Unlock()
	return append([]core.Movement(nil), t.data.movements...), nil
}

func (t *TenantStore) GetMovement(_ context.Context, id int64) (core.Movement, error) {
	t.data.mu.Lock()
	defer t.data.mu.Unlock()
	for _, m := range t.data.movements {
		if m.ID == id {
			return m, nil
		}
	}
	return core.Movement{}, core.ErrNotFound
}

func (t *TenantStore) CreateMovement(_ context.Context, m core.Movement) (core.Movement, error) {
	t.data.mu.Lock()
	defer t.data.mu.Unlock()
	m.ID = t.data.nextMovementID
	t.data.nextMovementID++
	m.CreatedAt = time.Now()
	t.data.movements = append(t.data.movements, m)
	return m, nil
}

func (t *TenantStore) UpdateMovement(_ context.Context, m core.Movement) (core.Movement, error) {
	t.data.mu.Lock()
	defer t.data.mu.Unlock()
	for i, existing := range t.data.movements {
		if existing.ID == m.ID {
			m.CreatedAt = existing.CreatedAt
			t.data.movements[i] = m
			return m, nil
		}
	}
	return core.Movement{}, core.ErrNotFound
}

func (t *TenantStore) DeleteMovement(_ context.Context, id int64) error {
	t.data.mu.Lock()
	defer t.data.mu.Unlock()
	for i, m := range t.data.movements {
		if m.ID == id {
			t.data.movements = append(t.data.movements[:i], t.data.movements[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (t *TenantStore) ListContributions(_ context.Context) ([]core.ContributionEntry, error) {
	t.data.mu.Lock()
	defer t.data.mu.Unlock()
	return append([]core.ContributionEntry(nil), t.data.entries...), nil
}

func (t *TenantStore) ListContributionsForPeriod(_ context.Context, period core.Period) ([]core.ContributionEntry, error) {
	t.data.mu.Lock()
	defer t.data.mu.Unlock()
	var out []core.ContributionEntry
	for _, e := range t.data.entries {
		if e.Period == period {
			out = append(out, e)
		}
	}
	return out, nil
}

func (t *TenantStore) CreateContribution(_ context.Context, e core.ContributionEntry) (core.ContributionEntry, error) {
	t.data.mu.Lock()
	defer t.data.mu.Unlock()
	return t.createContributionLocked(e), nil
}

func (t *TenantStore) createContributionLocked(e core.ContributionEntry) core.ContributionEntry {
	e.ID = t.data.nextEntryID
	t.data.nextEntryID++
	e.CreatedAt = time.Now()
	t.data.entries = append(t.data.entries, e)
	return e
}

func (t *TenantStore) UpdateContribution(_ context.Context, e core.ContributionEntry) (core.ContributionEntry, error) {
	t.data.mu.Lock()
	defer t.data.mu.Unlock()
	for i, existing := range t.data.entries {
		if existing.ID == e.ID {
			e.CreatedAt = existing.CreatedAt
			t.data.entries[i] = e
			return e, nil
		}
	}
	return core.ContributionEntry{}, core.ErrNotFound
}

func (t *TenantStore) DeleteContribution(_ context.Context, id int64) error {
	t.data.mu.Lock()
	defer t.data.mu.Unlock()
	for i, e := range t.data.entries {
		if e.ID == id {
			t.data.entries = append(t.data.entries[:i], t.data.entries[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (t *TenantStore) ReplaceContributions(_ context.Context, siteRef string, period core.Period, entries []core.ContributionEntry) ([]core.ContributionEntry, error) {
	t.data.mu.Lock()
	defer t.data.mu.Unlock()
	kept := t.data.entries[:0]
	for _, e := range t.data.entries {
		if e.SiteRef != siteRef || e.Period != period {
			kept = append(kept, e)
		}
	}
	t.data.entries = kept
	out := make([]core.ContributionEntry, 0, len(entries))
	for _, e := range entries {
		e.SiteRef = siteRef
		e.Period = period
		out = append(out, t.createContributionLocked(e))
	}
	return out, nil
}

func (t *TenantStore) ListFundTotals(_ context.Context) ([]core.FundTotal, error) {
	t.data.mu.Lock()
	defer t.data.mu.Unlock()
	return append([]core.FundTotal(nil), t.data.fundTotals...), nil
}

func (t *TenantStore) CreateFundTotal(_ context.Context, total core.FundTotal) (core.FundTotal, error) {
	t.data.mu.Lock()
	defer t.data.mu.Unlock()
	total.ID = t.data.nextTotalID
	t.data.nextTotalID++
	t.data.fundTotals = append(t.data.fundTotals, total)
	return total, nil
}

func (t *TenantStore) UpdateFundTotal(_ context.Context, total core.FundTotal) (core.FundTotal, error) {
	t.data.mu.Lock()
	defer t.data.mu.Unlock()
	for i, existing := range t.data.fundTotals {
		if existing.ID == total.ID {
			t.data.fundTotals[i] = total
			return total, nil
		}
	}
	return core.FundTotal{}, core.ErrNotFound
}

func (t *TenantStore) DeleteFundTotal(_ context.Context, id int64) error {
	t.data.mu.Lock()
	defer t.data.mu.Unlock()
	for i, total := range t.data.fundTotals {
		if total.ID == id {
			t.data.fundTotals = append(t.data.fundTotals[:i], t.data.fundTotals[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (t *TenantStore) RuleTable(_ context.Context) (commission.RuleTable, error) {
	t.data.mu.Lock()
	defer t.data.mu.Unlock()
	return t.data.rules, nil
}

func (t *TenantStore) SaveRuleTable(_ context.Context, table commission.RuleTable) (commission.RuleTable, error) {
	t.data.mu.Lock()
	defer t.data.mu.Unlock()
	t.data.rules = table
	return table, nil
}

func (t *TenantStore) OpeningBalance(_ context.Context) (core.Money, error) {
	t.data.mu.Lock()
	defer t.data.mu.Unlock()
	return t.data.opening, nil
}

func (t *TenantStore) SetOpeningBalance(_ context.Context, m core.Money) error {
	t.data.mu.Lock()
	defer t.data.mu.Unlock()
	t.data.opening = m
	return nil
}

func (t *TenantStore) ListSites(_ context.Context) ([]core.Site, error) {
	t.data.mu.Lock()
	defer t.data.mu.Unlock()
	return append([]core.Site(nil), t.data.sites...), nil
}
