package contrib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"primanota/internal/core"
)

var (
	march2025 = core.Period{Month: 3, Year: 2025}

	testSites = []core.Site{
		{ID: "site-a", Name: "Cantiere Via Roma", Fund: "EdilCassa"},
		{ID: "site-b", Name: "Cantiere Darsena", Fund: "EdilCassa"},
		{ID: "site-c", Name: "Cantiere Bovisa", Fund: "Cassa Edile MI"},
	}
)

func entry(worker, site string, period core.Period, accrualCents int64) core.ContributionEntry {
	return core.ContributionEntry{
		WorkerRef: worker,
		SiteRef:   site,
		Period:    period,
		Days:      core.DayRange{Start: 1, End: 31},
		Components: core.ComponentSet{
			Accrual: core.Money{Cents: accrualCents},
		},
	}
}

func componentByName(t *testing.T, r Report, name string) ComponentDiff {
	t.Helper()
	for _, c := range r.Components {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("component %q not in report", name)
	return ComponentDiff{}
}

func TestReconcileFlagsDiscrepancy(t *testing.T) {
	// Worker entries sum to 250.00 but the fund declared 260.00.
	entries := []core.ContributionEntry{
		entry("w1", "site-a", march2025, 12000),
		entry("w2", "site-b", march2025, 13000),
	}
	totals := []core.FundTotal{
		{FundName: "EdilCassa", Period: march2025, Components: core.ComponentSet{Accrual: core.Money{Cents: 26000}}},
	}

	report := Reconcile("EdilCassa", march2025, testSites, entries, totals)
	require.Len(t, report.Components, 7)
	assert.Equal(t, 2, report.EntryCount)
	assert.Equal(t, []string{"site-a", "site-b"}, report.SiteIDs)

	accrual := componentByName(t, report, core.ComponentAccrual)
	assert.Equal(t, int64(25000), accrual.WorkerSum.Cents)
	assert.Equal(t, int64(26000), accrual.FundTotal.Cents)
	assert.Equal(t, int64(-1000), accrual.Diff.Cents)
	assert.True(t, accrual.Flagged)
	assert.True(t, report.Flagged())

	// All other components are zero on both sides and stay quiet.
	for _, name := range core.ComponentNames[1:] {
		assert.False(t, componentByName(t, report, name).Flagged, name)
	}
}

func TestReconcileSignDoesNotMatter(t *testing.T) {
	entries := []core.ContributionEntry{entry("w1", "site-a", march2025, 26000)}
	totals := []core.FundTotal{
		{FundName: "EdilCassa", Period: march2025, Components: core.ComponentSet{Accrual: core.Money{Cents: 25000}}},
	}
	report := Reconcile("EdilCassa", march2025, testSites, entries, totals)
	accrual := componentByName(t, report, core.ComponentAccrual)
	assert.Equal(t, int64(1000), accrual.Diff.Cents)
	assert.True(t, accrual.Flagged, "over-reporting flags the same as under-reporting")
}

func TestReconcileEpsilonBoundary(t *testing.T) {
	cases := []struct {
		declaredCents int64
		flagged       bool
	}{
		{10000, false}, // exact match
		{10001, false}, // one cent off is rounding noise
		{9999, false},
		{10002, true}, // two cents off is a discrepancy
		{9998, true},
	}
	for _, tc := range cases {
		entries := []core.ContributionEntry{entry("w1", "site-a", march2025, 10000)}
		totals := []core.FundTotal{
			{FundName: "EdilCassa", Period: march2025, Components: core.ComponentSet{Accrual: core.Money{Cents: tc.declaredCents}}},
		}
		report := Reconcile("EdilCassa", march2025, testSites, entries, totals)
		accrual := componentByName(t, report, core.ComponentAccrual)
		assert.Equal(t, tc.flagged, accrual.Flagged, "declared %d", tc.declaredCents)
	}
}

func TestReconcileMissingFundTotal(t *testing.T) {
	entries := []core.ContributionEntry{entry("w1", "site-a", march2025, 5000)}
	report := Reconcile("EdilCassa", march2025, testSites, entries, nil)
	accrual := componentByName(t, report, core.ComponentAccrual)
	assert.Equal(t, int64(0), accrual.FundTotal.Cents)
	assert.Equal(t, int64(5000), accrual.Diff.Cents)
	assert.True(t, accrual.Flagged)
}

func TestReconcileFiltersSiteAndPeriod(t *testing.T) {
	entries := []core.ContributionEntry{
		entry("w1", "site-a", march2025, 10000),
		entry("w2", "site-c", march2025, 7000),                        // other fund's site
		entry("w3", "site-a", core.Period{Month: 4, Year: 2025}, 900), // other period
		entry("w4", "site-x", march2025, 800),                         // unknown site
	}
	totals := []core.FundTotal{
		{FundName: "EdilCassa", Period: march2025, Components: core.ComponentSet{Accrual: core.Money{Cents: 10000}}},
	}
	report := Reconcile("EdilCassa", march2025, testSites, entries, totals)
	assert.Equal(t, 1, report.EntryCount)
	accrual := componentByName(t, report, core.ComponentAccrual)
	assert.Equal(t, int64(10000), accrual.WorkerSum.Cents)
	assert.False(t, accrual.Flagged)
	assert.False(t, report.Flagged())
}

func TestSiteBreakdown(t *testing.T) {
	entries := []core.ContributionEntry{
		entry("w1", "site-a", march2025, 10000),
		entry("w2", "site-a", march2025, 5000),
		entry("w3", "site-c", march2025, 7000),
		entry("w4", "site-b", core.Period{Month: 2, Year: 2025}, 999),
	}
	rows := SiteBreakdown(testSites, entries, march2025)
	require.Len(t, rows, 2)

	// Ordered by fund, then site id.
	assert.Equal(t, "Cassa Edile MI", rows[0].Fund)
	assert.Equal(t, "site-c", rows[0].SiteID)
	assert.Equal(t, int64(7000), rows[0].Total.Cents)

	assert.Equal(t, "EdilCassa", rows[1].Fund)
	assert.Equal(t, "site-a", rows[1].SiteID)
	assert.Equal(t, "Cantiere Via Roma", rows[1].SiteName)
	assert.Equal(t, 2, rows[1].EntryCount)
	assert.Equal(t, int64(15000), rows[1].Total.Cents)
}
