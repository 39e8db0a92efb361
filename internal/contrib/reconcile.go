// Package contrib cross-checks worker-level labor-fund contribution entries
// against the totals each fund declares for a period.
package contrib

import (
	"sort"

	"primanota/internal/core"
)

// discrepancyEpsilonCents absorbs rounding noise: a component is flagged
// only when the difference exceeds one cent. Fixed absolute tolerance, not
// scaled by amount.
const discrepancyEpsilonCents = 1

type (
	// ComponentDiff is the reconciliation outcome for one component: what the
	// worker entries sum to, what the fund declared, and whether the
	// difference is worth a look. A flagged row is a warning, never an error.
	ComponentDiff struct {
		Name      string
		WorkerSum core.Money
		FundTotal core.Money
		Diff      core.Money
		Flagged   bool
	}

	// Report is the full per-component discrepancy report for one fund and
	// period.
	Report struct {
		Fund       string
		Period     core.Period
		SiteIDs    []string
		EntryCount int
		Components []ComponentDiff
	}
)

// Reconcile sums the contribution entries routed through sites belonging to
// the fund and diffs the sum, component by component, against the fund's
// declared total for the period. A missing FundTotal counts as zero.
func Reconcile(fund string, period core.Period, sites []core.Site, entries []core.ContributionEntry, totals []core.FundTotal) Report {
	fundSites := make(map[string]bool)
	var siteIDs []string
	for _, s := range sites {
		if s.Fund == fund {
			fundSites[s.ID] = true
			siteIDs = append(siteIDs, s.ID)
		}
	}
	sort.Strings(siteIDs)

	var workerSum core.ComponentSet
	count := 0
	for _, e := range entries {
		if e.Period != period || !fundSites[e.SiteRef] {
			continue
		}
		workerSum = workerSum.Add(e.Components)
		count++
	}

	var declared core.ComponentSet
	for _, t := range totals {
		if t.FundName == fund && t.Period == period {
			declared = t.Components
			break
		}
	}

	report := Report{
		Fund:       fund,
		Period:     period,
		SiteIDs:    siteIDs,
		EntryCount: count,
		Components: make([]ComponentDiff, 0, len(core.ComponentNames)),
	}
	for _, name := range core.ComponentNames {
		ws := workerSum.Get(name)
		ft := declared.Get(name)
		diff := ws.Sub(ft)
		report.Components = append(report.Components, ComponentDiff{
			Name:      name,
			WorkerSum: ws,
			FundTotal: ft,
			Diff:      diff,
			Flagged:   diff.Abs().Cents > discrepancyEpsilonCents,
		})
	}
	return report
}

// Flagged reports whether any component in the report is flagged.
func (r Report) Flagged() bool {
	for _, c := range r.Components {
		if c.Flagged {
			return true
		}
	}
	return false
}
