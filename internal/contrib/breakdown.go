package contrib

import (
	"sort"

	"primanota/internal/core"
)

// SiteContribution is the contribution total of one site for a period,
// carrying the fund the site routes through. Export-only aggregation: a pure
// sum with no invariants of its own.
type SiteContribution struct {
	SiteID     string
	SiteName   string
	Fund       string
	EntryCount int
	Components core.ComponentSet
	Total      core.Money
}

// SiteBreakdown aggregates contribution entries per site for a period,
// grouped by fund (rows ordered by fund, then site id). Sites without
// entries are omitted; entries for unknown sites appear with an empty fund.
func SiteBreakdown(sites []core.Site, entries []core.ContributionEntry, period core.Period) []SiteContribution {
	byID := make(map[string]core.Site, len(sites))
	for _, s := range sites {
		byID[s.ID] = s
	}

	rows := make(map[string]*SiteContribution)
	for _, e := range entries {
		if e.Period != period {
			continue
		}
		row, ok := rows[e.SiteRef]
		if !ok {
			site := byID[e.SiteRef]
			row = &SiteContribution{SiteID: e.SiteRef, SiteName: site.Name, Fund: site.Fund}
			rows[e.SiteRef] = row
		}
		row.Components = row.Components.Add(e.Components)
		row.EntryCount++
	}

	out := make([]SiteContribution, 0, len(rows))
	for _, row := range rows {
		row.Total = row.Components.Total()
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Fund != out[j].Fund {
			return out[i].Fund < out[j].Fund
		}
		return out[i].SiteID < out[j].SiteID
	})
	return out
}
