// Package store defines the record-store ports the engine talks to. Every
// port is tenant-scoped by construction: implementations are created for one
// tenant and never leak another tenant's records.
package store

import (
	"context"

	"primanota/internal/commission"
	"primanota/internal/core"
)

// Ports for outbound record storage.
type (
	MovementStore interface {
		ListMovements(ctx context.Context) ([]core.Movement, error)
		GetMovement(ctx context.Context, id int64) (core.Movement, error)
		CreateMovement(ctx context.Context, m core.Movement) (core.Movement, error)
		// UpdateMovement is unconditional last-write-wins on the full record.
		UpdateMovement(ctx context.Context, m core.Movement) (core.Movement, error)
		DeleteMovement(ctx context.Context, id int64) error
	}

	ContributionStore interface {
		ListContributions(ctx context.Context) ([]core.ContributionEntry, error)
		ListContributionsForPeriod(ctx context.Context, period core.Period) ([]core.ContributionEntry, error)
		CreateContribution(ctx context.Context, e core.ContributionEntry) (core.ContributionEntry, error)
		UpdateContribution(ctx context.Context, e core.ContributionEntry) (core.ContributionEntry, error)
		DeleteContribution(ctx context.Context, id int64) error
		// ReplaceContributions swaps every entry of one site and period for
		// the given set in a single store call.
		ReplaceContributions(ctx context.Context, siteRef string, period core.Period, entries []core.ContributionEntry) ([]core.ContributionEntry, error)
	}

	FundTotalStore interface {
		ListFundTotals(ctx context.Context) ([]core.FundTotal, error)
		CreateFundTotal(ctx context.Context, t core.FundTotal) (core.FundTotal, error)
		UpdateFundTotal(ctx context.Context, t core.FundTotal) (core.FundTotal, error)
		DeleteFundTotal(ctx context.Context, id int64) error
	}

	// RuleStore persists the commission rule table as an opaque per-tenant
	// configuration blob.
	RuleStore interface {
		RuleTable(ctx context.Context) (commission.RuleTable, error)
		SaveRuleTable(ctx context.Context, t commission.RuleTable) (commission.RuleTable, error)
	}

	// BalanceStore persists the single opening-balance scalar per tenant.
	BalanceStore interface {
		OpeningBalance(ctx context.Context) (core.Money, error)
		SetOpeningBalance(ctx context.Context, m core.Money) error
	}

	// SiteDirectory exposes the construction-site master data the engine
	// consumes read-only (the site -> fund routing).
	SiteDirectory interface {
		ListSites(ctx context.Context) ([]core.Site, error)
	}
)

// Bundle groups every port for one tenant.
type Bundle interface {
	MovementStore
	ContributionStore
	FundTotalStore
	RuleStore
	BalanceStore
	SiteDirectory
}

// Provider hands out tenant-scoped bundles.
type Provider interface {
	Tenant(id string) Bundle
}
