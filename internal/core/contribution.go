package core

import (
	"strings"
	"time"
)

// Component names, in the fixed order used by reports and exports.
const (
	ComponentAccrual         = "accrual"
	ComponentContribution    = "contribution"
	ComponentWelfare         = "welfare"
	ComponentTerritorialFund = "territorial_fund"
	ComponentNationalFund    = "national_fund"
	ComponentSicknessReserve = "sickness_reserve"
	ComponentSeverance       = "severance"
)

// ComponentNames lists the seven contribution components in report order.
var ComponentNames = []string{
	ComponentAccrual,
	ComponentContribution,
	ComponentWelfare,
	ComponentTerritorialFund,
	ComponentNationalFund,
	ComponentSicknessReserve,
	ComponentSeverance,
}

type (
	// ComponentSet carries the seven labor-fund contribution amounts shared
	// by worker entries and fund-declared totals. Absent components are zero.
	ComponentSet struct {
		Accrual         Money
		Contribution    Money
		Welfare         Money
		TerritorialFund Money
		NationalFund    Money
		SicknessReserve Money
		Severance       Money
	}

	// DayRange is the span of days within the period a contribution covers.
	DayRange struct {
		Start int
		End   int
	}

	// ContributionEntry is one worker's fund contribution for a day range
	// within one site and period.
	ContributionEntry struct {
		ID         int64
		WorkerRef  string
		SiteRef    string
		Period     Period
		Days       DayRange
		Components ComponentSet
		CreatedAt  time.Time
	}

	// FundTotal is a labor fund's self-declared aggregate for a period. The
	// fund name is the key shared with a site's fund attribute.
	FundTotal struct {
		ID         int64
		FundName   string
		Period     Period
		Components ComponentSet
	}

	// Site is the slice of construction-site master data the engine consumes:
	// identity plus the labor fund the site's contributions route through.
	Site struct {
		ID   string
		Name string
		Fund string
	}
)

// Get returns the component with the given name, zero for unknown names.
func (c ComponentSet) Get(name string) Money {
	switch name {
	case ComponentAccrual:
		return c.Accrual
	case ComponentContribution:
		return c.Contribution
	case ComponentWelfare:
		return c.Welfare
	case ComponentTerritorialFund:
		return c.TerritorialFund
	case ComponentNationalFund:
		return c.NationalFund
	case ComponentSicknessReserve:
		return c.SicknessReserve
	case ComponentSeverance:
		return c.Severance
	}
	return Money{}
}

// Set assigns the component with the given name.
func (c *ComponentSet) Set(name string, m Money) error {
	switch name {
	case ComponentAccrual:
		c.Accrual = m
	case ComponentContribution:
		c.Contribution = m
	case ComponentWelfare:
		c.Welfare = m
	case ComponentTerritorialFund:
		c.TerritorialFund = m
	case ComponentNationalFund:
		c.NationalFund = m
	case ComponentSicknessReserve:
		c.SicknessReserve = m
	case ComponentSeverance:
		c.Severance = m
	default:
		return ErrUnknownComponent
	}
	return nil
}

// Add returns the component-wise sum.
func (c ComponentSet) Add(other ComponentSet) ComponentSet {
	return ComponentSet{
		Accrual:         c.Accrual.Add(other.Accrual),
		Contribution:    c.Contribution.Add(other.Contribution),
		Welfare:         c.Welfare.Add(other.Welfare),
		TerritorialFund: c.TerritorialFund.Add(other.TerritorialFund),
		NationalFund:    c.NationalFund.Add(other.NationalFund),
		SicknessReserve: c.SicknessReserve.Add(other.SicknessReserve),
		Severance:       c.Severance.Add(other.Severance),
	}
}

// Total returns the sum of all seven components.
func (c ComponentSet) Total() Money {
	var total Money
	for _, name := range ComponentNames {
		total = total.Add(c.Get(name))
	}
	return total
}

// Validate rejects negative components.
func (c ComponentSet) Validate() error {
	for _, name := range ComponentNames {
		if c.Get(name).Cents < 0 {
			return ErrInvalidAmount
		}
	}
	return nil
}

func (r DayRange) Validate() error {
	if r.Start < 1 || r.Start > 31 || r.End < 1 || r.End > 31 || r.Start > r.End {
		return ErrInvalidDayRange
	}
	return nil
}

func (e ContributionEntry) Validate() error {
	if strings.TrimSpace(e.WorkerRef) == "" {
		return ErrEmptyWorker
	}
	if strings.TrimSpace(e.SiteRef) == "" {
		return ErrEmptySite
	}
	if err := e.Period.Validate(); err != nil {
		return err
	}
	if err := e.Days.Validate(); err != nil {
		return err
	}
	return e.Components.Validate()
}

func (t FundTotal) Validate() error {
	if strings.TrimSpace(t.FundName) == "" {
		return ErrEmptyFund
	}
	if err := t.Period.Validate(); err != nil {
		return err
	}
	return t.Components.Validate()
}
