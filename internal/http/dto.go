package http

import (
	"fmt"
	"time"

	"primanota/internal/commission"
	"primanota/internal/contrib"
	"primanota/internal/core"
	"primanota/internal/ledger"
	"primanota/internal/services"
)

// Amounts travel as plain decimal strings ("101.50"); the parser accepts
// both dot and comma separators on the way in.

type movementRequest struct {
	Kind            string `json:"kind"`
	Category        string `json:"category"`
	CounterpartyRef string `json:"counterparty_ref"`
	SiteRef         string `json:"site_ref,omitempty"`
	Description     string `json:"description"`
	Amount          string `json:"amount"`
	Commission      string `json:"commission,omitempty"`
	MovementDate    string `json:"movement_date,omitempty"`
	DueDate         string `json:"due_date,omitempty"`
	Settled         bool   `json:"settled"`
	Note            string `json:"note,omitempty"`
}

func (req movementRequest) toMovement() (core.Movement, error) {
	amount, err := parseAmount(req.Amount, "amount")
	if err != nil {
		return core.Movement{}, err
	}
	var comm core.Money
	if req.Commission != "" {
		if comm, err = parseAmount(req.Commission, "commission"); err != nil {
			return core.Movement{}, err
		}
	}
	movementDate, err := parseDate(req.MovementDate, "movement_date")
	if err != nil {
		return core.Movement{}, err
	}
	dueDate, err := parseDate(req.DueDate, "due_date")
	if err != nil {
		return core.Movement{}, err
	}

	return core.Movement{
		Kind:            core.MovementKind(req.Kind),
		Category:        core.MovementCategory(req.Category),
		CounterpartyRef: req.CounterpartyRef,
		SiteRef:         req.SiteRef,
		Description:     req.Description,
		Amount:          amount,
		Commission:      comm,
		MovementDate:    movementDate,
		DueDate:         dueDate,
		Settled:         req.Settled,
		Note:            req.Note,
	}, nil
}

type movementResponse struct {
	ID                 int64  `json:"id"`
	Kind               string `json:"kind"`
	Category           string `json:"category"`
	CounterpartyRef    string `json:"counterparty_ref"`
	SiteRef            string `json:"site_ref,omitempty"`
	Description        string `json:"description"`
	Amount             string `json:"amount"`
	Commission         string `json:"commission"`
	SignedTotal        string `json:"signed_total"`
	MovementDate       string `json:"movement_date,omitempty"`
	DueDate            string `json:"due_date,omitempty"`
	Settled            bool   `json:"settled"`
	ReversedMovementID int64  `json:"reversed_movement_id,omitempty"`
	RuleVersion        int64  `json:"rule_version"`
	Note               string `json:"note,omitempty"`
}

func toMovementResponse(m core.Movement) movementResponse {
	return movementResponse{
		ID:                 m.ID,
		Kind:               string(m.Kind),
		Category:           string(m.Category),
		CounterpartyRef:    m.CounterpartyRef,
		SiteRef:            m.SiteRef,
		Description:        m.Description,
		Amount:             m.Amount.String(),
		Commission:         m.Commission.String(),
		SignedTotal:        m.SignedTotal().String(),
		MovementDate:       formatDate(m.MovementDate),
		DueDate:            formatDate(m.DueDate),
		Settled:            m.Settled,
		ReversedMovementID: m.ReversedMovementID,
		RuleVersion:        m.RuleVersion,
		Note:               m.Note,
	}
}

type statementRowResponse struct {
	movementResponse
	Running string `json:"running_balance"`
	// Date of the reversed original, shown on storno rows.
	ReversedMovementDate string `json:"reversed_movement_date,omitempty"`
}

func toStatementResponse(rows []ledger.StatementRow) []statementRowResponse {
	movements := make([]core.Movement, len(rows))
	for i, row := range rows {
		movements[i] = row.Movement
	}
	out := make([]statementRowResponse, len(rows))
	for i, row := range rows {
		resp := statementRowResponse{
			movementResponse: toMovementResponse(row.Movement),
			Running:          row.Running.String(),
		}
		if date, ok := ledger.ReversedDate(movements, row.Movement); ok {
			resp.ReversedMovementDate = formatDate(date)
		}
		out[i] = resp
	}
	return out
}

type balanceResponse struct {
	Opening        string `json:"opening"`
	Real           string `json:"real"`
	Projected      string `json:"projected"`
	MonthEnd       string `json:"month_end"`
	Inflow         string `json:"inflow"`
	Outflow        string `json:"outflow"`
	SettledInflow  string `json:"settled_inflow"`
	SettledOutflow string `json:"settled_outflow"`
	Reversals      string `json:"reversals"`
}

func toBalanceResponse(b services.Balances) balanceResponse {
	return balanceResponse{
		Opening:        b.Opening.String(),
		Real:           b.Real.String(),
		Projected:      b.Projected.String(),
		MonthEnd:       b.MonthEnd.String(),
		Inflow:         b.Totals.Inflow.String(),
		Outflow:        b.Totals.Outflow.String(),
		SettledInflow:  b.Totals.SettledInflow.String(),
		SettledOutflow: b.Totals.SettledOutflow.String(),
		Reversals:      b.Totals.Reversals.String(),
	}
}

type ruleRequest struct {
	Mode  string `json:"mode"`
	Value string `json:"value"`
}

type rulesPayload struct {
	Version int64                  `json:"version,omitempty"`
	Rules   map[string]ruleRequest `json:"rules"`
}

func (p rulesPayload) toRules() (map[core.MovementCategory]commission.Rule, error) {
	rules := make(map[core.MovementCategory]commission.Rule, len(p.Rules))
	for category, rr := range p.Rules {
		value, err := commission.ParseRuleValue(rr.Value)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", category, err)
		}
		rules[core.MovementCategory(category)] = commission.Rule{
			Mode:  commission.RuleMode(rr.Mode),
			Value: value,
		}
	}
	return rules, nil
}

func toRulesPayload(table commission.RuleTable) rulesPayload {
	out := rulesPayload{Version: table.Version, Rules: make(map[string]ruleRequest, len(table.Rules))}
	for category, rule := range table.Rules {
		out.Rules[string(category)] = ruleRequest{
			Mode:  string(rule.Mode),
			Value: rule.Value.String(),
		}
	}
	return out
}

type componentMap map[string]string

func toComponentMap(set core.ComponentSet) componentMap {
	out := make(componentMap, len(core.ComponentNames))
	for _, name := range core.ComponentNames {
		out[name] = set.Get(name).String()
	}
	return out
}

func (cm componentMap) toComponentSet() (core.ComponentSet, error) {
	var set core.ComponentSet
	for name, raw := range cm {
		amount, err := parseAmount(raw, name)
		if err != nil {
			return core.ComponentSet{}, err
		}
		if err := set.Set(name, amount); err != nil {
			return core.ComponentSet{}, err
		}
	}
	return set, nil
}

type contributionRequest struct {
	WorkerRef  string       `json:"worker_ref"`
	SiteRef    string       `json:"site_ref"`
	Year       int          `json:"year"`
	Month      int          `json:"month"`
	DayStart   int          `json:"day_start"`
	DayEnd     int          `json:"day_end"`
	Components componentMap `json:"components"`
}

func (req contributionRequest) toEntry() (core.ContributionEntry, error) {
	components, err := req.Components.toComponentSet()
	if err != nil {
		return core.ContributionEntry{}, err
	}
	return core.ContributionEntry{
		WorkerRef:  req.WorkerRef,
		SiteRef:    req.SiteRef,
		Period:     core.Period{Month: req.Month, Year: req.Year},
		Days:       core.DayRange{Start: req.DayStart, End: req.DayEnd},
		Components: components,
	}, nil
}

type contributionResponse struct {
	ID         int64        `json:"id"`
	WorkerRef  string       `json:"worker_ref"`
	SiteRef    string       `json:"site_ref"`
	Year       int          `json:"year"`
	Month      int          `json:"month"`
	DayStart   int          `json:"day_start"`
	DayEnd     int          `json:"day_end"`
	Components componentMap `json:"components"`
	Total      string       `json:"total"`
}

func toContributionResponse(e core.ContributionEntry) contributionResponse {
	return contributionResponse{
		ID:         e.ID,
		WorkerRef:  e.WorkerRef,
		SiteRef:    e.SiteRef,
		Year:       e.Period.Year,
		Month:      e.Period.Month,
		DayStart:   e.Days.Start,
		DayEnd:     e.Days.End,
		Components: toComponentMap(e.Components),
		Total:      e.Components.Total().String(),
	}
}

type fundTotalRequest struct {
	FundName   string       `json:"fund_name"`
	Year       int          `json:"year"`
	Month      int          `json:"month"`
	Components componentMap `json:"components"`
}

func (req fundTotalRequest) toFundTotal() (core.FundTotal, error) {
	components, err := req.Components.toComponentSet()
	if err != nil {
		return core.FundTotal{}, err
	}
	return core.FundTotal{
		FundName:   req.FundName,
		Period:     core.Period{Month: req.Month, Year: req.Year},
		Components: components,
	}, nil
}

type fundTotalResponse struct {
	ID         int64        `json:"id"`
	FundName   string       `json:"fund_name"`
	Year       int          `json:"year"`
	Month      int          `json:"month"`
	Components componentMap `json:"components"`
}

func toFundTotalResponse(t core.FundTotal) fundTotalResponse {
	return fundTotalResponse{
		ID:         t.ID,
		FundName:   t.FundName,
		Year:       t.Period.Year,
		Month:      t.Period.Month,
		Components: toComponentMap(t.Components),
	}
}

type componentDiffResponse struct {
	Name      string `json:"name"`
	WorkerSum string `json:"worker_sum"`
	FundTotal string `json:"fund_total"`
	Diff      string `json:"diff"`
	Flagged   bool   `json:"flagged"`
}

type reconciliationResponse struct {
	Fund       string                  `json:"fund"`
	Year       int                     `json:"year"`
	Month      int                     `json:"month"`
	SiteIDs    []string                `json:"site_ids"`
	EntryCount int                     `json:"entry_count"`
	Flagged    bool                    `json:"flagged"`
	Components []componentDiffResponse `json:"components"`
}

func toReconciliationResponse(report contrib.Report) reconciliationResponse {
	out := reconciliationResponse{
		Fund:       report.Fund,
		Year:       report.Period.Year,
		Month:      report.Period.Month,
		SiteIDs:    report.SiteIDs,
		EntryCount: report.EntryCount,
		Flagged:    report.Flagged(),
		Components: make([]componentDiffResponse, len(report.Components)),
	}
	for i, cd := range report.Components {
		out.Components[i] = componentDiffResponse{
			Name:      cd.Name,
			WorkerSum: cd.WorkerSum.String(),
			FundTotal: cd.FundTotal.String(),
			Diff:      cd.Diff.String(),
			Flagged:   cd.Flagged,
		}
	}
	return out
}

type siteBreakdownResponse struct {
	SiteID     string       `json:"site_id"`
	SiteName   string       `json:"site_name"`
	Fund       string       `json:"fund"`
	EntryCount int          `json:"entry_count"`
	Components componentMap `json:"components"`
	Total      string       `json:"total"`
}

func toSiteBreakdownResponse(rows []contrib.SiteContribution) []siteBreakdownResponse {
	out := make([]siteBreakdownResponse, len(rows))
	for i, sc := range rows {
		out[i] = siteBreakdownResponse{
			SiteID:     sc.SiteID,
			SiteName:   sc.SiteName,
			Fund:       sc.Fund,
			EntryCount: sc.EntryCount,
			Components: toComponentMap(sc.Components),
			Total:      sc.Total.String(),
		}
	}
	return out
}

func parseAmount(raw, field string) (core.Money, error) {
	cents, err := core.ParseDecimalToCents(raw)
	if err != nil {
		return core.Money{}, fmt.Errorf("%s: %w", field, err)
	}
	return core.Money{Cents: cents}, nil
}

func parseDate(raw, field string) (core.Date, error) {
	if raw == "" {
		return core.Date{}, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return core.Date{}, fmt.Errorf("%s: %w", field, core.ErrInvalidDate)
	}
	return core.Date{Time: t}, nil
}

func formatDate(d core.Date) string {
	if d.IsEmpty() {
		return ""
	}
	return d.Format(time.DateOnly)
}
