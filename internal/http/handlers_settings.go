package http

import (
	"net/http"
	"strings"
	"time"

	"primanota/internal/core"
)

// periodFromPayload fills zero fields with the current month.
func periodFromPayload(year, month int) core.Period {
	now := time.Now()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	return core.Period{Month: month, Year: year}
}

func (s *Server) handleGetRules(w http.ResponseWriter, r *http.Request) {
	svc, err := s.ledgerService(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	table, err := svc.RuleTable(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRulesPayload(table))
}

// handlePutRules replaces the whole rule table. The new version applies to
// movements created or edited from now on; stored commissions are untouched.
func (s *Server) handlePutRules(w http.ResponseWriter, r *http.Request) {
	svc, err := s.ledgerService(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var payload rulesPayload
	if err := decodeBody(r, &payload); err != nil {
		writeBadRequest(w, err)
		return
	}
	rules, err := payload.toRules()
	if err != nil {
		writeError(w, r, err)
		return
	}

	saved, err := svc.SaveRuleTable(r.Context(), rules)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRulesPayload(saved))
}

type openingBalancePayload struct {
	Amount string `json:"amount"`
}

func (s *Server) handleGetOpeningBalance(w http.ResponseWriter, r *http.Request) {
	svc, err := s.ledgerService(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	opening, err := svc.OpeningBalance(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, openingBalancePayload{Amount: opening.String()})
}

func (s *Server) handlePutOpeningBalance(w http.ResponseWriter, r *http.Request) {
	svc, err := s.ledgerService(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var payload openingBalancePayload
	if err := decodeBody(r, &payload); err != nil {
		writeBadRequest(w, err)
		return
	}
	amount, err := parseAmount(payload.Amount, "amount")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := svc.SetOpeningBalance(r.Context(), amount); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, openingBalancePayload{Amount: amount.String()})
}

type exportRequestPayload struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

type exportResponsePayload struct {
	Status string `json:"status"`
	Year   int    `json:"year"`
	Month  int    `json:"month"`
}

// handleEnqueueExport publishes an export job for the worker. Without a
// broker the endpoint answers 503.
func (s *Server) handleEnqueueExport(w http.ResponseWriter, r *http.Request) {
	tenant := strings.TrimSpace(r.Header.Get(tenantHeader))
	if tenant == "" {
		writeError(w, r, errMissingTenant)
		return
	}

	if s.publisher == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "export queue not configured"})
		return
	}

	var payload exportRequestPayload
	if err := decodeBody(r, &payload); err != nil {
		writeBadRequest(w, err)
		return
	}
	period := periodFromPayload(payload.Year, payload.Month)
	if err := period.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.publisher.PublishExportRequest(r.Context(), tenant, period.Year, period.Month); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, exportResponsePayload{
		Status: "queued",
		Year:   period.Year,
		Month:  period.Month,
	})
}
