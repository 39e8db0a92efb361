package http

import (
	"net/http"
	"strings"

	"primanota/internal/core"
)

func (s *Server) handleListContributions(w http.ResponseWriter, r *http.Request) {
	svc, err := s.contributionService(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	period, err := parsePeriod(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	entries, err := svc.ListEntries(r.Context(), period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]contributionResponse, len(entries))
	for i, e := range entries {
		out[i] = toContributionResponse(e)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateContribution(w http.ResponseWriter, r *http.Request) {
	svc, err := s.contributionService(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req contributionRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	entry, err := req.toEntry()
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := svc.CreateEntry(r.Context(), entry)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toContributionResponse(created))
}

func (s *Server) handleUpdateContribution(w http.ResponseWriter, r *http.Request) {
	svc, err := s.contributionService(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req contributionRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	entry, err := req.toEntry()
	if err != nil {
		writeError(w, r, err)
		return
	}
	entry.ID = id

	updated, err := svc.UpdateEntry(r.Context(), entry)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toContributionResponse(updated))
}

func (s *Server) handleDeleteContribution(w http.ResponseWriter, r *http.Request) {
	svc, err := s.contributionService(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := svc.DeleteEntry(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type replaceContributionsRequest struct {
	SiteRef string                `json:"site_ref"`
	Year    int                   `json:"year"`
	Month   int                   `json:"month"`
	Entries []contributionRequest `json:"entries"`
}

// handleReplaceContributions swaps every entry of one site and period in a
// single operation. Any invalid entry rejects the whole batch.
func (s *Server) handleReplaceContributions(w http.ResponseWriter, r *http.Request) {
	svc, err := s.contributionService(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req replaceContributionsRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	if strings.TrimSpace(req.SiteRef) == "" {
		writeError(w, r, core.ErrEmptySite)
		return
	}

	period := core.Period{Month: req.Month, Year: req.Year}
	entries := make([]core.ContributionEntry, len(req.Entries))
	for i, er := range req.Entries {
		entry, err := er.toEntry()
		if err != nil {
			writeError(w, r, err)
			return
		}
		entries[i] = entry
	}

	replaced, err := svc.ReplaceForPeriod(r.Context(), req.SiteRef, period, entries)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]contributionResponse, len(replaced))
	for i, e := range replaced {
		out[i] = toContributionResponse(e)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListFundTotals(w http.ResponseWriter, r *http.Request) {
	svc, err := s.contributionService(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	totals, err := svc.ListFundTotals(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]fundTotalResponse, len(totals))
	for i, t := range totals {
		out[i] = toFundTotalResponse(t)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateFundTotal(w http.ResponseWriter, r *http.Request) {
	svc, err := s.contributionService(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req fundTotalRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	total, err := req.toFundTotal()
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := svc.CreateFundTotal(r.Context(), total)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toFundTotalResponse(created))
}

func (s *Server) handleUpdateFundTotal(w http.ResponseWriter, r *http.Request) {
	svc, err := s.contributionService(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req fundTotalRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	total, err := req.toFundTotal()
	if err != nil {
		writeError(w, r, err)
		return
	}
	total.ID = id

	updated, err := svc.UpdateFundTotal(r.Context(), total)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFundTotalResponse(updated))
}

func (s *Server) handleDeleteFundTotal(w http.ResponseWriter, r *http.Request) {
	svc, err := s.contributionService(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := svc.DeleteFundTotal(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReconciliation(w http.ResponseWriter, r *http.Request) {
	svc, err := s.contributionService(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	fund := strings.TrimSpace(r.URL.Query().Get("fund"))
	if fund == "" {
		writeError(w, r, core.ErrEmptyFund)
		return
	}
	period, err := parsePeriod(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	report, err := svc.Reconcile(r.Context(), fund, period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReconciliationResponse(report))
}

func (s *Server) handleSiteBreakdown(w http.ResponseWriter, r *http.Request) {
	svc, err := s.contributionService(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	period, err := parsePeriod(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows, err := svc.SiteBreakdown(r.Context(), period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSiteBreakdownResponse(rows))
}
