package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"primanota/internal/commission"
	"primanota/internal/core"
	"primanota/internal/services"
	"primanota/internal/store"
)

const tenantHeader = "X-Company-ID"

var errMissingTenant = errors.New("missing " + tenantHeader + " header")

// tenantStores resolves the company from the request header. Every /api
// route is scoped to exactly one company.
func (s *Server) tenantStores(r *http.Request) (store.Bundle, error) {
	tenant := strings.TrimSpace(r.Header.Get(tenantHeader))
	if tenant == "" {
		return nil, errMissingTenant
	}
	return s.provider.Tenant(tenant), nil
}

func (s *Server) ledgerService(r *http.Request) (*services.LedgerService, error) {
	stores, err := s.tenantStores(r)
	if err != nil {
		return nil, err
	}
	return services.NewLedgerService(stores), nil
}

func (s *Server) contributionService(r *http.Request) (*services.ContributionService, error) {
	stores, err := s.tenantStores(r)
	if err != nil {
		return nil, err
	}
	return services.NewContributionService(stores), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed", "url", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// errorStatus maps domain errors onto HTTP statuses: validation failures are
// the caller's fault, missing records are 404, anything else is the store's.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errMissingTenant),
		errors.Is(err, core.ErrInvalidKind),
		errors.Is(err, core.ErrInvalidCategory),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidMonth),
		errors.Is(err, core.ErrInvalidYear),
		errors.Is(err, core.ErrInvalidDayRange),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrUnknownComponent),
		errors.Is(err, commission.ErrInvalidRule),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrEmptyCounterparty),
		errors.Is(err, core.ErrEmptyWorker),
		errors.Is(err, core.ErrEmptySite),
		errors.Is(err, core.ErrEmptyFund),
		errors.Is(err, core.ErrMissingMovementDate),
		errors.Is(err, core.ErrMissingDueDate),
		errors.Is(err, core.ErrMissingReversalLink),
		errors.Is(err, core.ErrReversalTarget),
		errors.Is(err, core.ErrHasReversals):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, core.ErrNotFound
	}
	return id, nil
}

// parsePeriod reads year and month query parameters, defaulting to the
// current month.
func parsePeriod(r *http.Request) (core.Period, error) {
	now := time.Now()
	period := core.Period{Month: int(now.Month()), Year: now.Year()}

	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return core.Period{}, core.ErrInvalidYear
		}
		period.Year = y
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return core.Period{}, core.ErrInvalidMonth
		}
		period.Month = m
	}
	if err := period.Validate(); err != nil {
		return core.Period{}, err
	}
	return period, nil
}

func writeBadRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
