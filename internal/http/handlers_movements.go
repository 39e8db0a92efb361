package http

import (
	"log/slog"
	"net/http"
	"time"

	"primanota/internal/core"
)

// notifyExportRefresh enqueues a workbook rebuild for the month a movement
// counts against. Best effort: a broker outage never fails the write.
func (s *Server) notifyExportRefresh(r *http.Request, m core.Movement) {
	if s.publisher == nil {
		return
	}
	ref := m.ReferenceDate()
	year, month := time.Now().Year(), int(time.Now().Month())
	if !ref.IsEmpty() {
		year, month = ref.Year(), int(ref.Month())
	}
	tenant := r.Header.Get(tenantHeader)
	if err := s.publisher.PublishExportRequest(r.Context(), tenant, year, month); err != nil {
		slog.WarnContext(r.Context(), "Export refresh publish failed",
			"tenant", tenant,
			"year", year,
			"month", month,
			"error", err)
	}
}

// handleListMovements returns the date-ordered statement with running
// balances.
func (s *Server) handleListMovements(w http.ResponseWriter, r *http.Request) {
	svc, err := s.ledgerService(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows, err := svc.Statement(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatementResponse(rows))
}

func (s *Server) handleCreateMovement(w http.ResponseWriter, r *http.Request) {
	svc, err := s.ledgerService(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req movementRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	movement, err := req.toMovement()
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := svc.CreateMovement(r.Context(), movement)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.notifyExportRefresh(r, created)
	writeJSON(w, http.StatusCreated, toMovementResponse(created))
}

func (s *Server) handleUpdateMovement(w http.ResponseWriter, r *http.Request) {
	svc, err := s.ledgerService(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req movementRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	movement, err := req.toMovement()
	if err != nil {
		writeError(w, r, err)
		return
	}

	// The reversal link is never editable over the API; carry the stored one.
	stored, err := svc.GetMovement(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	movement.ID = id
	movement.ReversedMovementID = stored.ReversedMovementID
	movement.CreatedAt = stored.CreatedAt

	updated, err := svc.UpdateMovement(r.Context(), movement)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.notifyExportRefresh(r, updated)
	writeJSON(w, http.StatusOK, toMovementResponse(updated))
}

func (s *Server) handleDeleteMovement(w http.ResponseWriter, r *http.Request) {
	svc, err := s.ledgerService(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	stored, err := svc.GetMovement(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := svc.DeleteMovement(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	s.notifyExportRefresh(r, stored)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateStorno(w http.ResponseWriter, r *http.Request) {
	svc, err := s.ledgerService(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	storno, err := svc.CreateStorno(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.notifyExportRefresh(r, storno)
	writeJSON(w, http.StatusCreated, toMovementResponse(storno))
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	svc, err := s.ledgerService(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	balances, err := svc.Balances(r.Context(), time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceResponse(balances))
}
