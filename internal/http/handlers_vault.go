package http

import (
	"errors"
	"net/http"

	"glowbook/internal/vault"
)

type vaultRequest struct {
	Action string `json:"action"`
}

// passcodeRequest may override the month of a pending reports action.
type passcodeRequest struct {
	Passcode string `json:"passcode"`
	Year     int    `json:"year,omitempty"`
	Month    int    `json:"month,omitempty"`
}

type vaultResponse struct {
	Action  vault.Action `json:"action,omitempty"`
	Session vault.State  `json:"session"`
}

// reportPeriod picks the month a reports action renders.
type reportPeriod struct {
	year, month int
}

func (s *Server) handleVaultState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, vaultResponse{Session: s.session.State()})
}

// handleVaultRequest asks the gate for one protected action and runs it
// when granted.
func (s *Server) handleVaultRequest(w http.ResponseWriter, r *http.Request) {
	var req vaultRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidRequest)
		return
	}
	action, err := vault.ParseAction(req.Action)
	if err != nil {
		writeError(w, http.StatusBadRequest, errUnknownAction)
		return
	}

	now := s.now()
	s.gated(w, r, action, reportPeriod{year: now.Year(), month: int(now.Month())})
}

// gated runs action through Gate.RequestAccess: a grant executes it, a
// challenge answers 403 with the pending action.
func (s *Server) gated(w http.ResponseWriter, r *http.Request, action vault.Action, p reportPeriod) {
	decision, err := s.gate.RequestAccess(r.Context(), s.session, action)
	if err != nil {
		writeError(w, http.StatusBadRequest, errUnknownAction)
		return
	}
	if decision == vault.Challenge {
		s.periodMu.Lock()
		s.pendingPeriod = p
		s.periodMu.Unlock()
		writeLocked(w, true, action)
		return
	}
	s.runAction(w, r, action, p)
}

// handleVaultPasscode answers the pending challenge and, on success, runs
// the action it was guarding.
func (s *Server) handleVaultPasscode(w http.ResponseWriter, r *http.Request) {
	var req passcodeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidRequest)
		return
	}

	action, err := s.gate.SubmitPasscode(r.Context(), s.session, req.Passcode)
	switch {
	case errors.Is(err, vault.ErrNoPendingAction):
		writeError(w, http.StatusConflict, errNoPending)
		return
	case errors.Is(err, vault.ErrAccessDenied):
		writeJSON(w, http.StatusForbidden, errorBody{APIError: errInvalidPasscode, Pending: action})
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, errInternal)
		return
	}

	p := s.challengedPeriod()
	if req.Month >= 1 && req.Month <= 12 {
		p.month = req.Month
		if req.Year > 0 {
			p.year = req.Year
		}
	}
	s.runAction(w, r, action, p)
}

// challengedPeriod returns the month of the challenged reports request, or
// the current month when none was recorded.
func (s *Server) challengedPeriod() reportPeriod {
	s.periodMu.Lock()
	p := s.pendingPeriod
	s.pendingPeriod = reportPeriod{}
	s.periodMu.Unlock()
	if p.month == 0 {
		now := s.now()
		p = reportPeriod{year: now.Year(), month: int(now.Month())}
	}
	return p
}

func (s *Server) handleVaultLock(w http.ResponseWriter, r *http.Request) {
	s.gate.LockSession(r.Context(), s.session)
	writeJSON(w, http.StatusOK, vaultResponse{Session: s.session.State()})
}

// runAction executes a granted protected action.
func (s *Server) runAction(w http.ResponseWriter, r *http.Request, action vault.Action, p reportPeriod) {
	switch action {
	case vault.ActionReveal:
		writeJSON(w, http.StatusOK, vaultResponse{Action: action, Session: s.session.State()})
	case vault.ActionReports:
		s.writeReport(w, r, p.year, p.month)
	case vault.ActionExport:
		s.writeExport(w, r)
	default:
		writeError(w, http.StatusBadRequest, errUnknownAction)
	}
}
