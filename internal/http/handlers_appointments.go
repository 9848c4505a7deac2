package http

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"glowbook/internal/core"
	"glowbook/internal/ledger"
	"glowbook/internal/log"
	"glowbook/internal/report"
	"glowbook/internal/stats"
)

type dashboardResponse struct {
	Date         core.Date          `json:"date"`
	Appointments []core.Appointment `json:"appointments"`
	Calendar     calendarResponse   `json:"calendar"`
	Month        core.MonthStats    `json:"month"`
	Currency     core.Currency      `json:"currency"`
	Revealed     bool               `json:"contactsRevealed"`
}

type calendarResponse struct {
	Year   int         `json:"year"`
	Month  int         `json:"month"`
	Counts map[int]int `json:"counts"`
}

type appointmentResponse struct {
	Appointment core.Appointment `json:"appointment"`
	Persisted   bool             `json:"persisted"`
}

type appointmentsResponse struct {
	Appointments []core.Appointment `json:"appointments"`
	Revealed     bool               `json:"contactsRevealed"`
}

type historyResponse struct {
	core.ClientHistory
	Visits   int  `json:"visits"`
	Revealed bool `json:"contactsRevealed"`
}

type statusRequest struct {
	Status string `json:"status"`
}

// handleDashboard returns the time-sorted day view plus the current month's
// calendar counts and totals.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	date, err := s.parseDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, errInvalidDate)
		return
	}

	now := s.now()
	year, month := now.Year(), int(now.Month())
	revealed := s.session.ContactsRevealed()

	writeJSON(w, http.StatusOK, dashboardResponse{
		Date:         date,
		Appointments: report.MaskAll(s.stats.Daily(date), revealed),
		Calendar:     calendarResponse{Year: year, Month: month, Counts: s.stats.Calendar(year, month)},
		Month:        s.stats.Monthly(year, month),
		Currency:     s.settings.Currency(),
		Revealed:     revealed,
	})
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	year, month, err := s.parseYearMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, errInvalidMonth)
		return
	}
	writeJSON(w, http.StatusOK, calendarResponse{Year: year, Month: month, Counts: s.stats.Calendar(year, month)})
}

// handleListAppointments lists the day's appointments in booking order, or
// the whole collection when no date is given.
func (s *Server) handleListAppointments(w http.ResponseWriter, r *http.Request) {
	apps := s.ledger.All()
	if r.URL.Query().Get("date") != "" {
		date, err := s.parseDate(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, errInvalidDate)
			return
		}
		apps = stats.DailyView(apps, date)
	}

	revealed := s.session.ContactsRevealed()
	writeJSON(w, http.StatusOK, appointmentsResponse{
		Appointments: report.MaskAll(apps, revealed),
		Revealed:     revealed,
	})
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	var draft core.AppointmentDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidRequest)
		return
	}

	draft.ClientName = sanitizeInput(draft.ClientName)
	draft.ClientPhone = sanitizeInput(draft.ClientPhone)
	draft.SocialContactName = sanitizeInput(draft.SocialContactName)
	draft.ReferralBy = sanitizeInput(draft.ReferralBy)
	draft.PaymentAccountName = sanitizeInput(draft.PaymentAccountName)
	draft.Notes = sanitizeInput(draft.Notes)
	draft = draft.WithDefaults(s.today())

	if err := draft.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, validationError(err))
		return
	}

	a, err := s.ledger.Create(r.Context(), draft)
	s.writeMutation(w, r, http.StatusCreated, a, err, log.OpCreate)
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidRequest)
		return
	}
	status, err := core.ParseStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, errInvalidStatus)
		return
	}

	a, err := s.ledger.UpdateStatus(r.Context(), chi.URLParam(r, "id"), status)
	s.writeMutation(w, r, http.StatusOK, a, err, log.OpUpdateStatus)
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	a, err := s.ledger.Complete(r.Context(), chi.URLParam(r, "id"))
	s.writeMutation(w, r, http.StatusOK, a, err, log.OpUpdateStatus)
}

// writeMutation answers a store mutation. A persistence failure still
// reports success, flagged with persisted=false.
func (s *Server) writeMutation(w http.ResponseWriter, r *http.Request, status int, a core.Appointment, err error, op string) {
	persisted := true
	switch {
	case err == nil:
	case errors.Is(err, ledger.ErrPersistence):
		persisted = false
	case errors.Is(err, ledger.ErrNotFound):
		writeError(w, http.StatusNotFound, errNotFound)
		return
	case errors.Is(err, core.ErrInvalidStatus):
		writeError(w, http.StatusUnprocessableEntity, errInvalidStatus)
		return
	default:
		s.slog.LogError(r.Context(), "Appointment mutation failed", err, log.ComponentHTTP, op, nil)
		writeError(w, http.StatusInternalServerError, errInternal)
		return
	}

	if !s.session.ContactsRevealed() {
		a = report.Masked(a)
	}
	writeJSON(w, status, appointmentResponse{Appointment: a, Persisted: persisted})
}

func (s *Server) handleRoster(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"clients": s.stats.Roster()})
}

func (s *Server) handleClientHistory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}

	h := s.stats.History(name)
	revealed := s.session.ContactsRevealed()
	h.Appointments = report.MaskAll(h.Appointments, revealed)
	writeJSON(w, http.StatusOK, historyResponse{
		ClientHistory: h,
		Visits:        len(h.Appointments),
		Revealed:      revealed,
	})
}

// validationError maps a draft validation failure to the envelope.
func validationError(err error) APIError {
	e := APIError{Category: "validation", Action: "Correct the booking form and submit again."}
	switch {
	case errors.Is(err, core.ErrEmptyClientName):
		e.Code = "EMPTY_CLIENT_NAME"
	case errors.Is(err, core.ErrInvalidDate):
		e.Code = "INVALID_DATE"
	case errors.Is(err, core.ErrInvalidTime):
		e.Code = "INVALID_TIME"
	case errors.Is(err, core.ErrInvalidAmount):
		e.Code = "INVALID_AMOUNT"
	case errors.Is(err, core.ErrInvalidService):
		e.Code = "INVALID_SERVICE"
	case errors.Is(err, core.ErrInvalidLead):
		e.Code = "INVALID_LEAD_SOURCE"
	default:
		e.Code = "INVALID_APPOINTMENT"
	}
	e.Message = err.Error()
	return e
}
