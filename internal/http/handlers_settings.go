package http

import (
	"errors"
	"net/http"

	"glowbook/internal/core"
	"glowbook/internal/log"
	"glowbook/internal/settings"
)

type settingsResponse struct {
	settings.View
	Currencies  []core.Currency   `json:"currencies"`
	Services    []core.Service    `json:"services"`
	LeadSources []core.LeadSource `json:"leadSources"`
}

// settingsRequest updates only the fields present in the body.
type settingsRequest struct {
	Passcode     *string                `json:"passcode"`
	OwnerContact *settings.OwnerContact `json:"ownerContact"`
	Currency     *string                `json:"currency"`
	Theme        *string                `json:"theme"`
}

// handleGetSettings never returns the passcode itself, only whether one is set.
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	s.writeSettings(w)
}

func (s *Server) writeSettings(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, settingsResponse{
		View:        s.settings.View(),
		Currencies:  core.Currencies(),
		Services:    core.Services(),
		LeadSources: core.LeadSources(),
	})
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidRequest)
		return
	}
	ctx := r.Context()

	if req.Currency != nil {
		if err := s.settings.SetCurrency(ctx, *req.Currency); err != nil {
			s.settingsError(w, r, err)
			return
		}
	}
	if req.Theme != nil {
		if err := s.settings.SetTheme(ctx, settings.Theme(*req.Theme)); err != nil {
			s.settingsError(w, r, err)
			return
		}
	}
	if req.OwnerContact != nil {
		c := settings.OwnerContact{
			Email: sanitizeInput(req.OwnerContact.Email),
			Phone: sanitizeInput(req.OwnerContact.Phone),
		}
		if err := s.settings.SetOwnerContact(ctx, c); err != nil {
			s.settingsError(w, r, err)
			return
		}
	}
	if req.Passcode != nil {
		if err := s.settings.SetPasscode(ctx, *req.Passcode); err != nil {
			s.settingsError(w, r, err)
			return
		}
	}

	s.writeSettings(w)
}

func (s *Server) settingsError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, settings.ErrInvalidPasscode):
		writeError(w, http.StatusUnprocessableEntity, APIError{
			Code:     "INVALID_PASSCODE_FORMAT",
			Message:  "The passcode must be up to 4 digits.",
			Category: "settings",
			Action:   "Enter digits only, or leave it empty to remove the lock.",
		})
	case errors.Is(err, settings.ErrUnknownCurrency):
		writeError(w, http.StatusUnprocessableEntity, errInvalidSettings.withMessage("Unknown currency."))
	case errors.Is(err, settings.ErrInvalidTheme):
		writeError(w, http.StatusUnprocessableEntity, errInvalidSettings.withMessage("Theme must be light or dark."))
	default:
		s.slog.LogError(r.Context(), "Settings update failed", err, log.ComponentSettings, "update_settings", nil)
		writeError(w, http.StatusInternalServerError, errInternal)
	}
}
