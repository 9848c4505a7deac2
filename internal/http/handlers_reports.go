package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"glowbook/internal/core"
	"glowbook/internal/insights"
	"glowbook/internal/ledger"
	"glowbook/internal/log"
	"glowbook/internal/report"
	"glowbook/internal/stats"
	"glowbook/internal/vault"
)

type reportResponse struct {
	Stats        core.MonthStats    `json:"stats"`
	Ledger       []core.LedgerEntry `json:"ledger"`
	TotalOwed    core.Money         `json:"totalOwed"`
	Currency     core.Currency      `json:"currency"`
	Summary      string             `json:"summary"`
	WhatsAppLink string             `json:"whatsappLink"`
	Revealed     bool               `json:"contactsRevealed"`
}

type importResponse struct {
	Restored  int  `json:"restored"`
	Persisted bool `json:"persisted"`
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	year, month, err := s.parseYearMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, errInvalidMonth)
		return
	}
	s.gated(w, r, vault.ActionReports, reportPeriod{year: year, month: month})
}

// writeReport renders the month stats, the outstanding ledger and the
// WhatsApp share link for the owner's phone.
func (s *Server) writeReport(w http.ResponseWriter, r *http.Request, year, month int) {
	st := s.stats.Monthly(year, month)
	entries := s.stats.Ledger()
	currency := s.settings.Currency()
	revealed := s.session.ContactsRevealed()

	if !revealed {
		for i := range entries {
			entries[i].Appointment = report.Masked(entries[i].Appointment)
		}
	}

	summary := report.FormatWhatsAppSummary(st, currency.Symbol, s.today())
	writeJSON(w, http.StatusOK, reportResponse{
		Stats:        st,
		Ledger:       entries,
		TotalOwed:    stats.TotalOwed(entries),
		Currency:     currency,
		Summary:      summary,
		WhatsAppLink: report.WhatsAppLink(s.settings.OwnerContact().Phone, summary),
		Revealed:     revealed,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	s.gated(w, r, vault.ActionExport, reportPeriod{})
}

// writeExport sends the full collection, contacts included, as a download.
func (s *Server) writeExport(w http.ResponseWriter, r *http.Request) {
	data, err := report.ExportSnapshot(s.ledger.All())
	if err != nil {
		s.slog.LogError(r.Context(), "Export failed", err, log.ComponentHTTP, "export", nil)
		writeError(w, http.StatusInternalServerError, errInternal)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.BackupFilename(s.now())+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleImport restores a backup artifact. It never leaves a pending action
// behind: a locked session is refused outright.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if !s.gate.Allowed(s.session) {
		writeLocked(w, false, "")
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, errInvalidBackup.withMessage("The backup file is too large."))
		return
	}

	n, err := s.ledger.Import(r.Context(), data)
	persisted := true
	switch {
	case err == nil:
	case errors.Is(err, ledger.ErrPersistence):
		persisted = false
	case errors.Is(err, ledger.ErrInvalidSnapshot):
		writeError(w, http.StatusUnprocessableEntity, errInvalidBackup.withMessage(err.Error()))
		return
	default:
		s.slog.LogError(r.Context(), "Import failed", err, log.ComponentHTTP, log.OpRestore, nil)
		writeError(w, http.StatusInternalServerError, errInternal)
		return
	}

	writeJSON(w, http.StatusOK, importResponse{Restored: n, Persisted: persisted})
}

// handleInsights always answers 200; upstream failures become the fallback text.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	if s.insights == nil {
		writeJSON(w, http.StatusOK, insights.Result{Text: insights.FallbackText, Fallback: true})
		return
	}
	writeJSON(w, http.StatusOK, s.insights.Insights(r.Context(), s.ledger.All()))
}
