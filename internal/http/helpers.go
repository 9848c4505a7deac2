package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"glowbook/internal/core"
)

// parseYearMonth reads year and month from the query, defaulting to the
// current month.
func (s *Server) parseYearMonth(r *http.Request) (year, month int, err error) {
	now := s.now()
	year, month = now.Year(), int(now.Month())

	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		if year, err = strconv.Atoi(v); err != nil {
			return 0, 0, fmt.Errorf("year %q: %w", v, err)
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		if month, err = strconv.Atoi(v); err != nil {
			return 0, 0, fmt.Errorf("month %q: %w", v, err)
		}
	}
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("month %d out of range", month)
	}
	return year, month, nil
}

// parseDate reads the date query parameter, defaulting to today.
func (s *Server) parseDate(r *http.Request) (core.Date, error) {
	v := strings.TrimSpace(r.URL.Query().Get("date"))
	if v == "" {
		return s.today(), nil
	}
	d := core.Date(v)
	if err := d.Validate(); err != nil {
		return "", err
	}
	return d, nil
}

func (s *Server) today() core.Date {
	return core.DateOf(s.now())
}

var errEmptyBody = errors.New("empty body")

// decodeJSON reads at most maxBodyBytes of JSON into v. An empty body is
// reported as errEmptyBody.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return errEmptyBody
	}
	return err
}

// sanitizeInput removes control characters except tab, newline and carriage
// return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
