package http

import (
	"encoding/json"
	"net/http"

	"glowbook/internal/vault"
)

// APIError is the uniform error envelope. Action tells the user what to do next.
type APIError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

type errorBody struct {
	APIError
	Challenge *bool        `json:"challenge,omitempty"`
	Pending   vault.Action `json:"pending,omitempty"`
}

var (
	errInvalidRequest = APIError{
		Code:     "INVALID_REQUEST",
		Message:  "The request body could not be parsed.",
		Category: "validation",
		Action:   "Send a valid JSON body.",
	}
	errInvalidDate = APIError{
		Code:     "INVALID_DATE",
		Message:  "Dates must look like YYYY-MM-DD.",
		Category: "validation",
		Action:   "Pick a date from the calendar.",
	}
	errInvalidMonth = APIError{
		Code:     "INVALID_MONTH",
		Message:  "Year and month must be numbers, month between 1 and 12.",
		Category: "validation",
		Action:   "Choose another month.",
	}
	errInvalidStatus = APIError{
		Code:     "INVALID_STATUS",
		Message:  "Status must be pending, confirmed, completed or cancelled.",
		Category: "validation",
		Action:   "Choose one of the listed statuses.",
	}
	errNotFound = APIError{
		Code:     "APPOINTMENT_NOT_FOUND",
		Message:  "No appointment has that id.",
		Category: "appointment",
		Action:   "Refresh the schedule and try again.",
	}
	errVaultLocked = APIError{
		Code:     "VAULT_LOCKED",
		Message:  "This section is protected by the vault passcode.",
		Category: "vault",
		Action:   "Enter the passcode to continue.",
	}
	errInvalidPasscode = APIError{
		Code:     "INVALID_PASSCODE",
		Message:  "Incorrect passcode.",
		Category: "vault",
		Action:   "Try the passcode again.",
	}
	errNoPending = APIError{
		Code:     "NO_PENDING_ACTION",
		Message:  "Nothing is waiting for a passcode.",
		Category: "vault",
		Action:   "Open the protected section first.",
	}
	errUnknownAction = APIError{
		Code:     "UNKNOWN_ACTION",
		Message:  "Protected actions are reports, reveal and export.",
		Category: "vault",
		Action:   "Request one of the protected actions.",
	}
	errInvalidBackup = APIError{
		Code:     "INVALID_BACKUP",
		Message:  "The backup file is not a valid appointment export.",
		Category: "backup",
		Action:   "Choose a file produced by the export.",
	}
	errInvalidSettings = APIError{
		Code:     "INVALID_SETTINGS",
		Message:  "One of the settings is not valid.",
		Category: "settings",
		Action:   "Check the highlighted field.",
	}
	errRateLimited = APIError{
		Code:     "RATE_LIMITED",
		Message:  "Too many requests. Please try again later.",
		Category: "system",
		Action:   "Wait and retry after the specified time.",
	}
	errRouteNotFound = APIError{
		Code:     "NOT_FOUND",
		Message:  "No such endpoint.",
		Category: "system",
		Action:   "Check the URL.",
	}
	errMethodNotAllowed = APIError{
		Code:     "METHOD_NOT_ALLOWED",
		Message:  "This endpoint does not accept that method.",
		Category: "system",
		Action:   "Check the HTTP method.",
	}
	errInternal = APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "Something went wrong.",
		Category: "system",
		Action:   "Try again in a moment.",
	}
)

// withMessage keeps the code and replaces the message, e.g. with a validation detail.
func (e APIError) withMessage(msg string) APIError {
	e.Message = msg
	return e
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, apiErr APIError) {
	writeJSON(w, status, errorBody{APIError: apiErr})
}

// writeLocked answers a gated request the session may not run yet. challenge
// tells the UI to prompt for the passcode for the pending action.
func writeLocked(w http.ResponseWriter, challenge bool, pending vault.Action) {
	writeJSON(w, http.StatusForbidden, errorBody{
		APIError:  errVaultLocked,
		Challenge: &challenge,
		Pending:   pending,
	})
}
