// Package sheets mirrors the appointment ledger into a spreadsheet.
package sheets

import (
	"context"

	"glowbook/internal/core"
)

// Header is the first row of the mirror sheet. Contact details are not mirrored.
var Header = []string{"ID", "Date", "Time", "Client", "Service", "Status", "Total", "Paid", "Balance"}

// Mirror keeps one row per appointment, keyed by the id in the first column.
type Mirror interface {
	// Upsert writes the appointment's row, appending it when the id is new.
	Upsert(ctx context.Context, a core.Appointment) error
	// Replace rewrites the whole sheet body with apps.
	Replace(ctx context.Context, apps []core.Appointment) error
}

// Row renders an appointment in Header order. Amounts are plain decimals in major units.
func Row(a core.Appointment) []string {
	return []string{
		a.ID,
		string(a.Date),
		a.Time,
		a.ClientName,
		string(a.Service),
		string(a.Status),
		a.TotalPrice.Decimal(),
		a.AmountPaid.Decimal(),
		a.Balance().Decimal(),
	}
}
