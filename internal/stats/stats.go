// Package stats derives the dashboard views from the appointment collection.
//
// Every function here is pure: the result depends only on its arguments.
package stats

import (
	"sort"

	"glowbook/internal/core"
)

// DailyView returns the appointments dated on date, in store order.
func DailyView(apps []core.Appointment, date core.Date) []core.Appointment {
	out := []core.Appointment{}
	for _, a := range apps {
		if a.Date == date {
			out = append(out, a)
		}
	}
	return out
}

// SortByTime returns a copy ordered by time of day. Ties keep their input order.
func SortByTime(apps []core.Appointment) []core.Appointment {
	out := make([]core.Appointment, len(apps))
	copy(out, apps)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}

func inMonth(a core.Appointment, year, month int) bool {
	y, m, ok := a.Date.YearMonth()
	return ok && y == year && m == month
}

// MonthlyStats totals the appointments dated in (year, month). The balance is
// revenue minus deposits and is not clamped at zero.
func MonthlyStats(apps []core.Appointment, year, month int) core.MonthStats {
	st := core.MonthStats{Year: year, Month: month}
	clients := make(map[string]struct{})
	for _, a := range apps {
		if !inMonth(a, year, month) {
			continue
		}
		st.TotalRevenue.Cents += a.TotalPrice.Cents
		st.TotalDeposits.Cents += a.AmountPaid.Cents
		clients[a.ClientName] = struct{}{}
	}
	st.TotalBalance.Cents = st.TotalRevenue.Cents - st.TotalDeposits.Cents
	st.UniqueClientCount = len(clients)
	return st
}

// OutstandingLedger lists every appointment in the whole collection that
// still carries a positive balance, in store order.
func OutstandingLedger(apps []core.Appointment) []core.LedgerEntry {
	out := []core.LedgerEntry{}
	for _, a := range apps {
		if owed := a.Balance(); owed.Cents > 0 {
			out = append(out, core.LedgerEntry{Appointment: a, BalanceOwed: owed})
		}
	}
	return out
}

// TotalOwed sums the balances of a ledger.
func TotalOwed(entries []core.LedgerEntry) core.Money {
	var total core.Money
	for _, e := range entries {
		total.Cents += e.BalanceOwed.Cents
	}
	return total
}

// ClientHistory collects the appointments booked under exactly clientName,
// newest date first. Same-day visits keep store order.
func ClientHistory(apps []core.Appointment, clientName string) core.ClientHistory {
	h := core.ClientHistory{ClientName: clientName, Appointments: []core.Appointment{}}
	for _, a := range apps {
		if a.ClientName == clientName {
			h.Appointments = append(h.Appointments, a)
			h.LifetimeValue.Cents += a.TotalPrice.Cents
		}
	}
	sort.SliceStable(h.Appointments, func(i, j int) bool {
		return h.Appointments[i].Date > h.Appointments[j].Date
	})
	return h
}

// ClientRoster returns the distinct client names in order of first booking.
func ClientRoster(apps []core.Appointment) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, a := range apps {
		if _, ok := seen[a.ClientName]; ok {
			continue
		}
		seen[a.ClientName] = struct{}{}
		out = append(out, a.ClientName)
	}
	return out
}

// CalendarDayCounts maps day of month to the number of appointments that day.
// Days without appointments are absent.
func CalendarDayCounts(apps []core.Appointment, year, month int) map[int]int {
	counts := make(map[int]int)
	for _, a := range apps {
		if inMonth(a, year, month) {
			counts[a.Date.Day()]++
		}
	}
	return counts
}
