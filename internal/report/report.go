// Package report formats the export artifact and the outbound text summaries.
package report

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"

	"glowbook/internal/core"
	"glowbook/internal/ledger"
)

const (
	AppName  = "Baddieglow"
	Location = "Akure, Nigeria"

	whatsAppBase = "https://wa.me/"
)

// ExportSnapshot serializes the full collection in the persisted shape, so
// an export can be imported back as identical records.
func ExportSnapshot(apps []core.Appointment) ([]byte, error) {
	return ledger.Encode(apps)
}

// BackupFilename stamps the export artifact with the calendar date of now.
func BackupFilename(now time.Time) string {
	return fmt.Sprintf("%s_backup_%s.json", strings.ToLower(AppName), core.DateOf(now))
}

// FormatWhatsAppSummary renders the report text for the messaging deep link.
// Amounts are symbol-prefixed and thousands-grouped; zero stats render as zeros.
func FormatWhatsAppSummary(st core.MonthStats, symbol string, reportDate core.Date) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s DAILY REPORT - %s*\n\n", strings.ToUpper(AppName), reportDate)
	fmt.Fprintf(&b, "✨ Total Baddies: %d\n", st.UniqueClientCount)
	fmt.Fprintf(&b, "💰 Gross Revenue: %s\n", st.TotalRevenue.WithSymbol(symbol))
	fmt.Fprintf(&b, "🏦 Cash Deposits: %s\n", st.TotalDeposits.WithSymbol(symbol))
	fmt.Fprintf(&b, "🚨 Balance Due: %s\n\n", st.TotalBalance.WithSymbol(symbol))
	fmt.Fprintf(&b, "_Generated via %s Empire Suite_", AppName)
	return b.String()
}

// PhoneDigits strips every non-digit from a phone number.
func PhoneDigits(phone string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
}

// WhatsAppLink builds the wa.me deep link. Text is optional.
func WhatsAppLink(phone, text string) string {
	link := whatsAppBase + PhoneDigits(phone)
	if text == "" {
		return link
	}
	return link + "?text=" + encodeURIComponent(text)
}

// encodeURIComponent escapes like the browser function of the same name,
// leaving A-Z a-z 0-9 - _ . ! ~ * ' ( ) unescaped and spaces as %20.
func encodeURIComponent(s string) string {
	escaped := url.QueryEscape(s)
	r := strings.NewReplacer("+", "%20", "%21", "!", "%27", "'", "%28", "(", "%29", ")", "%2A", "*", "%7E", "~")
	return r.Replace(escaped)
}

// InsightSummary is the compact one-line-per-appointment text handed to the insight service.
func InsightSummary(apps []core.Appointment) string {
	lines := make([]string, 0, len(apps))
	for _, a := range apps {
		lines = append(lines, fmt.Sprintf("%s for %s on %s at %s - Paid: %s",
			a.Service, a.ClientName, a.Date, a.Time, a.AmountPaid.Decimal()))
	}
	return strings.Join(lines, "\n")
}

// InsightPrompt wraps the appointment summary in the assistant instructions.
func InsightPrompt(summary string) string {
	return fmt.Sprintf(`You are the "Glow Assistant" for %s, a top-tier beauty technician in %s.
Analyze the following appointment schedule and provide 3 key business insights and a "Baddie Motto" for the day.
Keep the tone professional, empowering, and stylish.

Appointments Data:
%s

Response format:
Insights:
1. [Insight 1 about busiest days or high revenue services]
2. [Insight 2 about client retention or gaps in schedule]
3. [Advice on how to upsell or improve workflow]

Baddie Motto:
"[Inspirational quote about beauty and business]"`, AppName, Location, summary)
}

// MaskContact hides all but the last two characters of a contact value.
func MaskContact(s string) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) == 0 {
		return ""
	}
	keep := 2
	if len(runes) <= keep {
		keep = 0
	}
	masked := make([]rune, len(runes))
	for i, r := range runes {
		switch {
		case i >= len(runes)-keep:
			masked[i] = r
		case unicode.IsSpace(r):
			masked[i] = r
		default:
			masked[i] = '•'
		}
	}
	return string(masked)
}

// Masked returns a copy of a with its contact channels masked.
func Masked(a core.Appointment) core.Appointment {
	a.ClientPhone = MaskContact(a.ClientPhone)
	a.SocialContactName = MaskContact(a.SocialContactName)
	return a
}

// MaskAll masks every appointment unless revealed is set.
func MaskAll(apps []core.Appointment, revealed bool) []core.Appointment {
	if revealed {
		return apps
	}
	out := make([]core.Appointment, len(apps))
	for i, a := range apps {
		out[i] = Masked(a)
	}
	return out
}
