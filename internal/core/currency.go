package core

import "strings"

type Currency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
	Label  string `json:"label"`
}

var currencies = []Currency{
	{Code: "NGN", Symbol: "₦", Label: "Naira (NGN)"},
	{Code: "USD", Symbol: "$", Label: "US Dollar (USD)"},
	{Code: "GBP", Symbol: "£", Label: "British Pound (GBP)"},
	{Code: "EUR", Symbol: "€", Label: "Euro (EUR)"},
	{Code: "CAD", Symbol: "$", Label: "Canadian Dollar (CAD)"},
	{Code: "AUD", Symbol: "$", Label: "Australian Dollar (AUD)"},
	{Code: "GHS", Symbol: "GH₵", Label: "Ghana Cedi (GHS)"},
	{Code: "ZAR", Symbol: "R", Label: "South African Rand (ZAR)"},
	{Code: "AED", Symbol: "د.إ", Label: "UAE Dirham (AED)"},
}

// Currencies returns the selectable currencies, default first.
func Currencies() []Currency {
	return append([]Currency(nil), currencies...)
}

func DefaultCurrency() Currency {
	return currencies[0]
}

// LookupCurrency finds a catalogue entry by ISO code, case-insensitively.
func LookupCurrency(code string) (Currency, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range currencies {
		if c.Code == code {
			return c, true
		}
	}
	return Currency{}, false
}
