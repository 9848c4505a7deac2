package ledger

import "glowbook/internal/core"

func sampleAppointments(today core.Date) []core.Appointment {
	return []core.Appointment{{
		ID:                "layi-001",
		ClientID:          "investor-1",
		ClientName:        "Investor LAYI",
		ClientPhone:       "2347049162532",
		SocialContactName: "@investorlayi",
		LeadSource:        core.LeadInstagram,
		Service:           core.ServiceLashExtension,
		Date:              today,
		Time:              "12:00",
		AmountPaid:        core.Money{Cents: 1500000},
		TotalPrice:        core.Money{Cents: 3000000},
		Status:            core.StatusConfirmed,
		Notes:             "Premium set, extra volume",
	}}
}
