package core

// MonthStats is the aggregate of every appointment dated in one calendar month.
type MonthStats struct {
	Year              int   `json:"year"`
	Month             int   `json:"month"` // 1-12
	TotalRevenue      Money `json:"totalRevenue"`
	TotalDeposits     Money `json:"totalDeposits"`
	TotalBalance      Money `json:"totalBalance"`
	UniqueClientCount int   `json:"uniqueClientCount"`
}

// LedgerEntry is one appointment that still carries a positive balance.
type LedgerEntry struct {
	Appointment Appointment `json:"appointment"`
	BalanceOwed Money       `json:"balanceOwed"`
}

// ClientHistory collects every visit of one client, newest first.
type ClientHistory struct {
	ClientName    string        `json:"clientName"`
	Appointments  []Appointment `json:"appointments"`
	LifetimeValue Money         `json:"lifetimeValue"`
}
