package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"

	ServiceLashExtension Service = "Lash Extension"
	ServiceNails         Service = "Nails"
	ServiceMicroblading  Service = "Microblading"
	ServiceTattoos       Service = "Tattoos"
	ServiceLashRemoval   Service = "Lash Removal"
	ServiceToeNails      Service = "Toe Nails"

	LeadInstagram LeadSource = "Instagram"
	LeadTikTok    LeadSource = "TikTok"
	LeadThreads   LeadSource = "Threads"
	LeadSnapchat  LeadSource = "Snapchat"
	LeadPinterest LeadSource = "Pinterest"
	LeadReferral  LeadSource = "Referral"
	LeadOther     LeadSource = "Other"
)

// ManualClientID is assigned to appointments booked through the form.
const ManualClientID = "manual"

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	DefaultBookingTime = "10:00"
)

type (
	Status     string
	Service    string
	LeadSource string

	// Date is an ISO calendar date ("YYYY-MM-DD"). Lexicographic order is chronological order.
	Date string

	Appointment struct {
		ID                 string     `json:"id"`
		ClientID           string     `json:"clientId"`
		ClientName         string     `json:"clientName"`
		ClientPhone        string     `json:"clientPhone"`
		SocialContactName  string     `json:"socialContactName,omitempty"`
		LeadSource         LeadSource `json:"leadSource"`
		ReferralBy         string     `json:"referralBy,omitempty"`
		PaymentAccountName string     `json:"paymentAccountName,omitempty"`
		Service            Service    `json:"service"`
		Date               Date       `json:"date"`
		Time               string     `json:"time"`
		AmountPaid         Money      `json:"amountPaid"`
		TotalPrice         Money      `json:"totalPrice"`
		Notes              string     `json:"notes,omitempty"`
		Status             Status     `json:"status"`
	}

	// AppointmentDraft holds the booking form fields before the store assigns identity.
	AppointmentDraft struct {
		ClientID           string     `json:"clientId,omitempty"`
		ClientName         string     `json:"clientName"`
		ClientPhone        string     `json:"clientPhone"`
		SocialContactName  string     `json:"socialContactName,omitempty"`
		LeadSource         LeadSource `json:"leadSource"`
		ReferralBy         string     `json:"referralBy,omitempty"`
		PaymentAccountName string     `json:"paymentAccountName,omitempty"`
		Service            Service    `json:"service"`
		Date               Date       `json:"date"`
		Time               string     `json:"time"`
		AmountPaid         Money      `json:"amountPaid"`
		TotalPrice         Money      `json:"totalPrice"`
		Notes              string     `json:"notes,omitempty"`
	}
)

var (
	ErrEmptyClientName = errors.New("empty client name")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidTime     = errors.New("invalid time")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidService  = errors.New("invalid service")
	ErrInvalidLead     = errors.New("invalid lead source")
)

var (
	services    = []Service{ServiceLashExtension, ServiceNails, ServiceMicroblading, ServiceTattoos, ServiceLashRemoval, ServiceToeNails}
	leadSources = []LeadSource{LeadInstagram, LeadTikTok, LeadThreads, LeadSnapchat, LeadPinterest, LeadReferral, LeadOther}
	statuses    = []Status{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled}
)

// Services returns the service taxonomy in display order.
func Services() []Service { return append([]Service(nil), services...) }

// LeadSources returns the lead sources in display order.
func LeadSources() []LeadSource { return append([]LeadSource(nil), leadSources...) }

func (s Status) Valid() bool {
	for _, v := range statuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseStatus accepts a status name, ignoring case and surrounding spaces.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

func (s Service) Valid() bool {
	for _, v := range services {
		if s == v {
			return true
		}
	}
	return false
}

func (l LeadSource) Valid() bool {
	for _, v := range leadSources {
		if l == v {
			return true
		}
	}
	return false
}

// NewDate formats year, month, day as an ISO date.
func NewDate(year, month, day int) Date {
	return Date(fmt.Sprintf("%04d-%02d-%02d", year, month, day))
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

func (d Date) String() string { return string(d) }

// Time parses the date at midnight UTC.
func (d Date) Time() (time.Time, error) {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, string(d))
	}
	return t, nil
}

func (d Date) Validate() error {
	_, err := d.Time()
	return err
}

// YearMonth reports the year and month of the date; ok is false when the date is malformed.
func (d Date) YearMonth() (year, month int, ok bool) {
	t, err := d.Time()
	if err != nil {
		return 0, 0, false
	}
	return t.Year(), int(t.Month()), true
}

// Day returns the day of month, or 0 when the date is malformed.
func (d Date) Day() int {
	t, err := d.Time()
	if err != nil {
		return 0
	}
	return t.Day()
}

// ValidateTime checks an "HH:MM" 24-hour clock value.
func ValidateTime(s string) error {
	if len(s) != len(TimeLayout) {
		return fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	if _, err := time.Parse(TimeLayout, s); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return nil
}

// Balance is what the client still owes. Negative when overpaid.
func (a Appointment) Balance() Money {
	return Money{Cents: a.TotalPrice.Cents - a.AmountPaid.Cents}
}

// WithDefaults fills the fields the booking form preselects.
func (d AppointmentDraft) WithDefaults(today Date) AppointmentDraft {
	d.ClientName = strings.TrimSpace(d.ClientName)
	if d.Service == "" {
		d.Service = ServiceLashExtension
	}
	if d.LeadSource == "" {
		d.LeadSource = LeadInstagram
	}
	if d.Date == "" {
		d.Date = today
	}
	if d.Time == "" {
		d.Time = DefaultBookingTime
	}
	return d
}

// Validate is the form-layer check run before a draft reaches the store.
func (d AppointmentDraft) Validate() error {
	if strings.TrimSpace(d.ClientName) == "" {
		return ErrEmptyClientName
	}
	if err := d.Date.Validate(); err != nil {
		return err
	}
	if err := ValidateTime(d.Time); err != nil {
		return err
	}
	if !d.Service.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidService, d.Service)
	}
	if !d.LeadSource.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLead, d.LeadSource)
	}
	if d.AmountPaid.Cents < 0 || d.TotalPrice.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}
