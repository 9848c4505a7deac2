package google

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"glowbook/internal/core"
	"glowbook/internal/log"
	ports "glowbook/internal/sheets"
)

var _ ports.Mirror = (*Client)(nil)

// Config selects the spreadsheet and the service account used to reach it.
type Config struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountJSON string
	ServiceAccountFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
	logger        *log.Logger
}

func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if cfg.SheetName == "" {
		cfg.SheetName = "Appointments"
	}
	if logger == nil {
		logger = log.Component(log.ComponentSheets)
	}

	svc, err := newSheetsService(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: cfg.SpreadsheetID, sheet: cfg.SheetName, logger: logger}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Falls back to GOOGLE_APPLICATION_CREDENTIALS when neither JSON nor file is configured.
func newSheetsService(ctx context.Context, cfg Config, logger *log.Logger) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(cfg.ServiceAccountJSON)
	serviceAccountFile := strings.TrimSpace(cfg.ServiceAccountFile)
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		data, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	logger.InfoContext(ctx, "Creating Google Sheets service", "scope", gsheet.SpreadsheetsScope)
	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope),
		goption.WithHTTPClient(newHTTPClientWithPooling()))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// newHTTPClientWithPooling keeps connections to the Sheets API warm between syncs.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   5,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: 60 * time.Second}
}

func (c *Client) rangeFor(row int) string {
	return fmt.Sprintf("%s!A%d:%s%d", c.sheet, row, lastColumn(len(ports.Header)), row)
}

func (c *Client) Upsert(ctx context.Context, a core.Appointment) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	ids, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.sheet+"!A:A").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read ids from %s: %w", c.sheet, err)
	}

	if !hasHeader(ids.Values) {
		if err := c.write(ctx, 1, ports.Header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		if len(ids.Values) == 0 {
			ids.Values = [][]interface{}{{"ID"}}
		}
	}

	row := findRow(ids.Values, a.ID)
	if row == 0 {
		row = nextRow(ids.Values)
	}
	if err := c.write(ctx, row, ports.Row(a)); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	c.logger.DebugContext(ctx, "Appointment row written", log.FieldAppointmentID, a.ID, "row", row)
	return nil
}

func (c *Client) Replace(ctx context.Context, apps []core.Appointment) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	clearRange := fmt.Sprintf("%s!A:%s", c.sheet, lastColumn(len(ports.Header)))
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", clearRange, err)
	}

	values := make([][]interface{}, 0, len(apps)+1)
	values = append(values, toRow(ports.Header))
	for _, a := range apps {
		values = append(values, toRow(ports.Row(a)))
	}
	rng := fmt.Sprintf("%s!A1:%s%d", c.sheet, lastColumn(len(ports.Header)), len(values))
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

func (c *Client) write(ctx context.Context, row int, cells []string) error {
	vr := &gsheet.ValueRange{Values: [][]interface{}{toRow(cells)}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, c.rangeFor(row), vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	return err
}
