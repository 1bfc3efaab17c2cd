package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"agendalink/internal/events"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

var ErrRowNotFound = errors.New("sheets: row not found")

const bookingsTab = "Bookings"

// SheetsService mirrors booking activity into a tenant-owned spreadsheet.
type SheetsService struct {
	service *sheets.Service
	sheetID string

	rowCache map[string]int
	cacheMu  sync.RWMutex
}

func NewSheetsService(credentialsFile, sheetID string) (*SheetsService, error) {
	ctx := context.Background()

	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %v", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %v", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %v", err)
	}

	return &SheetsService{
		service:  srv,
		sheetID:  sheetID,
		rowCache: make(map[string]int),
	}, nil
}

// TestConnection reads the first cell to verify credentials and sharing.
func (s *SheetsService) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.sheetID, bookingsTab+"!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %v", err)
	}
	return nil
}

// AppendBookingRow appends one booking event as a new spreadsheet row.
func (s *SheetsService) AppendBookingRow(ctx context.Context, p events.BookingEventPayload) error {
	row := []interface{}{
		p.Code,
		p.BookingID,
		p.ServiceName,
		p.CustomerName,
		p.CustomerPhone,
		p.StartAt.Format("2006-01-02 15:04"),
		p.Status,
		float64(p.AmountCents) / 100,
		time.Now().Format("2006-01-02 15:04:05"),
	}

	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{row},
	}

	_, err := s.service.Spreadsheets.Values.Append(s.sheetID, bookingsTab+"!A:A", valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()

	return err
}

// UpdateBookingStatus rewrites the status cell of an existing booking row.
func (s *SheetsService) UpdateBookingStatus(ctx context.Context, code, status string) error {
	rowIdx, err := s.findRow(ctx, code)
	if err != nil {
		return err
	}

	statusRange := fmt.Sprintf("%s!G%d:G%d", bookingsTab, rowIdx, rowIdx)
	_, err = s.service.Spreadsheets.Values.Update(s.sheetID, statusRange, &sheets.ValueRange{
		Values: [][]interface{}{{status}},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

// findRow locates the 1-based row for a booking code in column A, with an
// in-memory cache to avoid rescanning the sheet on every status change.
func (s *SheetsService) findRow(ctx context.Context, code string) (int, error) {
	s.cacheMu.RLock()
	row, ok := s.rowCache[code]
	s.cacheMu.RUnlock()
	if ok {
		return row, nil
	}

	resp, err := s.service.Spreadsheets.Values.Get(s.sheetID, bookingsTab+"!A:A").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to read booking column: %v", err)
	}

	for i, r := range resp.Values {
		if len(r) > 0 && fmt.Sprint(r[0]) == code {
			idx := i + 1
			s.cacheMu.Lock()
			s.rowCache[code] = idx
			s.cacheMu.Unlock()
			return idx, nil
		}
	}
	return 0, ErrRowNotFound
}
