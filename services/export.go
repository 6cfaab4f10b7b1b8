// Package services
// File: services/export.go
package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"go-drop-registry/models"
	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"
)

// firstSerial is the number printed next to the first team of a slot. The
// first two lobby positions are reserved for the hosts.
const firstSerial = 3

// ExportHeader is the column header of a slot table.
var ExportHeader = []string{"Slot/Serial No.", "Team Name", "Drop 1", "Drop 2", "Drop 3"}

// ExportRows renders regs as a slot table, header included.
func ExportRows(regs []models.Registration) [][]string {
	rows := make([][]string, 0, len(regs)+1)
	rows = append(rows, ExportHeader)
	for i, r := range regs {
		rows = append(rows, []string{
			strconv.Itoa(i + firstSerial),
			r.TeamName,
			r.Dropdown1Selection,
			r.Dropdown2Selection,
			r.Dropdown3Selection,
		})
	}
	return rows
}

// WriteCSV writes one slot table as CSV.
func WriteCSV(w io.Writer, regs []models.Registration) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(ExportRows(regs)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// ExportFileName is the download name for a slot export.
func ExportFileName(slot, ext string) string {
	return models.SlotFileName(slot) + "-registrations." + ext
}

// ---------------- google sheets ----------------

// SheetWriter is the slice of the Sheets API the exporter needs.
type SheetWriter interface {
	Clear(ctx context.Context, rng string) error
	Update(ctx context.Context, rng string, rows [][]interface{}) error
}

// SheetsClient writes to one spreadsheet.
type SheetsClient struct {
	srv           *sheetsv4.Service
	spreadsheetID string
}

var _ SheetWriter = (*SheetsClient)(nil)

// NewSheetsClient authenticates with a service account file, or application
// default credentials when credentialsFile is empty.
func NewSheetsClient(ctx context.Context, credentialsFile, spreadsheetID string) (*SheetsClient, error) {
	opts := []option.ClientOption{option.WithScopes(sheetsv4.SpreadsheetsScope)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	srv, err := sheetsv4.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &SheetsClient{srv: srv, spreadsheetID: spreadsheetID}, nil
}

func (c *SheetsClient) Clear(ctx context.Context, rng string) error {
	_, err := c.srv.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &sheetsv4.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func (c *SheetsClient) Update(ctx context.Context, rng string, rows [][]interface{}) error {
	vr := &sheetsv4.ValueRange{Values: rows}
	_, err := c.srv.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

// SheetsExporter replaces the content of one tab with the day's registrations.
type SheetsExporter struct {
	Writer SheetWriter
	Tab    string
}

// Export writes every slot table, one after another, each preceded by the
// slot name.
func (e *SheetsExporter) Export(ctx context.Context, day string, bySlot map[string][]models.Registration) (int, error) {
	tab := e.Tab
	if tab == "" {
		tab = "Registrations"
	}

	rows := [][]interface{}{{"Day", day}}
	written := 0
	for _, slot := range models.SlotNames {
		regs := bySlot[slot]
		rows = append(rows, []interface{}{}, []interface{}{slot})
		for _, r := range ExportRows(regs) {
			row := make([]interface{}, len(r))
			for i, cell := range r {
				row[i] = cell
			}
			rows = append(rows, row)
		}
		written += len(regs)
	}

	if err := e.Writer.Clear(ctx, tab+"!A:Z"); err != nil {
		return 0, fmt.Errorf("clear sheet %s: %w", tab, err)
	}
	if err := e.Writer.Update(ctx, tab+"!A1", rows); err != nil {
		return 0, fmt.Errorf("update sheet %s: %w", tab, err)
	}
	return written, nil
}
