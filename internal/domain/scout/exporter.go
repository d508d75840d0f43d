package scout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/honeycarbs/scoutdesk/internal/auth"
	"github.com/honeycarbs/scoutdesk/internal/domain"
	"github.com/honeycarbs/scoutdesk/pkg/logging"
)

// SheetsWriter writes rows into one tab of a spreadsheet
type SheetsWriter interface {
	AppendRows(ctx context.Context, spreadsheetID, tab string, rows [][]interface{}) (int, error)
	ClearTab(ctx context.Context, spreadsheetID, tab string) error
}

// ErrSheetsDisabled is returned when no Sheets client or spreadsheet is configured
var ErrSheetsDisabled = errors.New("sheets export is not configured")

// ExportHeader is written as the first row when the tab is cleared
var ExportHeader = []interface{}{"candidate_id", "window", "received", "opened", "replied", "applications", "generated_at"}

type ExportRequest struct {
	CandidateIDs  []string
	SpreadsheetID string // falls back to the configured spreadsheet
	Tab           string // falls back to the configured tab
	ClearTab      bool
}

type ExportResult struct {
	SpreadsheetID string    `json:"spreadsheet_id"`
	Tab           string    `json:"tab"`
	WrittenRows   int       `json:"written_rows"`
	CompletedAt   time.Time `json:"completed_at"`
}

// Exporter writes scout snapshots into a spreadsheet, one row per candidate and window
type Exporter struct {
	stats         Service
	writer        SheetsWriter
	spreadsheetID string
	tab           string
	clock         func() time.Time
	log           *logging.Logger
}

func NewExporter(stats Service, writer SheetsWriter, spreadsheetID, tab string, log *logging.Logger) *Exporter {
	if tab == "" {
		tab = "Sheet1"
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Exporter{
		stats:         stats,
		writer:        writer,
		spreadsheetID: spreadsheetID,
		tab:           tab,
		clock:         time.Now,
		log:           log.Named("scout_export"),
	}
}

func (e *Exporter) Export(ctx context.Context, p auth.Principal, req ExportRequest) (ExportResult, error) {
	if !p.IsAdmin() {
		return ExportResult{}, fmt.Errorf("scout export: %w", domain.ErrForbidden)
	}

	res := ExportResult{SpreadsheetID: req.SpreadsheetID, Tab: req.Tab}
	if res.SpreadsheetID == "" {
		res.SpreadsheetID = e.spreadsheetID
	}
	if res.Tab == "" {
		res.Tab = e.tab
	}
	if e.writer == nil || res.SpreadsheetID == "" {
		return res, ErrSheetsDisabled
	}

	now := e.clock()
	var values [][]interface{}
	if req.ClearTab {
		values = append(values, ExportHeader)
	}
	for _, id := range req.CandidateIDs {
		snap, err := e.stats.SnapshotAt(ctx, p, id, now)
		if err != nil {
			return res, fmt.Errorf("snapshot %s: %w", id, err)
		}
		values = append(values, Rows(snap)...)
	}

	if req.ClearTab {
		if err := e.writer.ClearTab(ctx, res.SpreadsheetID, res.Tab); err != nil {
			return res, err
		}
	}

	written, err := e.writer.AppendRows(ctx, res.SpreadsheetID, res.Tab, values)
	if err != nil {
		return res, err
	}

	res.WrittenRows = written
	res.CompletedAt = now.UTC()
	e.log.Info("scout stats exported", "spreadsheet_id", res.SpreadsheetID, "tab", res.Tab, "rows", res.WrittenRows)

	return res, nil
}

// Rows flattens a snapshot into sheet rows
func Rows(s Snapshot) [][]interface{} {
	generated := s.Now.UTC().Format(time.RFC3339)
	rows := make([][]interface{}, 0, len(Windows))
	for _, w := range Windows {
		c := s.Window(w)
		rows = append(rows, []interface{}{
			s.CandidateID,
			string(w),
			c.Received,
			Format(c.Opened, c.Received),
			Format(c.Replied, c.Received),
			Format(c.Applications, c.Received),
			generated,
		})
	}
	return rows
}
