package tools

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/scoutdesk/internal/domain/scout"
	"github.com/honeycarbs/scoutdesk/pkg/logging"
)

// SheetsExportParams defines the arguments for the sheets_export tool
type SheetsExportParams struct {
	Caller       Caller   `json:"caller" jsonschema:"Who the agent acts for; exports are admin only"`
	CandidateIDs []string `json:"candidate_ids" jsonschema:"Candidates whose scout statistics are exported"`
	ClearTab     bool     `json:"clear_tab,omitempty" jsonschema:"If true, clears the tab and writes a header row first"`
	Sheet        struct {
		SpreadsheetID string `json:"spreadsheet_id,omitempty" jsonschema:"Google Sheets document ID; defaults to the configured one"`
		Tab           string `json:"tab,omitempty" jsonschema:"Tab name; defaults to the configured one"`
	} `json:"sheet,omitempty" jsonschema:"Destination sheet information"`
}

type sheetsExportTool struct {
	exporter *scout.Exporter
	logger   *logging.Logger
}

// WithSheetsExport registers the sheets_export tool
func WithSheetsExport(exporter *scout.Exporter) Option {
	return func(reg *registry) {
		handler := sheetsExportTool{exporter: exporter, logger: reg.logger}
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "sheets_export",
			Description: "Export scout statistics of candidates to Google Sheets, one row per candidate and window",
		}, handler.handle)
		reg.add("sheets_export")
	}
}

func (t sheetsExportTool) handle(ctx context.Context, _ *sdkmcp.CallToolRequest, params *SheetsExportParams) (*sdkmcp.CallToolResult, any, error) {
	if t.exporter == nil {
		return textResult("sheets_export unavailable: Google Sheets client not configured"), nil, scout.ErrSheetsDisabled
	}
	if params == nil || len(params.CandidateIDs) == 0 {
		return nil, nil, fmt.Errorf("candidate_ids is required")
	}
	p, err := params.Caller.principal()
	if err != nil {
		return failure("sheets_export", err)
	}

	res, err := t.exporter.Export(ctx, p, scout.ExportRequest{
		CandidateIDs:  params.CandidateIDs,
		SpreadsheetID: params.Sheet.SpreadsheetID,
		Tab:           params.Sheet.Tab,
		ClearTab:      params.ClearTab,
	})
	if err != nil {
		t.logger.Error("sheets_export failed", "err", err, "candidates", len(params.CandidateIDs))
		return failure("sheets_export", err)
	}

	msg := fmt.Sprintf("[sheets_export] wrote %d row(s) to %s!%s", res.WrittenRows, res.SpreadsheetID, res.Tab)
	return textResult(msg), res, nil
}
