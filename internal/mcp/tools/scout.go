package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/scoutdesk/internal/domain/scout"
	"github.com/honeycarbs/scoutdesk/pkg/logging"
)

// ScoutStatsParams defines the arguments for the scout_stats tool
type ScoutStatsParams struct {
	Caller      Caller `json:"caller" jsonschema:"Who the agent acts for"`
	CandidateID string `json:"candidate_id" jsonschema:"Candidate whose scout funnel is computed"`
	Now         string `json:"now,omitempty" jsonschema:"Optional RFC3339 reference time; defaults to the server clock"`
}

type scoutStatsTool struct {
	service scout.Service
	logger  *logging.Logger
}

// WithScoutStats registers the scout_stats tool
func WithScoutStats(service scout.Service) Option {
	return func(reg *registry) {
		handler := scoutStatsTool{service: service, logger: reg.logger}
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "scout_stats",
			Description: "Compute a candidate's scout received/opened/replied/applied counts for the last 7 days, 30 days and in total",
		}, handler.handle)
		reg.add("scout_stats")
	}
}

func (t scoutStatsTool) handle(ctx context.Context, _ *sdkmcp.CallToolRequest, params *ScoutStatsParams) (*sdkmcp.CallToolResult, any, error) {
	if t.service == nil {
		return nil, nil, fmt.Errorf("scout stats service not configured")
	}
	if params == nil || params.CandidateID == "" {
		return nil, nil, fmt.Errorf("candidate_id is required")
	}
	p, err := params.Caller.principal()
	if err != nil {
		return failure("scout_stats", err)
	}

	var snap scout.Snapshot
	if params.Now != "" {
		now, perr := time.Parse(time.RFC3339, params.Now)
		if perr != nil {
			return nil, nil, fmt.Errorf("now must be RFC3339: %w", perr)
		}
		snap, err = t.service.SnapshotAt(ctx, p, params.CandidateID, now)
	} else {
		snap, err = t.service.Snapshot(ctx, p, params.CandidateID)
	}
	if err != nil {
		return failure("scout_stats", err)
	}

	table := scout.Render(snap)
	t.logger.Debug("scout_stats computed", "candidate_id", params.CandidateID)
	return textResult(formatTable(table)), table, nil
}

func formatTable(t scout.Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[scout_stats] candidate %s at %s\n", t.CandidateID, t.GeneratedAt)
	for _, row := range t.Rows {
		fmt.Fprintf(&b, "%s:", row.Metric)
		for _, w := range scout.Windows {
			fmt.Fprintf(&b, " %s=%s", w, row.Cells[w].Display)
		}
		b.WriteString("\n")
	}
	return b.String()
}
