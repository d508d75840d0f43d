package tools

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/scoutdesk/internal/domain/group"
	"github.com/honeycarbs/scoutdesk/pkg/logging"
)

// GroupDeleteParams defines the arguments for the group_delete tool
type GroupDeleteParams struct {
	Caller  Caller `json:"caller" jsonschema:"Who the agent acts for"`
	GroupID string `json:"group_id" jsonschema:"Company group to delete with everything referencing it"`
}

type groupDeleteTool struct {
	service group.Service
	logger  *logging.Logger
}

// WithGroupDelete registers the group_delete tool
func WithGroupDelete(service group.Service) Option {
	return func(reg *registry) {
		handler := groupDeleteTool{service: service, logger: reg.logger}
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "group_delete",
			Description: "Delete a company group and every row that references it in one transaction",
		}, handler.handle)
		reg.add("group_delete")
	}
}

func (t groupDeleteTool) handle(ctx context.Context, _ *sdkmcp.CallToolRequest, params *GroupDeleteParams) (*sdkmcp.CallToolResult, any, error) {
	if t.service == nil {
		return nil, nil, fmt.Errorf("group service not configured")
	}
	if params == nil || params.GroupID == "" {
		return nil, nil, fmt.Errorf("group_id is required")
	}
	p, err := params.Caller.principal()
	if err != nil {
		return failure("group_delete", err)
	}

	out, err := t.service.Delete(ctx, p, params.GroupID)
	if err != nil {
		t.logger.Warn("group_delete failed", "group_id", params.GroupID, "err", err)
		return failure("group_delete", err)
	}

	msg := fmt.Sprintf("[group_delete] deleted group %s and %d job posting(s)", out.GroupID, len(out.PostingIDs))
	return textResult(msg), out, nil
}
