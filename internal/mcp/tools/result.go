package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/scoutdesk/internal/auth"
	"github.com/honeycarbs/scoutdesk/internal/domain"
)

// textResult returns a text-only ToolResult
func textResult(msg string) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{
			&sdkmcp.TextContent{Text: msg},
		},
	}
}

// Caller identifies who an agent acts for. Agents run behind the same front
// door as browsers, so the fields mirror the trusted principal headers.
type Caller struct {
	Role             string `json:"role" jsonschema:"admin, company or candidate"`
	UserID           string `json:"user_id,omitempty" jsonschema:"Acting user id"`
	CompanyAccountID string `json:"company_account_id,omitempty" jsonschema:"Company account for company callers"`
	CandidateID      string `json:"candidate_id,omitempty" jsonschema:"Candidate id for candidate callers"`
	SessionID        string `json:"session_id,omitempty" jsonschema:"Edit session scope that owns staged drafts"`
}

func (c Caller) principal() (auth.Principal, error) {
	h := http.Header{}
	h.Set(auth.HeaderRole, c.Role)
	h.Set(auth.HeaderUserID, c.UserID)
	h.Set(auth.HeaderCompanyID, c.CompanyAccountID)
	h.Set(auth.HeaderCandidateID, c.CandidateID)
	h.Set(auth.HeaderEditSessionID, c.SessionID)
	return auth.FromHeaders(h)
}

// decodeForm converts a free-form tool argument into a typed form so that
// FlexValue fields accept every shape the REST API accepts
func decodeForm(raw map[string]any, dst any) error {
	b, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encode form: %w", err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decode form: %w", err)
	}
	return nil
}

// failure renders a domain error for the agent; validation errors list every field
func failure(tool string, err error) (*sdkmcp.CallToolResult, any, error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		res := textResult(fmt.Sprintf("[%s] %v", tool, err))
		res.IsError = true
		return res, map[string]any{"success": false, "error": domain.ErrValidation.Error(), "fields": verr.Fields}, nil
	}
	return nil, nil, fmt.Errorf("%s: %w", tool, err)
}
