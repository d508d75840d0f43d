package tools

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/scoutdesk/internal/domain"
	"github.com/honeycarbs/scoutdesk/internal/domain/posting"
	"github.com/honeycarbs/scoutdesk/pkg/logging"
)

// PostingRef addresses one job posting on behalf of a caller
type PostingRef struct {
	Caller    Caller `json:"caller" jsonschema:"Who the agent acts for"`
	PostingID string `json:"posting_id" jsonschema:"Job posting identifier"`
}

// PostingStageParams defines the arguments for the posting_stage tool
type PostingStageParams struct {
	Caller    Caller         `json:"caller" jsonschema:"Who the agent acts for"`
	PostingID string         `json:"posting_id" jsonschema:"Job posting identifier"`
	Form      map[string]any `json:"form" jsonschema:"Edit form fields; list fields accept a string, a list of strings or {id,name} objects"`
}

// PostingPublicationParams defines the arguments for the posting_publication tool
type PostingPublicationParams struct {
	Caller          Caller `json:"caller" jsonschema:"Who the agent acts for"`
	PostingID       string `json:"posting_id" jsonschema:"Job posting identifier"`
	PublicationType string `json:"publication_type" jsonschema:"public, members_only, scout_only or stopped"`
}

// RelatedPostingsParams defines the arguments for the related_postings tool
type RelatedPostingsParams struct {
	Caller    Caller `json:"caller" jsonschema:"Who the agent acts for"`
	PostingID string `json:"posting_id" jsonschema:"Job posting identifier"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum number of related postings, default 5"`
}

// StepResult is the structured result of the workflow tools
type StepResult struct {
	PostingID string         `json:"posting_id"`
	State     string         `json:"state"`
	Redirect  string         `json:"redirect,omitempty"`
	Draft     *posting.Draft `json:"draft,omitempty"`
}

type postingTools struct {
	service posting.Service
	logger  *logging.Logger
}

// WithPostingWorkflow registers posting_stage, posting_confirm, posting_commit
// and posting_publication
func WithPostingWorkflow(service posting.Service) Option {
	return func(reg *registry) {
		h := postingTools{service: service, logger: reg.logger}
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "posting_stage",
			Description: "Validate a job posting edit form and stage it for confirmation without writing to the database",
		}, h.stage)
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "posting_confirm",
			Description: "Show the staged job posting draft awaiting confirmation",
		}, h.confirm)
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "posting_commit",
			Description: "Upload new images and write the staged job posting draft",
		}, h.commit)
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "posting_publication",
			Description: "Save the publication scope of a committed job posting and finish the edit",
		}, h.publication)
		reg.add("posting_stage")
		reg.add("posting_confirm")
		reg.add("posting_commit")
		reg.add("posting_publication")
	}
}

// WithRelatedPostings registers the related_postings tool
func WithRelatedPostings(service posting.Service) Option {
	return func(reg *registry) {
		h := postingTools{service: service, logger: reg.logger}
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "related_postings",
			Description: "List visible job postings sharing skills or locations with a posting, from the graph index",
		}, h.related)
		reg.add("related_postings")
	}
}

func (h postingTools) ready(id string) error {
	if h.service == nil {
		return fmt.Errorf("posting service not configured")
	}
	if id == "" {
		return fmt.Errorf("posting_id is required")
	}
	return nil
}

func (h postingTools) stage(ctx context.Context, _ *sdkmcp.CallToolRequest, params *PostingStageParams) (*sdkmcp.CallToolResult, any, error) {
	if params == nil {
		params = &PostingStageParams{}
	}
	if err := h.ready(params.PostingID); err != nil {
		return nil, nil, err
	}
	p, err := params.Caller.principal()
	if err != nil {
		return failure("posting_stage", err)
	}

	var form posting.Form
	if err := decodeForm(params.Form, &form); err != nil {
		return nil, nil, err
	}

	d, err := h.service.Stage(ctx, p, params.PostingID, form)
	if err != nil {
		return failure("posting_stage", err)
	}

	h.logger.Debug("posting_stage staged draft", "posting_id", params.PostingID)
	res := StepResult{PostingID: params.PostingID, State: "staged", Draft: &d}
	return textResult(fmt.Sprintf("[posting_stage] draft of %s staged; confirm with posting_confirm", params.PostingID)), res, nil
}

func (h postingTools) confirm(ctx context.Context, _ *sdkmcp.CallToolRequest, params *PostingRef) (*sdkmcp.CallToolResult, any, error) {
	if params == nil {
		params = &PostingRef{}
	}
	if err := h.ready(params.PostingID); err != nil {
		return nil, nil, err
	}
	p, err := params.Caller.principal()
	if err != nil {
		return failure("posting_confirm", err)
	}

	view, err := h.service.Confirm(ctx, p, params.PostingID)
	if err != nil {
		return failure("posting_confirm", err)
	}

	res := StepResult{PostingID: params.PostingID, State: string(view.State), Draft: &view.Draft}
	return textResult(fmt.Sprintf("[posting_confirm] %q is staged and awaiting commit", view.Draft.Title)), res, nil
}

func (h postingTools) commit(ctx context.Context, _ *sdkmcp.CallToolRequest, params *PostingRef) (*sdkmcp.CallToolResult, any, error) {
	if params == nil {
		params = &PostingRef{}
	}
	if err := h.ready(params.PostingID); err != nil {
		return nil, nil, err
	}
	p, err := params.Caller.principal()
	if err != nil {
		return failure("posting_commit", err)
	}

	out, err := h.service.Commit(ctx, p, params.PostingID)
	if err != nil {
		h.logger.Warn("posting_commit failed", "posting_id", params.PostingID, "err", err)
		return failure("posting_commit", err)
	}

	res := StepResult{PostingID: params.PostingID, State: string(out.State)}
	return textResult(fmt.Sprintf("[posting_commit] %s saved; choose a publication scope with posting_publication", params.PostingID)), res, nil
}

func (h postingTools) publication(ctx context.Context, _ *sdkmcp.CallToolRequest, params *PostingPublicationParams) (*sdkmcp.CallToolResult, any, error) {
	if params == nil {
		params = &PostingPublicationParams{}
	}
	if err := h.ready(params.PostingID); err != nil {
		return nil, nil, err
	}
	p, err := params.Caller.principal()
	if err != nil {
		return failure("posting_publication", err)
	}

	out, err := h.service.SetPublication(ctx, p, params.PostingID, domain.PublicationType(params.PublicationType))
	if err != nil {
		return failure("posting_publication", err)
	}

	res := StepResult{PostingID: params.PostingID, State: string(out.State), Redirect: out.Redirect}
	return textResult(fmt.Sprintf("[posting_publication] %s is now %s", params.PostingID, out.Posting.PublicationType)), res, nil
}

func (h postingTools) related(ctx context.Context, _ *sdkmcp.CallToolRequest, params *RelatedPostingsParams) (*sdkmcp.CallToolResult, any, error) {
	if params == nil {
		params = &RelatedPostingsParams{}
	}
	if err := h.ready(params.PostingID); err != nil {
		return nil, nil, err
	}
	p, err := params.Caller.principal()
	if err != nil {
		return failure("related_postings", err)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 5
	}
	related, err := h.service.Related(ctx, p, params.PostingID, limit)
	if err != nil {
		return failure("related_postings", err)
	}

	if len(related) == 0 {
		return textResult("[related_postings] no related postings found"), map[string]any{"related": related}, nil
	}
	msg := fmt.Sprintf("[related_postings] %d posting(s) related to %s\n", len(related), params.PostingID)
	for _, r := range related {
		msg += fmt.Sprintf("- %s %q (relevance %d)\n", r.ID, r.Title, r.Relevance)
	}
	return textResult(msg), map[string]any{"related": related}, nil
}
