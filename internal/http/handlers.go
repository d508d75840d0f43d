package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/honeycarbs/scoutdesk/internal/domain"
	"github.com/honeycarbs/scoutdesk/internal/domain/candidate"
	"github.com/honeycarbs/scoutdesk/internal/domain/posting"
	"github.com/honeycarbs/scoutdesk/internal/domain/scout"
	"github.com/honeycarbs/scoutdesk/internal/domain/workflow"
	"github.com/honeycarbs/scoutdesk/internal/repository"
)

const defaultRelatedLimit = 5

type HealthResponse struct {
	Status string `json:"status"`
}

type ScoutStatsResponse struct {
	Snapshot scout.Snapshot `json:"snapshot"`
	Table    scout.Table    `json:"table"`
}

type DraftResponse[D any] struct {
	Success  bool           `json:"success"`
	Draft    D              `json:"draft"`
	State    workflow.State `json:"state,omitempty"`
	Staged   bool           `json:"staged"`
	Redirect string         `json:"redirect,omitempty"`
}

type CommitResponse struct {
	Success  bool           `json:"success"`
	State    workflow.State `json:"state"`
	Redirect string         `json:"redirect,omitempty"`
	Posting  *PostingView   `json:"posting,omitempty"`
}

type PublicationRequest struct {
	PublicationType domain.PublicationType `json:"publication_type"`
}

type StatusRequest struct {
	Status domain.PostingStatus `json:"status"`
}

type ExportRequest struct {
	CandidateIDs  []string `json:"candidate_ids"`
	SpreadsheetID string   `json:"spreadsheet_id"`
	Tab           string   `json:"tab"`
	ClearTab      bool     `json:"clear_tab"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// draftMissing sends a client without a staged draft back to the edit form
func draftMissing(c echo.Context, err error, editURL string) error {
	if errors.Is(err, domain.ErrDraftNotFound) {
		return c.Redirect(http.StatusSeeOther, editURL)
	}
	return err
}

func (s *Server) handleScoutStats(c echo.Context) error {
	p := principal(c)
	id := c.Param("id")

	var (
		snap scout.Snapshot
		err  error
	)
	if raw := c.QueryParam("now"); raw != "" {
		now, perr := time.Parse(time.RFC3339, raw)
		if perr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "now must be an RFC3339 timestamp")
		}
		snap, err = s.svc.Scout.SnapshotAt(c.Request().Context(), p, id, now)
	} else {
		snap, err = s.svc.Scout.Snapshot(c.Request().Context(), p, id)
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ScoutStatsResponse{Snapshot: snap, Table: scout.Render(snap)})
}

func (s *Server) handleScoutExport(c echo.Context) error {
	if s.svc.Exporter == nil {
		return scout.ErrSheetsDisabled
	}
	var req ExportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	res, err := s.svc.Exporter.Export(c.Request().Context(), principal(c), scout.ExportRequest{
		CandidateIDs:  req.CandidateIDs,
		SpreadsheetID: req.SpreadsheetID,
		Tab:           req.Tab,
		ClearTab:      req.ClearTab,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) handleCandidateEdit(c echo.Context) error {
	view, err := s.svc.Candidates.Edit(c.Request().Context(), principal(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, DraftResponse[candidate.Draft]{Success: true, Draft: view.Draft, State: view.State, Staged: view.Staged})
}

func (s *Server) handleCandidateStage(c echo.Context) error {
	id := c.Param("id")
	var form candidate.Form
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	d, err := s.svc.Candidates.Stage(c.Request().Context(), principal(c), id, form)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, DraftResponse[candidate.Draft]{
		Success:  true,
		Draft:    d,
		State:    workflow.StateStaged,
		Staged:   true,
		Redirect: "/api/v1/candidates/" + id + "/draft",
	})
}

func (s *Server) handleCandidateConfirm(c echo.Context) error {
	id := c.Param("id")
	view, err := s.svc.Candidates.Confirm(c.Request().Context(), principal(c), id)
	if err != nil {
		return draftMissing(c, err, candidate.EditURL(id))
	}
	return c.JSON(http.StatusOK, DraftResponse[candidate.Draft]{Success: true, Draft: view.Draft, State: view.State, Staged: true})
}

func (s *Server) handleCandidateBack(c echo.Context) error {
	id := c.Param("id")
	d, err := s.svc.Candidates.Back(c.Request().Context(), principal(c), id)
	if err != nil {
		return draftMissing(c, err, candidate.EditURL(id))
	}
	return c.JSON(http.StatusOK, DraftResponse[candidate.Draft]{
		Success:  true,
		Draft:    d,
		State:    workflow.StateEditing,
		Staged:   true,
		Redirect: candidate.EditURL(id),
	})
}

func (s *Server) handleCandidateCommit(c echo.Context) error {
	id := c.Param("id")
	out, err := s.svc.Candidates.Commit(c.Request().Context(), principal(c), id)
	if err != nil {
		return draftMissing(c, err, candidate.EditURL(id))
	}
	return c.JSON(http.StatusOK, CommitResponse{Success: true, State: out.State, Redirect: out.Redirect})
}

func (s *Server) handlePostingGet(c echo.Context) error {
	p, err := s.svc.Postings.Get(c.Request().Context(), principal(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, postingView(p))
}

func (s *Server) handlePostingRelated(c echo.Context) error {
	limit := defaultRelatedLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}
	related, err := s.svc.Postings.Related(c.Request().Context(), principal(c), c.Param("id"), limit)
	if err != nil {
		return err
	}
	if related == nil {
		related = []repository.RelatedPosting{}
	}
	return c.JSON(http.StatusOK, related)
}

func (s *Server) handlePostingEdit(c echo.Context) error {
	view, err := s.svc.Postings.Edit(c.Request().Context(), principal(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, DraftResponse[posting.Draft]{Success: true, Draft: view.Draft, State: view.State, Staged: view.Staged})
}

func (s *Server) handlePostingStage(c echo.Context) error {
	id := c.Param("id")
	var form posting.Form
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	d, err := s.svc.Postings.Stage(c.Request().Context(), principal(c), id, form)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, DraftResponse[posting.Draft]{
		Success:  true,
		Draft:    d,
		State:    workflow.StateStaged,
		Staged:   true,
		Redirect: "/api/v1/postings/" + id + "/draft",
	})
}

func (s *Server) handlePostingConfirm(c echo.Context) error {
	id := c.Param("id")
	view, err := s.svc.Postings.Confirm(c.Request().Context(), principal(c), id)
	if err != nil {
		return draftMissing(c, err, posting.EditURL(id))
	}
	return c.JSON(http.StatusOK, DraftResponse[posting.Draft]{Success: true, Draft: view.Draft, State: view.State, Staged: true})
}

func (s *Server) handlePostingBack(c echo.Context) error {
	id := c.Param("id")
	d, err := s.svc.Postings.Back(c.Request().Context(), principal(c), id)
	if err != nil {
		return draftMissing(c, err, posting.EditURL(id))
	}
	return c.JSON(http.StatusOK, DraftResponse[posting.Draft]{
		Success:  true,
		Draft:    d,
		State:    workflow.StateEditing,
		Staged:   true,
		Redirect: posting.EditURL(id),
	})
}

func (s *Server) handlePostingCommit(c echo.Context) error {
	id := c.Param("id")
	out, err := s.svc.Postings.Commit(c.Request().Context(), principal(c), id)
	if err != nil {
		return draftMissing(c, err, posting.EditURL(id))
	}
	view := postingView(out.Posting)
	return c.JSON(http.StatusOK, CommitResponse{Success: true, State: out.State, Redirect: out.Redirect, Posting: &view})
}

func (s *Server) handlePostingPublication(c echo.Context) error {
	var req PublicationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	t := domain.PublicationType(strings.TrimSpace(string(req.PublicationType)))
	out, err := s.svc.Postings.SetPublication(c.Request().Context(), principal(c), c.Param("id"), t)
	if err != nil {
		return err
	}
	view := postingView(out.Posting)
	return c.JSON(http.StatusOK, CommitResponse{Success: true, State: out.State, Redirect: out.Redirect, Posting: &view})
}

func (s *Server) handlePostingStatus(c echo.Context) error {
	var req StatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p, err := s.svc.Postings.ChangeStatus(c.Request().Context(), principal(c), c.Param("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, postingView(p))
}

func (s *Server) handleGroupList(c echo.Context) error {
	groups, err := s.svc.Groups.List(c.Request().Context(), principal(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, groupViews(groups))
}

func (s *Server) handleGroupDelete(c echo.Context) error {
	out, err := s.svc.Groups.Delete(c.Request().Context(), principal(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}
