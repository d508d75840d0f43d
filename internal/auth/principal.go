// Package auth carries the caller identity explicitly through every service call.
// Resolving it (sessions, tokens) is the front door's job; services only read it.
package auth

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/honeycarbs/scoutdesk/internal/domain"
)

type Role string

const (
	RoleAdmin     Role = "admin"     // back-office operator
	RoleCompany   Role = "company"   // company user acting for one account
	RoleCandidate Role = "candidate" // job seeker editing their own profile
)

const (
	HeaderRole          = "X-Scoutdesk-Role"
	HeaderUserID        = "X-Scoutdesk-User"
	HeaderCompanyID     = "X-Scoutdesk-Company"
	HeaderCandidateID   = "X-Scoutdesk-Candidate"
	HeaderEditSessionID = "X-Scoutdesk-Edit-Session"
)

var sessionPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Principal is the authenticated caller
type Principal struct {
	Role             Role
	UserID           string
	CompanyAccountID string
	CandidateID      string
	SessionID        string // edit-session (browser tab) scope for staged drafts
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// OwnsCompany reports whether p may act on resources of accountID
func (p Principal) OwnsCompany(accountID string) bool {
	return p.IsAdmin() || (p.Role == RoleCompany && p.CompanyAccountID != "" && p.CompanyAccountID == accountID)
}

// IsCandidate reports whether p may act on the candidate profile id
func (p Principal) IsCandidate(id string) bool {
	return p.IsAdmin() || (p.Role == RoleCandidate && p.CandidateID != "" && p.CandidateID == id)
}

// RequireSession returns the edit-session scope or an error when it is absent
func (p Principal) RequireSession() (string, error) {
	if p.SessionID == "" {
		return "", fmt.Errorf("edit session is required: %w", domain.ErrForbidden)
	}
	return p.SessionID, nil
}

// FromHeaders builds a Principal from trusted headers set by the front door
func FromHeaders(h http.Header) (Principal, error) {
	p := Principal{
		Role:             Role(strings.ToLower(strings.TrimSpace(h.Get(HeaderRole)))),
		UserID:           strings.TrimSpace(h.Get(HeaderUserID)),
		CompanyAccountID: strings.TrimSpace(h.Get(HeaderCompanyID)),
		CandidateID:      strings.TrimSpace(h.Get(HeaderCandidateID)),
		SessionID:        strings.TrimSpace(h.Get(HeaderEditSessionID)),
	}

	switch p.Role {
	case RoleAdmin:
	case RoleCompany:
		if p.CompanyAccountID == "" {
			return Principal{}, fmt.Errorf("company principal without account: %w", domain.ErrForbidden)
		}
	case RoleCandidate:
		if p.CandidateID == "" {
			return Principal{}, fmt.Errorf("candidate principal without id: %w", domain.ErrForbidden)
		}
	default:
		return Principal{}, fmt.Errorf("unknown role %q: %w", p.Role, domain.ErrForbidden)
	}

	if p.SessionID != "" && !sessionPattern.MatchString(p.SessionID) {
		return Principal{}, fmt.Errorf("malformed edit session id: %w", domain.ErrForbidden)
	}

	return p, nil
}
