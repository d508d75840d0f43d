package auth

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/scoutdesk/internal/domain"
)

func headers(kv ...string) http.Header {
	h := http.Header{}
	for i := 0; i+1 < len(kv); i += 2 {
		h.Set(kv[i], kv[i+1])
	}
	return h
}

func TestFromHeaders(t *testing.T) {
	p, err := FromHeaders(headers(
		HeaderRole, "Company",
		HeaderCompanyID, "acct-1",
		HeaderUserID, "u-1",
		HeaderEditSessionID, "tab_42",
	))
	require.NoError(t, err)
	assert.Equal(t, RoleCompany, p.Role)
	assert.True(t, p.OwnsCompany("acct-1"))
	assert.False(t, p.OwnsCompany("acct-2"))

	scope, err := p.RequireSession()
	require.NoError(t, err)
	assert.Equal(t, "tab_42", scope)
}

func TestFromHeadersRejects(t *testing.T) {
	cases := map[string]http.Header{
		"no role":             headers(),
		"company without id":  headers(HeaderRole, "company"),
		"candidate without id": headers(HeaderRole, "candidate"),
		"bad session":         headers(HeaderRole, "admin", HeaderEditSessionID, "a.b/c"),
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromHeaders(h)
			assert.ErrorIs(t, err, domain.ErrForbidden)
		})
	}
}

func TestAdminOwnsEverything(t *testing.T) {
	p := Principal{Role: RoleAdmin}
	assert.True(t, p.OwnsCompany("any"))
	assert.True(t, p.IsCandidate("any"))

	_, err := p.RequireSession()
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
