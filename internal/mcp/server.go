// Package mcp exposes the scoutdesk services as MCP tools over streamable HTTP.
package mcp

import (
	"net/http"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/scoutdesk/internal/domain/group"
	"github.com/honeycarbs/scoutdesk/internal/domain/posting"
	"github.com/honeycarbs/scoutdesk/internal/domain/scout"
	"github.com/honeycarbs/scoutdesk/internal/mcp/tools"
	"github.com/honeycarbs/scoutdesk/pkg/logging"
)

const (
	serverName    = "scoutdesk"
	serverVersion = "0.1.0"
)

// Resources are the services the tools call into; nil entries leave their
// tools registered but failing with a "not configured" error
type Resources struct {
	Scout    scout.Service
	Exporter *scout.Exporter
	Postings posting.Service
	Groups   group.Service
}

// NewServer builds the MCP server with every tool registered
func NewServer(log *logging.Logger, res Resources) *sdkmcp.Server {
	if log == nil {
		log = logging.NewNop()
	}
	log = log.Named("mcp")

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)

	names := tools.Register(server, log,
		tools.WithScoutStats(res.Scout),
		tools.WithPostingWorkflow(res.Postings),
		tools.WithRelatedPostings(res.Postings),
		tools.WithGroupDelete(res.Groups),
		tools.WithSheetsExport(res.Exporter),
	)
	log.Info("mcp tools registered", "tools", names)

	return server
}

// NewHandler serves server over streamable HTTP
func NewHandler(server *sdkmcp.Server) http.Handler {
	return sdkmcp.NewStreamableHTTPHandler(func(*http.Request) *sdkmcp.Server {
		return server
	}, nil)
}
