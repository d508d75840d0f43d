// Package app assembles the scoutdesk server from configuration.
package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/honeycarbs/scoutdesk/internal/config"
	"github.com/honeycarbs/scoutdesk/internal/domain/candidate"
	"github.com/honeycarbs/scoutdesk/internal/domain/group"
	"github.com/honeycarbs/scoutdesk/internal/domain/posting"
	"github.com/honeycarbs/scoutdesk/internal/domain/scout"
	"github.com/honeycarbs/scoutdesk/internal/events"
	"github.com/honeycarbs/scoutdesk/internal/http"
	"github.com/honeycarbs/scoutdesk/internal/mcp"
	"github.com/honeycarbs/scoutdesk/internal/metrics"
	"github.com/honeycarbs/scoutdesk/internal/repository"
	"github.com/honeycarbs/scoutdesk/internal/staging"
	"github.com/honeycarbs/scoutdesk/internal/storage/files"
	storage "github.com/honeycarbs/scoutdesk/internal/storage/neo4j"
	"github.com/honeycarbs/scoutdesk/internal/storage/sqlite"
	n4j "github.com/honeycarbs/scoutdesk/pkg/neo4j"
	"github.com/honeycarbs/scoutdesk/pkg/logging"
	"github.com/honeycarbs/scoutdesk/pkg/sheets"
)

const connectTimeout = 10 * time.Second

// App is a fully wired server
type App struct {
	HTTP *http.Server
}

func newApp(server *http.Server) *App {
	return &App{HTTP: server}
}

// provideStore opens the relational database and applies the schema
func provideStore(ctx context.Context, cfg config.Config, log *logging.Logger) (*sqlite.Store, func(), error) {
	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	store := sqlite.New(db)
	if err := store.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	log.Info("database ready", "path", cfg.Database.Path)

	return store, func() {
		if err := store.Shutdown(context.Background()); err != nil {
			log.Warn("failed to close database", "err", err)
		}
	}, nil
}

func provideBucket(cfg config.Config) (*files.Bucket, error) {
	return files.NewBucket(cfg.Storage.UploadDir, cfg.Storage.PublicBaseURL)
}

// provideIndex connects to Neo4j when configured; without it related
// postings are always empty
func provideIndex(ctx context.Context, cfg config.Config, log *logging.Logger) (repository.PostingIndex, func(), error) {
	if cfg.Neo4j.URI == "" {
		log.Info("neo4j not configured, posting graph index disabled")
		return repository.NopIndex{}, func() {}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := n4j.NewClient(ctx, n4j.Config{
		URI:      cfg.Neo4j.URI,
		Username: cfg.Neo4j.Username,
		Password: cfg.Neo4j.Password,
		Database: cfg.Neo4j.Database,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("neo4j: %w", err)
	}
	log.Info("neo4j posting index connected", "uri", cfg.Neo4j.URI)

	return storage.NewPostingIndex(client), func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		if err := client.Close(closeCtx); err != nil {
			log.Warn("failed to close neo4j client", "err", err)
		}
	}, nil
}

// provideNATS connects to NATS when configured; a nil connection keeps
// revalidation and staging in-process
func provideNATS(cfg config.Config, log *logging.Logger) (*nats.Conn, func(), error) {
	if cfg.NATS.URL == "" {
		log.Info("nats not configured, using in-process events and staging")
		return nil, func() {}, nil
	}
	nc, err := nats.Connect(cfg.NATS.URL, nats.Name("scoutdesk"), nats.Timeout(connectTimeout))
	if err != nil {
		return nil, nil, fmt.Errorf("nats: %w", err)
	}
	log.Info("nats connected", "url", nc.ConnectedUrl())

	return nc, func() {
		if err := nc.Drain(); err != nil {
			log.Warn("failed to drain nats connection", "err", err)
		}
	}, nil
}

func provideBus(nc *nats.Conn, cfg config.Config, log *logging.Logger) (events.Bus, func(), error) {
	if nc == nil {
		return events.NewLocal(), func() {}, nil
	}
	bus, err := events.NewNATS(nc, cfg.NATS.Subject, log)
	if err != nil {
		return nil, nil, err
	}
	return bus, func() {
		if err := bus.Shutdown(context.Background()); err != nil {
			log.Warn("failed to unsubscribe revalidation events", "err", err)
		}
	}, nil
}

func provideStager(ctx context.Context, nc *nats.Conn, cfg config.Config) (staging.Stager, error) {
	if nc == nil {
		return staging.NewMemory(cfg.Staging.TTL), nil
	}
	return staging.NewKV(ctx, nc, cfg.NATS.DraftBucket, cfg.Staging.TTL)
}

func provideScout(store *sqlite.Store, log *logging.Logger, m *metrics.Metrics) (scout.Service, error) {
	return scout.NewService(
		scout.WithRepository(store),
		scout.WithLogger(log),
		scout.WithMetrics(m),
	)
}

func providePostings(store *sqlite.Store, stager staging.Stager, bucket *files.Bucket, index repository.PostingIndex, bus events.Bus, log *logging.Logger, m *metrics.Metrics) (posting.Service, error) {
	return posting.NewService(
		posting.WithRepository(store),
		posting.WithStager(stager),
		posting.WithBlobStore(bucket),
		posting.WithIndex(index),
		posting.WithRevalidator(bus),
		posting.WithLogger(log),
		posting.WithMetrics(m),
	)
}

func provideCandidates(store *sqlite.Store, stager staging.Stager, bus events.Bus, log *logging.Logger, m *metrics.Metrics) (candidate.Service, error) {
	return candidate.NewService(
		candidate.WithRepository(store),
		candidate.WithStager(stager),
		candidate.WithRevalidator(bus),
		candidate.WithLogger(log),
		candidate.WithMetrics(m),
	)
}

func provideGroups(store *sqlite.Store, index repository.PostingIndex, bus events.Bus, cfg config.Config, log *logging.Logger, m *metrics.Metrics) (group.Service, error) {
	return group.NewService(
		group.WithRepository(store),
		group.WithIndex(index),
		group.WithBus(bus),
		group.WithCacheTTL(cfg.Groups.CacheTTL),
		group.WithLogger(log),
		group.WithMetrics(m),
	)
}

// provideExporter returns nil unless a spreadsheet is configured
func provideExporter(ctx context.Context, cfg config.Config, stats scout.Service, log *logging.Logger) (*scout.Exporter, error) {
	if cfg.Sheets.SpreadsheetID == "" {
		log.Info("sheets not configured, scout export disabled")
		return nil, nil
	}
	client, err := sheets.NewClient(ctx, sheets.Config{CredentialsPath: cfg.Sheets.CredentialsPath})
	if err != nil {
		return nil, fmt.Errorf("sheets: %w", err)
	}
	return scout.NewExporter(stats, client, cfg.Sheets.SpreadsheetID, cfg.Sheets.Tab, log), nil
}

func provideServices(stats scout.Service, exporter *scout.Exporter, postings posting.Service, candidates candidate.Service, groups group.Service) http.Services {
	return http.Services{
		Scout:      stats,
		Exporter:   exporter,
		Postings:   postings,
		Candidates: candidates,
		Groups:     groups,
	}
}

func provideMCPHandler(svc http.Services, log *logging.Logger) stdhttp.Handler {
	server := mcp.NewServer(log, mcp.Resources{
		Scout:    svc.Scout,
		Exporter: svc.Exporter,
		Postings: svc.Postings,
		Groups:   svc.Groups,
	})
	return mcp.NewHandler(server)
}

func provideHTTPServer(cfg config.Config, svc http.Services, mcpHandler stdhttp.Handler, log *logging.Logger, m *metrics.Metrics) (*http.Server, error) {
	return http.NewServer(http.Config{
		Addr:      cfg.Addr(),
		UploadDir: cfg.Storage.UploadDir,
		MCP:       mcpHandler,
	}, svc, log, m)
}
