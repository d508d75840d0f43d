//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"

	"github.com/honeycarbs/scoutdesk/internal/config"
	"github.com/honeycarbs/scoutdesk/internal/metrics"
	"github.com/honeycarbs/scoutdesk/pkg/logging"
)

// InitializeApp wires every component from cfg; the returned cleanup closes
// connections in reverse order of creation
func InitializeApp(ctx context.Context, cfg config.Config, log *logging.Logger) (*App, func(), error) {
	wire.Build(
		metrics.New,

		// Infrastructure
		provideStore,
		provideBucket,
		provideIndex,
		provideNATS,
		provideBus,
		provideStager,

		// Services
		provideScout,
		providePostings,
		provideCandidates,
		provideGroups,
		provideExporter,
		provideServices,

		// Transport
		provideMCPHandler,
		provideHTTPServer,
		newApp,
	)
	return nil, nil, nil
}
