package scout

import (
	"context"

	"github.com/honeycarbs/scoutdesk/internal/domain"
)

// Repository loads the raw events a snapshot is computed from
type Repository interface {
	// ScoutMessages returns every scout message sent to the candidate
	ScoutMessages(ctx context.Context, candidateID string) ([]domain.ScoutMessage, error)

	// Applications returns every application made by the candidate
	Applications(ctx context.Context, candidateID string) ([]domain.Application, error)
}
