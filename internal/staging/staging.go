// Package staging keeps edit drafts between the edit form and the confirm step.
// Drafts are scoped to one edit session (browser tab) and expire with it.
package staging

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/honeycarbs/scoutdesk/internal/domain/workflow"
)

// Kind tells which entity a draft edits
type Kind string

const (
	KindJobPosting Kind = "job_posting"
	KindCandidate  Kind = "candidate"
)

// Entry is one staged draft
type Entry struct {
	Kind     Kind            `json:"kind"`
	EntityID string          `json:"entity_id"`
	State    workflow.State  `json:"state"`
	Payload  json.RawMessage `json:"payload"`
	SavedAt  time.Time       `json:"saved_at"`
}

// Decode unmarshals the payload into v
func (e Entry) Decode(v any) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("staged %s %s has no payload", e.Kind, e.EntityID)
	}
	return json.Unmarshal(e.Payload, v)
}

// NewEntry marshals draft into an Entry
func NewEntry(kind Kind, entityID string, state workflow.State, draft any) (Entry, error) {
	payload, err := json.Marshal(draft)
	if err != nil {
		return Entry{}, fmt.Errorf("encode draft: %w", err)
	}
	return Entry{Kind: kind, EntityID: entityID, State: state, Payload: payload}, nil
}

// Stager stores drafts per (scope, entity). Saving twice under the same key
// overwrites; two tabs sharing a scope race with last write wins.
type Stager interface {
	Save(ctx context.Context, scope, entityID string, e Entry) error
	Load(ctx context.Context, scope, entityID string) (Entry, bool, error)
	Clear(ctx context.Context, scope, entityID string) error
}

// Key is the draft key of an entity inside its scope
func Key(entityID string) string {
	return "editData-" + entityID
}

var keyPart = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func checkKey(scope, entityID string) error {
	if !keyPart.MatchString(scope) {
		return fmt.Errorf("staging: invalid scope %q", scope)
	}
	if !keyPart.MatchString(entityID) {
		return fmt.Errorf("staging: invalid entity id %q", entityID)
	}
	return nil
}
