package staging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// KV is a Stager backed by a NATS JetStream key-value bucket. The bucket TTL
// plays the role of the session lifetime.
type KV struct {
	kv    jetstream.KeyValue
	clock func() time.Time
}

// NewKV creates (or updates) the bucket and returns a Stager over it
func NewKV(ctx context.Context, nc *nats.Conn, bucket string, ttl time.Duration) (*KV, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("staging: jetstream: %w", err)
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "scoutdesk staged edit drafts",
		TTL:         ttl,
		History:     1,
	})
	if err != nil {
		return nil, fmt.Errorf("staging: bucket %s: %w", bucket, err)
	}

	return &KV{kv: kv, clock: time.Now}, nil
}

func kvKey(scope, entityID string) string {
	return scope + "." + Key(entityID)
}

func (s *KV) Save(ctx context.Context, scope, entityID string, e Entry) error {
	if err := checkKey(scope, entityID); err != nil {
		return err
	}

	e.SavedAt = s.clock().UTC()
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("staging: encode entry: %w", err)
	}

	if _, err := s.kv.Put(ctx, kvKey(scope, entityID), data); err != nil {
		return fmt.Errorf("staging: put: %w", err)
	}
	return nil
}

func (s *KV) Load(ctx context.Context, scope, entityID string) (Entry, bool, error) {
	if err := checkKey(scope, entityID); err != nil {
		return Entry{}, false, err
	}

	item, err := s.kv.Get(ctx, kvKey(scope, entityID))
	if errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("staging: get: %w", err)
	}

	var e Entry
	if err := json.Unmarshal(item.Value(), &e); err != nil {
		return Entry{}, false, fmt.Errorf("staging: decode entry: %w", err)
	}
	return e, true, nil
}

func (s *KV) Clear(ctx context.Context, scope, entityID string) error {
	if err := checkKey(scope, entityID); err != nil {
		return err
	}

	err := s.kv.Delete(ctx, kvKey(scope, entityID))
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("staging: delete: %w", err)
	}
	return nil
}
