package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/honeycarbs/scoutdesk/pkg/logging"
)

// NATS publishes revalidations on a subject and dispatches every message
// received on it, including its own, to local handlers.
type NATS struct {
	handlers
	nc      *nats.Conn
	subject string
	sub     *nats.Subscription
	log     *logging.Logger
}

func NewNATS(nc *nats.Conn, subject string, log *logging.Logger) (*NATS, error) {
	if log == nil {
		log = logging.NewNop()
	}
	b := &NATS{nc: nc, subject: subject, log: log.Named("events")}

	sub, err := nc.Subscribe(subject, b.receive)
	if err != nil {
		return nil, fmt.Errorf("events: subscribe %s: %w", subject, err)
	}
	b.sub = sub
	return b, nil
}

func (b *NATS) receive(msg *nats.Msg) {
	var r Revalidation
	if err := json.Unmarshal(msg.Data, &r); err != nil {
		b.log.Warn("dropping malformed revalidation", "subject", msg.Subject, "error", err)
		return
	}
	if len(r.Paths) == 0 {
		return
	}
	b.dispatch(r.Paths)
}

func (b *NATS) Revalidate(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("revalidate: %w", err)
	}

	data, err := json.Marshal(Revalidation{Paths: paths})
	if err != nil {
		return fmt.Errorf("revalidate: encode: %w", err)
	}
	if err := b.nc.Publish(b.subject, data); err != nil {
		return fmt.Errorf("revalidate: publish: %w", err)
	}
	b.log.Debug("revalidation published", "paths", paths)
	return nil
}

func (b *NATS) OnRevalidate(h Handler) { b.add(h) }

// Shutdown drains the subscription
func (b *NATS) Shutdown(_ context.Context) error {
	if b.sub == nil {
		return nil
	}
	return b.sub.Unsubscribe()
}
