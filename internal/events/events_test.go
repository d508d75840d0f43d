package events

import (
	"context"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal(t *testing.T) {
	bus := NewLocal()
	var got [][]string
	bus.OnRevalidate(func(paths []string) { got = append(got, paths) })

	require.NoError(t, bus.Revalidate(context.Background(), PostingPath("p-1"), PostingListPath))
	require.NoError(t, bus.Revalidate(context.Background()))

	assert.Equal(t, [][]string{{"/company/job-postings/p-1", "/company/job-postings"}}, got)
}

func TestLocalCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, NewLocal().Revalidate(ctx, "/x"))
}

func TestNATSRoundTrip(t *testing.T) {
	server, err := natsserver.NewServer(&natsserver.Options{
		Host:   "127.0.0.1",
		Port:   -1,
		NoLog:  true,
		NoSigs: true,
	})
	require.NoError(t, err)
	go server.Start()
	require.True(t, server.ReadyForConnections(5*time.Second))
	t.Cleanup(server.Shutdown)

	nc, err := nats.Connect(server.ClientURL())
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	bus, err := NewNATS(nc, "test.revalidate", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bus.Shutdown(context.Background()) })

	received := make(chan []string, 1)
	bus.OnRevalidate(func(paths []string) { received <- paths })

	require.NoError(t, bus.Revalidate(context.Background(), GroupsPath("acct-1")))

	select {
	case paths := <-received:
		assert.Equal(t, []string{"/company/groups/acct-1"}, paths)
	case <-time.After(5 * time.Second):
		t.Fatal("revalidation not received")
	}
}
