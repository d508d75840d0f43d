package staging

import (
	"context"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/scoutdesk/internal/domain/workflow"
)

type draft struct {
	Title  string   `json:"title"`
	Salary int      `json:"salary"`
	Tags   []string `json:"tags"`
}

// startTestNATSServer starts an embedded JetStream-enabled NATS server.
func startTestNATSServer(t *testing.T) *natsserver.Server {
	opts := &natsserver.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		NoLog:     true,
		NoSigs:    true,
		JetStream: true,
		StoreDir:  t.TempDir(),
	}

	server, err := natsserver.NewServer(opts)
	require.NoError(t, err)

	go server.Start()

	if !server.ReadyForConnections(5 * time.Second) {
		t.Fatal("NATS server not ready")
	}

	t.Cleanup(func() {
		server.Shutdown()
		server.WaitForShutdown()
	})

	return server
}

func stagers(t *testing.T) map[string]Stager {
	server := startTestNATSServer(t)
	nc, err := nats.Connect(server.ClientURL())
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	kv, err := NewKV(context.Background(), nc, "test_drafts", time.Hour)
	require.NoError(t, err)

	return map[string]Stager{
		"memory": NewMemory(time.Hour),
		"kv":     kv,
	}
}

func TestStagerContract(t *testing.T) {
	for name, s := range stagers(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, found, err := s.Load(ctx, "tab-1", "post-1")
			require.NoError(t, err)
			assert.False(t, found)

			in := draft{Title: "Backend engineer", Salary: 600, Tags: []string{"Go", "SQL"}}
			e, err := NewEntry(KindJobPosting, "post-1", workflow.StateStaged, in)
			require.NoError(t, err)
			require.NoError(t, s.Save(ctx, "tab-1", "post-1", e))

			got, found, err := s.Load(ctx, "tab-1", "post-1")
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, KindJobPosting, got.Kind)
			assert.Equal(t, workflow.StateStaged, got.State)
			assert.False(t, got.SavedAt.IsZero())

			var out draft
			require.NoError(t, got.Decode(&out))
			assert.Equal(t, in, out)

			// scopes are isolated
			_, found, err = s.Load(ctx, "tab-2", "post-1")
			require.NoError(t, err)
			assert.False(t, found)

			// last write wins
			e2, err := NewEntry(KindJobPosting, "post-1", workflow.StateEditing, draft{Title: "Second tab"})
			require.NoError(t, err)
			require.NoError(t, s.Save(ctx, "tab-1", "post-1", e2))
			got, _, err = s.Load(ctx, "tab-1", "post-1")
			require.NoError(t, err)
			require.NoError(t, got.Decode(&out))
			assert.Equal(t, "Second tab", out.Title)

			require.NoError(t, s.Clear(ctx, "tab-1", "post-1"))
			_, found, err = s.Load(ctx, "tab-1", "post-1")
			require.NoError(t, err)
			assert.False(t, found)

			// clearing twice is fine
			assert.NoError(t, s.Clear(ctx, "tab-1", "post-1"))
		})
	}
}

func TestStagerRejectsBadKeys(t *testing.T) {
	s := NewMemory(time.Hour)
	ctx := context.Background()

	assert.Error(t, s.Save(ctx, "a.b", "post-1", Entry{}))
	_, _, err := s.Load(ctx, "tab", "../etc")
	assert.Error(t, err)
}

func TestMemoryExpires(t *testing.T) {
	m := NewMemory(time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.clock = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, m.Save(ctx, "tab", "post-1", Entry{Kind: KindJobPosting}))
	assert.Equal(t, 1, m.Len())

	now = now.Add(2 * time.Minute)
	_, found, err := m.Load(ctx, "tab", "post-1")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 0, m.Len())
}

func TestKey(t *testing.T) {
	assert.Equal(t, "editData-42", Key("42"))
}
