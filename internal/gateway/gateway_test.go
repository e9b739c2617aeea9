package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MILO-debug/POS/internal/model"
	"github.com/MILO-debug/POS/internal/offline"
)

// ── Stubs ────────────────────────────────────────────────────────────────────

type appliedWrite struct {
	Action     string
	Collection string
	DocID      string
}

// stubStore records writes and can be told to fail.
type stubStore struct {
	applied []appliedWrite
	fail    bool
}

func (s *stubStore) Insert(_ context.Context, collection, docID string, _ interface{}) error {
	return s.record(model.WriteAdd, collection, docID)
}

func (s *stubStore) Update(_ context.Context, collection, docID string, _ interface{}) error {
	return s.record(model.WriteUpdate, collection, docID)
}

func (s *stubStore) Delete(_ context.Context, collection, docID string) error {
	return s.record(model.WriteDelete, collection, docID)
}

func (s *stubStore) record(action, collection, docID string) error {
	if s.fail {
		return fmt.Errorf("store unreachable")
	}
	s.applied = append(s.applied, appliedWrite{Action: action, Collection: collection, DocID: docID})
	return nil
}

type stubProbe struct{ online bool }

func (p *stubProbe) Online(_ context.Context) bool { return p.online }
func (p *stubProbe) MarkOffline()                  { p.online = false }

// jsonCodec keeps the queue round trip simple for tests.
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte) (interface{}, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

type fixture struct {
	store *stubStore
	probe *stubProbe
	queue *offline.Queue
	gw    *Gateway
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	queue, err := offline.Open(filepath.Join(t.TempDir(), "queue.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = queue.Close() })

	store := &stubStore{}
	probe := &stubProbe{online: true}
	return &fixture{store: store, probe: probe, queue: queue, gw: New(store, jsonCodec{}, queue, probe)}
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestWriteOnlineCommits(t *testing.T) {
	f := newFixture(t)
	outcome, err := f.gw.Write(context.Background(), model.WriteAdd, "sales", map[string]interface{}{"total": 50}, "")
	require.NoError(t, err)

	assert.Equal(t, Committed, outcome.Disposition)
	assert.NotEmpty(t, outcome.DocID)
	require.Len(t, f.store.applied, 1)
	assert.Equal(t, outcome.DocID, f.store.applied[0].DocID)

	depth, _ := f.gw.PendingCount(context.Background())
	assert.Equal(t, 0, depth)
}

func TestWriteOfflineQueuesWithStableID(t *testing.T) {
	f := newFixture(t)
	f.probe.online = false

	outcome, err := f.gw.Write(context.Background(), model.WriteAdd, "sales", map[string]interface{}{"total": 50}, "")
	require.NoError(t, err)

	assert.Equal(t, Queued, outcome.Disposition)
	assert.NotEmpty(t, outcome.DocID, "queued adds keep a client-assigned id")
	assert.Empty(t, f.store.applied)

	depth, _ := f.gw.PendingCount(context.Background())
	assert.Equal(t, 1, depth)
}

func TestWriteFailureFallsBackToQueue(t *testing.T) {
	f := newFixture(t)
	f.store.fail = true

	outcome, err := f.gw.Write(context.Background(), model.WriteUpdate, "shifts", map[string]interface{}{"totalIncome": 10}, "s1")
	require.NoError(t, err, "a failed remote write is not a caller error")

	assert.Equal(t, Queued, outcome.Disposition)
	assert.False(t, f.probe.online, "failed write must flip the probe offline")

	depth, _ := f.gw.PendingCount(context.Background())
	assert.Equal(t, 1, depth)
}

func TestDrainReplaysInOrder(t *testing.T) {
	f := newFixture(t)
	f.probe.online = false
	ctx := context.Background()

	_, err := f.gw.Write(ctx, model.WriteAdd, "sales", map[string]interface{}{"n": 1}, "a")
	require.NoError(t, err)
	_, err = f.gw.Write(ctx, model.WriteUpdate, "shifts", map[string]interface{}{"n": 2}, "b")
	require.NoError(t, err)
	_, err = f.gw.Write(ctx, model.WriteDelete, "sales", nil, "c")
	require.NoError(t, err)

	f.probe.online = true
	applied, remaining := f.gw.Drain(ctx)
	assert.Equal(t, 3, applied)
	assert.Equal(t, 0, remaining)

	require.Len(t, f.store.applied, 3)
	assert.Equal(t, appliedWrite{model.WriteAdd, "sales", "a"}, f.store.applied[0])
	assert.Equal(t, appliedWrite{model.WriteUpdate, "shifts", "b"}, f.store.applied[1])
	assert.Equal(t, appliedWrite{model.WriteDelete, "sales", "c"}, f.store.applied[2])

	depth, _ := f.gw.PendingCount(ctx)
	assert.Equal(t, 0, depth)
}

func TestDrainKeepsFailedEntries(t *testing.T) {
	f := newFixture(t)
	f.probe.online = false
	ctx := context.Background()

	_, err := f.gw.Write(ctx, model.WriteAdd, "sales", map[string]interface{}{"n": 1}, "a")
	require.NoError(t, err)

	// Store still down: nothing applies, the entry stays queued.
	f.probe.online = true
	f.store.fail = true
	applied, remaining := f.gw.Drain(ctx)
	assert.Equal(t, 0, applied)
	assert.Equal(t, 1, remaining)

	// Store recovers: the same entry replays.
	f.store.fail = false
	applied, remaining = f.gw.Drain(ctx)
	assert.Equal(t, 1, applied)
	assert.Equal(t, 0, remaining)
	require.Len(t, f.store.applied, 1)
	assert.Equal(t, "a", f.store.applied[0].DocID)
}

func TestDrainEmptyQueue(t *testing.T) {
	f := newFixture(t)
	applied, remaining := f.gw.Drain(context.Background())
	assert.Equal(t, 0, applied)
	assert.Equal(t, 0, remaining)
}
