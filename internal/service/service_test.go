package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patchbay/internal/domain"
	"patchbay/internal/graph"
	"patchbay/internal/records"
)

func newTestService(t *testing.T) *Inventory {
	t.Helper()
	dir := t.TempDir()

	recordStore, err := records.OpenSQLite(filepath.Join(dir, "records.db"))
	require.NoError(t, err)
	t.Cleanup(func() { recordStore.Close() })

	graphStore, err := graph.OpenSQLite(filepath.Join(dir, "graph.db"))
	require.NoError(t, err)
	t.Cleanup(func() { graphStore.Close() })

	return New(recordStore, graphStore, NewEventBus())
}

func mustCreate(t *testing.T, svc *Inventory, name, typeSlug string, meta domain.MetaType) *domain.EntityRecord {
	t.Helper()
	rec, err := svc.Create(context.Background(), name, typeSlug, meta, "test")
	require.NoError(t, err)
	return rec
}

func TestSetProperties(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	rec := mustCreate(t, svc, "r1.example", "router", "")
	require.NoError(t, svc.SetProperties(ctx, rec.ID, map[string]any{
		"model": "mx480",
		"slots": 8,
	}))

	node, err := svc.GetNode(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "r1.example", node.Properties["name"].Native())
	assert.Equal(t, "mx480", node.Properties["model"].Native())
	assert.Equal(t, int64(8), node.Properties["slots"].Native())
}

func TestEventsPublished(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	events := make(chan Event, 16)
	svc.eventBus.Subscribe(events)

	rec := mustCreate(t, svc, "r1.example", "router", "")
	_, err := svc.Delete(ctx, rec.ID)
	require.NoError(t, err)

	var types []EventType
	for len(events) > 0 {
		e := <-events
		assert.NotEmpty(t, e.ID)
		types = append(types, e.Type)
	}
	assert.Equal(t, []EventType{EventEntityCreated, EventEntityDeleted}, types)
}

func TestEventBusSkipsSlowSubscriber(t *testing.T) {
	bus := NewEventBus()
	full := make(chan Event) // unbuffered, nobody reading
	bus.Subscribe(full)

	done := make(chan struct{})
	go func() {
		bus.Publish(NewEvent(EventEntityCreated, nil))
		close(done)
	}()
	<-done
}
