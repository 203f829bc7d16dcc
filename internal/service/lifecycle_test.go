package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patchbay/internal/domain"
	"patchbay/internal/graph"
)

func TestCreate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Create(ctx, "r1.example", "router", "", "lundberg")
	require.NoError(t, err)
	require.NotZero(t, rec.ID)
	assert.Equal(t, domain.MetaTypePhysical, rec.MetaType, "empty meta type uses the catalog default")
	assert.Equal(t, "lundberg", rec.Creator)

	node, err := svc.GetNode(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Router", node.Label)
	assert.Equal(t, "r1.example", node.Properties["name"].Native())

	contains, err := svc.graph.IncomingEdges(ctx, rec.ID, domain.EdgeContains)
	require.NoError(t, err)
	require.Len(t, contains, 1)
	assert.Equal(t, graph.MetaRootID(domain.MetaTypePhysical), contains[0].FromID)
}

func TestCreateRejectsUnknownType(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), "x", "flux-capacitor", "", "test")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestCreateOverridesDefaultMeta(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	rec := mustCreate(t, svc, "odf1.tug", "odf", domain.MetaTypeLogical)

	meta, err := svc.Classify(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MetaTypeLogical, meta)
}

func TestCreateAdoptsExistingNode(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// Leftover node from a partial earlier create. Entity ids are
	// sequential, so the next create lands on it.
	first := mustCreate(t, svc, "a", "host", "")
	require.NoError(t, svc.graph.CreateNode(ctx, &graph.Node{ID: first.ID + 1, Label: "Host"}))

	rec, err := svc.Create(ctx, "b", "host", "", "test")
	require.NoError(t, err)
	assert.Equal(t, first.ID+1, rec.ID)

	contains, err := svc.graph.IncomingEdges(ctx, rec.ID, domain.EdgeContains)
	require.NoError(t, err)
	assert.Len(t, contains, 1)
}

func TestGetOrCreateUnique(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	rec, created, err := svc.GetOrCreateUnique(ctx, "NORDUnet", "provider", "", "test")
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := svc.GetOrCreateUnique(ctx, "NORDUnet", "provider", "", "test")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, rec.ID, again.ID)

	// Same name under a different type is a different entity.
	other, created, err := svc.GetOrCreateUnique(ctx, "NORDUnet", "customer", "", "test")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, rec.ID, other.ID)
}

func TestDeleteCascadesThroughHas(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	router := mustCreate(t, svc, "r1.example", "router", "")
	odf1 := mustCreate(t, svc, "odf1", "odf", "")
	odf2 := mustCreate(t, svc, "odf2", "odf", "")
	port1 := mustCreate(t, svc, "1-1", "port", "")
	port2 := mustCreate(t, svc, "2-1", "port", "")
	bystander := mustCreate(t, svc, "r2.example", "router", "")

	for _, pair := range [][2]int64{
		{router.ID, odf1.ID},
		{router.ID, odf2.ID},
		{odf1.ID, port1.ID},
		{odf2.ID, port2.ID},
	} {
		_, err := svc.graph.CreateEdge(ctx, pair[0], pair[1], domain.EdgeHas, nil)
		require.NoError(t, err)
	}

	deleted, err := svc.Delete(ctx, router.ID)
	require.NoError(t, err)
	assert.Len(t, deleted, 5)

	for _, id := range []int64{router.ID, odf1.ID, odf2.ID, port1.ID, port2.ID} {
		_, err := svc.GetEntity(ctx, id)
		assert.ErrorIs(t, err, domain.ErrNotFound, "entity %d", id)
		_, err = svc.GetNode(ctx, id)
		assert.ErrorIs(t, err, domain.ErrNotFound, "node %d", id)
	}

	_, err = svc.GetEntity(ctx, bystander.ID)
	assert.NoError(t, err, "entities outside the Has subtree survive")
}

func TestDeleteLocationDoesNotCascade(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	site := mustCreate(t, svc, "tug.se", "site", "")
	rack := mustCreate(t, svc, "rack-a1", "rack", "")
	require.NoError(t, svc.PlaceLocation(ctx, rack.ID, site.ID, "test"))

	deleted, err := svc.Delete(ctx, site.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{site.ID}, deleted)

	// The rack survives, unparented.
	_, err = svc.GetEntity(ctx, rack.ID)
	require.NoError(t, err)
	parents, err := svc.graph.IncomingEdges(ctx, rack.ID, domain.EdgeHas)
	require.NoError(t, err)
	assert.Empty(t, parents)
}

func TestDeleteLeaf(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	rec := mustCreate(t, svc, "www.example", "host", "")
	deleted, err := svc.Delete(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{rec.ID}, deleted)

	_, err = svc.Delete(ctx, rec.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteToleratesMissingNode(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	rec := mustCreate(t, svc, "www.example", "host", "")
	require.NoError(t, svc.graph.DeleteNode(ctx, rec.ID))

	_, err := svc.Delete(ctx, rec.ID)
	require.NoError(t, err)

	_, err = svc.GetEntity(ctx, rec.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
