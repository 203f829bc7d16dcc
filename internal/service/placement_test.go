package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patchbay/internal/domain"
	"patchbay/internal/graph"
)

func TestPlacePhysical(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	site := mustCreate(t, svc, "tug.se", "site", "")
	router := mustCreate(t, svc, "r1.example", "router", "")

	require.NoError(t, svc.PlacePhysical(ctx, router.ID, site.ID, "test"))

	edges, err := svc.graph.OutgoingEdges(ctx, router.ID, domain.EdgeLocatedIn)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, site.ID, edges[0].ToID)
}

func TestPlacePhysicalReplacesOldLocation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	siteA := mustCreate(t, svc, "tug.se", "site", "")
	siteB := mustCreate(t, svc, "fre.se", "site", "")
	router := mustCreate(t, svc, "r1.example", "router", "")

	require.NoError(t, svc.PlacePhysical(ctx, router.ID, siteA.ID, "test"))
	require.NoError(t, svc.PlacePhysical(ctx, router.ID, siteB.ID, "test"))

	edges, err := svc.graph.OutgoingEdges(ctx, router.ID, domain.EdgeLocatedIn)
	require.NoError(t, err)
	require.Len(t, edges, 1, "moving replaces, never accumulates")
	assert.Equal(t, siteB.ID, edges[0].ToID)
}

func TestPlacePhysicalIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	site := mustCreate(t, svc, "tug.se", "site", "")
	router := mustCreate(t, svc, "r1.example", "router", "")

	require.NoError(t, svc.PlacePhysical(ctx, router.ID, site.ID, "test"))
	first, err := svc.graph.OutgoingEdges(ctx, router.ID, domain.EdgeLocatedIn)
	require.NoError(t, err)
	require.Len(t, first, 1)

	require.NoError(t, svc.PlacePhysical(ctx, router.ID, site.ID, "test"))
	second, err := svc.graph.OutgoingEdges(ctx, router.ID, domain.EdgeLocatedIn)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID, "re-placement keeps the existing edge")
}

func TestPlacePhysicalPromotesLogical(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	site := mustCreate(t, svc, "tug.se", "site", "")
	odf := mustCreate(t, svc, "odf1.tug", "odf", domain.MetaTypeLogical)

	require.NoError(t, svc.PlacePhysical(ctx, odf.ID, site.ID, "test"))

	meta, err := svc.Classify(ctx, odf.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MetaTypePhysical, meta)

	contains, err := svc.graph.IncomingEdges(ctx, odf.ID, domain.EdgeContains)
	require.NoError(t, err)
	require.Len(t, contains, 1)
	assert.Equal(t, graph.MetaRootID(domain.MetaTypePhysical), contains[0].FromID)

	located, err := svc.graph.OutgoingEdges(ctx, odf.ID, domain.EdgeLocatedIn)
	require.NoError(t, err)
	require.Len(t, located, 1)
	assert.Equal(t, site.ID, located[0].ToID)
}

func TestPlacePhysicalRejectsBadTarget(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	router := mustCreate(t, svc, "r1.example", "router", "")
	host := mustCreate(t, svc, "www.example", "host", "")

	err := svc.PlacePhysical(ctx, router.ID, host.ID, "test")
	assert.ErrorIs(t, err, domain.ErrUnsupportedRelationship)
}

func TestRemovePlacement(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	site := mustCreate(t, svc, "tug.se", "site", "")
	router := mustCreate(t, svc, "r1.example", "router", "")
	require.NoError(t, svc.PlacePhysical(ctx, router.ID, site.ID, "test"))

	require.NoError(t, svc.RemovePlacement(ctx, router.ID))

	edges, err := svc.graph.OutgoingEdges(ctx, router.ID, domain.EdgeLocatedIn)
	require.NoError(t, err)
	assert.Empty(t, edges)

	// Removing an already unplaced entity is fine.
	require.NoError(t, svc.RemovePlacement(ctx, router.ID))
}

func TestPlaceLocation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	siteA := mustCreate(t, svc, "tug.se", "site", "")
	siteB := mustCreate(t, svc, "fre.se", "site", "")
	rack := mustCreate(t, svc, "rack-a1", "rack", "")

	require.NoError(t, svc.PlaceLocation(ctx, rack.ID, siteA.ID, "test"))
	require.NoError(t, svc.PlaceLocation(ctx, rack.ID, siteB.ID, "test"))

	edges, err := svc.graph.IncomingEdges(ctx, rack.ID, domain.EdgeHas)
	require.NoError(t, err)
	require.Len(t, edges, 1, "a location has at most one parent")
	assert.Equal(t, siteB.ID, edges[0].FromID)

	// Same parent again is a no-op.
	require.NoError(t, svc.PlaceLocation(ctx, rack.ID, siteB.ID, "test"))
	again, err := svc.graph.IncomingEdges(ctx, rack.ID, domain.EdgeHas)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, edges[0].ID, again[0].ID)
}

func TestPlaceLocationRejectsBadParent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	provider := mustCreate(t, svc, "NORDUnet", "provider", "")
	rack := mustCreate(t, svc, "rack-a1", "rack", "")

	err := svc.PlaceLocation(ctx, rack.ID, provider.ID, "test")
	assert.ErrorIs(t, err, domain.ErrUnsupportedRelationship)
}
