package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patchbay/internal/domain"
)

func nordunetGenerator() *domain.Generator {
	return &domain.Generator{
		Name:         "nordunet-unique-id",
		BaseID:       7,
		ZeroFill:     true,
		BaseIDLength: 4,
		Prefix:       "NU-",
	}
}

func TestNextID(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.CreateGenerator(ctx, nordunetGenerator(), "test"))

	value, err := svc.NextID(ctx, "nordunet-unique-id")
	require.NoError(t, err)
	assert.Equal(t, "NU-0007", value)

	value, err = svc.NextID(ctx, "nordunet-unique-id")
	require.NoError(t, err)
	assert.Equal(t, "NU-0008", value)
}

func TestReserveRequiresFamily(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Reserve(ctx, "missing", "X-1", "lundberg", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReserveDuplicate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.CreateGenerator(ctx, nordunetGenerator(), "test"))

	uid, err := svc.Reserve(ctx, "nordunet-unique-id", "NU-0099", "lundberg", "dark fiber order")
	require.NoError(t, err)
	assert.True(t, uid.Reserved)

	_, err = svc.Reserve(ctx, "nordunet-unique-id", "NU-0099", "other", "")
	assert.ErrorIs(t, err, domain.ErrAlreadyReserved)
}

func TestReserveRange(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.CreateGenerator(ctx, nordunetGenerator(), "test"))

	values, err := svc.ReserveRange(ctx, "nordunet-unique-id", 3, "lundberg", "batch order")
	require.NoError(t, err)
	assert.Equal(t, []string{"NU-0007", "NU-0008", "NU-0009"}, values)

	// Reserved values can no longer be claimed.
	_, err = svc.Reserve(ctx, "nordunet-unique-id", "NU-0008", "other", "")
	assert.ErrorIs(t, err, domain.ErrAlreadyReserved)

	// The counter moved past the range.
	next, err := svc.NextID(ctx, "nordunet-unique-id")
	require.NoError(t, err)
	assert.Equal(t, "NU-0010", next)
}

func TestNextIDSkipsTakenValues(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.CreateGenerator(ctx, nordunetGenerator(), "test"))

	// NU-0007 was seen in an import, NU-0008 is reserved for an order.
	_, err := svc.RegisterID(ctx, "nordunet-unique-id", "NU-0007")
	require.NoError(t, err)
	_, err = svc.Reserve(ctx, "nordunet-unique-id", "NU-0008", "lundberg", "")
	require.NoError(t, err)

	value, err := svc.NextID(ctx, "nordunet-unique-id")
	require.NoError(t, err)
	assert.Equal(t, "NU-0009", value)
}

func TestFamilyRegexp(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.CreateGenerator(ctx, nordunetGenerator(), "test"))

	re, err := svc.FamilyRegexp(ctx, "nordunet-unique-id")
	require.NoError(t, err)
	assert.True(t, re.MatchString("NU-0007"))
	assert.True(t, re.MatchString("link NU-12345 to fre"))
	assert.False(t, re.MatchString("SUNET-0007"))
}

func TestGenerators(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.CreateGenerator(ctx, nordunetGenerator(), "test"))
	require.NoError(t, svc.CreateGenerator(ctx, &domain.Generator{Name: "cable-id", Prefix: "C"}, "test"))

	gens, err := svc.Generators(ctx)
	require.NoError(t, err)
	require.Len(t, gens, 2)
	assert.Equal(t, "test", gens[0].Creator)
}
