package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuitableRelationship(t *testing.T) {
	tests := []struct {
		name     string
		from, to MetaType
		edgeType EdgeType
		ok       bool
	}{
		{"physical located in location", MetaTypePhysical, MetaTypeLocation, EdgeLocatedIn, true},
		{"location has location", MetaTypeLocation, MetaTypeLocation, EdgeHas, true},
		{"physical has physical", MetaTypePhysical, MetaTypePhysical, EdgeHas, true},
		{"physical connected to physical", MetaTypePhysical, MetaTypePhysical, EdgeConnectedTo, true},
		{"relation provides logical", MetaTypeRelation, MetaTypeLogical, EdgeProvides, true},
		{"logical depends on physical", MetaTypeLogical, MetaTypePhysical, EdgeDependsOn, true},
		{"location located in physical", MetaTypeLocation, MetaTypePhysical, EdgeLocatedIn, false},
		{"logical connected to physical", MetaTypeLogical, MetaTypePhysical, EdgeConnectedTo, false},
		{"relation has location", MetaTypeRelation, MetaTypeLocation, EdgeHas, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SuitableRelationship(tt.from, tt.to, tt.edgeType)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrUnsupportedRelationship)
			}
		})
	}
}

func TestSymmetricRelationship(t *testing.T) {
	assert.True(t, SymmetricRelationship(EdgeConnectedTo))
	assert.False(t, SymmetricRelationship(EdgeHas))
	assert.False(t, SymmetricRelationship(EdgeLocatedIn))
}

func TestLookupType(t *testing.T) {
	et, err := LookupType("odf")
	require.NoError(t, err)
	assert.Equal(t, "ODF", et.Label)
	assert.Equal(t, MetaTypePhysical, et.DefaultMeta)

	_, err = LookupType("flux-capacitor")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestParseMetaType(t *testing.T) {
	m, err := ParseMetaType("location")
	require.NoError(t, err)
	assert.Equal(t, MetaTypeLocation, m)

	_, err = ParseMetaType("ethereal")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}
