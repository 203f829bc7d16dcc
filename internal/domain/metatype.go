package domain

import "fmt"

// MetaType is the broad structural category of an entity. It determines
// which placement and connection rules apply.
type MetaType string

const (
	MetaTypePhysical MetaType = "physical"
	MetaTypeLogical  MetaType = "logical"
	MetaTypeRelation MetaType = "relation"
	MetaTypeLocation MetaType = "location"
)

// MetaTypes lists all categories in a stable order.
func MetaTypes() []MetaType {
	return []MetaType{MetaTypePhysical, MetaTypeLogical, MetaTypeRelation, MetaTypeLocation}
}

// Valid reports whether m is one of the four categories.
func (m MetaType) Valid() bool {
	switch m {
	case MetaTypePhysical, MetaTypeLogical, MetaTypeRelation, MetaTypeLocation:
		return true
	}
	return false
}

// ParseMetaType converts a string to a MetaType.
func ParseMetaType(s string) (MetaType, error) {
	m := MetaType(s)
	if !m.Valid() {
		return "", fmt.Errorf("parse meta type %q: %w", s, ErrUnsupportedType)
	}
	return m, nil
}
