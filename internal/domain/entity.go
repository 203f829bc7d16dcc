package domain

import (
	"fmt"
	"sort"
	"time"
)

// EntityRecord is the durable identity row for an inventory entity. The id
// is assigned on creation and never reused; the graph node is a dependent
// projection keyed by it.
type EntityRecord struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	TypeSlug   string    `json:"type"`
	MetaType   MetaType  `json:"meta_type"`
	Creator    string    `json:"creator,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	Modifier   string    `json:"modifier,omitempty"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Touch records a modification by actor.
func (e *EntityRecord) Touch(actor string) {
	e.Modifier = actor
	e.ModifiedAt = time.Now().UTC()
}

// EntityType describes one entry in the registered type catalog.
type EntityType struct {
	Slug        string
	Label       string
	DefaultMeta MetaType
}

// typeCatalog is the closed registry of entity types. Lookups of
// unregistered slugs fail with ErrUnsupportedType rather than falling
// through to a runtime default.
var typeCatalog = map[string]EntityType{
	"site":            {Slug: "site", Label: "Site", DefaultMeta: MetaTypeLocation},
	"rack":            {Slug: "rack", Label: "Rack", DefaultMeta: MetaTypeLocation},
	"room":            {Slug: "room", Label: "Room", DefaultMeta: MetaTypeLocation},
	"router":          {Slug: "router", Label: "Router", DefaultMeta: MetaTypePhysical},
	"odf":             {Slug: "odf", Label: "ODF", DefaultMeta: MetaTypePhysical},
	"port":            {Slug: "port", Label: "Port", DefaultMeta: MetaTypePhysical},
	"cable":           {Slug: "cable", Label: "Cable", DefaultMeta: MetaTypePhysical},
	"optical-node":    {Slug: "optical-node", Label: "Optical Node", DefaultMeta: MetaTypePhysical},
	"host":            {Slug: "host", Label: "Host", DefaultMeta: MetaTypeLogical},
	"link":            {Slug: "link", Label: "Link", DefaultMeta: MetaTypeLogical},
	"service":         {Slug: "service", Label: "Service", DefaultMeta: MetaTypeLogical},
	"provider":        {Slug: "provider", Label: "Provider", DefaultMeta: MetaTypeRelation},
	"site-owner":      {Slug: "site-owner", Label: "Site Owner", DefaultMeta: MetaTypeRelation},
	"peering-partner": {Slug: "peering-partner", Label: "Peering Partner", DefaultMeta: MetaTypeRelation},
	"customer":        {Slug: "customer", Label: "Customer", DefaultMeta: MetaTypeRelation},
}

// LookupType resolves a type slug against the catalog.
func LookupType(slug string) (EntityType, error) {
	et, ok := typeCatalog[slug]
	if !ok {
		return EntityType{}, fmt.Errorf("type %q: %w", slug, ErrUnsupportedType)
	}
	return et, nil
}

// RegisteredTypes returns the catalog entries sorted by slug.
func RegisteredTypes() []EntityType {
	types := make([]EntityType, 0, len(typeCatalog))
	for _, et := range typeCatalog {
		types = append(types, et)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Slug < types[j].Slug })
	return types
}
