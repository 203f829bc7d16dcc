package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Generator holds a per-family base id counter with formatting rules. When
// a new id is issued the counter increases by one; issued values are never
// reused.
type Generator struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	BaseID       int64     `json:"base_id"`
	ZeroFill     bool      `json:"zero_fill"`
	BaseIDLength int       `json:"base_id_length"`
	Prefix       string    `json:"prefix,omitempty"`
	Suffix       string    `json:"suffix,omitempty"`
	LastID       string    `json:"last_id,omitempty"`
	NextID       string    `json:"next_id,omitempty"`
	Creator      string    `json:"creator,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	Modifier     string    `json:"modifier,omitempty"`
	ModifiedAt   time.Time `json:"modified_at"`
}

// Format renders a counter value as a formatted identifier.
func (g *Generator) Format(n int64) string {
	base := strconv.FormatInt(n, 10)
	if g.ZeroFill {
		for len(base) < g.BaseIDLength {
			base = "0" + base
		}
	}
	return g.Prefix + base + g.Suffix
}

// Peek returns the identifier the next call to the service's NextID will
// produce, without advancing the counter.
func (g *Generator) Peek() string {
	return g.Format(g.BaseID)
}

// Regexp returns a pattern recognizing members of this family in free
// text, so bulk-import code does not re-derive the formatting rule.
func (g *Generator) Regexp() (*regexp.Regexp, error) {
	pattern := fmt.Sprintf(`(%s\d+%s)`, regexp.QuoteMeta(g.Prefix), regexp.QuoteMeta(g.Suffix))
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile family pattern for %s: %w", g.Name, err)
	}
	return re, nil
}

// UniqueID is one row in a family's uniqueness table, recording an issued
// or reserved identifier.
type UniqueID struct {
	ID             int64     `json:"id"`
	Family         string    `json:"family"`
	Value          string    `json:"value"`
	Reserved       bool      `json:"reserved"`
	ReserveMessage string    `json:"reserve_message,omitempty"`
	Reserver       string    `json:"reserver,omitempty"`
	SiteID         *int64    `json:"site_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
