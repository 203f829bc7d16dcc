package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"

	"gopkg.in/yaml.v3"

	"patchbay/internal/domain"
	"patchbay/internal/graph"
)

// ImportResult summarizes one bulk link import run.
type ImportResult struct {
	Links      int      `json:"links"`
	Created    int      `json:"created"`
	Registered int      `json:"registered"`
	Errors     []string `json:"errors,omitempty"`
}

type importFile struct {
	Links []linkRow `yaml:"links"`
}

type linkRow struct {
	Name       string         `yaml:"name"`
	Provider   string         `yaml:"provider"`
	Ports      []portRef      `yaml:"ports"`
	Properties map[string]any `yaml:"properties"`
}

type portRef struct {
	Equipment string `yaml:"equipment"`
	Name      string `yaml:"name"`
}

// ImportLinks reads a YAML link manifest and materializes its rows:
// providers, links, optical equipment and their ports, plus the Provides,
// Has and Depends_on edges between them. Rows are independent; a bad row is
// recorded in the result and skipped, the rest of the file still imports.
// When family names a registered id family, link names matching its pattern
// are registered in the family uniqueness table. Re-importing the same file
// is a no-op.
func (s *Inventory) ImportLinks(ctx context.Context, r io.Reader, family, actor string) (*ImportResult, error) {
	var file importFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode link manifest: %w", err)
	}

	var familyRe *regexp.Regexp
	if family != "" {
		re, err := s.FamilyRegexp(ctx, family)
		if err != nil {
			return nil, fmt.Errorf("import links: %w", err)
		}
		familyRe = re
	}

	result := &ImportResult{}
	for _, row := range file.Links {
		if row.Name == "" {
			result.Errors = append(result.Errors, "link row without a name")
			continue
		}
		if err := s.importLink(ctx, row, familyRe, family, actor, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("link %s: %v", row.Name, err))
			continue
		}
		result.Links++
	}

	s.publish(EventImportCompleted, result)
	return result, nil
}

func (s *Inventory) importLink(ctx context.Context, row linkRow, familyRe *regexp.Regexp, family, actor string, result *ImportResult) error {
	if familyRe != nil && familyRe.MatchString(row.Name) {
		created, err := s.RegisterID(ctx, family, row.Name)
		if err != nil {
			return err
		}
		if created {
			result.Registered++
		}
	}

	link, created, err := s.GetOrCreateUnique(ctx, row.Name, "link", domain.MetaTypeLogical, actor)
	if err != nil {
		return err
	}
	if created {
		result.Created++
	}

	if row.Provider != "" {
		provider, created, err := s.GetOrCreateUnique(ctx, row.Provider, "provider", domain.MetaTypeRelation, actor)
		if err != nil {
			return err
		}
		if created {
			result.Created++
		}
		if err := s.setProvider(ctx, provider.ID, link.ID); err != nil {
			return err
		}
	}

	for _, ref := range row.Ports {
		if ref.Equipment == "" || ref.Name == "" {
			return fmt.Errorf("port reference needs both equipment and name")
		}
		equipment, created, err := s.GetOrCreateUnique(ctx, ref.Equipment, "optical-node", domain.MetaTypePhysical, actor)
		if err != nil {
			return err
		}
		if created {
			result.Created++
		}
		port, err := s.portUnder(ctx, equipment.ID, ref.Name, actor, result)
		if err != nil {
			return err
		}
		if err := s.ensureEdge(ctx, link.ID, port.ID, domain.EdgeDependsOn); err != nil {
			return err
		}
	}

	if len(row.Properties) > 0 {
		if err := s.SetProperties(ctx, link.ID, row.Properties); err != nil {
			return err
		}
	}
	return nil
}

// setProvider makes provider the sole Provides source of link. A link
// changing hands loses its previous provider edge rather than gaining a
// second one.
func (s *Inventory) setProvider(ctx context.Context, providerID, linkID int64) error {
	return s.graph.InTransaction(ctx, func(tx graph.Tx) error {
		existing, err := tx.GetEdges(ctx, providerID, linkID, domain.EdgeProvides)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return nil
		}
		stale, err := tx.IncomingEdges(ctx, linkID, domain.EdgeProvides)
		if err != nil {
			return err
		}
		for _, edge := range stale {
			if err := tx.DeleteEdge(ctx, edge.ID); err != nil {
				return err
			}
		}
		_, err = tx.CreateEdge(ctx, providerID, linkID, domain.EdgeProvides, nil)
		return err
	})
}

// portUnder resolves a port by name below one piece of equipment, creating
// it and its Has edge when absent. Port names are only unique per
// equipment, so the lookup walks the equipment's Has edges instead of the
// global name index.
func (s *Inventory) portUnder(ctx context.Context, equipmentID int64, name, actor string, result *ImportResult) (*domain.EntityRecord, error) {
	edges, err := s.graph.OutgoingEdges(ctx, equipmentID, domain.EdgeHas)
	if err != nil {
		return nil, err
	}
	for _, edge := range edges {
		rec, err := s.records.GetEntity(ctx, edge.ToID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if rec.TypeSlug == "port" && rec.Name == name {
			return rec, nil
		}
	}

	rec, err := s.Create(ctx, name, "port", domain.MetaTypePhysical, actor)
	if err != nil {
		return nil, err
	}
	result.Created++
	if err := s.ensureEdge(ctx, equipmentID, rec.ID, domain.EdgeHas); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Inventory) ensureEdge(ctx context.Context, from, to int64, edgeType domain.EdgeType) error {
	existing, err := s.graph.GetEdges(ctx, from, to, edgeType)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	_, err = s.graph.CreateEdge(ctx, from, to, edgeType, nil)
	return err
}
