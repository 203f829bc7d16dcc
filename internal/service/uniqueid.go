package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"patchbay/internal/domain"
)

// CreateGenerator registers a new unique-id family with its formatting
// rules and starting counter.
func (s *Inventory) CreateGenerator(ctx context.Context, gen *domain.Generator, actor string) error {
	now := time.Now().UTC()
	gen.Creator = actor
	gen.CreatedAt = now
	gen.Modifier = actor
	gen.ModifiedAt = now
	if err := s.records.CreateGenerator(ctx, gen); err != nil {
		return fmt.Errorf("create generator %q: %w", gen.Name, err)
	}
	return nil
}

// Generators lists every registered family.
func (s *Inventory) Generators(ctx context.Context) ([]domain.Generator, error) {
	return s.records.ListGenerators(ctx)
}

// NextID issues the next identifier for a family. Issued values are
// strictly increasing within the family and never reused, even when the
// entity the caller meant to name is later deleted. Values already in the
// uniqueness table (reserved or registered from an import) are skipped.
func (s *Inventory) NextID(ctx context.Context, family string) (string, error) {
	for {
		value, err := s.records.NextID(ctx, family)
		if err != nil {
			return "", err
		}

		_, err = s.records.GetUniqueID(ctx, family, value)
		if errors.Is(err, domain.ErrNotFound) {
			s.publish(EventIDIssued, map[string]string{"family": family, "value": value})
			return value, nil
		}
		if err != nil {
			return "", err
		}
		// Taken; the counter has already moved past it.
	}
}

// Reserve marks an externally chosen identifier as taken within a family,
// so the counter can never collide with it and no other caller can claim
// it. Reserving a value twice fails with domain.ErrAlreadyReserved.
func (s *Inventory) Reserve(ctx context.Context, family, value, reserver, message string) (*domain.UniqueID, error) {
	if _, err := s.records.GetGenerator(ctx, family); err != nil {
		return nil, fmt.Errorf("reserve %q in family %q: %w", value, family, err)
	}

	uid, err := s.records.Reserve(ctx, family, value, reserver, message)
	if err != nil {
		return nil, err
	}

	s.publish(EventIDReserved, map[string]string{"family": family, "value": value})
	return uid, nil
}

// ReserveRange issues and reserves count consecutive identifiers from a
// family, returning them in issue order.
func (s *Inventory) ReserveRange(ctx context.Context, family string, count int, reserver, message string) ([]string, error) {
	values := make([]string, 0, count)
	for i := 0; i < count; i++ {
		value, err := s.NextID(ctx, family)
		if err != nil {
			return values, err
		}
		if _, err := s.records.Reserve(ctx, family, value, reserver, message); err != nil {
			return values, err
		}
		values = append(values, value)
	}

	s.publish(EventIDReserved, map[string]any{"family": family, "values": values})
	return values, nil
}

// FamilyRegexp returns the pattern recognizing a family's identifiers.
func (s *Inventory) FamilyRegexp(ctx context.Context, family string) (*regexp.Regexp, error) {
	gen, err := s.records.GetGenerator(ctx, family)
	if err != nil {
		return nil, err
	}
	return gen.Regexp()
}

// RegisterID records that an identifier is in use in a family without
// reserving it, so later counter collisions and duplicate reservations are
// caught. Reports whether the value was new to the family.
func (s *Inventory) RegisterID(ctx context.Context, family, value string) (bool, error) {
	return s.records.RegisterID(ctx, family, value)
}
