package records

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"patchbay/internal/domain"
)

// PostgresStore implements Store using Postgres via pgx. Counter
// serialization uses row locks instead of a store mutex, so independent
// families do not contend with each other.
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

const defaultPostgresDSN = "postgres://localhost/patchbay?sslmode=disable"

// OpenPostgres opens a Postgres-backed record store and applies the schema.
func OpenPostgres(dsn string) (*PostgresStore, error) {
	if dsn == "" {
		dsn = defaultPostgresDSN
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entities (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		meta_type TEXT NOT NULL,
		creator TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		modifier TEXT NOT NULL DEFAULT '',
		modified_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entities_name_type ON entities(name, type);

	CREATE TABLE IF NOT EXISTS generators (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		base_id BIGINT NOT NULL DEFAULT 1,
		zero_fill BOOLEAN NOT NULL DEFAULT FALSE,
		base_id_length INT NOT NULL DEFAULT 0,
		prefix TEXT NOT NULL DEFAULT '',
		suffix TEXT NOT NULL DEFAULT '',
		last_id TEXT NOT NULL DEFAULT '',
		next_id TEXT NOT NULL DEFAULT '',
		creator TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		modifier TEXT NOT NULL DEFAULT '',
		modified_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS unique_ids (
		id BIGSERIAL PRIMARY KEY,
		family TEXT NOT NULL,
		value TEXT NOT NULL,
		reserved BOOLEAN NOT NULL DEFAULT FALSE,
		reserve_message TEXT NOT NULL DEFAULT '',
		reserver TEXT NOT NULL DEFAULT '',
		site_id BIGINT,
		created_at TIMESTAMPTZ NOT NULL,
		UNIQUE (family, value)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *PostgresStore) CreateEntity(ctx context.Context, rec *domain.EntityRecord) error {
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.ModifiedAt.IsZero() {
		rec.ModifiedAt = now
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO entities (name, type, meta_type, creator, created_at, modifier, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, rec.Name, rec.TypeSlug, string(rec.MetaType), rec.Creator,
		rec.CreatedAt, rec.Modifier, rec.ModifiedAt).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("create entity: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetEntity(ctx context.Context, id int64) (*domain.EntityRecord, error) {
	rec, err := scanPGEntity(s.db.QueryRowContext(ctx, `
		SELECT id, name, type, meta_type, creator, created_at, modifier, modified_at
		FROM entities WHERE id = $1
	`, id).Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("entity %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get entity %d: %w", id, err)
	}
	return rec, nil
}

func (s *PostgresStore) FindEntity(ctx context.Context, name, typeSlug string) (*domain.EntityRecord, error) {
	rec, err := scanPGEntity(s.db.QueryRowContext(ctx, `
		SELECT id, name, type, meta_type, creator, created_at, modifier, modified_at
		FROM entities WHERE name = $1 AND type = $2 ORDER BY id LIMIT 1
	`, name, typeSlug).Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("entity %s %q: %w", typeSlug, name, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find entity %s %q: %w", typeSlug, name, err)
	}
	return rec, nil
}

func (s *PostgresStore) UpdateEntity(ctx context.Context, rec *domain.EntityRecord) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE entities SET name = $1, meta_type = $2, modifier = $3, modified_at = $4
		WHERE id = $5
	`, rec.Name, string(rec.MetaType), rec.Modifier, rec.ModifiedAt, rec.ID)
	if err != nil {
		return fmt.Errorf("update entity %d: %w", rec.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("entity %d: %w", rec.ID, domain.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) DeleteEntity(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM entities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete entity %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("entity %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) CreateGenerator(ctx context.Context, gen *domain.Generator) error {
	now := time.Now().UTC()
	if gen.CreatedAt.IsZero() {
		gen.CreatedAt = now
	}
	if gen.ModifiedAt.IsZero() {
		gen.ModifiedAt = now
	}
	if gen.BaseID == 0 {
		gen.BaseID = 1
	}
	gen.NextID = gen.Peek()

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO generators (name, base_id, zero_fill, base_id_length, prefix, suffix,
			last_id, next_id, creator, created_at, modifier, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`, gen.Name, gen.BaseID, gen.ZeroFill, gen.BaseIDLength, gen.Prefix, gen.Suffix,
		gen.LastID, gen.NextID, gen.Creator, gen.CreatedAt, gen.Modifier, gen.ModifiedAt).Scan(&gen.ID)
	if err != nil {
		return fmt.Errorf("create generator %q: %w", gen.Name, err)
	}
	return nil
}

func (s *PostgresStore) GetGenerator(ctx context.Context, name string) (*domain.Generator, error) {
	gen, err := scanPGGenerator(s.db.QueryRowContext(ctx, `
		SELECT id, name, base_id, zero_fill, base_id_length, prefix, suffix,
			last_id, next_id, creator, created_at, modifier, modified_at
		FROM generators WHERE name = $1
	`, name).Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("generator %q: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get generator %q: %w", name, err)
	}
	return gen, nil
}

func (s *PostgresStore) ListGenerators(ctx context.Context) ([]domain.Generator, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, base_id, zero_fill, base_id_length, prefix, suffix,
			last_id, next_id, creator, created_at, modifier, modified_at
		FROM generators ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list generators: %w", err)
	}
	defer rows.Close()

	var gens []domain.Generator
	for rows.Next() {
		gen, err := scanPGGenerator(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan generator: %w", err)
		}
		gens = append(gens, *gen)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate generators: %w", err)
	}
	return gens, nil
}

// NextID issues the next identifier for a family. The generator row is
// locked with SELECT ... FOR UPDATE for the duration of the transaction.
func (s *PostgresStore) NextID(ctx context.Context, family string) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("next id for %q: begin: %w", family, err)
	}
	defer tx.Rollback()

	gen, err := scanPGGenerator(tx.QueryRowContext(ctx, `
		SELECT id, name, base_id, zero_fill, base_id_length, prefix, suffix,
			last_id, next_id, creator, created_at, modifier, modified_at
		FROM generators WHERE name = $1
		FOR UPDATE
	`, family).Scan)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("generator %q: %w", family, domain.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("next id for %q: %w", family, err)
	}

	value := gen.Format(gen.BaseID)
	gen.BaseID++
	gen.LastID = value
	gen.NextID = gen.Peek()

	_, err = tx.ExecContext(ctx, `
		UPDATE generators SET base_id = $1, last_id = $2, next_id = $3, modified_at = $4
		WHERE id = $5
	`, gen.BaseID, gen.LastID, gen.NextID, time.Now().UTC(), gen.ID)
	if err != nil {
		return "", fmt.Errorf("next id for %q: %w", family, err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("next id for %q: commit: %w", family, err)
	}
	return value, nil
}

func (s *PostgresStore) Reserve(ctx context.Context, family, value, reserver, message string) (*domain.UniqueID, error) {
	now := time.Now().UTC()
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO unique_ids (family, value, reserved, reserve_message, reserver, created_at)
		VALUES ($1, $2, TRUE, $3, $4, $5)
		ON CONFLICT (family, value) DO NOTHING
		RETURNING id
	`, family, value, message, reserver, now).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%q in %q: %w", value, family, domain.ErrAlreadyReserved)
	}
	if err != nil {
		return nil, fmt.Errorf("reserve %q in %q: %w", value, family, err)
	}

	return &domain.UniqueID{
		ID:             id,
		Family:         family,
		Value:          value,
		Reserved:       true,
		ReserveMessage: message,
		Reserver:       reserver,
		CreatedAt:      now,
	}, nil
}

func (s *PostgresStore) RegisterID(ctx context.Context, family, value string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("register %q in %q: begin: %w", value, family, err)
	}
	defer tx.Rollback()

	var (
		id       int64
		reserved bool
	)
	err = tx.QueryRowContext(ctx,
		`SELECT id, reserved FROM unique_ids WHERE family = $1 AND value = $2 FOR UPDATE`,
		family, value).Scan(&id, &reserved)

	created := false
	switch {
	case err == sql.ErrNoRows:
		_, err = tx.ExecContext(ctx, `
			INSERT INTO unique_ids (family, value, reserved, created_at)
			VALUES ($1, $2, FALSE, $3)
		`, family, value, time.Now().UTC())
		if err != nil {
			return false, fmt.Errorf("register %q in %q: %w", value, family, err)
		}
		created = true
	case err != nil:
		return false, fmt.Errorf("register %q in %q: %w", value, family, err)
	case reserved:
		_, err = tx.ExecContext(ctx, `UPDATE unique_ids SET reserved = FALSE WHERE id = $1`, id)
		if err != nil {
			return false, fmt.Errorf("register %q in %q: %w", value, family, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("register %q in %q: commit: %w", value, family, err)
	}
	return created, nil
}

func (s *PostgresStore) GetUniqueID(ctx context.Context, family, value string) (*domain.UniqueID, error) {
	var (
		uid    domain.UniqueID
		siteID sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, family, value, reserved, reserve_message, reserver, site_id, created_at
		FROM unique_ids WHERE family = $1 AND value = $2
	`, family, value).Scan(&uid.ID, &uid.Family, &uid.Value, &uid.Reserved,
		&uid.ReserveMessage, &uid.Reserver, &siteID, &uid.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("unique id %q in %q: %w", value, family, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get unique id %q in %q: %w", value, family, err)
	}

	if siteID.Valid {
		uid.SiteID = &siteID.Int64
	}
	return &uid, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func scanPGEntity(scan func(dest ...any) error) (*domain.EntityRecord, error) {
	var (
		rec      domain.EntityRecord
		metaType string
	)
	if err := scan(&rec.ID, &rec.Name, &rec.TypeSlug, &metaType,
		&rec.Creator, &rec.CreatedAt, &rec.Modifier, &rec.ModifiedAt); err != nil {
		return nil, err
	}
	rec.MetaType = domain.MetaType(metaType)
	return &rec, nil
}

func scanPGGenerator(scan func(dest ...any) error) (*domain.Generator, error) {
	var gen domain.Generator
	if err := scan(&gen.ID, &gen.Name, &gen.BaseID, &gen.ZeroFill, &gen.BaseIDLength,
		&gen.Prefix, &gen.Suffix, &gen.LastID, &gen.NextID,
		&gen.Creator, &gen.CreatedAt, &gen.Modifier, &gen.ModifiedAt); err != nil {
		return nil, err
	}
	return &gen, nil
}
