package records

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"patchbay/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	// mu serializes counter and uniqueness-table writers. SQLite is a
	// single-writer engine; the mutex keeps in-process callers from
	// contending on the database lock inside NextID's critical section.
	mu sync.Mutex
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (or creates) a SQLite-backed record store.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open record database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate record database: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		meta_type TEXT NOT NULL,
		creator TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		modifier TEXT NOT NULL DEFAULT '',
		modified_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entities_name_type ON entities(name, type);

	CREATE TABLE IF NOT EXISTS generators (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		base_id INTEGER NOT NULL DEFAULT 1,
		zero_fill INTEGER NOT NULL DEFAULT 0,
		base_id_length INTEGER NOT NULL DEFAULT 0,
		prefix TEXT NOT NULL DEFAULT '',
		suffix TEXT NOT NULL DEFAULT '',
		last_id TEXT NOT NULL DEFAULT '',
		next_id TEXT NOT NULL DEFAULT '',
		creator TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		modifier TEXT NOT NULL DEFAULT '',
		modified_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS unique_ids (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		family TEXT NOT NULL,
		value TEXT NOT NULL,
		reserved INTEGER NOT NULL DEFAULT 0,
		reserve_message TEXT NOT NULL DEFAULT '',
		reserver TEXT NOT NULL DEFAULT '',
		site_id INTEGER,
		created_at TEXT NOT NULL,
		UNIQUE (family, value)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// CreateEntity persists a new entity record, assigning its immutable id.
func (s *SQLiteStore) CreateEntity(ctx context.Context, rec *domain.EntityRecord) error {
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.ModifiedAt.IsZero() {
		rec.ModifiedAt = now
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO entities (name, type, meta_type, creator, created_at, modifier, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.Name, rec.TypeSlug, string(rec.MetaType), rec.Creator,
		dbTime(rec.CreatedAt), rec.Modifier, dbTime(rec.ModifiedAt))
	if err != nil {
		return fmt.Errorf("create entity: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create entity: %w", err)
	}
	rec.ID = id
	return nil
}

// GetEntity fetches an entity record by id.
func (s *SQLiteStore) GetEntity(ctx context.Context, id int64) (*domain.EntityRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, type, meta_type, creator, created_at, modifier, modified_at
		FROM entities WHERE id = ?
	`, id)

	rec, err := scanEntity(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("entity %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get entity %d: %w", id, err)
	}
	return rec, nil
}

// FindEntity fetches the oldest entity record matching name and type.
func (s *SQLiteStore) FindEntity(ctx context.Context, name, typeSlug string) (*domain.EntityRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, type, meta_type, creator, created_at, modifier, modified_at
		FROM entities WHERE name = ? AND type = ? ORDER BY id LIMIT 1
	`, name, typeSlug)

	rec, err := scanEntity(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("entity %s %q: %w", typeSlug, name, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find entity %s %q: %w", typeSlug, name, err)
	}
	return rec, nil
}

// UpdateEntity persists name, meta-type, and modification metadata.
func (s *SQLiteStore) UpdateEntity(ctx context.Context, rec *domain.EntityRecord) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE entities SET name = ?, meta_type = ?, modifier = ?, modified_at = ?
		WHERE id = ?
	`, rec.Name, string(rec.MetaType), rec.Modifier, dbTime(rec.ModifiedAt), rec.ID)
	if err != nil {
		return fmt.Errorf("update entity %d: %w", rec.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("entity %d: %w", rec.ID, domain.ErrNotFound)
	}
	return nil
}

// DeleteEntity removes an entity record. Ids are never reused; the
// AUTOINCREMENT rowid sequence does not move backwards.
func (s *SQLiteStore) DeleteEntity(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM entities WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete entity %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("entity %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// CreateGenerator persists a new unique-id generator.
func (s *SQLiteStore) CreateGenerator(ctx context.Context, gen *domain.Generator) error {
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

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO generators (name, base_id, zero_fill, base_id_length, prefix, suffix,
			last_id, next_id, creator, created_at, modifier, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, gen.Name, gen.BaseID, gen.ZeroFill, gen.BaseIDLength, gen.Prefix, gen.Suffix,
		gen.LastID, gen.NextID, gen.Creator, dbTime(gen.CreatedAt), gen.Modifier, dbTime(gen.ModifiedAt))
	if err != nil {
		return fmt.Errorf("create generator %q: %w", gen.Name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create generator %q: %w", gen.Name, err)
	}
	gen.ID = id
	return nil
}

// GetGenerator fetches a generator by family name.
func (s *SQLiteStore) GetGenerator(ctx context.Context, name string) (*domain.Generator, error) {
	gen, err := scanGenerator(s.db.QueryRowContext(ctx, `
		SELECT id, name, base_id, zero_fill, base_id_length, prefix, suffix,
			last_id, next_id, creator, created_at, modifier, modified_at
		FROM generators WHERE name = ?
	`, name).Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("generator %q: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get generator %q: %w", name, err)
	}
	return gen, nil
}

// ListGenerators returns all generators ordered by name.
func (s *SQLiteStore) ListGenerators(ctx context.Context) ([]domain.Generator, error) {
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
		gen, err := scanGenerator(rows.Scan)
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

// NextID issues the next identifier for a family. The read-format-
// increment-persist sequence runs under the store mutex inside one
// transaction, so concurrent callers never receive the same value.
func (s *SQLiteStore) NextID(ctx context.Context, family string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("next id for %q: begin: %w", family, err)
	}
	defer tx.Rollback()

	gen, err := scanGenerator(tx.QueryRowContext(ctx, `
		SELECT id, name, base_id, zero_fill, base_id_length, prefix, suffix,
			last_id, next_id, creator, created_at, modifier, modified_at
		FROM generators WHERE name = ?
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
		UPDATE generators SET base_id = ?, last_id = ?, next_id = ?, modified_at = ?
		WHERE id = ?
	`, gen.BaseID, gen.LastID, gen.NextID, dbTime(time.Now().UTC()), gen.ID)
	if err != nil {
		return "", fmt.Errorf("next id for %q: %w", family, err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("next id for %q: commit: %w", family, err)
	}
	return value, nil
}

// Reserve inserts a reserved identifier. Duplicates fail with
// domain.ErrAlreadyReserved and leave the family counter untouched.
func (s *SQLiteStore) Reserve(ctx context.Context, family, value, reserver, message string) (*domain.UniqueID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO unique_ids (family, value, reserved, reserve_message, reserver, created_at)
		VALUES (?, ?, 1, ?, ?, ?)
		ON CONFLICT (family, value) DO NOTHING
	`, family, value, message, reserver, dbTime(now))
	if err != nil {
		return nil, fmt.Errorf("reserve %q in %q: %w", value, family, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("%q in %q: %w", value, family, domain.ErrAlreadyReserved)
	}

	id, err := res.LastInsertId()
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

// RegisterID records membership of an identifier in the family table. An
// existing reserved row is marked consumed; an existing unreserved row is
// an informational skip.
func (s *SQLiteStore) RegisterID(ctx context.Context, family, value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		id       int64
		reserved bool
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, reserved FROM unique_ids WHERE family = ? AND value = ?`,
		family, value).Scan(&id, &reserved)
	if err == sql.ErrNoRows {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO unique_ids (family, value, reserved, created_at)
			VALUES (?, ?, 0, ?)
		`, family, value, dbTime(time.Now().UTC()))
		if err != nil {
			return false, fmt.Errorf("register %q in %q: %w", value, family, err)
		}
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("register %q in %q: %w", value, family, err)
	}

	if reserved {
		_, err = s.db.ExecContext(ctx, `UPDATE unique_ids SET reserved = 0 WHERE id = ?`, id)
		if err != nil {
			return false, fmt.Errorf("register %q in %q: %w", value, family, err)
		}
	}
	return false, nil
}

// GetUniqueID fetches one row from the family uniqueness table.
func (s *SQLiteStore) GetUniqueID(ctx context.Context, family, value string) (*domain.UniqueID, error) {
	var (
		uid       domain.UniqueID
		siteID    sql.NullInt64
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, family, value, reserved, reserve_message, reserver, site_id, created_at
		FROM unique_ids WHERE family = ? AND value = ?
	`, family, value).Scan(&uid.ID, &uid.Family, &uid.Value, &uid.Reserved,
		&uid.ReserveMessage, &uid.Reserver, &siteID, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("unique id %q in %q: %w", value, family, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get unique id %q in %q: %w", value, family, err)
	}

	if siteID.Valid {
		uid.SiteID = &siteID.Int64
	}
	uid.CreatedAt = parseDBTime(createdAt)
	return &uid, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanEntity(scan func(dest ...any) error) (*domain.EntityRecord, error) {
	var (
		rec                   domain.EntityRecord
		metaType              string
		createdAt, modifiedAt string
	)
	if err := scan(&rec.ID, &rec.Name, &rec.TypeSlug, &metaType,
		&rec.Creator, &createdAt, &rec.Modifier, &modifiedAt); err != nil {
		return nil, err
	}
	rec.MetaType = domain.MetaType(metaType)
	rec.CreatedAt = parseDBTime(createdAt)
	rec.ModifiedAt = parseDBTime(modifiedAt)
	return &rec, nil
}

func scanGenerator(scan func(dest ...any) error) (*domain.Generator, error) {
	var (
		gen                   domain.Generator
		createdAt, modifiedAt string
	)
	if err := scan(&gen.ID, &gen.Name, &gen.BaseID, &gen.ZeroFill, &gen.BaseIDLength,
		&gen.Prefix, &gen.Suffix, &gen.LastID, &gen.NextID,
		&gen.Creator, &createdAt, &gen.Modifier, &modifiedAt); err != nil {
		return nil, err
	}
	gen.CreatedAt = parseDBTime(createdAt)
	gen.ModifiedAt = parseDBTime(modifiedAt)
	return &gen, nil
}

func dbTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseDBTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
