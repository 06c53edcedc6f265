package memory

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"nowplaying/internal/logging"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; databases at any other version are recreated on open.
const schemaVersion = 2

// errSchemaMismatch indicates the database schema version doesn't match the expected version.
var errSchemaMismatch = errors.New("schema version mismatch")

func (s *Store) initSchema(ctx context.Context) error {
	err := s.checkSchema(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errSchemaMismatch):
		s.logger.Info("recreating artist memory schema",
			logging.String(logging.FieldEventType, "memory_schema_recreate"),
			logging.String("reason", err.Error()))
		return s.recreateSchema(ctx)
	default:
		return err
	}
}

func (s *Store) checkSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		var legacy int
		if err := s.db.QueryRowContext(ctx,
			"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='artists'",
		).Scan(&legacy); err != nil {
			return fmt.Errorf("check artists table: %w", err)
		}
		if legacy > 0 {
			return fmt.Errorf("%w: unversioned artists table", errSchemaMismatch)
		}
		return s.createSchema(ctx)
	}

	var versions int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM schema_version").Scan(&versions); err != nil {
		return fmt.Errorf("count schema versions: %w", err)
	}
	if versions == 0 {
		return fmt.Errorf("%w: database has no recorded version", errSchemaMismatch)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d", errSchemaMismatch, version, schemaVersion)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func (s *Store) recreateSchema(ctx context.Context) error {
	for _, stmt := range []string{
		"DROP TABLE IF EXISTS artists",
		"DROP TABLE IF EXISTS schema_version",
	} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("drop outdated schema: %w", err)
		}
	}
	return s.createSchema(ctx)
}
