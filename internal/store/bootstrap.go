package store

import (
	"context"
	"encoding/json"
	"fmt"

	"quickedit/internal/metadata"
)

// Bootstrap creates the system tables if they do not exist yet.
func (s *Store) Bootstrap(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, s.Dialect.SystemTablesSQL()); err != nil {
		return fmt.Errorf("bootstrap system tables: %w", err)
	}
	return nil
}

// SaveEntity upserts an entity definition into _entities.
func (s *Store) SaveEntity(ctx context.Context, entity *metadata.Entity) error {
	defJSON, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("marshal entity %s: %w", entity.Name, err)
	}

	pb := s.Dialect.NewParamBuilder()
	sqlStr := fmt.Sprintf(
		`INSERT INTO _entities (name, table_name, definition) VALUES (%s, %s, %s)
		ON CONFLICT (name) DO UPDATE SET table_name = EXCLUDED.table_name, definition = EXCLUDED.definition, updated_at = %s`,
		pb.Add(entity.Name), pb.Add(entity.Table), pb.Add(string(defJSON)), s.Dialect.NowExpr(),
	)
	if _, err := Exec(ctx, s.DB, sqlStr, pb.Params()...); err != nil {
		return fmt.Errorf("save entity %s: %w", entity.Name, s.Dialect.MapError(err))
	}
	return nil
}
