package metadata

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
)

// RowsQuerier is satisfied by *sql.DB and *sql.Tx.
type RowsQuerier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// LoadAll reads all entity definitions from the _entities table and populates the registry.
func LoadAll(ctx context.Context, db RowsQuerier, reg *Registry) error {
	entities, err := loadEntities(ctx, db)
	if err != nil {
		return fmt.Errorf("load entities: %w", err)
	}

	reg.Load(entities)

	log.Printf("Loaded %d entities into registry", reg.Len())
	return nil
}

// Reload is an alias for LoadAll.
func Reload(ctx context.Context, db RowsQuerier, reg *Registry) error {
	return LoadAll(ctx, db, reg)
}

func loadEntities(ctx context.Context, db RowsQuerier) ([]*Entity, error) {
	rows, err := db.QueryContext(ctx, "SELECT name, definition FROM _entities ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entities []*Entity
	for rows.Next() {
		var name string
		var defJSON []byte
		if err := rows.Scan(&name, &defJSON); err != nil {
			return nil, fmt.Errorf("scan entity row: %w", err)
		}

		var entity Entity
		if err := json.Unmarshal(defJSON, &entity); err != nil {
			log.Printf("WARN: skipping entity %s (invalid JSON): %v", name, err)
			continue
		}
		if entity.Name == "" {
			entity.Name = name
		}
		entities = append(entities, &entity)
	}
	return entities, rows.Err()
}
