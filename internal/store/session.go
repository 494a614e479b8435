package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"quickedit/internal/metadata"
)

var ErrSessionClosed = errors.New("session already closed")

// Session is a unit of work scoped to one request. Records fetched through
// it are tracked; Flush writes their changes and commits, Close rolls back
// whatever was not flushed.
type Session struct {
	tx      *sql.Tx
	dialect Dialect
	records []*Record
	done    bool
}

// BeginSession opens a transaction-backed unit of work.
func (s *Store) BeginSession(ctx context.Context) (*Session, error) {
	tx, err := s.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &Session{tx: tx, dialect: s.Dialect}, nil
}

// Find loads the single record of entity whose primary key equals id.
// The id is passed as given; the database applies its own coercion.
// It returns ErrNotFound for no match and ErrNotUnique for several.
func (s *Session) Find(ctx context.Context, entity *metadata.Entity, id string) (*Record, error) {
	if s.done {
		return nil, ErrSessionClosed
	}

	pb := s.dialect.NewParamBuilder()
	where := []string{fmt.Sprintf("%s = %s", entity.PrimaryKey.Field, pb.Add(id))}
	if entity.SoftDelete {
		where = append(where, "deleted_at IS NULL")
	}
	sqlStr := fmt.Sprintf("SELECT %s FROM %s WHERE %s LIMIT 2",
		strings.Join(entity.FieldNames(), ", "), entity.Table, strings.Join(where, " AND "))

	rows, err := QueryRows(ctx, s.tx, sqlStr, pb.Params()...)
	if err != nil {
		return nil, fmt.Errorf("find %s/%s: %w", entity.Name, id, s.dialect.MapError(err))
	}
	switch {
	case len(rows) == 0:
		return nil, ErrNotFound
	case len(rows) > 1:
		return nil, ErrNotUnique
	}

	if s.dialect.NeedsBoolFix() {
		NormalizeBooleans(rows, entity.BoolFields())
	}

	rec := NewRecord(entity, id, rows[0])
	s.records = append(s.records, rec)
	return rec, nil
}

// Flush writes every changed record and commits the transaction.
func (s *Session) Flush(ctx context.Context) error {
	if s.done {
		return ErrSessionClosed
	}

	for _, rec := range s.records {
		if !rec.IsDirty() {
			continue
		}
		if err := s.update(ctx, rec); err != nil {
			return err
		}
		rec.clean()
	}

	if err := s.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.done = true
	return nil
}

func (s *Session) update(ctx context.Context, rec *Record) error {
	entity := rec.Entity
	pb := s.dialect.NewParamBuilder()

	var sets []string
	changed := make(map[string]bool, len(rec.Changed()))
	for _, field := range rec.Changed() {
		changed[field] = true
		sets = append(sets, fmt.Sprintf("%s = %s", field, pb.Add(rec.Get(field))))
	}
	for _, f := range entity.AutoUpdateFields() {
		if !changed[f.Name] {
			sets = append(sets, fmt.Sprintf("%s = %s", f.Name, s.dialect.NowExpr()))
		}
	}

	sqlStr := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		entity.Table, strings.Join(sets, ", "), entity.PrimaryKey.Field, pb.Add(rec.Get(entity.PrimaryKey.Field)))

	affected, err := Exec(ctx, s.tx, sqlStr, pb.Params()...)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", entity.Name, rec.ID, s.dialect.MapError(err))
	}
	if affected == 0 {
		return fmt.Errorf("update %s/%s: %w", entity.Name, rec.ID, ErrNotFound)
	}
	return nil
}

// Close releases the session. Unflushed changes are rolled back.
func (s *Session) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}
