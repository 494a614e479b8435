package engine

import (
	"context"
	"errors"
	"fmt"

	"quickedit/internal/metadata"
	"quickedit/internal/store"
)

// UnitOfWork tracks the records loaded for one edit and writes them back.
type UnitOfWork interface {
	Find(ctx context.Context, entity *metadata.Entity, id string) (*store.Record, error)
	Flush(ctx context.Context) error
	Close() error
}

// SessionFactory opens a fresh unit of work per edit.
type SessionFactory func(ctx context.Context) (UnitOfWork, error)

// StoreSessions opens transaction-backed sessions on s.
func StoreSessions(s *store.Store) SessionFactory {
	return func(ctx context.Context) (UnitOfWork, error) {
		return s.BeginSession(ctx)
	}
}

// EditRequest names one property change. Value is the raw request string;
// Type selects how it is coerced before the setter sees it.
type EditRequest struct {
	Entity   string
	Property string
	ID       string
	Value    string
	Type     ValueType
}

type EditResult struct {
	Entity   string
	ID       string
	Property string
	Message  string
}

type Editor struct {
	sessions SessionFactory
	registry *metadata.Registry
	opts     Options
}

func NewEditor(sessions SessionFactory, reg *metadata.Registry, opts Options) *Editor {
	return &Editor{sessions: sessions, registry: reg, opts: opts}
}

// Edit resolves the entity, loads the record, applies the setter and flushes.
// The first failure stops the pipeline and the session is always released.
func (e *Editor) Edit(ctx context.Context, req EditRequest) (*EditResult, error) {
	entity, err := ResolveEntityType(e.registry, req.Entity)
	if err != nil {
		return nil, err
	}

	uow, err := e.sessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	defer uow.Close()

	rec, err := uow.Find(ctx, entity, req.ID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, NotFoundError(entity.Name, req.ID)
		case errors.Is(err, store.ErrNotUnique):
			return nil, NotUniqueError(entity.Name, req.ID)
		}
		return nil, fmt.Errorf("find %s/%s: %w", entity.Name, req.ID, err)
	}

	if err := ApplyEdit(ctx, rec, req.Property, req.Type, req.Value, e.opts); err != nil {
		return nil, err
	}

	if err := uow.Flush(ctx); err != nil {
		return nil, ApplyFailedError(entity.Name, req.ID, err)
	}

	return &EditResult{
		Entity:   entity.Name,
		ID:       req.ID,
		Property: req.Property,
		Message:  fmt.Sprintf("Property %q has been changed.", req.Property),
	}, nil
}
