package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"quickedit/internal/config"
	"quickedit/internal/metadata"
	"quickedit/internal/store"
)

func articleEntity() *metadata.Entity {
	return &metadata.Entity{
		Name:       "content.Article",
		Table:      "articles",
		PrimaryKey: metadata.PrimaryKey{Field: "id", Type: "int"},
		SoftDelete: true,
		Fields: []metadata.Field{
			{Name: "id", Type: "int"},
			{Name: "title", Type: "string"},
			{Name: "published", Type: "boolean"},
			{Name: "views", Type: "int"},
			{Name: "rating", Type: "float"},
			{Name: "deleted_at", Type: "timestamp", Nullable: true},
			{Name: "updated_at", Type: "timestamp", Auto: "update", Nullable: true},
		},
		Setters: []metadata.Setter{
			{Name: "setTitle", Params: []metadata.Param{{Name: "title", Type: "string"}}, Editable: true},
			{Name: "setPublished", Params: []metadata.Param{{Name: "published", Type: "bool"}}, Doc: "/** @editable */"},
			{Name: "setViews", Params: []metadata.Param{{Name: "views", Type: "int"}}, Editable: true},
			{Name: "setRating", Params: []metadata.Param{{Name: "rating", Type: "float"}}, Editable: true,
				Assert: "value >= 0 && value <= 5", Message: "rating must be between 0 and 5"},
			{Name: "setSecret", Field: "title", Params: []metadata.Param{{Name: "v", Type: "string"}}},
			{Name: "setSecretPair", Field: "title", Params: []metadata.Param{{Name: "a", Type: "string"}, {Name: "b", Type: "string"}}},
			{Name: "setSlug", Field: "title", Params: []metadata.Param{{Name: "a", Type: "string"}, {Name: "b", Type: "string"}}, Editable: true},
			{Name: "setNothing", Field: "title", Editable: true},
			{Name: "setCrash", Field: "title", Params: []metadata.Param{{Name: "v", Type: "any"}}, Editable: true},
			{Name: "setLocked", Field: "title", Params: []metadata.Param{{Name: "v", Type: "string"}}, Editable: true},
		},
	}
}

func tagEntity(name string) *metadata.Entity {
	return &metadata.Entity{
		Name:       name,
		Table:      "tags",
		PrimaryKey: metadata.PrimaryKey{Field: "id", Type: "int"},
		Fields: []metadata.Field{
			{Name: "id", Type: "int"},
			{Name: "label", Type: "string"},
		},
		Setters: []metadata.Setter{
			{Name: "setLabel", Params: []metadata.Param{{Name: "label", Type: "string"}}, Editable: true},
		},
	}
}

func testRegistry(t *testing.T) *metadata.Registry {
	t.Helper()
	reg := metadata.NewRegistry()
	reg.Load([]*metadata.Entity{
		articleEntity(),
		tagEntity("blog.Tag"),
		tagEntity("shop.Tag"),
		tagEntity("catalog/ProductLine"),
	})
	require.Equal(t, 4, reg.Len())

	require.NoError(t, reg.BindSetter("content.Article", "setCrash", func(metadata.Mutable, []any) error {
		panic("boom")
	}))
	require.NoError(t, reg.BindSetter("content.Article", "setLocked", func(metadata.Mutable, []any) error {
		return &AppError{Code: "CONFLICT", Status: 409, Message: "Article is locked.", Cause: errors.New("locked")}
	}))
	return reg
}

func testStore(t *testing.T) *store.Store {
	t.Helper()
	ctx := context.Background()
	s, err := store.New(ctx, config.DatabaseConfig{
		Driver: "sqlite",
		Path:   t.TempDir(),
		Name:   "engine_test",
	})
	require.NoError(t, err)
	t.Cleanup(s.Close)

	for _, stmt := range []string{
		`CREATE TABLE articles (
			id INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			published INTEGER NOT NULL DEFAULT 0,
			views INTEGER NOT NULL DEFAULT 0,
			rating REAL NOT NULL DEFAULT 0,
			deleted_at TEXT,
			updated_at TEXT
		)`,
		`INSERT INTO articles (id, title, published, views, rating) VALUES (10, 'Hello', 0, 3, 1.5)`,
		`CREATE TABLE tags (id INTEGER, label TEXT)`,
		`INSERT INTO tags (id, label) VALUES (1, 'a'), (1, 'b'), (2, 'c')`,
	} {
		_, err := s.DB.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}
	return s
}

// loadArticle returns article 10 through a session that is closed when the
// test ends. The session holds the only SQLite connection until then.
func loadArticle(t *testing.T, s *store.Store, reg *metadata.Registry) *store.Record {
	t.Helper()
	ctx := context.Background()
	sess, err := s.BeginSession(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { sess.Close() })

	rec, err := sess.Find(ctx, reg.GetEntity("content.Article"), "10")
	require.NoError(t, err)
	return rec
}

func articleRow(t *testing.T, s *store.Store) map[string]any {
	t.Helper()
	row, err := store.QueryRow(context.Background(), s.DB,
		"SELECT title, published, views, rating, updated_at FROM articles WHERE id = 10")
	require.NoError(t, err)
	return row
}

// countingUnit counts flushes of the wrapped session.
type countingUnit struct {
	UnitOfWork
	flushes *int
}

func (u countingUnit) Flush(ctx context.Context) error {
	*u.flushes++
	return u.UnitOfWork.Flush(ctx)
}

func countingSessions(s *store.Store, flushes *int) SessionFactory {
	open := StoreSessions(s)
	return func(ctx context.Context) (UnitOfWork, error) {
		uow, err := open(ctx)
		if err != nil {
			return nil, err
		}
		return countingUnit{UnitOfWork: uow, flushes: flushes}, nil
	}
}

func requireAppError(t *testing.T, err error, code string, status int) *AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	require.Equal(t, code, appErr.Code)
	require.Equal(t, status, appErr.Status)
	return appErr
}
