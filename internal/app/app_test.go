package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"quickedit/internal/config"
	"quickedit/internal/store"
)

const testEntities = `
entities:
  - name: content.Article
    table: articles
    primary_key: { field: id, type: int }
    fields:
      - { name: id, type: int }
      - { name: title, type: string }
    setters:
      - name: setTitle
        params: [{ name: title, type: string }]
        editable: true
`

func testConfig(t *testing.T, source string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	file := filepath.Join(dir, "entities.yaml")
	require.NoError(t, os.WriteFile(file, []byte(testEntities), 0o644))

	return &config.Config{
		Database: config.DatabaseConfig{Driver: "sqlite", Path: dir, Name: "app_test"},
		Metadata: config.MetadataConfig{Source: source, File: file},
		QuickEdit: config.QuickEditConfig{
			Path:              "/api/quick-edit",
			BoolAcceptsOne:    true,
			AllowLegacyMarker: true,
		},
		Flash: config.FlashConfig{Driver: "memory", TTLSeconds: 60},
	}
}

func openTestApp(t *testing.T, source string) *App {
	t.Helper()
	ctx := context.Background()
	a, err := Open(ctx, testConfig(t, source))
	require.NoError(t, err)
	t.Cleanup(a.Close)

	_, err = a.Store.DB.ExecContext(ctx, `CREATE TABLE articles (id INTEGER PRIMARY KEY, title TEXT NOT NULL)`)
	require.NoError(t, err)
	_, err = a.Store.DB.ExecContext(ctx, `INSERT INTO articles (id, title) VALUES (10, 'Hello')`)
	require.NoError(t, err)
	return a
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

func TestServer_QuickEditFromFileMetadata(t *testing.T) {
	a := openTestApp(t, "file")
	server := NewServer(a)

	resp, err := server.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	require.Equal(t, "ok", decode(t, resp)["status"])

	req := httptest.NewRequest(http.MethodPost, "/api/quick-edit",
		strings.NewReader(`{"entity":"article","property":"Title","id":10,"value":"Changed"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = server.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	require.Equal(t, `Property "Title" has been changed.`, decode(t, resp)["message"])

	row, err := store.QueryRow(context.Background(), a.Store.DB, "SELECT title FROM articles WHERE id = 10")
	require.NoError(t, err)
	require.Equal(t, "Changed", row["title"])
}

func TestServer_AdminIsReadOnlyForFileMetadata(t *testing.T) {
	a := openTestApp(t, "file")
	server := NewServer(a)

	resp, err := server.Test(httptest.NewRequest(http.MethodGet, "/api/_admin/entities", nil))
	require.NoError(t, err)
	data := decode(t, resp)["data"].([]any)
	require.Len(t, data, 1)
	require.Equal(t, "Article", data[0].(map[string]any)["short_name"])

	req := httptest.NewRequest(http.MethodPut, "/api/_admin/entities/content.Article", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = server.Test(req)
	require.NoError(t, err)
	require.Equal(t, 409, resp.StatusCode)
}

func TestServer_AdminPutReloadsDatabaseMetadata(t *testing.T) {
	a := openTestApp(t, "db")
	require.Zero(t, a.Registry.Len())
	server := NewServer(a)

	def := `{"table":"articles","primary_key":{"field":"id","type":"int"},
		"fields":[{"name":"id","type":"int"},{"name":"title","type":"string"}],
		"setters":[{"name":"setTitle","params":[{"name":"title","type":"string"}],"doc":"@editable"}]}`
	req := httptest.NewRequest(http.MethodPut, "/api/_admin/entities/content.Article", strings.NewReader(def))
	req.Header.Set("Content-Type", "application/json")
	resp, err := server.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	require.Equal(t, 1, a.Registry.Len())
	require.Equal(t, "legacy-doc", a.Registry.GetEntity("content.Article").Setter("setTitle").Marker.String())

	resp, err = server.Test(httptest.NewRequest(http.MethodGet, "/api/_admin/entities/content.Article", nil))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPut, "/api/_admin/entities/content.Broken", strings.NewReader(`{"table":""}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = server.Test(req)
	require.NoError(t, err)
	require.Equal(t, 422, resp.StatusCode)

	undeclared := `{"table":"articles","primary_key":{"field":"id","type":"int"},
		"fields":[{"name":"id","type":"int"},{"name":"title","type":"string"}],
		"setters":[{"name":"setHeadline","params":[{"name":"h","type":"string"}],"editable":true}]}`
	req = httptest.NewRequest(http.MethodPut, "/api/_admin/entities/content.Headline", strings.NewReader(undeclared))
	req.Header.Set("Content-Type", "application/json")
	resp, err = server.Test(req)
	require.NoError(t, err)
	require.Equal(t, 422, resp.StatusCode)
	body := decode(t, resp)["error"].(map[string]any)
	require.Equal(t, "VALIDATION_FAILED", body["code"])
	require.Contains(t, body["message"], `undeclared field "headline"`)
	require.Nil(t, a.Registry.GetEntity("content.Headline"))

	resp, err = server.Test(httptest.NewRequest(http.MethodGet, "/api/_admin/entities/content.Missing", nil))
	require.NoError(t, err)
	require.Equal(t, 404, resp.StatusCode)
}

func TestOpen_UnknownSources(t *testing.T) {
	cfg := testConfig(t, "ldap")
	_, err := Open(context.Background(), cfg)
	require.Error(t, err)

	cfg = testConfig(t, "file")
	cfg.Flash.Driver = "memcached"
	_, err = Open(context.Background(), cfg)
	require.Error(t, err)
}

func TestEditorOptions(t *testing.T) {
	opts := EditorOptions(config.QuickEditConfig{BoolAcceptsOne: false, AllowLegacyMarker: true})
	require.False(t, opts.Coerce.BoolAcceptsOne)
	require.True(t, opts.AllowLegacyMarker)
}
