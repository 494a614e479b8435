package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

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
      - { name: published, type: boolean }
    setters:
      - name: setTitle
        params: [{ name: title, type: string }]
        editable: true
      - name: setPublished
        params: [{ name: published, type: bool }]
        doc: "@editable"
      - name: setHidden
        field: title
        params: [{ name: v, type: string }]
`

// setupWorkspace writes a config, an entities file and a seeded SQLite
// database into a temp dir and points --config at it.
func setupWorkspace(t *testing.T, source string) string {
	t.Helper()
	dir := t.TempDir()
	entities := filepath.Join(dir, "entities.yaml")
	if err := os.WriteFile(entities, []byte(testEntities), 0o644); err != nil {
		t.Fatal(err)
	}

	cfgPath := filepath.Join(dir, "app.yaml")
	cfgYAML := fmt.Sprintf(`
database:
  driver: sqlite
  path: %s
  name: cli_test
metadata:
  source: %s
  file: %s
`, dir, source, entities)
	if err := os.WriteFile(cfgPath, []byte(cfgYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := store.New(context.Background(), config.DatabaseConfig{Driver: "sqlite", Path: dir, Name: "cli_test"})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	for _, stmt := range []string{
		`CREATE TABLE articles (id INTEGER PRIMARY KEY, title TEXT NOT NULL, published INTEGER NOT NULL DEFAULT 0)`,
		`INSERT INTO articles (id, title) VALUES (10, 'Hello')`,
	} {
		if _, err := s.DB.Exec(stmt); err != nil {
			t.Fatal(err)
		}
	}

	configPath = cfgPath
	jsonOut = false
	quiet = false
	t.Cleanup(func() { configPath = "" })
	return dir
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	return buf.String(), fnErr
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}

func articleTitle(t *testing.T, dir string) string {
	t.Helper()
	s, err := store.New(context.Background(), config.DatabaseConfig{Driver: "sqlite", Path: dir, Name: "cli_test"})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	row, err := store.QueryRow(context.Background(), s.DB, "SELECT title FROM articles WHERE id = 10")
	if err != nil {
		t.Fatal(err)
	}
	return row["title"].(string)
}
