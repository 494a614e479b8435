package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"quickedit/internal/metadata"
)

func init() {
	rootCmd.AddCommand(newImportCmd())
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import entity definitions into the _entities table",
		Long: `The import command reads a YAML or JSON file with a top-level "entities"
list and upserts every valid definition into the _entities table, so a
server running with metadata.source=db picks them up.

Example:
  quickedit import entities.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), args[0])
		},
	}
}

func runImport(ctx context.Context, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	staged := metadata.NewRegistry()
	if err := metadata.LoadFile(path, staged); err != nil {
		return err
	}

	for _, e := range staged.AllEntities() {
		if err := a.Store.SaveEntity(ctx, e); err != nil {
			return err
		}
		printInfo("Imported %s (%d setters)\n", e.Name, len(e.Setters))
	}

	if err := metadata.Reload(ctx, a.Store.DB, a.Registry); err != nil {
		return fmt.Errorf("reload registry: %w", err)
	}
	printInfo("%d entities in _entities\n", a.Registry.Len())
	return nil
}
