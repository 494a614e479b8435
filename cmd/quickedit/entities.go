package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"quickedit/internal/metadata"
)

var entitiesEditableOnly bool

func init() {
	cmd := newEntitiesCmd()
	cmd.Flags().BoolVar(&entitiesEditableOnly, "editable", false, "Only show setters open to quick edits")
	rootCmd.AddCommand(cmd)
}

func newEntitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "entities",
		Short: "List registered entities and their setters",
		Long: `The entities command lists every registered entity with its setters,
their arity and how they were marked editable.

Example:
  quickedit entities
  quickedit entities --editable
  quickedit entities --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEntities(cmd.Context())
		},
	}
}

func runEntities(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var summaries []metadata.EntitySummary
	for _, e := range a.Registry.AllEntities() {
		sum := e.Summary()
		if entitiesEditableOnly {
			sum.Setters = editableSetters(sum.Setters)
		}
		summaries = append(summaries, sum)
	}

	if jsonOut {
		if summaries == nil {
			summaries = []metadata.EntitySummary{}
		}
		return printJSON(summaries)
	}

	if len(summaries) == 0 {
		printInfo("No entities registered\n")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ENTITY\tSETTER\tFIELD\tARITY\tMARKER\tEDITABLE")
	for _, sum := range summaries {
		exists, err := a.Store.Dialect.TableExists(ctx, a.Store.DB, sum.Table)
		if err != nil {
			return fmt.Errorf("check table %s: %w", sum.Table, err)
		}
		name := sum.Name
		if !exists {
			name += " (no table)"
		}
		if len(sum.Setters) == 0 {
			fmt.Fprintf(w, "%s\t-\t\t\t\t\n", name)
			continue
		}
		for _, s := range sum.Setters {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%t\n", name, s.Name, s.Field, s.Arity, s.Marker, s.Editable)
		}
	}
	return w.Flush()
}

func editableSetters(in []metadata.SetterSummary) []metadata.SetterSummary {
	out := make([]metadata.SetterSummary, 0, len(in))
	for _, s := range in {
		if s.Editable {
			out = append(out, s)
		}
	}
	return out
}
