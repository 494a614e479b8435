package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"quickedit/internal/engine"
)

var (
	editEntity   string
	editID       string
	editProperty string
	editValue    string
	editType     string
)

func init() {
	cmd := newEditCmd()
	cmd.Flags().StringVar(&editEntity, "entity", "", "Entity name, canonical or short (required)")
	cmd.Flags().StringVar(&editID, "id", "", "Primary key of the record (required)")
	cmd.Flags().StringVar(&editProperty, "property", "", "Property to change (required)")
	cmd.Flags().StringVar(&editValue, "value", "", "New value (required)")
	cmd.Flags().StringVar(&editType, "type", "text", "Value type: text, int, float, bool")
	for _, name := range []string{"entity", "id", "property", "value"} {
		_ = cmd.MarkFlagRequired(name)
	}
	rootCmd.AddCommand(cmd)
}

func newEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Change one property of one record",
		Long: `The edit command calls the editable setter for a property and persists
the change, exactly like POST /api/quick-edit.

Example:
  quickedit edit --entity article --id 10 --property Title --value "Hello"
  quickedit edit --entity content.Article --id 10 --property Published --value true --type bool`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd.Context())
		},
	}
}

func runEdit(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.Editor.Edit(ctx, engine.EditRequest{
		Entity:   editEntity,
		Property: editProperty,
		ID:       editID,
		Value:    editValue,
		Type:     engine.ParseValueType(editType),
	})
	if err != nil {
		var appErr *engine.AppError
		if errors.As(err, &appErr) {
			return fmt.Errorf("%s: %s", appErr.Code, appErr.Message)
		}
		return err
	}

	if jsonOut {
		return printJSON(map[string]any{
			"entity":   result.Entity,
			"id":       result.ID,
			"property": result.Property,
			"message":  result.Message,
		})
	}
	printInfo("%s\n", result.Message)
	return nil
}
