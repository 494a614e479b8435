package engine

import (
	"context"
	"fmt"

	"quickedit/internal/instrument"
	"quickedit/internal/metadata"
	"quickedit/internal/store"
)

// Options configures the edit pipeline.
type Options struct {
	Coerce CoerceOptions
	// AllowLegacyMarker accepts setters marked only by an "@editable" doc string.
	AllowLegacyMarker bool
}

// DefaultOptions accepts "1" as true and still honours legacy markers.
func DefaultOptions() Options {
	return Options{
		Coerce:            CoerceOptions{BoolAcceptsOne: true},
		AllowLegacyMarker: true,
	}
}

// ApplyEdit calls set<property> on the record with raw coerced to t.
// The setter must exist, carry an editable marker and take exactly one
// argument; those checks run before the value is coerced. Every failure is
// returned as an ApplyFailedError naming the entity and identifier.
func ApplyEdit(ctx context.Context, rec *store.Record, property string, t ValueType, raw string, opts Options) error {
	if err := applyEdit(ctx, rec, property, t, raw, opts); err != nil {
		return ApplyFailedError(rec.Entity.Name, rec.ID, err)
	}
	return nil
}

func applyEdit(ctx context.Context, rec *store.Record, property string, t ValueType, raw string, opts Options) error {
	name := "set" + property
	setter := rec.Entity.Setter(name)
	if setter == nil {
		return SetterMissingError(name)
	}

	switch setter.Marker {
	case metadata.MarkerAttribute:
	case metadata.MarkerLegacyDoc:
		if !opts.AllowLegacyMarker {
			return NotEditableError(name)
		}
		instrument.Logf(ctx, "DEPRECATED: marker \"@editable\" on %s.%s, declare \"editable\": true instead",
			rec.Entity.Name, name)
	default:
		return NotEditableError(name)
	}

	if arity := setter.Arity(); arity != 1 {
		return ArityMismatchError(name, arity)
	}

	value := CoerceValue(t, raw, opts.Coerce)
	return invoke(setter, rec, value)
}

// invoke turns a panicking setter into an ordinary error.
func invoke(setter *metadata.Setter, rec metadata.Mutable, value any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("setter %s panicked: %v", setter.Name, r)
		}
	}()
	return setter.Invoke(rec, []any{value})
}
