package store

import (
	"fmt"

	"quickedit/internal/metadata"
)

// Record is one fetched row of an entity. It tracks which fields were set
// since it was loaded so a flush only writes those columns.
type Record struct {
	Entity *metadata.Entity
	ID     string

	values  map[string]any
	changed []string
}

// NewRecord wraps values loaded for entity. Sessions call it on Find.
func NewRecord(entity *metadata.Entity, id string, values map[string]any) *Record {
	return &Record{Entity: entity, ID: id, values: values}
}

// Get returns the current value of a field.
func (r *Record) Get(field string) any {
	return r.values[field]
}

// Set assigns a field and marks it for the next flush.
func (r *Record) Set(field string, value any) error {
	if !r.Entity.HasField(field) {
		return fmt.Errorf("entity %s has no field %s", r.Entity.Name, field)
	}
	if field == r.Entity.PrimaryKey.Field {
		return fmt.Errorf("primary key %s of %s cannot be changed", field, r.Entity.Name)
	}
	if _, seen := r.pending()[field]; !seen {
		r.changed = append(r.changed, field)
	}
	r.values[field] = value
	return nil
}

// Values returns the record's field values. Callers must not modify the map.
func (r *Record) Values() map[string]any {
	return r.values
}

// Changed returns the fields set since the record was loaded, in order.
func (r *Record) Changed() []string {
	return r.changed
}

// IsDirty reports whether the record has unflushed changes.
func (r *Record) IsDirty() bool {
	return len(r.changed) > 0
}

func (r *Record) pending() map[string]struct{} {
	set := make(map[string]struct{}, len(r.changed))
	for _, f := range r.changed {
		set[f] = struct{}{}
	}
	return set
}

func (r *Record) clean() {
	r.changed = nil
}
