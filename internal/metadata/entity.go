package metadata

import (
	"fmt"
	"strings"
)

type Entity struct {
	Name       string     `json:"name"` // canonical name, e.g. "content.Article"
	Table      string     `json:"table"`
	PrimaryKey PrimaryKey `json:"primary_key"`
	SoftDelete bool       `json:"soft_delete"`
	Fields     []Field    `json:"fields"`
	Setters    []Setter   `json:"setters,omitempty"`
}

type PrimaryKey struct {
	Field string `json:"field"`
	Type  string `json:"type"` // uuid, int, bigint, string
}

// ShortName returns the last segment of the canonical name.
func (e *Entity) ShortName() string {
	if i := strings.LastIndexAny(e.Name, `./\`); i >= 0 {
		return e.Name[i+1:]
	}
	return e.Name
}

// Validate reports whether the entity describes a persisted type.
func (e *Entity) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("entity name is required")
	}
	if e.Table == "" {
		return fmt.Errorf("entity %s has no table", e.Name)
	}
	if e.PrimaryKey.Field == "" {
		return fmt.Errorf("entity %s has no primary key", e.Name)
	}
	return nil
}

// GetField returns a pointer to the field with the given name, or nil.
func (e *Entity) GetField(name string) *Field {
	for i := range e.Fields {
		if e.Fields[i].Name == name {
			return &e.Fields[i]
		}
	}
	return nil
}

// HasField returns true if the entity has a field with the given name.
func (e *Entity) HasField(name string) bool {
	return e.GetField(name) != nil
}

// FieldNames returns all field names, primary key first.
func (e *Entity) FieldNames() []string {
	names := make([]string, 0, len(e.Fields)+1)
	if !e.HasField(e.PrimaryKey.Field) {
		names = append(names, e.PrimaryKey.Field)
	}
	for _, f := range e.Fields {
		names = append(names, f.Name)
	}
	return names
}

// BoolFields returns the names of boolean fields.
func (e *Entity) BoolFields() []string {
	var names []string
	for _, f := range e.Fields {
		if f.IsBool() {
			names = append(names, f.Name)
		}
	}
	return names
}

// AutoUpdateFields returns fields stamped by the store on every flush.
func (e *Entity) AutoUpdateFields() []Field {
	var fields []Field
	for _, f := range e.Fields {
		if f.Auto == "update" {
			fields = append(fields, f)
		}
	}
	return fields
}

// Setter returns the declared setter with the given name, or nil. An exact
// match wins; otherwise names are compared case-insensitively, so "settitle"
// finds setTitle.
func (e *Entity) Setter(name string) *Setter {
	var folded *Setter
	for i := range e.Setters {
		if e.Setters[i].Name == name {
			return &e.Setters[i]
		}
		if folded == nil && strings.EqualFold(e.Setters[i].Name, name) {
			folded = &e.Setters[i]
		}
	}
	return folded
}

// Prepare validates the entity and resolves every setter declaration.
func (e *Entity) Prepare() error {
	if err := e.Validate(); err != nil {
		return err
	}
	seen := make(map[string]bool, len(e.Setters))
	for i := range e.Setters {
		s := &e.Setters[i]
		key := strings.ToLower(s.Name)
		if seen[key] {
			return fmt.Errorf("entity %s declares setter %s twice", e.Name, s.Name)
		}
		seen[key] = true
		if err := s.prepare(); err != nil {
			return fmt.Errorf("entity %s: %w", e.Name, err)
		}
		// Unbound setters assign straight to a column.
		if s.Func == nil {
			if s.Field == e.PrimaryKey.Field {
				return fmt.Errorf("entity %s: setter %s targets the primary key", e.Name, s.Name)
			}
			if !e.HasField(s.Field) {
				return fmt.Errorf("entity %s: setter %s targets undeclared field %q", e.Name, s.Name, s.Field)
			}
		}
	}
	return nil
}
