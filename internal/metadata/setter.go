package metadata

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Marker records how a setter opted in to external edits.
type Marker int

const (
	MarkerNone Marker = iota
	// MarkerAttribute is the structured form: "editable": true.
	MarkerAttribute
	// MarkerLegacyDoc is a doc string containing "@editable". Deprecated.
	MarkerLegacyDoc
)

const legacyEditableToken = "@editable"

func (m Marker) String() string {
	switch m {
	case MarkerAttribute:
		return "attribute"
	case MarkerLegacyDoc:
		return "legacy-doc"
	default:
		return "none"
	}
}

// Mutable is the view of a record that setters operate on.
type Mutable interface {
	Get(field string) any
	Set(field string, value any) error
	Values() map[string]any
}

// SetterFunc is a Go implementation bound to a declared setter.
type SetterFunc func(rec Mutable, args []any) error

type Param struct {
	Name string `json:"name"`
	Type string `json:"type"` // string, int, float, bool, any
}

// Setter is the registry entry for one set<Property> method of an entity.
type Setter struct {
	Name     string  `json:"name"`
	Field    string  `json:"field,omitempty"`
	Params   []Param `json:"params"`
	Editable bool    `json:"editable,omitempty"`
	Doc      string  `json:"doc,omitempty"`
	Assert   string  `json:"assert,omitempty"`
	Message  string  `json:"message,omitempty"`

	Marker Marker     `json:"-"`
	Func   SetterFunc `json:"-"`

	program *vm.Program
}

// Arity returns the number of declared parameters.
func (s *Setter) Arity() int {
	return len(s.Params)
}

// Invoke calls the bound function, or assigns the single argument to the
// setter's field after checking its type and assertion.
func (s *Setter) Invoke(rec Mutable, args []any) error {
	if s.Func != nil {
		return s.Func(rec, args)
	}
	if len(args) != 1 || len(s.Params) != 1 {
		return fmt.Errorf("setter %s takes exactly one argument, %d given", s.Name, len(args))
	}

	value, err := s.Params[0].accept(s.Name, args[0])
	if err != nil {
		return err
	}

	if s.program != nil {
		ok, err := s.check(rec, value)
		if err != nil {
			return err
		}
		if !ok {
			if s.Message != "" {
				return errors.New(s.Message)
			}
			return fmt.Errorf("value rejected by %s (%s)", s.Name, s.Assert)
		}
	}

	return rec.Set(s.Field, value)
}

func (s *Setter) check(rec Mutable, value any) (bool, error) {
	env := map[string]any{
		"value":  value,
		"record": rec.Values(),
	}
	result, err := expr.Run(s.program, env)
	if err != nil {
		return false, fmt.Errorf("evaluate assertion of %s: %w", s.Name, err)
	}
	ok, isBool := result.(bool)
	if !isBool {
		return false, fmt.Errorf("assertion of %s did not return bool", s.Name)
	}
	return ok, nil
}

func (s *Setter) prepare() error {
	if !strings.HasPrefix(s.Name, "set") || len(s.Name) == len("set") {
		return fmt.Errorf("setter name %q must be set<Property>", s.Name)
	}

	switch {
	case s.Editable:
		s.Marker = MarkerAttribute
	case strings.Contains(s.Doc, legacyEditableToken):
		s.Marker = MarkerLegacyDoc
	default:
		s.Marker = MarkerNone
	}

	if s.Field == "" {
		s.Field = snakeCase(strings.TrimPrefix(s.Name, "set"))
	}
	if s.Assert != "" {
		prog, err := expr.Compile(s.Assert, expr.AsBool())
		if err != nil {
			return fmt.Errorf("compile assertion of %s: %w", s.Name, err)
		}
		s.program = prog
	}
	return nil
}

// accept checks v against the parameter type. Integers widen to float.
func (p Param) accept(setter string, v any) (any, error) {
	switch p.Type {
	case "string", "text":
		if s, ok := v.(string); ok {
			return s, nil
		}
	case "int", "integer":
		switch n := v.(type) {
		case int64:
			return n, nil
		case int:
			return int64(n), nil
		}
	case "float":
		switch n := v.(type) {
		case float64:
			return n, nil
		case int64:
			return float64(n), nil
		case int:
			return float64(n), nil
		}
	case "bool", "boolean":
		if b, ok := v.(bool); ok {
			return b, nil
		}
	default:
		return v, nil
	}
	return nil, fmt.Errorf("argument %q of %s must be of type %s, %s given", p.Name, setter, p.Type, typeName(v))
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case int, int64:
		return "int"
	case float64:
		return "float"
	case bool:
		return "bool"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// snakeCase turns "PublishedAt" into "published_at" and "HTMLTitle" into
// "html_title".
func snakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
