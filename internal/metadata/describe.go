package metadata

// EntitySummary is the listing view of an entity: what can be quick-edited
// and how each setter opted in.
type EntitySummary struct {
	Name      string          `json:"name"`
	ShortName string          `json:"short_name"`
	Table     string          `json:"table"`
	Setters   []SetterSummary `json:"setters"`
}

type SetterSummary struct {
	Name     string `json:"name"`
	Field    string `json:"field"`
	Arity    int    `json:"arity"`
	Marker   string `json:"marker"`
	Editable bool   `json:"editable"`
	Bound    bool   `json:"bound"`
}

// Summary describes the entity's setters in declaration order. A setter is
// editable when it carries a marker and takes exactly one argument.
func (e *Entity) Summary() EntitySummary {
	sum := EntitySummary{
		Name:      e.Name,
		ShortName: e.ShortName(),
		Table:     e.Table,
		Setters:   make([]SetterSummary, 0, len(e.Setters)),
	}
	for i := range e.Setters {
		s := &e.Setters[i]
		sum.Setters = append(sum.Setters, SetterSummary{
			Name:     s.Name,
			Field:    s.Field,
			Arity:    s.Arity(),
			Marker:   s.Marker.String(),
			Editable: s.Marker != MarkerNone && s.Arity() == 1,
			Bound:    s.Func != nil,
		})
	}
	return sum
}
