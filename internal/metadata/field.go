package metadata

type Field struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable,omitempty"`
	Auto     string `json:"auto,omitempty"` // "create" or "update"
}

// IsAuto returns true if the field is auto-managed by the store.
func (f Field) IsAuto() bool {
	return f.Auto == "create" || f.Auto == "update"
}

// IsBool returns true for boolean columns, which SQLite hands back as integers.
func (f Field) IsBool() bool {
	return f.Type == "boolean" || f.Type == "bool"
}
