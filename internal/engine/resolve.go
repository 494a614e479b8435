package engine

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"quickedit/internal/metadata"
)

// ResolveEntityType maps a canonical name or a short alias to a registered entity.
// An exact canonical name wins without any ambiguity check. Otherwise the name
// is lowercased, stripped of hyphens and compared with every entity's
// lowercased short name; exactly one must match.
//
// The registry only admits entities that pass Validate, so InvalidEntityError
// is returned only for a registered entity whose definition was changed in
// place afterwards.
func ResolveEntityType(reg *metadata.Registry, name string) (*metadata.Entity, error) {
	entity := reg.GetEntity(name)
	if entity == nil {
		lower := cases.Lower(language.Und)
		normalized := strings.ReplaceAll(lower.String(name), "-", "")

		for _, candidate := range reg.AllEntities() {
			if lower.String(candidate.ShortName()) != normalized {
				continue
			}
			if entity != nil {
				return nil, AmbiguousEntityError(normalized, entity.Name, candidate.Name)
			}
			entity = candidate
		}
	}

	if entity == nil {
		return nil, UnknownEntityError(name)
	}
	if err := entity.Validate(); err != nil {
		return nil, InvalidEntityError(entity.Name, err)
	}
	return entity, nil
}
