package metadata

import (
	"fmt"
	"log"
	"sort"
	"sync"
)

type Registry struct {
	mu       sync.RWMutex
	entities map[string]*Entity
	bindings map[string]map[string]SetterFunc // entity name -> setter name -> func
}

func NewRegistry() *Registry {
	return &Registry{
		entities: make(map[string]*Entity),
		bindings: make(map[string]map[string]SetterFunc),
	}
}

// GetEntity returns the entity with the given canonical name, or nil.
func (r *Registry) GetEntity(name string) *Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entities[name]
}

// AllEntities returns all registered entities sorted by canonical name.
func (r *Registry) AllEntities() []*Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entities := make([]*Entity, 0, len(r.entities))
	for _, e := range r.entities {
		entities = append(entities, e)
	}
	sort.Slice(entities, func(i, j int) bool {
		return entities[i].Name < entities[j].Name
	})
	return entities
}

// Len returns the number of registered entities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entities)
}

// Load replaces all entities in the registry.
// Called during startup and whenever the metadata source changes.
// Entities with an invalid definition are skipped.
func (r *Registry) Load(entities []*Entity) {
	prepared := make(map[string]*Entity, len(entities))
	for _, e := range entities {
		if err := e.Prepare(); err != nil {
			log.Printf("WARN: skipping entity %s: %v", e.Name, err)
			continue
		}
		prepared[e.Name] = e
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entities = prepared
	for name, e := range r.entities {
		r.attach(name, e)
	}
}

// Register adds or replaces a single entity.
func (r *Registry) Register(e *Entity) error {
	if err := e.Prepare(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entities[e.Name] = e
	r.attach(e.Name, e)
	return nil
}

// BindSetter attaches a Go implementation to a declared setter. Bindings
// survive reloads.
func (r *Registry) BindSetter(entityName, setterName string, fn SetterFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bindings[entityName] == nil {
		r.bindings[entityName] = make(map[string]SetterFunc)
	}
	r.bindings[entityName][setterName] = fn

	e := r.entities[entityName]
	if e == nil {
		return nil
	}
	s := e.Setter(setterName)
	if s == nil {
		return fmt.Errorf("entity %s does not declare setter %s", entityName, setterName)
	}
	s.Func = fn
	return nil
}

func (r *Registry) attach(name string, e *Entity) {
	for setterName, fn := range r.bindings[name] {
		if s := e.Setter(setterName); s != nil {
			s.Func = fn
		}
	}
}
