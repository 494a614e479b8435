package metadata

import (
	"fmt"
	"log"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// LoadFile reads entity definitions from a YAML or JSON file with a
// top-level "entities" list and populates the registry.
func LoadFile(path string, reg *Registry) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read metadata file: %w", err)
	}

	entities, err := decodeEntities(v)
	if err != nil {
		return err
	}
	reg.Load(entities)

	log.Printf("Loaded %d entities from %s", reg.Len(), path)
	return nil
}

// WatchFile loads the file and reloads the registry whenever it changes.
// A reload that fails to decode keeps the previous registry contents.
func WatchFile(path string, reg *Registry) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read metadata file: %w", err)
	}

	entities, err := decodeEntities(v)
	if err != nil {
		return err
	}
	reg.Load(entities)

	v.OnConfigChange(func(e fsnotify.Event) {
		entities, err := decodeEntities(v)
		if err != nil {
			log.Printf("WARN: metadata reload from %s: %v", e.Name, err)
			return
		}
		reg.Load(entities)
		log.Printf("Reloaded %d entities from %s", reg.Len(), e.Name)
	})
	v.WatchConfig()
	return nil
}

func decodeEntities(v *viper.Viper) ([]*Entity, error) {
	var entities []*Entity
	err := v.UnmarshalKey("entities", &entities, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "json"
	})
	if err != nil {
		return nil, fmt.Errorf("decode entities: %w", err)
	}
	return entities, nil
}
