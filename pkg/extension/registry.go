// Package extension merges enabled extensions into a module's resolution.
//
// An extension is a registered [Descriptor]: an id, the artifact whose
// dependency tree it contributes, and extra filter patterns. When a module
// enables extensions, [Merger.Merge] resolves every known extension's tree,
// unions its pattern strings into the module's patterns, and returns the
// trees so the classpath resolver can fold them in as shared dependencies.
//
// Extension problems are never fatal. Unknown ids, extensions meant for a
// different module, extensions without a dependency and trees that fail to
// resolve are logged and skipped.
package extension

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stackbundle/pkg/classpath"
	"github.com/matzehuels/stackbundle/pkg/deps"
	"github.com/matzehuels/stackbundle/pkg/errors"
)

// Descriptor describes one extension.
type Descriptor struct {
	ID string
	// Extends restricts the extension to one module id. Empty means any
	// module may enable it.
	Extends    string
	Dependency *deps.Identity
	Patterns   classpath.Patterns
}

// Registry maintains known extensions.
type Registry struct {
	mu          sync.RWMutex
	descriptors map[string]Descriptor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{descriptors: map[string]Descriptor{}}
}

// Register adds a descriptor. Returns an error if the id is invalid or
// already registered.
func (r *Registry) Register(d Descriptor) error {
	if err := errors.ValidateModuleID(d.ID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.descriptors[d.ID]; exists {
		return fmt.Errorf("extension: %s already registered", d.ID)
	}
	r.descriptors[d.ID] = d
	return nil
}

// MustRegister panics if registration fails.
func (r *Registry) MustRegister(d Descriptor) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

// Lookup returns the descriptor registered under id.
func (r *Registry) Lookup(id string) (Descriptor, bool) {
	if r == nil {
		return Descriptor{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.descriptors[id]
	return d, ok
}

// IDs returns a sorted list of registered extension ids.
func (r *Registry) IDs() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.descriptors))
	for id := range r.descriptors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// registryFile is the on-disk form read by LoadRegistry:
//
//	[[extension]]
//	id = "kafka"
//	extends = "orders-service"
//	dependency = "org.apache.kafka:kafka-clients:3.6.0"
//	share = ["org.apache.kafka"]
type registryFile struct {
	Extensions []struct {
		ID              string   `toml:"id"`
		Extends         string   `toml:"extends"`
		Dependency      string   `toml:"dependency"`
		Share           []string `toml:"share"`
		RequireBundle   []string `toml:"require_bundle"`
		ExcludePackage  []string `toml:"exclude_package"`
		ExcludeOptional []string `toml:"exclude_optional"`
	} `toml:"extension"`
}

// LoadRegistry reads extension descriptors from a TOML file.
func LoadRegistry(path string) (*Registry, error) {
	var f registryFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "extension registry %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parsing extension registry %s", path)
	}

	r := NewRegistry()
	for i, e := range f.Extensions {
		d := Descriptor{
			ID:      e.ID,
			Extends: e.Extends,
			Patterns: classpath.Patterns{}.Merge(classpath.Patterns{
				Share:           e.Share,
				RequireBundle:   e.RequireBundle,
				ExcludePackage:  e.ExcludePackage,
				ExcludeOptional: e.ExcludeOptional,
			}),
		}
		if e.Dependency != "" {
			id, err := deps.ParseIdentity(e.Dependency)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "extension[%d] %s: dependency", i, e.ID)
			}
			d.Dependency = &id
		}
		if err := r.Register(d); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "extension[%d]", i)
		}
	}
	return r, nil
}
