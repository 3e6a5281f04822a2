// Package searchconfig maps public search language names to the PostgreSQL
// text search configurations they select. The registry ships embedded so the
// set of accepted languages is fixed at build time.
package searchconfig

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Language describes one text search configuration
type Language struct {
	Name      string   `yaml:"name"`
	Regconfig string   `yaml:"regconfig"`
	Aliases   []string `yaml:"aliases"`
}

type registryFile struct {
	Default   string     `yaml:"default"`
	Languages []Language `yaml:"languages"`
}

// Registry resolves language names and aliases to regconfig values
type Registry struct {
	mu        sync.RWMutex
	byName    map[string]*Language
	ordered   []Language
	defaultLg string
}

// NewRegistry loads the embedded language registry
func NewRegistry() (*Registry, error) {
	data, err := configFiles.ReadFile("config/languages.yaml")
	if err != nil {
		return nil, fmt.Errorf("read language registry: %w", err)
	}

	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshal language registry: %w", err)
	}

	r := &Registry{
		byName:    make(map[string]*Language),
		ordered:   file.Languages,
		defaultLg: file.Default,
	}
	for i := range r.ordered {
		lang := &r.ordered[i]
		r.byName[lang.Name] = lang
		for _, alias := range lang.Aliases {
			r.byName[alias] = lang
		}
	}

	if _, ok := r.byName[r.defaultLg]; !ok {
		return nil, fmt.Errorf("default language %q not in registry", r.defaultLg)
	}

	return r, nil
}

// Default returns the default language name
func (r *Registry) Default() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultLg
}

// Resolve maps a language name or alias to its regconfig. Unknown names are
// an error so user input never reaches the to_tsvector call unchecked.
func (r *Registry) Resolve(name string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name == "" {
		name = r.defaultLg
	}
	lang, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("unsupported search language: %q", name)
	}
	return lang.Regconfig, nil
}

// List returns the languages in registry order
func (r *Registry) List() []Language {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Language{}, r.ordered...)
}
