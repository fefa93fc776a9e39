// Package capability holds the catalog of remote capabilities (MCP servers)
// and the named sets a request can declare.
package capability

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

var (
	ErrUnknownCapability = errors.New("unknown capability")
	ErrUnknownSet        = errors.New("unknown capability set")
)

// Capability is one remote tool server the service can be told to use.
type Capability struct {
	Name               string `yaml:"name" json:"name"`
	URL                string `yaml:"url" json:"url"`
	Description        string `yaml:"description,omitempty" json:"description,omitempty"`
	AuthorizationToken string `yaml:"authorization_token,omitempty" json:"-"`
}

// Set is a named group of capabilities.
type Set struct {
	Name         string   `yaml:"name" json:"name"`
	Description  string   `yaml:"description,omitempty" json:"description,omitempty"`
	Capabilities []string `yaml:"capabilities" json:"capabilities"`
}

// Catalog is read once at startup and treated as read-only afterwards,
// apart from endpoint overrides applied during configuration.
type Catalog struct {
	Capabilities []Capability `yaml:"capabilities" json:"capabilities"`
	Sets         []Set        `yaml:"sets" json:"sets"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog file. An empty path yields the embedded default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	cat, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return cat, nil
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := cat.validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (c *Catalog) validate() error {
	seen := make(map[string]bool, len(c.Capabilities))
	for _, cp := range c.Capabilities {
		if cp.Name == "" {
			return fmt.Errorf("capability with empty name")
		}
		if cp.URL == "" {
			return fmt.Errorf("capability %q has no url", cp.Name)
		}
		if seen[cp.Name] {
			return fmt.Errorf("duplicate capability %q", cp.Name)
		}
		seen[cp.Name] = true
	}
	sets := make(map[string]bool, len(c.Sets))
	for _, s := range c.Sets {
		if sets[s.Name] {
			return fmt.Errorf("duplicate set %q", s.Name)
		}
		sets[s.Name] = true
		for _, name := range s.Capabilities {
			if !seen[name] {
				return fmt.Errorf("set %q: %w: %s", s.Name, ErrUnknownCapability, name)
			}
		}
	}
	return nil
}

// Lookup finds a capability by name.
func (c *Catalog) Lookup(name string) (Capability, error) {
	for _, cp := range c.Capabilities {
		if cp.Name == name {
			return cp, nil
		}
	}
	return Capability{}, fmt.Errorf("%w: %s", ErrUnknownCapability, name)
}

// Resolve expands a set name into its capabilities, in declaration order.
func (c *Catalog) Resolve(set string) ([]Capability, error) {
	for _, s := range c.Sets {
		if s.Name != set {
			continue
		}
		out := make([]Capability, 0, len(s.Capabilities))
		for _, name := range s.Capabilities {
			cp, err := c.Lookup(name)
			if err != nil {
				return nil, err
			}
			out = append(out, cp)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownSet, set)
}

// SetURL replaces the endpoint of a capability. Empty urls are ignored.
func (c *Catalog) SetURL(name, url string) error {
	if url == "" {
		return nil
	}
	for i := range c.Capabilities {
		if c.Capabilities[i].Name == name {
			c.Capabilities[i].URL = url
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownCapability, name)
}
