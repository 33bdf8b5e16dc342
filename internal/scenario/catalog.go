package scenario

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed scenarios.yaml
var builtinYAML []byte

// Scenario is one role-play setting. It is static content: the core only
// reads it, never mutates it during a session.
type Scenario struct {
	ID              string `yaml:"id" json:"id"`
	Title           string `yaml:"title" json:"title"`
	AgentName       string `yaml:"agent_name" json:"agent_name"`
	UserRole        string `yaml:"user_role" json:"user_role"`
	InitialQuestion string `yaml:"initial_question" json:"initial_question"`
}

// Catalog is a read-only id → Scenario lookup preserving file order.
type Catalog struct {
	byID  map[string]Scenario
	order []string
}

// Load parses the embedded scenario catalog.
func Load() (*Catalog, error) {
	return Parse(builtinYAML)
}

// Parse builds a catalog from YAML data.
func Parse(data []byte) (*Catalog, error) {
	var doc struct {
		Scenarios []Scenario `yaml:"scenarios"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse scenario catalog: %w", err)
	}
	c := &Catalog{byID: make(map[string]Scenario, len(doc.Scenarios))}
	for _, sc := range doc.Scenarios {
		if sc.ID == "" {
			return nil, fmt.Errorf("scenario %q: missing id", sc.Title)
		}
		if _, dup := c.byID[sc.ID]; dup {
			return nil, fmt.Errorf("scenario %q: duplicate id", sc.ID)
		}
		c.byID[sc.ID] = sc
		c.order = append(c.order, sc.ID)
	}
	return c, nil
}

// Get returns the scenario for id. A missing id is a recoverable condition
// for callers (render "not found"), not an error here.
func (c *Catalog) Get(id string) (Scenario, bool) {
	sc, ok := c.byID[id]
	return sc, ok
}

// List returns all scenarios in catalog order.
func (c *Catalog) List() []Scenario {
	out := make([]Scenario, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}
