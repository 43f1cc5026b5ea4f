// Package conditions implements the condition/threshold tracker: named
// non-negative ratings on actors, their check modifiers, and the
// multiple-of-N threshold triggers that chain into secondary quarrels.
package conditions

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultDefs []byte

// Definition is the static definition of one condition type.
type Definition struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// CheckModifier is the flat percentage applied to relevant checks per
	// rating point (e.g. -10 for pain: -10% per rating).
	CheckModifier int `yaml:"check_modifier"`
	// SelfModifier / AttackerModifier are used by stance-like conditions
	// (prone): applied to the bearer's own checks and to checks made
	// against the bearer, independent of rating.
	SelfModifier     int `yaml:"self_modifier"`
	AttackerModifier int `yaml:"attacker_modifier"`
	// Threshold is the multiple-of-N boundary that schedules a secondary
	// quarrel when crossed on increase; 0 means no threshold behavior.
	Threshold int `yaml:"threshold"`
	// ThresholdSkill is the skill rolled for the triggered quarrel.
	ThresholdSkill string `yaml:"threshold_skill"`
	// Grants is the item type granted when the triggered quarrel fails.
	Grants string `yaml:"grants"`
}

// Registry holds all known condition Definitions keyed by ID.
type Registry struct {
	defs map[string]*Definition
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// Register adds def to the registry, overwriting any existing entry.
//
// Precondition: def must not be nil and def.ID must not be empty.
func (r *Registry) Register(def *Definition) {
	r.defs[def.ID] = def
}

// Get returns the Definition for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*Definition, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// All returns a snapshot slice of all registered Definitions.
func (r *Registry) All() []*Definition {
	out := make([]*Definition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	return out
}

// DefaultRegistry returns a Registry populated from the embedded
// condition definitions.
//
// Postcondition: returns a non-nil Registry with every built-in condition.
func DefaultRegistry() *Registry {
	reg, err := parseDefinitions(defaultDefs)
	if err != nil {
		// The embedded data is part of the build; failing to parse it is
		// a programming error, not a runtime condition.
		panic("conditions: embedded defaults are invalid: " + err.Error())
	}
	return reg
}

// LoadDirectory reads every *.yaml file in dir and merges the definitions
// over the embedded defaults, so a host can override or extend them.
//
// Precondition: dir must be a readable directory.
func LoadDirectory(dir string) (*Registry, error) {
	reg := DefaultRegistry()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading condition dir %q: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		overlay, err := parseDefinitions(data)
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		for _, def := range overlay.All() {
			reg.Register(def)
		}
	}
	return reg, nil
}

func parseDefinitions(data []byte) (*Registry, error) {
	var defs []*Definition
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&defs); err != nil {
		return nil, err
	}
	reg := NewRegistry()
	for _, def := range defs {
		if def.ID == "" {
			return nil, fmt.Errorf("condition definition missing id")
		}
		reg.Register(def)
	}
	return reg, nil
}
