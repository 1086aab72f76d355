package oracle

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Index is a secondary source of truth over types excluded from the slice:
// their supertype chains and which members they declare. It is consulted
// only when the program model cannot resolve an implicit-receiver reference.
type Index struct {
	// Types maps a type FQN to its description.
	Types map[string]TypeEntry `yaml:"types"`
}

// TypeEntry describes one out-of-slice type.
type TypeEntry struct {
	// Superclass is the FQN of the direct superclass, if known.
	Superclass string `yaml:"superclass,omitempty"`
	// Interfaces lists implemented interface FQNs.
	Interfaces []string `yaml:"interfaces,omitempty"`
	// Fields lists declared field names.
	Fields []string `yaml:"fields,omitempty"`
	// Methods lists declared method shapes.
	Methods []MethodEntry `yaml:"methods,omitempty"`
}

// MethodEntry describes one declared method by name and parameter shape.
type MethodEntry struct {
	Name string `yaml:"name"`
	// Params lists parameter type simple names. Arity queries compare
	// against its length.
	Params []string `yaml:"params,omitempty"`
}

// LoadFile loads and parses a YAML context index from the given path.
func LoadFile(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read context index %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into an Index.
func Parse(data []byte) (*Index, error) {
	var idx Index

	if err := yaml.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("failed to parse context index YAML: %w", err)
	}

	if idx.Types == nil {
		idx.Types = map[string]TypeEntry{}
	}

	return &idx, nil
}

// Knows reports whether the index describes the type.
func (x *Index) Knows(fqn string) bool {
	if x == nil {
		return false
	}

	_, ok := x.Types[fqn]

	return ok
}

// Supertypes returns the direct superclass (possibly "") and interface FQNs
// for a type, with ok=false when the type is not in the index.
func (x *Index) Supertypes(fqn string) (super string, interfaces []string, ok bool) {
	if x == nil {
		return "", nil, false
	}

	entry, found := x.Types[fqn]
	if !found {
		return "", nil, false
	}

	return entry.Superclass, entry.Interfaces, true
}

// HasField reports whether the type declares a field with the given name.
func (x *Index) HasField(fqn, name string) bool {
	if x == nil {
		return false
	}

	entry, found := x.Types[fqn]
	if !found {
		return false
	}

	for _, f := range entry.Fields {
		if f == name {
			return true
		}
	}

	return false
}

// HasMethod reports whether the type declares a method with the given name
// and arity.
func (x *Index) HasMethod(fqn, name string, arity int) bool {
	if x == nil {
		return false
	}

	entry, found := x.Types[fqn]
	if !found {
		return false
	}

	for _, m := range entry.Methods {
		if m.Name == name && len(m.Params) == arity {
			return true
		}
	}

	return false
}

// HasMethodNamed reports whether the type declares any method with the name.
func (x *Index) HasMethodNamed(fqn, name string) bool {
	if x == nil {
		return false
	}

	entry, found := x.Types[fqn]
	if !found {
		return false
	}

	for _, m := range entry.Methods {
		if m.Name == name {
			return true
		}
	}

	return false
}
