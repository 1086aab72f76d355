package stub

import (
	"sort"

	"gopkg.in/yaml.v3"

	"slicestub/internal/model"
)

// Document is the serializable form of a Result, for the stub renderer.
type Document struct {
	Types        []TypeEntry        `yaml:"types,omitempty"`
	Fields       []FieldEntry       `yaml:"fields,omitempty"`
	Constructors []ConstructorEntry `yaml:"constructors,omitempty"`
	Methods      []MethodEntry      `yaml:"methods,omitempty"`
	// Annotations maps annotation FQN -> attribute -> type name.
	Annotations map[string]map[string]string `yaml:"annotations,omitempty"`
}

// TypeEntry is one planned type.
type TypeEntry struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
}

// FieldEntry is one planned field.
type FieldEntry struct {
	Owner  string `yaml:"owner"`
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Static bool   `yaml:"static,omitempty"`
}

// ConstructorEntry is one planned constructor.
type ConstructorEntry struct {
	Owner  string   `yaml:"owner"`
	Params []string `yaml:"params,omitempty"`
}

// MethodEntry is one planned method.
type MethodEntry struct {
	Owner      string   `yaml:"owner"`
	Name       string   `yaml:"name"`
	Returns    string   `yaml:"returns"`
	Params     []string `yaml:"params,omitempty"`
	Static     bool     `yaml:"static,omitempty"`
	Visibility string   `yaml:"visibility,omitempty"`
	Throws     []string `yaml:"throws,omitempty"`
	Default    bool     `yaml:"default,omitempty"`
	Varargs    bool     `yaml:"varargs,omitempty"`
}

func refStrings(refs []model.TypeRef) []string {
	if len(refs) == 0 {
		return nil
	}

	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.String()
	}

	return out
}

// Export converts a Result into its serializable document, sorted for
// deterministic output.
func Export(r *Result) *Document {
	doc := &Document{}

	for _, t := range r.Types {
		doc.Types = append(doc.Types, TypeEntry{Name: t.FQN, Kind: t.Kind.String()})
	}

	for _, f := range r.Fields {
		doc.Fields = append(doc.Fields, FieldEntry{
			Owner:  f.Owner.FQN(),
			Name:   f.Name,
			Type:   f.Type.String(),
			Static: f.Static,
		})
	}

	for _, c := range r.Constructors {
		doc.Constructors = append(doc.Constructors, ConstructorEntry{
			Owner:  c.Owner.FQN(),
			Params: refStrings(c.Params),
		})
	}

	for _, m := range r.Methods {
		doc.Methods = append(doc.Methods, MethodEntry{
			Owner:      m.Owner.FQN(),
			Name:       m.Name,
			Returns:    m.Return.String(),
			Params:     refStrings(m.Params),
			Static:     m.Static,
			Visibility: m.Visibility.String(),
			Throws:     refStrings(m.Throws),
			Default:    m.DefaultOnInterface,
			Varargs:    m.Varargs,
		})
	}

	if len(r.AnnotationAttrs) > 0 {
		doc.Annotations = r.AnnotationAttrs
	}

	// Sort for determinism.
	sort.Slice(doc.Types, func(i, j int) bool {
		return doc.Types[i].Name < doc.Types[j].Name
	})
	sort.Slice(doc.Fields, func(i, j int) bool {
		if doc.Fields[i].Owner != doc.Fields[j].Owner {
			return doc.Fields[i].Owner < doc.Fields[j].Owner
		}

		return doc.Fields[i].Name < doc.Fields[j].Name
	})
	sort.Slice(doc.Constructors, func(i, j int) bool {
		if doc.Constructors[i].Owner != doc.Constructors[j].Owner {
			return doc.Constructors[i].Owner < doc.Constructors[j].Owner
		}

		return len(doc.Constructors[i].Params) < len(doc.Constructors[j].Params)
	})
	sort.Slice(doc.Methods, func(i, j int) bool {
		if doc.Methods[i].Owner != doc.Methods[j].Owner {
			return doc.Methods[i].Owner < doc.Methods[j].Owner
		}

		if doc.Methods[i].Name != doc.Methods[j].Name {
			return doc.Methods[i].Name < doc.Methods[j].Name
		}

		return len(doc.Methods[i].Params) < len(doc.Methods[j].Params)
	})

	return doc
}

// ExportYAML renders a Result as YAML.
func ExportYAML(r *Result) ([]byte, error) {
	return yaml.Marshal(Export(r))
}
