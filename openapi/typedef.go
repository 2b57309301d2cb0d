package openapi

import "fmt"

// RefResolver resolves a named type to its component schema reference.
type RefResolver interface {
	Ref(t NamedType) (string, error)
}

// Type describes the shape of a field value. Each variant renders its own
// schema fragment and reports the types nested directly inside it, so that
// named types can be collected and deduplicated before rendering.
type Type interface {
	// Schema renders the fragment for the type. Named types render as $ref.
	Schema(refs RefResolver) (*Schema, error)
	// Children returns the types referenced directly by this type.
	Children() []Type
}

// NamedType is a type emitted once under components.schemas and referenced
// everywhere else.
type NamedType interface {
	Type
	// Identity is the deduplication key. Two named types with the same
	// identity are the same definition.
	Identity() TypeID
	// Definition renders the component schema body.
	Definition(refs RefResolver) (*Schema, error)
}

// TypeID identifies a named type. Scope qualifies the name, for example
// with the defining package, and is used to disambiguate name collisions.
type TypeID struct {
	Scope string
	Name  string
}

func (id TypeID) String() string {
	if id.Scope == "" {
		return id.Name
	}
	return id.Scope + "." + id.Name
}

// Primitive is a scalar JSON type with an optional format.
//
// See: https://spec.openapis.org/oas/v3.0.3#data-types
type Primitive struct {
	Type   string
	Format string
}

// Common primitives.
var (
	String   = Primitive{Type: "string"}
	Integer  = Primitive{Type: "integer"}
	Number   = Primitive{Type: "number"}
	Boolean  = Primitive{Type: "boolean"}
	DateTime = Primitive{Type: "string", Format: "date-time"}
	Binary   = Primitive{Type: "string", Format: "binary"}
	// Any accepts any value and renders an empty schema.
	Any = Primitive{}
)

func (p Primitive) Schema(RefResolver) (*Schema, error) {
	return &Schema{Type: p.Type, Format: p.Format}, nil
}

func (p Primitive) Children() []Type { return nil }

// Array is a list of Items.
type Array struct {
	Items Type
}

func (a Array) Schema(refs RefResolver) (*Schema, error) {
	if a.Items == nil {
		return nil, fmt.Errorf("array without item type")
	}
	items, err := a.Items.Schema(refs)
	if err != nil {
		return nil, err
	}
	return &Schema{Type: "array", Items: items}, nil
}

func (a Array) Children() []Type { return []Type{a.Items} }

// Map is an object with string keys and Values.
type Map struct {
	Values Type
}

func (m Map) Schema(refs RefResolver) (*Schema, error) {
	if m.Values == nil {
		return &Schema{Type: "object"}, nil
	}
	values, err := m.Values.Schema(refs)
	if err != nil {
		return nil, err
	}
	return &Schema{Type: "object", AdditionalProperties: values}, nil
}

func (m Map) Children() []Type { return []Type{m.Values} }

// Optional marks Elem as nullable.
type Optional struct {
	Elem Type
}

// Schema marks the fragment nullable. A $ref cannot carry siblings in
// OpenAPI 3.0, so references are wrapped in allOf.
func (o Optional) Schema(refs RefResolver) (*Schema, error) {
	if o.Elem == nil {
		return nil, fmt.Errorf("optional without element type")
	}
	inner, err := o.Elem.Schema(refs)
	if err != nil {
		return nil, err
	}
	if inner.Ref != "" {
		return &Schema{AllOf: []*Schema{inner}, Nullable: true}, nil
	}
	inner.Nullable = true
	return inner, nil
}

func (o Optional) Children() []Type { return []Type{o.Elem} }

// Constrained adds validation keywords to an inline Elem. Constraints on a
// named type are applied next to an allOf reference.
type Constrained struct {
	Elem Type

	Format      string
	Minimum     *float64
	Maximum     *float64
	MinLength   *int
	MaxLength   *int
	Pattern     string
	MinItems    *int
	MaxItems    *int
	UniqueItems bool
	Enum        []any
}

func (c Constrained) Schema(refs RefResolver) (*Schema, error) {
	if c.Elem == nil {
		return nil, fmt.Errorf("constraints without element type")
	}
	s, err := c.Elem.Schema(refs)
	if err != nil {
		return nil, err
	}
	if s.Ref != "" {
		s = &Schema{AllOf: []*Schema{s}}
	}
	if c.Format != "" {
		s.Format = c.Format
	}
	if c.Minimum != nil {
		s.Minimum = c.Minimum
	}
	if c.Maximum != nil {
		s.Maximum = c.Maximum
	}
	if c.MinLength != nil {
		s.MinLength = c.MinLength
	}
	if c.MaxLength != nil {
		s.MaxLength = c.MaxLength
	}
	if c.Pattern != "" {
		s.Pattern = c.Pattern
	}
	if c.MinItems != nil {
		s.MinItems = c.MinItems
	}
	if c.MaxItems != nil {
		s.MaxItems = c.MaxItems
	}
	s.UniqueItems = s.UniqueItems || c.UniqueItems
	if len(c.Enum) > 0 {
		s.Enum = append([]any(nil), c.Enum...)
	}
	return s, nil
}

func (c Constrained) Children() []Type { return []Type{c.Elem} }

// Enum is a named enumeration of scalar values of one JSON type.
type Enum struct {
	Name        string
	Scope       string
	Description string
	// Type is the JSON type of the values (default "string").
	Type   string
	Values []any
}

func (e *Enum) Identity() TypeID { return TypeID{Scope: e.Scope, Name: e.Name} }

func (e *Enum) Schema(refs RefResolver) (*Schema, error) { return refSchema(refs, e) }

func (e *Enum) Children() []Type { return nil }

// Definition renders the enum as {title, description, type, enum}. Values
// keep declaration order.
func (e *Enum) Definition(RefResolver) (*Schema, error) {
	typ := e.Type
	if typ == "" {
		typ = "string"
	}
	values := make([]any, len(e.Values))
	copy(values, e.Values)
	return &Schema{
		Title:       e.Name,
		Description: e.Description,
		Type:        typ,
		Enum:        values,
	}, nil
}

// Property is one property of a Model.
type Property struct {
	Name        string
	Type        Type
	Required    bool
	Title       string
	Description string
	Default     any
	Example     any
	Deprecated  bool
	ReadOnly    bool
	WriteOnly   bool
}

// Model is a named composite type rendered as an object schema.
type Model struct {
	Name        string
	Scope       string
	Description string
	Properties  []*Property
	Example     any
}

func (m *Model) Identity() TypeID { return TypeID{Scope: m.Scope, Name: m.Name} }

func (m *Model) Schema(refs RefResolver) (*Schema, error) { return refSchema(refs, m) }

func (m *Model) Children() []Type {
	children := make([]Type, 0, len(m.Properties))
	for _, p := range m.Properties {
		children = append(children, p.Type)
	}
	return children
}

// Definition renders the model as an object schema. The required list
// follows property declaration order.
func (m *Model) Definition(refs RefResolver) (*Schema, error) {
	schema := &Schema{
		Title:       m.Name,
		Description: m.Description,
		Type:        "object",
		Example:     m.Example,
	}
	for _, p := range m.Properties {
		if p.Type == nil {
			return nil, fmt.Errorf("property %q of %s has no type", p.Name, m.Identity())
		}
		ps, err := p.Type.Schema(refs)
		if err != nil {
			return nil, fmt.Errorf("property %q of %s: %w", p.Name, m.Identity(), err)
		}
		ps = annotate(ps, annotation{
			title:       p.Title,
			description: p.Description,
			defaultVal:  p.Default,
			example:     p.Example,
			deprecated:  p.Deprecated,
			readOnly:    p.ReadOnly,
			writeOnly:   p.WriteOnly,
		})
		if schema.Properties == nil {
			schema.Properties = make(map[string]*Schema, len(m.Properties))
		}
		schema.Properties[p.Name] = ps
		if p.Required {
			schema.Required = append(schema.Required, p.Name)
		}
	}
	return schema, nil
}

func refSchema(refs RefResolver, t NamedType) (*Schema, error) {
	if refs == nil {
		return nil, fmt.Errorf("no reference resolver for %s", t.Identity())
	}
	ref, err := refs.Ref(t)
	if err != nil {
		return nil, err
	}
	return &Schema{Ref: ref}, nil
}

// annotation carries metadata layered on top of a rendered fragment.
type annotation struct {
	title       string
	description string
	defaultVal  any
	example     any
	deprecated  bool
	readOnly    bool
	writeOnly   bool
}

func (a annotation) empty() bool {
	return a.title == "" && a.description == "" && a.defaultVal == nil &&
		a.example == nil && !a.deprecated && !a.readOnly && !a.writeOnly
}

// annotate applies metadata to a fragment. A bare $ref cannot carry
// siblings in OpenAPI 3.0, so it is wrapped in allOf first.
func annotate(s *Schema, a annotation) *Schema {
	if a.empty() {
		return s
	}
	if s.Ref != "" {
		s = &Schema{AllOf: []*Schema{s}}
	}
	if a.title != "" {
		s.Title = a.title
	}
	if a.description != "" {
		s.Description = a.description
	}
	if a.defaultVal != nil {
		s.Default = a.defaultVal
	}
	if a.example != nil {
		s.Example = a.example
	}
	s.Deprecated = s.Deprecated || a.deprecated
	s.ReadOnly = s.ReadOnly || a.readOnly
	s.WriteOnly = s.WriteOnly || a.writeOnly
	return s
}
