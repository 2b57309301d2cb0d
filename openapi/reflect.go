package openapi

import (
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Exampler can be implemented by struct types to provide an example value
// for their component schema.
//
//	func (u User) OpenAPIExample() any {
//	    return User{ID: "550e8400-e29b-41d4-a716-446655440000", Name: "Alice"}
//	}
type Exampler interface {
	OpenAPIExample() any
}

// Enumer can be implemented by named scalar types to declare their allowed
// values. Such types become named enums.
//
//	func (s Status) OpenAPIEnum() []any { return []any{"active", "disabled"} }
type Enumer interface {
	OpenAPIEnum() []any
}

var timeType = reflect.TypeOf(time.Time{})

// Reflect describes the Go type of v. Named structs become models scoped by
// their package path, so two structs named User in different packages stay
// distinct. Properties follow encoding/json naming. The `openapi` struct tag
// adds metadata and constraints:
//
//	Name string `json:"name" openapi:"description=Display name,minLength=1"`
//
// Pointers become Optional. Anonymous structs render as plain objects.
func Reflect(v any) Type {
	if v == nil {
		return nil
	}
	r := &reflector{models: make(map[reflect.Type]*Model)}
	return r.typeOf(reflect.TypeOf(v))
}

// reflector caches models by Go type. A model is cached before its
// properties are filled in, so recursive types terminate.
type reflector struct {
	models map[reflect.Type]*Model
}

func (r *reflector) typeOf(t reflect.Type) Type {
	if t.Kind() == reflect.Pointer {
		return Optional{Elem: r.typeOf(t.Elem())}
	}
	if t == timeType {
		return DateTime
	}
	if t.Name() != "" && t.Kind() != reflect.Struct {
		if en, ok := reflect.Zero(t).Interface().(Enumer); ok {
			return &Enum{
				Name:   t.Name(),
				Scope:  t.PkgPath(),
				Type:   jsonKind(t.Kind()),
				Values: en.OpenAPIEnum(),
			}
		}
	}

	switch t.Kind() {
	case reflect.Bool:
		return Boolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Integer
	case reflect.Float32, reflect.Float64:
		return Number
	case reflect.String:
		return String
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return Primitive{Type: "string", Format: "byte"}
		}
		return Array{Items: r.typeOf(t.Elem())}
	case reflect.Array:
		return Array{Items: r.typeOf(t.Elem())}
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return Map{}
		}
		return Map{Values: r.typeOf(t.Elem())}
	case reflect.Struct:
		if t.Name() == "" {
			return Map{}
		}
		return r.model(t)
	}
	return Any
}

func (r *reflector) model(t reflect.Type) *Model {
	if m, ok := r.models[t]; ok {
		return m
	}
	m := &Model{Name: t.Name(), Scope: t.PkgPath()}
	r.models[t] = m

	if ex, ok := reflect.New(t).Elem().Interface().(Exampler); ok {
		m.Example = ex.OpenAPIExample()
	}
	r.collectFields(t, m, false)
	return m
}

// collectFields adds the exported fields of t to m. Embedded structs without
// a json name are inlined, even when their type is unexported; fields of
// pointer-embedded structs are optional.
func (r *reflector) collectFields(t reflect.Type, m *Model, allOptional bool) {
	for i := range t.NumField() {
		field := t.Field(i)

		if field.Anonymous {
			ft := field.Type
			isPtr := ft.Kind() == reflect.Pointer
			if isPtr {
				ft = ft.Elem()
			}
			jsonName, _ := parseJSONTag(field.Tag.Get("json"))
			if jsonName == "" && ft.Kind() == reflect.Struct {
				r.collectFields(ft, m, allOptional || isPtr)
				continue
			}
		}
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}
		name, opts := parseJSONTag(jsonTag)
		if name == "" {
			name = field.Name
		}

		typ := r.typeOf(field.Type)
		if opts.stringEncode {
			typ = stringEncoded(typ)
		}

		prop := &Property{
			Name:     name,
			Type:     typ,
			Required: !opts.omitempty && !allOptional,
		}
		applyOpenAPITag(prop, field.Tag.Get("openapi"))
		m.Properties = append(m.Properties, prop)
	}
}

type jsonTagOpts struct {
	omitempty    bool
	stringEncode bool
}

func parseJSONTag(tag string) (string, jsonTagOpts) {
	if tag == "" {
		return "", jsonTagOpts{}
	}
	name, rest, _ := strings.Cut(tag, ",")
	return name, jsonTagOpts{
		omitempty:    strings.Contains(rest, "omitempty") || strings.Contains(rest, "omitzero"),
		stringEncode: strings.Contains(rest, "string"),
	}
}

// stringEncoded reflects the encoding/json ",string" option: scalars are
// carried as JSON strings.
func stringEncoded(t Type) Type {
	switch v := t.(type) {
	case Primitive:
		if v.Type == "integer" || v.Type == "number" || v.Type == "boolean" {
			return String
		}
	case Optional:
		return Optional{Elem: stringEncoded(v.Elem)}
	}
	return t
}

// applyOpenAPITag parses the `openapi` struct tag into property metadata
// and constraints.
func applyOpenAPITag(p *Property, tag string) {
	if tag == "" {
		return
	}

	c := Constrained{Elem: p.Type}
	constrained := false

	for part := range strings.SplitSeq(tag, ",") {
		key, value, _ := strings.Cut(part, "=")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "description":
			p.Description = value
		case "title":
			p.Title = value
		case "example":
			p.Example = parseTagValue(p.Type, value)
		case "default":
			p.Default = parseTagValue(p.Type, value)
		case "deprecated":
			p.Deprecated = true
		case "readOnly":
			p.ReadOnly = true
		case "writeOnly":
			p.WriteOnly = true
		case "required":
			p.Required = true
		case "format":
			c.Format, constrained = value, true
		case "minimum":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				c.Minimum, constrained = &v, true
			}
		case "maximum":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				c.Maximum, constrained = &v, true
			}
		case "minLength":
			if v, err := strconv.Atoi(value); err == nil {
				c.MinLength, constrained = &v, true
			}
		case "maxLength":
			if v, err := strconv.Atoi(value); err == nil {
				c.MaxLength, constrained = &v, true
			}
		case "pattern":
			c.Pattern, constrained = value, true
		case "minItems":
			if v, err := strconv.Atoi(value); err == nil {
				c.MinItems, constrained = &v, true
			}
		case "maxItems":
			if v, err := strconv.Atoi(value); err == nil {
				c.MaxItems, constrained = &v, true
			}
		case "uniqueItems":
			c.UniqueItems, constrained = true, true
		case "enum":
			for _, v := range strings.Split(value, "|") {
				c.Enum = append(c.Enum, parseTagValue(p.Type, v))
			}
			constrained = true
		}
	}

	if constrained {
		p.Type = c
	}
}

// parseTagValue converts a tag value to the Go type matching the JSON type
// of t. Unparsable values stay strings.
func parseTagValue(t Type, value string) any {
	prim, ok := t.(Primitive)
	if !ok {
		return value
	}
	switch prim.Type {
	case "integer":
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			return v
		}
	case "number":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
	case "boolean":
		if v, err := strconv.ParseBool(value); err == nil {
			return v
		}
	}
	return value
}

func jsonKind(k reflect.Kind) string {
	switch k {
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	}
	return "string"
}
