package manifest

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/vitalvas/oasgen/openapi"
)

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// File is the decoded form of a route manifest. JSON manifests decode too,
// since JSON is valid YAML.
type File struct {
	Models          []ModelSpec                        `yaml:"models" validate:"dive"`
	Enums           []EnumSpec                         `yaml:"enums" validate:"dive"`
	SecuritySchemes map[string]*openapi.SecurityScheme `yaml:"security_schemes" validate:"dive"`
	Dependencies    []DependencySpec                   `yaml:"dependencies" validate:"dive"`
	Groups          []GroupSpec                        `yaml:"groups" validate:"dive"`
	Routes          []RouteSpec                        `yaml:"routes" validate:"dive"`
}

// ModelSpec declares a named object type.
type ModelSpec struct {
	Name        string         `yaml:"name" validate:"required"`
	Scope       string         `yaml:"scope"`
	Description string         `yaml:"description"`
	Example     any            `yaml:"example"`
	Properties  []PropertySpec `yaml:"properties" validate:"dive"`
}

// PropertySpec declares one model property.
type PropertySpec struct {
	Name        string `yaml:"name" validate:"required"`
	Type        string `yaml:"type" validate:"required"`
	Required    bool   `yaml:"required"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Default     any    `yaml:"default"`
	Example     any    `yaml:"example"`
	Deprecated  bool   `yaml:"deprecated"`
	ReadOnly    bool   `yaml:"read_only"`
	WriteOnly   bool   `yaml:"write_only"`
}

// EnumSpec declares a named enumeration.
type EnumSpec struct {
	Name        string `yaml:"name" validate:"required"`
	Scope       string `yaml:"scope"`
	Description string `yaml:"description"`
	Type        string `yaml:"type" validate:"omitempty,oneof=string integer number boolean"`
	Values      []any  `yaml:"values" validate:"required,min=1"`
}

// FieldSpec declares a parameter or request body.
type FieldSpec struct {
	Name        string                      `yaml:"name" validate:"required"`
	In          string                      `yaml:"in" validate:"omitempty,oneof=query header path cookie body"`
	Type        string                      `yaml:"type" validate:"required"`
	Required    bool                        `yaml:"required"`
	Title       string                      `yaml:"title"`
	Description string                      `yaml:"description"`
	Default     any                         `yaml:"default"`
	Example     any                         `yaml:"example"`
	Examples    map[string]*openapi.Example `yaml:"examples"`
	Deprecated  bool                        `yaml:"deprecated"`
	Hidden      bool                        `yaml:"hidden"`
	MediaType   string                      `yaml:"media_type"`
}

// SecuritySpec references a scheme declared under security_schemes.
type SecuritySpec struct {
	Scheme string   `yaml:"scheme" validate:"required"`
	Scopes []string `yaml:"scopes"`
}

// DependencySpec declares a shared dependency routes refer to by name.
type DependencySpec struct {
	Name         string         `yaml:"name" validate:"required"`
	Parameters   []FieldSpec    `yaml:"parameters" validate:"dive"`
	Security     []SecuritySpec `yaml:"security" validate:"dive"`
	Dependencies []string       `yaml:"dependencies"`
}

// ResponseSpec declares an additional response.
type ResponseSpec struct {
	Description string                     `yaml:"description"`
	Model       string                     `yaml:"model"`
	Headers     map[string]*openapi.Header `yaml:"headers"`
}

// RouteSpec declares one route.
type RouteSpec struct {
	Name                string                  `yaml:"name" validate:"required"`
	Path                string                  `yaml:"path" validate:"required"`
	Methods             []string                `yaml:"methods" validate:"required,min=1"`
	OperationID         string                  `yaml:"operation_id"`
	Summary             string                  `yaml:"summary"`
	Description         string                  `yaml:"description"`
	Tags                []string                `yaml:"tags"`
	Deprecated          bool                    `yaml:"deprecated"`
	Hidden              bool                    `yaml:"hidden"`
	StatusCode          int                     `yaml:"status_code"`
	ResponseClass       string                  `yaml:"response_class" validate:"omitempty,oneof=json text html redirect"`
	ResponseDescription string                  `yaml:"response_description"`
	ResponseModel       string                  `yaml:"response_model"`
	Dependencies        []string                `yaml:"dependencies"`
	Parameters          []FieldSpec             `yaml:"parameters" validate:"dive"`
	Security            []SecuritySpec          `yaml:"security" validate:"dive"`
	Body                *FieldSpec              `yaml:"body"`
	Responses           map[string]ResponseSpec `yaml:"responses"`
	Callbacks           []RouteSpec             `yaml:"callbacks" validate:"dive"`
	Extra               map[string]any          `yaml:"extra"`
}

// GroupSpec applies a path prefix, tags and dependencies to its routes.
type GroupSpec struct {
	Prefix       string                  `yaml:"prefix"`
	Tags         []string                `yaml:"tags"`
	Dependencies []string                `yaml:"dependencies"`
	Responses    map[string]ResponseSpec `yaml:"responses"`
	Deprecated   bool                    `yaml:"deprecated"`
	Routes       []RouteSpec             `yaml:"routes" validate:"dive"`
}

// Parse decodes and structurally validates a manifest.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &Error{Err: fmt.Errorf("%w: %v", ErrSyntax, err)}
	}
	if err := structValidator.Struct(&f); err != nil {
		return nil, &Error{Err: fmt.Errorf("%w: %v", ErrInvalid, err)}
	}
	return &f, nil
}

// Load reads the manifest at path and compiles it into routes.
func Load(path string) ([]*openapi.Route, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, withFile(err, path)
	}
	routes, err := f.Compile()
	if err != nil {
		return nil, withFile(err, path)
	}
	return routes, nil
}
