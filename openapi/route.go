package openapi

import (
	"net/http"
	"regexp"
	"strings"
)

// Location is where a field is read from in the request.
//
// See: https://spec.openapis.org/oas/v3.0.3#parameter-locations
type Location string

const (
	InQuery  Location = "query"
	InHeader Location = "header"
	InPath   Location = "path"
	InCookie Location = "cookie"
	InBody   Location = "body"
)

// parameterLocations is the order in which flattened parameters are emitted.
var parameterLocations = []Location{InPath, InQuery, InHeader, InCookie}

// Field is a named, typed value used as a parameter or request body.
type Field struct {
	// Alias is the wire name.
	Alias    string   `validate:"required"`
	In       Location `validate:"required,oneof=query header path cookie body"`
	Type     Type     `validate:"-"`
	Required bool

	// Default is the declared default; nil means unset.
	Default any

	// Example and Examples are copied verbatim. Examples takes precedence.
	Example  any
	Examples map[string]*Example

	Title       string
	Description string
	Deprecated  bool

	// Hidden excludes the field from the document while it still counts
	// as a parameter of the route.
	Hidden bool

	// MediaType applies to body fields only (default "application/json").
	MediaType string
}

// mediaType returns the body media type, defaulting to application/json.
func (f *Field) mediaType() string {
	if f.MediaType == "" {
		return "application/json"
	}
	return f.MediaType
}

// Security is one security requirement declared by a dependency.
type Security struct {
	// Scheme is the name the scheme is registered under in components.
	Scheme     string          `validate:"required"`
	Definition *SecurityScheme `validate:"required"`
	Scopes     []string
}

// Dependency is a node of a route's dependency graph. Its parameters and
// security requirements apply to every operation of the route.
type Dependency struct {
	Name         string
	Parameters   []*Field
	Security     []Security
	Dependencies []*Dependency
}

// ResponseClass describes how a route renders its default response.
type ResponseClass struct {
	// MediaType is empty for classes that never carry a body.
	MediaType string
	// StatusCode is the class's default status code.
	StatusCode int
	// JSON reports whether the body is shaped by the response model.
	JSON bool
}

// Predefined response classes.
var (
	JSONResponse      = &ResponseClass{MediaType: "application/json", StatusCode: http.StatusOK, JSON: true}
	PlainTextResponse = &ResponseClass{MediaType: "text/plain", StatusCode: http.StatusOK}
	HTMLResponse      = &ResponseClass{MediaType: "text/html", StatusCode: http.StatusOK}
	RedirectResponse  = &ResponseClass{StatusCode: http.StatusTemporaryRedirect}
)

// AdditionalResponse is an explicitly declared response. Content, Headers
// and Links are merged into whatever the operation already has at the key.
type AdditionalResponse struct {
	Description string
	Model       Type
	Content     map[string]*MediaType
	Headers     map[string]*Header
	Links       map[string]*Link
}

// Route identifies one registered endpoint. Routes are owned by the
// surrounding framework and are never modified during generation.
type Route struct {
	// Name is the logical name used for the default summary and unique id.
	Name    string
	Path    string   `validate:"required"`
	Methods []string `validate:"required,min=1,dive,oneof=GET PUT POST DELETE OPTIONS HEAD PATCH TRACE"`

	Dependencies []*Dependency `validate:"-"`
	Body         *Field

	ResponseModel       Type `validate:"-"`
	ResponseDescription string
	// StatusCode overrides the response class default when non-zero.
	StatusCode    int `validate:"omitempty,min=100,max=599"`
	ResponseClass *ResponseClass
	Responses     map[string]*AdditionalResponse `validate:"-"`

	Tags        []string
	Summary     string
	Description string
	OperationID string
	Deprecated  bool
	Hidden      bool

	Callbacks []*Route `validate:"-"`

	// Extra is deep-merged into every generated operation.
	Extra map[string]any
}

var nonWordRegexp = regexp.MustCompile(`\W`)

// UniqueID returns the id used when OperationID is unset: the route name and
// path with non-word characters replaced by underscores, followed by the
// first method.
func (r *Route) UniqueID() string {
	id := nonWordRegexp.ReplaceAllString(r.Name+r.Path, "_")
	if len(r.Methods) > 0 {
		id += "_" + strings.ToLower(r.Methods[0])
	}
	return id
}

func (r *Route) responseClass() *ResponseClass {
	if r.ResponseClass == nil {
		return JSONResponse
	}
	return r.ResponseClass
}

func (r *Route) responseDescription() string {
	if r.ResponseDescription == "" {
		return "Successful Response"
	}
	return r.ResponseDescription
}

// flatDependency is the flattened view of a route's dependency graph.
type flatDependency struct {
	parameters []*Field
	security   []Security
}

// flatten collects parameters and security requirements depth-first, own
// declarations before nested ones, visiting each dependency once. The
// parameters are then grouped by location, keeping declaration order
// within a location.
func (r *Route) flatten() flatDependency {
	var (
		flat   flatDependency
		params []*Field
		seen   = make(map[*Dependency]bool)
		walk   func(deps []*Dependency)
	)
	walk = func(deps []*Dependency) {
		for _, dep := range deps {
			if dep == nil || seen[dep] {
				continue
			}
			seen[dep] = true
			params = append(params, dep.Parameters...)
			flat.security = append(flat.security, dep.Security...)
			walk(dep.Dependencies)
		}
	}
	walk(r.Dependencies)

	for _, loc := range parameterLocations {
		for _, p := range params {
			if p != nil && p.In == loc {
				flat.parameters = append(flat.parameters, p)
			}
		}
	}
	return flat
}
