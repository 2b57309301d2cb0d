package manifest

import (
	"fmt"
	"strings"

	"github.com/vitalvas/oasgen/openapi"
)

var responseClasses = map[string]*openapi.ResponseClass{
	"json":     openapi.JSONResponse,
	"text":     openapi.PlainTextResponse,
	"html":     openapi.HTMLResponse,
	"redirect": openapi.RedirectResponse,
}

// compiler resolves names declared in one manifest.
type compiler struct {
	file         *File
	types        map[string]openapi.Type
	dependencies map[string]*openapi.Dependency
}

// Compile resolves every name in the manifest and returns the routes in
// declaration order: grouped routes first, then top-level routes.
func (f *File) Compile() ([]*openapi.Route, error) {
	c := &compiler{
		file:         f,
		types:        make(map[string]openapi.Type),
		dependencies: make(map[string]*openapi.Dependency),
	}
	if err := c.declareTypes(); err != nil {
		return nil, err
	}
	if err := c.resolveModels(); err != nil {
		return nil, err
	}
	if err := c.resolveDependencies(); err != nil {
		return nil, err
	}

	var routes []*openapi.Route
	for i, gs := range f.Groups {
		loc := fmt.Sprintf("groups[%d]", i)
		group := openapi.NewGroup().Prefix(gs.Prefix).Tags(gs.Tags...)
		if gs.Deprecated {
			group.Deprecated()
		}
		for j, name := range gs.Dependencies {
			dep, err := c.dependency(fmt.Sprintf("%s.dependencies[%d]", loc, j), name)
			if err != nil {
				return nil, err
			}
			group.Dependency(dep)
		}
		responses, err := c.responses(loc+".responses", gs.Responses)
		if err != nil {
			return nil, err
		}
		for key, resp := range responses {
			group.Response(key, resp)
		}
		for j := range gs.Routes {
			r, err := c.route(fmt.Sprintf("%s.routes[%d]", loc, j), &gs.Routes[j])
			if err != nil {
				return nil, err
			}
			routes = append(routes, group.Route(r))
		}
	}
	for i := range f.Routes {
		r, err := c.route(fmt.Sprintf("routes[%d]", i), &f.Routes[i])
		if err != nil {
			return nil, err
		}
		routes = append(routes, r)
	}
	return routes, nil
}

// declareTypes registers every model and enum under its qualified name
// ("scope.Name", or "Name" without scope) and under its plain name when
// that is unambiguous.
func (c *compiler) declareTypes() error {
	qualified := make(map[string]bool)
	plain := make(map[string][]string)

	declare := func(loc, scope, name string, t openapi.Type) error {
		key := name
		if scope != "" {
			key = scope + "." + name
		}
		if qualified[key] {
			return errorAt(loc, ErrDuplicateName, "type %q declared twice", key)
		}
		qualified[key] = true
		c.types[key] = t
		plain[name] = append(plain[name], key)
		return nil
	}

	for i, ms := range c.file.Models {
		m := &openapi.Model{Name: ms.Name, Scope: ms.Scope, Description: ms.Description, Example: ms.Example}
		if err := declare(fmt.Sprintf("models[%d]", i), ms.Scope, ms.Name, m); err != nil {
			return err
		}
	}
	for i, es := range c.file.Enums {
		e := &openapi.Enum{
			Name:        es.Name,
			Scope:       es.Scope,
			Description: es.Description,
			Type:        es.Type,
			Values:      es.Values,
		}
		if err := declare(fmt.Sprintf("enums[%d]", i), es.Scope, es.Name, e); err != nil {
			return err
		}
	}

	for name, keys := range plain {
		if qualified[name] {
			continue
		}
		if len(keys) > 1 {
			c.types[name] = nil
			continue
		}
		c.types[name] = c.types[keys[0]]
	}
	return nil
}

// resolveModels fills in model properties once every name is declared, so
// models may refer to each other and to themselves.
func (c *compiler) resolveModels() error {
	for i, ms := range c.file.Models {
		key := ms.Name
		if ms.Scope != "" {
			key = ms.Scope + "." + ms.Name
		}
		m := c.types[key].(*openapi.Model)
		for j, ps := range ms.Properties {
			loc := fmt.Sprintf("models[%d].properties[%d]", i, j)
			t, err := parseType(ps.Type, c.types)
			if err != nil {
				return &Error{Location: loc, Err: err}
			}
			m.Properties = append(m.Properties, &openapi.Property{
				Name:        ps.Name,
				Type:        t,
				Required:    ps.Required,
				Title:       ps.Title,
				Description: ps.Description,
				Default:     ps.Default,
				Example:     ps.Example,
				Deprecated:  ps.Deprecated,
				ReadOnly:    ps.ReadOnly,
				WriteOnly:   ps.WriteOnly,
			})
		}
	}
	return nil
}

// resolveDependencies builds named dependencies. References between them
// may point forward or backward but must not form a cycle.
func (c *compiler) resolveDependencies() error {
	specs := make(map[string]int, len(c.file.Dependencies))
	for i, ds := range c.file.Dependencies {
		if _, dup := specs[ds.Name]; dup {
			return errorAt(fmt.Sprintf("dependencies[%d]", i), ErrDuplicateName, "dependency %q declared twice", ds.Name)
		}
		specs[ds.Name] = i
	}

	visiting := make(map[string]bool)
	var build func(name string) (*openapi.Dependency, error)
	build = func(name string) (*openapi.Dependency, error) {
		if dep, ok := c.dependencies[name]; ok {
			return dep, nil
		}
		i := specs[name]
		ds := c.file.Dependencies[i]
		loc := fmt.Sprintf("dependencies[%d]", i)
		if visiting[name] {
			return nil, errorAt(loc, ErrInvalid, "dependency cycle through %q", name)
		}
		visiting[name] = true
		defer delete(visiting, name)

		dep := &openapi.Dependency{Name: ds.Name}
		params, err := c.fields(loc+".parameters", ds.Parameters, openapi.InQuery)
		if err != nil {
			return nil, err
		}
		dep.Parameters = params
		security, err := c.security(loc+".security", ds.Security)
		if err != nil {
			return nil, err
		}
		dep.Security = security
		for j, sub := range ds.Dependencies {
			if _, ok := specs[sub]; !ok {
				return nil, errorAt(fmt.Sprintf("%s.dependencies[%d]", loc, j), ErrUnknownName, "dependency %q", sub)
			}
			child, err := build(sub)
			if err != nil {
				return nil, err
			}
			dep.Dependencies = append(dep.Dependencies, child)
		}
		c.dependencies[name] = dep
		return dep, nil
	}

	for _, ds := range c.file.Dependencies {
		if _, err := build(ds.Name); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) dependency(loc, name string) (*openapi.Dependency, error) {
	dep, ok := c.dependencies[name]
	if !ok {
		return nil, errorAt(loc, ErrUnknownName, "dependency %q", name)
	}
	return dep, nil
}

func (c *compiler) route(loc string, rs *RouteSpec) (*openapi.Route, error) {
	r := &openapi.Route{
		Name:                rs.Name,
		Path:                rs.Path,
		Methods:             upper(rs.Methods),
		OperationID:         rs.OperationID,
		Summary:             rs.Summary,
		Description:         rs.Description,
		Tags:                rs.Tags,
		Deprecated:          rs.Deprecated,
		Hidden:              rs.Hidden,
		StatusCode:          rs.StatusCode,
		ResponseDescription: rs.ResponseDescription,
		Extra:               rs.Extra,
	}

	if rs.ResponseClass != "" {
		r.ResponseClass = responseClasses[rs.ResponseClass]
	}

	if rs.ResponseModel != "" {
		t, err := parseType(rs.ResponseModel, c.types)
		if err != nil {
			return nil, &Error{Location: loc + ".response_model", Err: err}
		}
		r.ResponseModel = t
	}

	for i, name := range rs.Dependencies {
		dep, err := c.dependency(fmt.Sprintf("%s.dependencies[%d]", loc, i), name)
		if err != nil {
			return nil, err
		}
		r.Dependencies = append(r.Dependencies, dep)
	}

	// Inline parameters and security form an anonymous dependency declared
	// after the named ones.
	if len(rs.Parameters) > 0 || len(rs.Security) > 0 {
		params, err := c.fields(loc+".parameters", rs.Parameters, openapi.InQuery)
		if err != nil {
			return nil, err
		}
		security, err := c.security(loc+".security", rs.Security)
		if err != nil {
			return nil, err
		}
		r.Dependencies = append(r.Dependencies, &openapi.Dependency{
			Name:       rs.Name,
			Parameters: params,
			Security:   security,
		})
	}

	if rs.Body != nil {
		fields, err := c.fields(loc+".body", []FieldSpec{*rs.Body}, openapi.InBody)
		if err != nil {
			return nil, err
		}
		r.Body = fields[0]
	}

	responses, err := c.responses(loc+".responses", rs.Responses)
	if err != nil {
		return nil, err
	}
	r.Responses = responses

	for i := range rs.Callbacks {
		cb, err := c.route(fmt.Sprintf("%s.callbacks[%d]", loc, i), &rs.Callbacks[i])
		if err != nil {
			return nil, err
		}
		r.Callbacks = append(r.Callbacks, cb)
	}
	return r, nil
}

func (c *compiler) fields(loc string, specs []FieldSpec, defaultIn openapi.Location) ([]*openapi.Field, error) {
	fields := make([]*openapi.Field, 0, len(specs))
	for i, fs := range specs {
		t, err := parseType(fs.Type, c.types)
		if err != nil {
			return nil, &Error{Location: fmt.Sprintf("%s[%d]", loc, i), Err: err}
		}
		in := openapi.Location(fs.In)
		if in == "" {
			in = defaultIn
		}
		if in == openapi.InBody && defaultIn != openapi.InBody {
			return nil, errorAt(fmt.Sprintf("%s[%d]", loc, i), ErrInvalid, "parameter %q is located in body, declare it as the route body", fs.Name)
		}
		fields = append(fields, &openapi.Field{
			Alias:       fs.Name,
			In:          in,
			Type:        t,
			Required:    fs.Required,
			Default:     fs.Default,
			Example:     fs.Example,
			Examples:    fs.Examples,
			Title:       fs.Title,
			Description: fs.Description,
			Deprecated:  fs.Deprecated,
			Hidden:      fs.Hidden,
			MediaType:   fs.MediaType,
		})
	}
	return fields, nil
}

func (c *compiler) security(loc string, specs []SecuritySpec) ([]openapi.Security, error) {
	var out []openapi.Security
	for i, ss := range specs {
		def, ok := c.file.SecuritySchemes[ss.Scheme]
		if !ok || def == nil {
			return nil, errorAt(fmt.Sprintf("%s[%d]", loc, i), ErrUnknownName, "security scheme %q", ss.Scheme)
		}
		out = append(out, openapi.Security{Scheme: ss.Scheme, Definition: def, Scopes: ss.Scopes})
	}
	return out, nil
}

func (c *compiler) responses(loc string, specs map[string]ResponseSpec) (map[string]*openapi.AdditionalResponse, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := make(map[string]*openapi.AdditionalResponse, len(specs))
	for key, rs := range specs {
		resp := &openapi.AdditionalResponse{Description: rs.Description, Headers: rs.Headers}
		if rs.Model != "" {
			t, err := parseType(rs.Model, c.types)
			if err != nil {
				return nil, &Error{Location: loc + "." + key, Err: err}
			}
			resp.Model = t
		}
		out[key] = resp
	}
	return out, nil
}

func upper(methods []string) []string {
	out := make([]string, len(methods))
	for i, m := range methods {
		out[i] = strings.ToUpper(m)
	}
	return out
}
