package openapi

import (
	"maps"
	"strings"
)

// groupDefaults holds the metadata a RouteGroup applies to every route it
// wraps.
type groupDefaults struct {
	prefix       string
	tags         []string
	dependencies []*Dependency
	responses    map[string]*AdditionalResponse
	deprecated   bool
	hidden       bool
}

// RouteGroup provides shared defaults for a logical group of routes, such
// as the routes mounted by one router of the hosting framework.
type RouteGroup struct {
	defaults groupDefaults
}

// NewGroup returns a group with no defaults.
func NewGroup() *RouteGroup {
	return &RouteGroup{}
}

// Prefix prepends a path prefix to every route of the group.
func (g *RouteGroup) Prefix(prefix string) *RouteGroup {
	g.defaults.prefix += strings.TrimRight(prefix, "/")
	return g
}

// Tags appends tags to the group defaults. Group tags come before the
// route's own tags.
func (g *RouteGroup) Tags(tags ...string) *RouteGroup {
	g.defaults.tags = append(g.defaults.tags, tags...)
	return g
}

// Dependency adds a dependency resolved before the route's own dependencies.
func (g *RouteGroup) Dependency(deps ...*Dependency) *RouteGroup {
	g.defaults.dependencies = append(g.defaults.dependencies, deps...)
	return g
}

// Response adds a shared response under a status key ("404", "4XX",
// "default"). A response the route declares at the same key wins.
func (g *RouteGroup) Response(key string, resp *AdditionalResponse) *RouteGroup {
	if g.defaults.responses == nil {
		g.defaults.responses = make(map[string]*AdditionalResponse)
	}
	g.defaults.responses[key] = resp
	return g
}

// Deprecated marks all routes in this group as deprecated. Routes cannot
// undo group deprecation.
func (g *RouteGroup) Deprecated() *RouteGroup {
	g.defaults.deprecated = true
	return g
}

// Hidden excludes every route of the group from the document.
func (g *RouteGroup) Hidden() *RouteGroup {
	g.defaults.hidden = true
	return g
}

// Group returns a nested group starting from a copy of this group's
// defaults.
func (g *RouteGroup) Group() *RouteGroup {
	d := g.defaults
	d.tags = append([]string(nil), g.defaults.tags...)
	d.dependencies = append([]*Dependency(nil), g.defaults.dependencies...)
	d.responses = maps.Clone(g.defaults.responses)
	return &RouteGroup{defaults: d}
}

// Route returns a copy of r with the group defaults applied. r itself is not
// modified.
func (g *RouteGroup) Route(r *Route) *Route {
	out := *r
	d := g.defaults

	out.Path = d.prefix + r.Path

	if len(d.tags) > 0 {
		out.Tags = append(append([]string(nil), d.tags...), r.Tags...)
	}

	if len(d.dependencies) > 0 {
		out.Dependencies = append(append([]*Dependency(nil), d.dependencies...), r.Dependencies...)
	}

	if len(d.responses) > 0 {
		out.Responses = maps.Clone(d.responses)
		maps.Copy(out.Responses, r.Responses)
	}

	out.Deprecated = r.Deprecated || d.deprecated
	out.Hidden = r.Hidden || d.hidden
	return &out
}

// Routes applies Route to each route in order.
func (g *RouteGroup) Routes(routes ...*Route) []*Route {
	out := make([]*Route, 0, len(routes))
	for _, r := range routes {
		out = append(out, g.Route(r))
	}
	return out
}
