package openapi

import (
	"regexp"
	"strings"
)

// pathVarRegexp matches route variables in the form {name} or {name:pattern}.
var pathVarRegexp = regexp.MustCompile(`\{([^}]+)\}`)

// pathTemplate converts a router path template into OpenAPI form by
// dropping variable patterns: "/items/{id:[0-9]+}" becomes "/items/{id}".
func pathTemplate(path string) string {
	return pathVarRegexp.ReplaceAllStringFunc(path, func(match string) string {
		name, _, _ := strings.Cut(match[1:len(match)-1], ":")
		return "{" + name + "}"
	})
}

// paths builds the path entries of all schema-visible routes in declaration
// order. A route whose template already has an entry is merged into it.
//
// See: https://spec.openapis.org/oas/v3.0.3#paths-object
func (g *generation) paths(routes []*Route) (map[string]*PathItem, error) {
	paths := make(map[string]*PathItem)
	for _, r := range routes {
		item, err := g.pathItem(r)
		if err != nil {
			return nil, err
		}
		if item == nil || len(item.operations()) == 0 {
			continue
		}

		key := pathTemplate(r.Path)
		existing, ok := paths[key]
		if !ok {
			paths[key] = item
			continue
		}
		merged, err := g.merger.MergePathItems(key, existing, item)
		if err != nil {
			return nil, err
		}
		paths[key] = merged
	}
	return paths, nil
}
