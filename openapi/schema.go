package openapi

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// refPrefix is the JSON pointer prefix for component schemas.
const refPrefix = "#/components/schemas/"

// collectModels walks the given types and returns every distinct named type
// reachable from them, ordered by identity. Recursive types are visited once.
func collectModels(types []Type) []NamedType {
	seen := make(map[TypeID]NamedType)

	var walk func(t Type)
	walk = func(t Type) {
		if t == nil {
			return
		}
		if named, ok := t.(NamedType); ok {
			id := named.Identity()
			if _, dup := seen[id]; dup {
				return
			}
			seen[id] = named
		}
		for _, child := range t.Children() {
			walk(child)
		}
	}
	for _, t := range types {
		walk(t)
	}

	models := make([]NamedType, 0, len(seen))
	for _, m := range seen {
		models = append(models, m)
	}
	sort.Slice(models, func(i, j int) bool {
		return models[i].Identity().String() < models[j].Identity().String()
	})
	return models
}

// nameMap assigns collision-free component names to named types and
// resolves references for one generation run.
type nameMap struct {
	names map[TypeID]string
}

// newNameMap assigns a name to every model. A type keeps its simple name
// unless another distinct type shares it, in which case every type in the
// clash is qualified with the last segment of its scope (e.g. "ApiUser").
// Names that still clash get a numeric suffix in identity order. The result
// depends only on the set of models, not on the order routes were declared.
func newNameMap(models []NamedType) *nameMap {
	byName := make(map[string][]TypeID)
	for _, m := range models {
		id := m.Identity()
		simple := sanitizeSchemaName(id.Name)
		byName[simple] = append(byName[simple], id)
	}

	candidates := make(map[TypeID]string, len(models))
	for simple, ids := range byName {
		if len(ids) == 1 {
			candidates[ids[0]] = simple
			continue
		}
		for _, id := range ids {
			candidates[id] = pkgPrefix(id.Scope) + simple
		}
	}

	// Resolve remaining clashes in identity order.
	ids := make([]TypeID, 0, len(candidates))
	for id := range candidates {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	m := &nameMap{names: make(map[TypeID]string, len(ids))}
	taken := make(map[string]bool, len(ids))
	for _, id := range ids {
		name := candidates[id]
		if taken[name] {
			base := name
			for i := 2; ; i++ {
				candidate := base + strconv.Itoa(i)
				if !taken[candidate] {
					name = candidate
					break
				}
			}
		}
		taken[name] = true
		m.names[id] = name
	}
	return m
}

// Ref implements RefResolver.
func (m *nameMap) Ref(t NamedType) (string, error) {
	name, ok := m.names[t.Identity()]
	if !ok {
		return "", fmt.Errorf("type %s is not registered", t.Identity())
	}
	return refPrefix + name, nil
}

// Name returns the component name assigned to a named type.
func (m *nameMap) Name(t NamedType) (string, bool) {
	name, ok := m.names[t.Identity()]
	return name, ok
}

// definitions renders the component schema of every model.
func definitions(models []NamedType, names *nameMap) (map[string]*Schema, error) {
	defs := make(map[string]*Schema, len(models))
	for _, model := range models {
		name, _ := names.Name(model)
		schema, err := model.Definition(names)
		if err != nil {
			return nil, &SchemaError{Model: model.Identity().String(), Err: err}
		}
		defs[name] = schema
	}
	return defs, nil
}

// fieldSchema renders the schema fragment for a parameter or body field.
// Fields without a named type get a title derived from their alias; a
// declared default is carried into the fragment.
func fieldSchema(f *Field, refs RefResolver) (*Schema, error) {
	if f.Type == nil {
		return nil, &SchemaError{Field: f.Alias, Err: errNoType}
	}
	schema, err := f.Type.Schema(refs)
	if err != nil {
		return nil, &SchemaError{Field: f.Alias, Err: err}
	}

	title := f.Title
	if _, isModel := f.Type.(*Model); title == "" && !isModel {
		title = titleFromAlias(f.Alias)
	}
	return annotate(schema, annotation{
		title:       title,
		description: f.Description,
		defaultVal:  f.Default,
	}), nil
}

// titleFromAlias derives a schema title from a wire name ("page_size" ->
// "Page Size").
func titleFromAlias(alias string) string {
	return titleCase(strings.ReplaceAll(alias, "_", " "))
}

// pkgPrefix extracts the last segment of a scope path and capitalizes it
// for use as a schema name prefix (e.g., "net/http" -> "Http").
func pkgPrefix(scope string) string {
	if idx := strings.LastIndexAny(scope, "/."); idx >= 0 {
		scope = scope[idx+1:]
	}
	if len(scope) == 0 {
		return ""
	}
	scope = strings.ReplaceAll(scope, "-", "_")
	return strings.ToUpper(scope[:1]) + scope[1:]
}

// sanitizeSchemaName cleans up type names for use as component schema keys.
// Generic names like "Page[User]" become "PageUser" and "Page[[]User]"
// becomes "PageUserList". Package paths in type parameters are stripped.
func sanitizeSchemaName(name string) string {
	idx := strings.IndexByte(name, '[')
	if idx < 0 || !strings.HasSuffix(name, "]") {
		return name
	}

	base := name[:idx]
	inner := name[idx+1 : len(name)-1]

	isList := strings.HasPrefix(inner, "[]")
	inner = strings.TrimPrefix(inner, "[]")

	if dot := strings.LastIndexByte(inner, '.'); dot >= 0 {
		inner = inner[dot+1:]
	}

	result := base + inner
	if isList {
		result += "List"
	}
	return result
}
