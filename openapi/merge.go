package openapi

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// mergeFunc merges the values found at one key across sources, in source
// order. A nil result drops the key.
type mergeFunc func(m *Merger, key string, values []any) any

// strategy is a field-specific merge. It applies only when every value at
// the key has the expected shape; a property that happens to be named
// "description" inside a schema is merged generically.
type strategy struct {
	accepts func(v any) bool
	merge   mergeFunc
}

// mergeStrategies holds the field-specific strategies. Keys without an entry
// are deep-merged when every value is an object, otherwise the last value
// wins.
var mergeStrategies map[string]strategy

func init() {
	mergeStrategies = map[string]strategy{
		"tags":        {isList, mergeTags},
		"summary":     {isString, joinDistinct(" / ")},
		"description": {isString, joinDistinct("\n\n OR \n\n")},
		"operationId": {isString, mergeOperationID},
		"parameters":  {isList, mergeParameters},
		"deprecated":  {isBool, mergeDeprecated},
		"content":     {isObject, deepMerge},
		"requestBody": {isObject, deepMerge},
		"callbacks":   {isObject, deepMerge},
	}
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

func isList(v any) bool {
	_, ok := v.([]any)
	return ok
}

func isBool(v any) bool {
	_, ok := v.(bool)
	return ok
}

func isObject(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

func (s strategy) applies(values []any) bool {
	for _, v := range values {
		if v != nil && !s.accepts(v) {
			return false
		}
	}
	return true
}

// methodOrder is the order in which operations of a path item are read.
var methodOrder = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}

// Merger deep-merges path items that share a path template. It holds no
// state between calls other than its diagnostics sink.
type Merger struct {
	rep  *reporter
	path string
}

// NewMerger returns a merger reporting diagnostics to log and hook. Both
// may be nil.
func NewMerger(log *zap.Logger, hook func(Diagnostic)) *Merger {
	return &Merger{rep: &reporter{log: log, hook: hook}}
}

// Merge merges two or more trees. Merging a single tree returns it
// unchanged.
func (m *Merger) Merge(values ...any) any {
	return deepMerge(m, "", values)
}

// MergePathItems merges path items registered for the same template.
// Operations are first grouped by operationId, and operations of one group
// bound to the same method are merged. The groups are then merged method by
// method. A single item is returned unchanged.
func (m *Merger) MergePathItems(path string, items ...*PathItem) (*PathItem, error) {
	if len(items) == 1 {
		return items[0], nil
	}

	mm := &Merger{rep: m.rep, path: path}

	type group struct {
		id      string
		methods map[string][]any
	}
	var groups []*group
	byID := make(map[string]*group)

	for _, item := range items {
		if item == nil {
			continue
		}
		tree, err := toTree(item)
		if err != nil {
			return nil, fmt.Errorf("merge %s: %w", path, err)
		}
		obj, _ := tree.(map[string]any)
		for _, method := range methodOrder {
			op, ok := obj[method].(map[string]any)
			if !ok {
				continue
			}
			id, _ := op["operationId"].(string)
			g, ok := byID[id]
			if !ok {
				g = &group{id: id, methods: make(map[string][]any)}
				byID[id] = g
				groups = append(groups, g)
			}
			g.methods[method] = append(g.methods[method], op)
		}
	}

	sources := make([]any, 0, len(groups))
	for _, g := range groups {
		entry := make(map[string]any, len(g.methods))
		for method, ops := range g.methods {
			entry[method] = deepMerge(mm, method, ops)
		}
		sources = append(sources, entry)
	}

	merged := &PathItem{}
	if len(sources) == 0 {
		return merged, nil
	}
	if err := fromTree(deepMerge(mm, "", sources), merged); err != nil {
		return nil, fmt.Errorf("merge %s: %w", path, err)
	}
	return merged, nil
}

func (m *Merger) report(d Diagnostic) {
	if d.Path == "" {
		d.Path = m.path
	}
	if d.Method == "" && d.Key != "" {
		head, _, _ := strings.Cut(d.Key, ".")
		for _, method := range methodOrder {
			if head == method {
				d.Method = strings.ToUpper(method)
				break
			}
		}
	}
	m.rep.report(d)
}

// deepMerge merges objects key by key. A single value is returned as is.
// Values that are not all objects fall back to the last one.
func deepMerge(m *Merger, key string, values []any) any {
	values = nonNil(values)
	switch len(values) {
	case 0:
		return nil
	case 1:
		return values[0]
	}

	objects := make([]map[string]any, 0, len(values))
	for _, v := range values {
		obj, ok := v.(map[string]any)
		if !ok {
			return lastWins(m, key, values)
		}
		objects = append(objects, obj)
	}

	keys := make([]string, 0)
	seen := make(map[string]bool)
	for _, obj := range objects {
		for k := range obj {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)

	result := make(map[string]any, len(keys))
	for _, k := range keys {
		var at []any
		for _, obj := range objects {
			if v, ok := obj[k]; ok {
				at = append(at, v)
			}
		}

		sub := joinKey(key, k)
		var merged any
		switch s, ok := mergeStrategies[k]; {
		case ok && s.applies(at):
			merged = s.merge(m, sub, at)
		case allObjects(at):
			merged = deepMerge(m, sub, at)
		default:
			merged = lastWins(m, sub, at)
		}
		if merged != nil {
			result[k] = merged
		}
	}
	return result
}

// lastWins takes the last value, reporting a conflict when the sources
// disagreed.
func lastWins(m *Merger, key string, values []any) any {
	if len(values) == 0 {
		return nil
	}
	last := values[len(values)-1]
	for _, v := range values[:len(values)-1] {
		if v != nil && last != nil && !reflect.DeepEqual(v, last) {
			m.report(Diagnostic{
				Kind:    MergeConflict,
				Key:     key,
				Message: fmt.Sprintf("merged operations disagree at %s, keeping the last value", key),
			})
			break
		}
	}
	return last
}

// mergeTags is the union of all tag lists, in first-seen order.
func mergeTags(_ *Merger, _ string, values []any) any {
	var tags []any
	seen := make(map[string]bool)
	for _, v := range values {
		list, _ := v.([]any)
		for _, t := range list {
			s, ok := t.(string)
			if !ok || seen[s] {
				continue
			}
			seen[s] = true
			tags = append(tags, s)
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}

// joinDistinct keeps a string shared by every source and joins distinct
// values with sep otherwise.
func joinDistinct(sep string) mergeFunc {
	return func(_ *Merger, _ string, values []any) any {
		distinct := distinctStrings(values)
		if len(distinct) == 0 {
			return nil
		}
		return strings.Join(distinct, sep)
	}
}

// mergeOperationID keeps an id shared by every source and concatenates
// distinct ids with "+" otherwise.
func mergeOperationID(m *Merger, key string, values []any) any {
	distinct := distinctStrings(values)
	switch len(distinct) {
	case 0:
		return nil
	case 1:
		return distinct[0]
	}
	merged := strings.Join(distinct, "+")
	m.report(Diagnostic{
		Kind:        MergedOperationID,
		OperationID: merged,
		Key:         key,
		Message:     fmt.Sprintf("merging operations with ids %s", strings.Join(distinct, ", ")),
	})
	return merged
}

// mergeParameters uses the only non-empty parameter list as is. With several
// lists, parameters are grouped by name in first-seen order and each group
// is deep-merged.
func mergeParameters(m *Merger, key string, values []any) any {
	var lists [][]any
	for _, v := range values {
		if list, ok := v.([]any); ok && len(list) > 0 {
			lists = append(lists, list)
		}
	}
	switch len(lists) {
	case 0:
		return nil
	case 1:
		return lists[0]
	}

	var order []string
	byName := make(map[string][]any)
	for _, list := range lists {
		for _, p := range list {
			obj, _ := p.(map[string]any)
			name, _ := obj["name"].(string)
			if _, ok := byName[name]; !ok {
				order = append(order, name)
			}
			byName[name] = append(byName[name], p)
		}
	}

	merged := make([]any, 0, len(order))
	for _, name := range order {
		merged = append(merged, deepMerge(m, joinKey(key, name), byName[name]))
	}
	return merged
}

// mergeDeprecated is the logical OR of all sources; false is dropped.
func mergeDeprecated(_ *Merger, _ string, values []any) any {
	for _, v := range values {
		if b, ok := v.(bool); ok && b {
			return true
		}
	}
	return nil
}

func distinctStrings(values []any) []string {
	var out []string
	seen := make(map[string]bool)
	for _, v := range values {
		s, ok := v.(string)
		if !ok || s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func allObjects(values []any) bool {
	found := false
	for _, v := range values {
		if v == nil {
			continue
		}
		if _, ok := v.(map[string]any); !ok {
			return false
		}
		found = true
	}
	return found
}

func nonNil(values []any) []any {
	for _, v := range values {
		if v == nil {
			out := make([]any, 0, len(values))
			for _, v := range values {
				if v != nil {
					out = append(out, v)
				}
			}
			return out
		}
	}
	return values
}

func joinKey(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}
