package openapi

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// A tree is the untyped form of a document fragment: map[string]any for
// objects, []any for arrays, and string, json.Number, bool or nil for
// scalars. Merging operates on trees; the typed model is converted to and
// from this form at the merge boundary.

// decodeTree decodes raw JSON into a tree, preserving numbers verbatim.
func decodeTree(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// toTree converts a typed value into a tree.
func toTree(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return decodeTree(data)
}

// fromTree converts a tree back into the typed value pointed to by out.
func fromTree(tree any, out any) error {
	data, err := json.Marshal(tree)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode tree into %T: %w", out, err)
	}
	return nil
}

// deepUpdate merges src into dst in place and returns dst. Nested objects
// are merged recursively, arrays are concatenated and any other value in
// src replaces the one in dst.
func deepUpdate(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for key, value := range src {
		switch sv := value.(type) {
		case map[string]any:
			if dv, ok := dst[key].(map[string]any); ok {
				dst[key] = deepUpdate(dv, sv)
				continue
			}
			dst[key] = deepUpdate(nil, sv)
		case []any:
			if dv, ok := dst[key].([]any); ok {
				merged := make([]any, 0, len(dv)+len(sv))
				merged = append(merged, dv...)
				dst[key] = append(merged, sv...)
				continue
			}
			dst[key] = sv
		default:
			dst[key] = value
		}
	}
	return dst
}

// updateTyped applies deepUpdate to the tree form of dst and stores the
// result back into dst.
func updateTyped[T any](dst *T, src map[string]any) error {
	tree, err := toTree(dst)
	if err != nil {
		return err
	}
	obj, _ := tree.(map[string]any)

	var out T
	if err := fromTree(deepUpdate(obj, src), &out); err != nil {
		return err
	}
	*dst = out
	return nil
}
