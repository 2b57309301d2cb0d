package openapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMerger() (*Merger, *[]Diagnostic) {
	var diags []Diagnostic
	return NewMerger(nil, func(d Diagnostic) { diags = append(diags, d) }), &diags
}

func TestMergeIdentity(t *testing.T) {
	t.Run("single object is returned unchanged", func(t *testing.T) {
		m, diags := newTestMerger()
		src := map[string]any{
			"operationId": "a",
			"tags":        []any{"x", "x"},
			"deprecated":  false,
			"nested":      map[string]any{"k": nil},
		}
		out := m.Merge(src)
		assert.Equal(t, src, out)
		assert.Empty(t, *diags)
	})

	t.Run("nil sources are ignored", func(t *testing.T) {
		m, _ := newTestMerger()
		src := map[string]any{"summary": "A"}
		assert.Equal(t, src, m.Merge(nil, src, nil))
	})

	t.Run("no sources", func(t *testing.T) {
		m, _ := newTestMerger()
		assert.Nil(t, m.Merge())
	})
}

func TestMergeStrategies(t *testing.T) {
	t.Run("tags union preserves first-seen order", func(t *testing.T) {
		m, _ := newTestMerger()
		out := m.Merge(
			map[string]any{"tags": []any{"a", "b"}},
			map[string]any{"tags": []any{"b", "c"}},
		)
		assert.Equal(t, map[string]any{"tags": []any{"a", "b", "c"}}, out)
	})

	t.Run("identical summaries are kept", func(t *testing.T) {
		m, _ := newTestMerger()
		out := m.Merge(
			map[string]any{"summary": "Upload"},
			map[string]any{"summary": "Upload"},
		)
		assert.Equal(t, map[string]any{"summary": "Upload"}, out)
	})

	t.Run("distinct summaries are joined", func(t *testing.T) {
		m, _ := newTestMerger()
		out := m.Merge(
			map[string]any{"summary": "A"},
			map[string]any{"summary": "B"},
			map[string]any{"summary": "A"},
		)
		assert.Equal(t, map[string]any{"summary": "A / B"}, out)
	})

	t.Run("distinct descriptions are joined", func(t *testing.T) {
		m, _ := newTestMerger()
		out := m.Merge(
			map[string]any{"description": "JSON body"},
			map[string]any{"description": "Form body"},
		)
		assert.Equal(t, map[string]any{"description": "JSON body\n\n OR \n\nForm body"}, out)
	})

	t.Run("distinct operation ids are concatenated", func(t *testing.T) {
		m, diags := newTestMerger()
		out := m.Merge(
			map[string]any{"operationId": "a"},
			map[string]any{"operationId": "b"},
		)
		assert.Equal(t, map[string]any{"operationId": "a+b"}, out)
		require.Len(t, *diags, 1)
		assert.Equal(t, MergedOperationID, (*diags)[0].Kind)
		assert.Equal(t, "a+b", (*diags)[0].OperationID)
	})

	t.Run("deprecated is a logical or", func(t *testing.T) {
		m, _ := newTestMerger()
		out := m.Merge(
			map[string]any{"deprecated": false},
			map[string]any{"deprecated": true},
		)
		assert.Equal(t, map[string]any{"deprecated": true}, out)
	})

	t.Run("false deprecated is dropped", func(t *testing.T) {
		m, _ := newTestMerger()
		out := m.Merge(
			map[string]any{"deprecated": false, "summary": "A"},
			map[string]any{"deprecated": false},
		)
		assert.Equal(t, map[string]any{"summary": "A"}, out)
	})

	t.Run("parameters are merged by name", func(t *testing.T) {
		m, _ := newTestMerger()
		out := m.Merge(
			map[string]any{"parameters": []any{
				map[string]any{"name": "q", "description": "search"},
			}},
			map[string]any{"parameters": []any{
				map[string]any{"name": "q", "in": "query"},
				map[string]any{"name": "page", "in": "query"},
			}},
		)
		assert.Equal(t, map[string]any{"parameters": []any{
			map[string]any{"name": "q", "description": "search", "in": "query"},
			map[string]any{"name": "page", "in": "query"},
		}}, out)
	})

	t.Run("single parameter list is used as is", func(t *testing.T) {
		m, _ := newTestMerger()
		params := []any{map[string]any{"name": "q"}}
		out := m.Merge(
			map[string]any{"parameters": params},
			map[string]any{"parameters": []any{}},
		)
		assert.Equal(t, map[string]any{"parameters": params}, out)
	})

	t.Run("content maps are deep merged", func(t *testing.T) {
		m, _ := newTestMerger()
		out := m.Merge(
			map[string]any{"content": map[string]any{"application/json": map[string]any{"schema": map[string]any{"type": "object"}}}},
			map[string]any{"content": map[string]any{"multipart/form-data": map[string]any{"schema": map[string]any{"type": "object"}}}},
		)
		content := out.(map[string]any)["content"].(map[string]any)
		assert.Contains(t, content, "application/json")
		assert.Contains(t, content, "multipart/form-data")
	})

	t.Run("strategies apply only to matching shapes", func(t *testing.T) {
		m, _ := newTestMerger()
		out := m.Merge(
			map[string]any{"properties": map[string]any{"description": map[string]any{"type": "string"}}},
			map[string]any{"properties": map[string]any{"description": map[string]any{"type": "string", "maxLength": 3}}},
		)
		assert.Equal(t, map[string]any{"properties": map[string]any{
			"description": map[string]any{"type": "string", "maxLength": 3},
		}}, out)
	})
}

func TestMergeLastWins(t *testing.T) {
	t.Run("differing scalars report a conflict", func(t *testing.T) {
		m, diags := newTestMerger()
		out := m.Merge(
			map[string]any{"x": map[string]any{"y": "1"}},
			map[string]any{"x": map[string]any{"y": "2"}},
		)
		assert.Equal(t, map[string]any{"x": map[string]any{"y": "2"}}, out)
		require.Len(t, *diags, 1)
		assert.Equal(t, MergeConflict, (*diags)[0].Kind)
		assert.Equal(t, "x.y", (*diags)[0].Key)
	})

	t.Run("equal values do not conflict", func(t *testing.T) {
		m, diags := newTestMerger()
		m.Merge(
			map[string]any{"required": []any{"a"}},
			map[string]any{"required": []any{"a"}},
		)
		assert.Empty(t, *diags)
	})

	t.Run("mixed object and scalar takes the last", func(t *testing.T) {
		m, _ := newTestMerger()
		out := m.Merge(
			map[string]any{"x": map[string]any{"a": "b"}},
			map[string]any{"x": "plain"},
		)
		assert.Equal(t, map[string]any{"x": "plain"}, out)
	})

	t.Run("null values are dropped", func(t *testing.T) {
		m, _ := newTestMerger()
		out := m.Merge(
			map[string]any{"x": nil, "y": "1"},
			map[string]any{"x": nil},
		)
		assert.Equal(t, map[string]any{"y": "1"}, out)
	})
}

func TestMergePathItems(t *testing.T) {
	jsonBody := &RequestBody{Required: true, Content: map[string]*MediaType{
		"application/json": {Schema: &Schema{Ref: refPrefix + "UploadRequest"}},
	}}
	formBody := &RequestBody{Required: true, Content: map[string]*MediaType{
		"multipart/form-data": {Schema: &Schema{Ref: refPrefix + "UploadForm"}},
	}}
	ok := map[string]*Response{"201": {Description: "Successful Response"}}

	t.Run("single item is returned unchanged", func(t *testing.T) {
		m, _ := newTestMerger()
		item := &PathItem{Get: &Operation{OperationID: "a", Responses: ok}}
		out, err := m.MergePathItems("/a", item)
		require.NoError(t, err)
		assert.Same(t, item, out)
	})

	t.Run("same id and method combine content types", func(t *testing.T) {
		m, diags := newTestMerger()
		out, err := m.MergePathItems("/upload",
			&PathItem{Post: &Operation{OperationID: "upload_json", Tags: []string{"uploads"}, RequestBody: jsonBody, Responses: ok, Security: []SecurityRequirement{}}},
			&PathItem{Post: &Operation{OperationID: "upload_json", Tags: []string{"uploads"}, RequestBody: formBody, Responses: ok, Security: []SecurityRequirement{}}},
		)
		require.NoError(t, err)
		require.NotNil(t, out.Post)
		assert.Equal(t, "upload_json", out.Post.OperationID)
		assert.Equal(t, []string{"uploads"}, out.Post.Tags)
		require.NotNil(t, out.Post.RequestBody)
		assert.True(t, out.Post.RequestBody.Required)
		assert.Contains(t, out.Post.RequestBody.Content, "application/json")
		assert.Contains(t, out.Post.RequestBody.Content, "multipart/form-data")
		assert.NotNil(t, out.Post.Security)
		assert.Empty(t, out.Post.Security)
		assert.Empty(t, *diags)
	})

	t.Run("different methods are kept side by side", func(t *testing.T) {
		m, diags := newTestMerger()
		out, err := m.MergePathItems("/items",
			&PathItem{Get: &Operation{OperationID: "list", Responses: ok}},
			&PathItem{Post: &Operation{OperationID: "create", Responses: ok}},
		)
		require.NoError(t, err)
		require.NotNil(t, out.Get)
		require.NotNil(t, out.Post)
		assert.Equal(t, "list", out.Get.OperationID)
		assert.Equal(t, "create", out.Post.OperationID)
		assert.Empty(t, *diags)
	})

	t.Run("different ids at one method are concatenated", func(t *testing.T) {
		m, diags := newTestMerger()
		out, err := m.MergePathItems("/items",
			&PathItem{Get: &Operation{OperationID: "a", Responses: ok}},
			&PathItem{Get: &Operation{OperationID: "b", Responses: ok}},
		)
		require.NoError(t, err)
		assert.Equal(t, "a+b", out.Get.OperationID)
		require.Len(t, *diags, 1)
		assert.Equal(t, MergedOperationID, (*diags)[0].Kind)
		assert.Equal(t, "/items", (*diags)[0].Path)
		assert.Equal(t, "GET", (*diags)[0].Method)
	})

	t.Run("vendor extensions survive", func(t *testing.T) {
		m, _ := newTestMerger()
		out, err := m.MergePathItems("/x",
			&PathItem{Get: &Operation{OperationID: "a", Responses: ok, Extensions: map[string]any{"x-internal": true}}},
			&PathItem{Get: &Operation{OperationID: "a", Responses: ok}},
		)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"x-internal": true}, out.Get.Extensions)
	})
}
