package openapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPkgPrefix(t *testing.T) {
	tests := []struct {
		scope string
		want  string
	}{
		{"", ""},
		{"api", "Api"},
		{"net/http", "Http"},
		{"example.com/my-service/models", "Models"},
		{"example.com/my-service", "My_service"},
		{"billing.v1", "V1"},
	}
	for _, tt := range tests {
		t.Run(tt.scope, func(t *testing.T) {
			assert.Equal(t, tt.want, pkgPrefix(tt.scope))
		})
	}
}

func TestSanitizeSchemaName(t *testing.T) {
	assert.Equal(t, "User", sanitizeSchemaName("User"))
	assert.Equal(t, "PageUser", sanitizeSchemaName("Page[User]"))
	assert.Equal(t, "PageUser", sanitizeSchemaName("Page[example.com/api.User]"))
	assert.Equal(t, "PageUserList", sanitizeSchemaName("Page[[]User]"))
}

func TestNameMap(t *testing.T) {
	t.Run("unique names stay simple", func(t *testing.T) {
		user := &Model{Name: "User", Scope: "example.com/api"}
		item := &Model{Name: "Item", Scope: "example.com/api"}
		names := newNameMap(collectModels([]Type{user, item}))

		ref, err := names.Ref(user)
		require.NoError(t, err)
		assert.Equal(t, refPrefix+"User", ref)
	})

	t.Run("clashes on the last scope segment get a suffix", func(t *testing.T) {
		a := &Model{Name: "User", Scope: "a.example.com/api"}
		b := &Model{Name: "User", Scope: "b.example.com/api"}
		names := newNameMap(collectModels([]Type{b, a}))

		nameA, ok := names.Name(a)
		require.True(t, ok)
		nameB, ok := names.Name(b)
		require.True(t, ok)
		assert.Equal(t, "ApiUser", nameA)
		assert.Equal(t, "ApiUser2", nameB)
	})

	t.Run("unregistered type", func(t *testing.T) {
		names := newNameMap(nil)
		_, err := names.Ref(&Model{Name: "Ghost"})
		assert.Error(t, err)
	})
}

func TestCollectModels(t *testing.T) {
	user := userModel("example.com/api")
	status := &Enum{Name: "Status", Scope: "example.com/api", Values: []any{"a"}}
	wrapper := &Model{Name: "Wrapper", Scope: "example.com/api", Properties: []*Property{
		{Name: "users", Type: Array{Items: user}},
		{Name: "byID", Type: Map{Values: Optional{Elem: userModel("example.com/api")}}},
		{Name: "status", Type: Constrained{Elem: status}},
	}}

	models := collectModels([]Type{String, wrapper, nil})
	require.Len(t, models, 3)
	assert.Equal(t, "example.com/api.Status", models[0].Identity().String())
	assert.Equal(t, "example.com/api.User", models[1].Identity().String())
	assert.Equal(t, "example.com/api.Wrapper", models[2].Identity().String())
}

func TestTypeSchemas(t *testing.T) {
	names := newNameMap(collectModels([]Type{userModel("")}))

	t.Run("constrained reference", func(t *testing.T) {
		s, err := Constrained{Elem: userModel(""), Enum: []any{"x"}}.Schema(names)
		require.NoError(t, err)
		require.Len(t, s.AllOf, 1)
		assert.Equal(t, refPrefix+"User", s.AllOf[0].Ref)
		assert.Equal(t, []any{"x"}, s.Enum)
	})

	t.Run("constrained array", func(t *testing.T) {
		minItems := 1
		s, err := Constrained{Elem: Array{Items: String}, MinItems: &minItems, UniqueItems: true}.Schema(names)
		require.NoError(t, err)
		assert.Equal(t, "array", s.Type)
		assert.Equal(t, &minItems, s.MinItems)
		assert.True(t, s.UniqueItems)
	})

	t.Run("optional primitive", func(t *testing.T) {
		s, err := Optional{Elem: Integer}.Schema(names)
		require.NoError(t, err)
		assert.Equal(t, &Schema{Type: "integer", Nullable: true}, s)
	})

	t.Run("map", func(t *testing.T) {
		s, err := Map{Values: String}.Schema(names)
		require.NoError(t, err)
		assert.Equal(t, &Schema{Type: "object", AdditionalProperties: &Schema{Type: "string"}}, s)
	})

	t.Run("missing element types", func(t *testing.T) {
		for _, typ := range []Type{Array{}, Optional{}, Constrained{}} {
			_, err := typ.Schema(names)
			assert.Error(t, err)
		}
	})

	t.Run("model definition", func(t *testing.T) {
		def, err := userModel("").Definition(names)
		require.NoError(t, err)
		assert.Equal(t, "User", def.Title)
		assert.Equal(t, "object", def.Type)
		assert.Equal(t, []string{"id"}, def.Required)
		assert.Len(t, def.Properties, 2)
	})

	t.Run("property annotations wrap references", func(t *testing.T) {
		m := &Model{Name: "Holder", Properties: []*Property{
			{Name: "owner", Type: userModel(""), Description: "Owner", ReadOnly: true},
		}}
		def, err := m.Definition(names)
		require.NoError(t, err)
		owner := def.Properties["owner"]
		assert.Equal(t, "Owner", owner.Description)
		assert.True(t, owner.ReadOnly)
		assert.Equal(t, refPrefix+"User", owner.AllOf[0].Ref)
	})

	t.Run("enum definition", func(t *testing.T) {
		def, err := (&Enum{Name: "Level", Type: "integer", Values: []any{1, 2}}).Definition(names)
		require.NoError(t, err)
		assert.Equal(t, &Schema{Title: "Level", Type: "integer", Enum: []any{1, 2}}, def)
	})
}
