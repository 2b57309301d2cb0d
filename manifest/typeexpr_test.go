package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/oasgen/openapi"
)

func TestParseType(t *testing.T) {
	item := &openapi.Model{Name: "Item"}
	named := map[string]openapi.Type{
		"Item":       item,
		"api.Item":   item,
		"Ambiguous":  nil,
		"billing.v1": item,
	}

	tests := []struct {
		expr string
		want openapi.Type
	}{
		{"string", openapi.String},
		{" integer ", openapi.Integer},
		{"number", openapi.Number},
		{"boolean", openapi.Boolean},
		{"binary", openapi.Binary},
		{"any", openapi.Any},
		{"string:date-time", openapi.DateTime},
		{"integer:int64", openapi.Primitive{Type: "integer", Format: "int64"}},
		{"[]string", openapi.Array{Items: openapi.String}},
		{"?integer", openapi.Optional{Elem: openapi.Integer}},
		{"[]?Item", openapi.Array{Items: openapi.Optional{Elem: item}}},
		{"map", openapi.Map{}},
		{"map[number]", openapi.Map{Values: openapi.Number}},
		{"map[[]Item]", openapi.Map{Values: openapi.Array{Items: item}}},
		{"Item", item},
		{"api.Item", item},
		{"billing.v1", item},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := parseType(tt.expr, named)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	errTests := []struct {
		expr string
		want error
	}{
		{"", ErrSyntax},
		{"[]", ErrSyntax},
		{"map[string", ErrSyntax},
		{"string:", ErrSyntax},
		{"Item:uuid", ErrSyntax},
		{"It em", ErrSyntax},
		{"Item<T>", ErrSyntax},
		{"Missing", ErrUnknownName},
		{"Ambiguous", ErrUnknownName},
		{"?Missing", ErrUnknownName},
	}
	for _, tt := range errTests {
		t.Run("invalid "+tt.expr, func(t *testing.T) {
			_, err := parseType(tt.expr, named)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
