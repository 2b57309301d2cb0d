package manifest

import (
	"fmt"
	"strings"

	"github.com/vitalvas/oasgen/openapi"
)

// primitives are the built-in type names of type expressions.
var primitives = map[string]openapi.Primitive{
	"string":  openapi.String,
	"integer": openapi.Integer,
	"number":  openapi.Number,
	"boolean": openapi.Boolean,
	"binary":  openapi.Binary,
	"any":     openapi.Any,
}

// parseType parses a type expression:
//
//	string | integer | number | boolean | binary | any
//	string:date-time      primitive with a format
//	[]T                   array of T
//	?T                    nullable T
//	map                   object with arbitrary values
//	map[T]                object with values of T
//	Name                  a declared model or enum
//	scope.Name            a declared model or enum, qualified by scope
func parseType(expr string, named map[string]openapi.Type) (openapi.Type, error) {
	expr = strings.TrimSpace(expr)
	switch {
	case expr == "":
		return nil, fmt.Errorf("%w: empty type expression", ErrSyntax)
	case strings.HasPrefix(expr, "?"):
		elem, err := parseType(expr[1:], named)
		if err != nil {
			return nil, err
		}
		return openapi.Optional{Elem: elem}, nil
	case strings.HasPrefix(expr, "[]"):
		items, err := parseType(expr[2:], named)
		if err != nil {
			return nil, err
		}
		return openapi.Array{Items: items}, nil
	case expr == "map":
		return openapi.Map{}, nil
	case strings.HasPrefix(expr, "map["):
		if !strings.HasSuffix(expr, "]") {
			return nil, fmt.Errorf("%w: unterminated map type %q", ErrSyntax, expr)
		}
		values, err := parseType(expr[len("map["):len(expr)-1], named)
		if err != nil {
			return nil, err
		}
		return openapi.Map{Values: values}, nil
	}

	base, format, hasFormat := strings.Cut(expr, ":")
	if prim, ok := primitives[base]; ok {
		if hasFormat {
			if format == "" {
				return nil, fmt.Errorf("%w: empty format in %q", ErrSyntax, expr)
			}
			prim.Format = format
		}
		return prim, nil
	}
	if hasFormat {
		return nil, fmt.Errorf("%w: format on non-primitive type %q", ErrSyntax, expr)
	}
	for _, r := range expr {
		if !isNameRune(r) {
			return nil, fmt.Errorf("%w: invalid character %q in type %q", ErrSyntax, r, expr)
		}
	}
	if t, ok := named[expr]; ok {
		if t == nil {
			return nil, fmt.Errorf("%w: type %q is ambiguous, qualify it with its scope", ErrUnknownName, expr)
		}
		return t, nil
	}
	return nil, fmt.Errorf("%w: type %q", ErrUnknownName, expr)
}

func isNameRune(r rune) bool {
	return r == '_' || r == '.' || r == '/' || r == '-' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
