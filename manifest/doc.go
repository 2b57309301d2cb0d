// Package manifest loads route declarations from a YAML or JSON file and
// compiles them into openapi.Route values.
//
// A manifest declares models, enums, security schemes, named dependencies,
// route groups and routes:
//
//	models:
//	  - name: Item
//	    properties:
//	      - {name: id, type: integer, required: true}
//	      - {name: tags, type: "[]string"}
//	      - {name: parent, type: "?Item"}
//	security_schemes:
//	  api_key: {type: apiKey, in: header, name: X-API-Key}
//	dependencies:
//	  - name: auth
//	    security: [{scheme: api_key}]
//	routes:
//	  - name: show_item
//	    path: /items/{id}
//	    methods: [GET]
//	    dependencies: [auth]
//	    parameters:
//	      - {name: id, in: path, type: integer, required: true}
//	    response_model: Item
//
// Type expressions are primitives (string, integer, number, boolean, binary,
// any), primitives with a format ("string:date-time"), arrays ("[]T"),
// nullable types ("?T"), maps ("map", "map[T]") and declared model or enum
// names, optionally qualified by scope ("billing.Invoice"). Models may
// reference each other in any order. Unknown names, duplicate declarations
// and malformed expressions fail with an *Error wrapping ErrUnknownName,
// ErrDuplicateName or ErrSyntax.
package manifest
