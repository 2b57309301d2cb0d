// Package openapi generates OpenAPI 3.0.3 documents from route records
// supplied by a hosting web framework.
//
// The package does not discover routes. The caller hands Build an ordered
// list of Route values describing methods, path templates, dependency-
// injected parameters, request bodies and responses. Build walks them in
// declaration order and returns a complete Document.
//
// See: https://spec.openapis.org/oas/v3.0.3
//
// # Types
//
// Field and response types are described explicitly through the Type
// interface. Primitive, Array, Map, Optional and Constrained render inline
// fragments. Model and Enum are named types: every distinct TypeID is
// emitted once under components.schemas and referenced with $ref.
//
//	user := &openapi.Model{
//	    Name:  "User",
//	    Scope: "accounts",
//	    Properties: []*openapi.Property{
//	        {Name: "id", Type: openapi.Integer, Required: true},
//	        {Name: "email", Type: openapi.String},
//	    },
//	}
//
// Reflect derives a Type from a Go value using json and openapi struct tags.
//
// When two different types share a simple name, all of them are qualified
// with the last segment of their scope ("AccountsUser", "BillingUser").
// Naming depends only on the set of types, not on route order.
//
// # Building a document
//
//	spec := openapi.NewSpec(openapi.Info{Title: "Store", Version: "1.0.0"})
//	doc, err := spec.Build([]*openapi.Route{
//	    {
//	        Name:          "get_user",
//	        Path:          "/users/{id}",
//	        Methods:       []string{http.MethodGet},
//	        Dependencies:  []*openapi.Dependency{{Parameters: []*openapi.Field{
//	            {Alias: "id", In: openapi.InPath, Type: openapi.Integer, Required: true},
//	        }}},
//	        ResponseModel: user,
//	    },
//	})
//
// Operations with parameters or a body get a 422 "Validation Error"
// response unless they declare 422, 4XX or default themselves.
//
// # Merging
//
// Routes registered at the same path template are merged into one path
// item. Operations sharing an operationId at the same method are combined:
// tags are united, differing summaries and descriptions are joined,
// parameters are merged by name, content maps are deep-merged and any other
// differing value is resolved in favor of the later route. Merge conflicts
// and concatenated operation ids are reported as diagnostics through the
// zap logger and the OnDiagnostic hook. They never change the document
// and never fail the build.
//
// # Serving
//
// Handle registers JSON, YAML and interactive docs endpoints on a Router
// such as *http.ServeMux:
//
//	mux := http.NewServeMux()
//	spec.Handle(mux, "/docs", openapi.RouteList(routes), &openapi.HandleConfig{
//	    UI:         openapi.DocsRedoc,
//	    Regenerate: true,
//	})
//
// Build keeps all accumulator state in a per-call context, so documents may
// be generated from concurrent requests.
package openapi
