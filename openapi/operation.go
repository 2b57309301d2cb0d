package openapi

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// methodsWithBody lists the methods whose operations document a request body.
var methodsWithBody = map[string]bool{
	http.MethodGet:    true,
	http.MethodHead:   true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodDelete: true,
	http.MethodPatch:  true,
}

// statusRangeDescriptions are the fallback descriptions for range keys.
var statusRangeDescriptions = map[string]string{
	"1XX":     "Information",
	"2XX":     "Success",
	"3XX":     "Redirection",
	"4XX":     "Client Error",
	"5XX":     "Server Error",
	"DEFAULT": "Default Response",
}

const validationErrorStatus = "422"

// validationErrorSchemas are the component schemas referenced by the
// injected 422 response.
func validationErrorSchemas() map[string]*Schema {
	return map[string]*Schema{
		"ValidationError": {
			Title: "ValidationError",
			Type:  "object",
			Properties: map[string]*Schema{
				"loc":  {Title: "Location", Type: "array", Items: &Schema{Type: "string"}},
				"msg":  {Title: "Message", Type: "string"},
				"type": {Title: "Error Type", Type: "string"},
			},
			Required: []string{"loc", "msg", "type"},
		},
		"HTTPValidationError": {
			Title: "HTTPValidationError",
			Type:  "object",
			Properties: map[string]*Schema{
				"detail": {
					Title: "Detail",
					Type:  "array",
					Items: &Schema{Ref: refPrefix + "ValidationError"},
				},
			},
		},
	}
}

// titleCase upper-cases the first letter of every word and lower-cases the
// rest ("list_items" -> "List Items" after underscore replacement). Digits do
// not start a new word: "v2beta" becomes "V2beta".
func titleCase(s string) string {
	// A Caser is stateful, so one is created per call.
	return cases.Title(language.English).String(s)
}

// operationSummary returns the explicit summary or one derived from the
// route name.
func operationSummary(r *Route) string {
	if r.Summary != "" {
		return r.Summary
	}
	return titleCase(strings.ReplaceAll(r.Name, "_", " "))
}

// bodyAllowed reports whether a response with the given status key may
// carry content. Ranges and "default" always may.
func bodyAllowed(key string) bool {
	if _, ok := statusRangeDescriptions[strings.ToUpper(key)]; ok {
		return true
	}
	code, err := strconv.Atoi(key)
	if err != nil {
		return true
	}
	return code >= 200 && code != http.StatusNoContent &&
		code != http.StatusResetContent && code != http.StatusNotModified
}

// additionalResponseDescription resolves the description of a declared
// response: explicit, then existing, then range default, then the HTTP
// reason phrase, then "Additional Response".
func additionalResponseDescription(key, explicit, existing string) string {
	if explicit != "" {
		return explicit
	}
	if existing != "" {
		return existing
	}
	if text, ok := statusRangeDescriptions[strings.ToUpper(key)]; ok {
		return text
	}
	if code, err := strconv.Atoi(key); err == nil {
		if text := http.StatusText(code); text != "" {
			return text
		}
	}
	return "Additional Response"
}

// pathItem builds the operations of every method of a route. Hidden routes
// produce nil.
func (g *generation) pathItem(r *Route) (*PathItem, error) {
	if r.Hidden {
		return nil, nil
	}
	item := &PathItem{}
	for _, method := range r.Methods {
		op, err := g.buildOperation(r, method)
		if err != nil {
			return nil, err
		}
		assignOperation(item, method, op)
	}
	return item, nil
}

// buildOperation converts one (route, method) pair into an Operation.
//
// See: https://spec.openapis.org/oas/v3.0.3#operation-object
func (g *generation) buildOperation(r *Route, method string) (*Operation, error) {
	op := &Operation{
		Tags:        uniqueStrings(r.Tags),
		Summary:     operationSummary(r),
		Description: r.Description,
		Deprecated:  r.Deprecated,
		Responses:   make(map[string]*Response),
	}

	op.OperationID = r.OperationID
	if op.OperationID == "" {
		op.OperationID = r.UniqueID()
	}
	if err := g.registerOperationID(op.OperationID, pathTemplate(r.Path), method); err != nil {
		return nil, err
	}

	flat := r.flatten()

	// An empty list documents that no authentication is required.
	op.Security = make([]SecurityRequirement, 0, len(flat.security))
	for _, sec := range flat.security {
		g.securitySchemes[sec.Scheme] = sec.Definition
		scopes := make([]string, len(sec.Scopes))
		copy(scopes, sec.Scopes)
		op.Security = append(op.Security, SecurityRequirement{sec.Scheme: scopes})
	}

	params, err := g.parameters(flat.parameters)
	if err != nil {
		return nil, err
	}
	op.Parameters = params

	if methodsWithBody[method] && r.Body != nil {
		body, err := g.requestBody(r.Body)
		if err != nil {
			return nil, err
		}
		op.RequestBody = body
	}

	if len(r.Callbacks) > 0 {
		callbacks := make(map[string]Callback, len(r.Callbacks))
		for _, cb := range r.Callbacks {
			item, err := g.pathItem(cb)
			if err != nil {
				return nil, err
			}
			if item == nil {
				continue
			}
			callbacks[cb.Name] = Callback{cb.Path: item}
		}
		if len(callbacks) > 0 {
			op.Callbacks = callbacks
		}
	}

	if err := g.defaultResponse(op, r); err != nil {
		return nil, err
	}
	if err := g.additionalResponses(op, r); err != nil {
		return nil, err
	}

	if len(flat.parameters) > 0 || r.Body != nil {
		_, has422 := op.Responses[validationErrorStatus]
		_, has4XX := op.Responses["4XX"]
		_, hasDefault := op.Responses["default"]
		if !has422 && !has4XX && !hasDefault {
			op.Responses[validationErrorStatus] = &Response{
				Description: "Validation Error",
				Content: map[string]*MediaType{
					"application/json": {Schema: &Schema{Ref: refPrefix + "HTTPValidationError"}},
				},
			}
			g.validationErrors = true
		}
	}

	if len(r.Extra) > 0 {
		if err := updateTyped(op, r.Extra); err != nil {
			return nil, fmt.Errorf("apply extra fields to %s %s: %w", method, r.Path, err)
		}
	}

	return op, nil
}

// registerOperationID records an emitted id. Reuse is reported and kept as
// is; in reject mode reuse at a different path template is an error.
func (g *generation) registerOperationID(id, path, method string) error {
	first, dup := g.operationIDs[id]
	if !dup {
		g.operationIDs[id] = path
		return nil
	}
	if g.spec.duplicateIDs == DuplicateIDReject && first != path {
		return &DuplicateOperationIDError{OperationID: id, Path: path, FirstPath: first}
	}
	g.rep.report(Diagnostic{
		Kind:        DuplicateOperationID,
		OperationID: id,
		Path:        path,
		Method:      method,
		Message:     fmt.Sprintf("duplicate operation id %s", id),
	})
	return nil
}

// parameters renders the schema-visible parameters. A later parameter with
// the same name replaces an earlier one in place.
//
// See: https://spec.openapis.org/oas/v3.0.3#parameter-object
func (g *generation) parameters(fields []*Field) ([]*Parameter, error) {
	var (
		order  []string
		byName = make(map[string]*Parameter)
	)
	for _, f := range fields {
		if f.Hidden {
			continue
		}
		schema, err := fieldSchema(f, g.names)
		if err != nil {
			return nil, err
		}
		p := &Parameter{
			Name:        f.Alias,
			In:          string(f.In),
			Required:    f.Required || f.In == InPath,
			Schema:      schema,
			Description: f.Description,
			Deprecated:  f.Deprecated,
		}
		if len(f.Examples) > 0 {
			p.Examples = f.Examples
		} else if f.Example != nil {
			p.Example = f.Example
		}
		if _, ok := byName[f.Alias]; !ok {
			order = append(order, f.Alias)
		}
		byName[f.Alias] = p
	}

	if len(order) == 0 {
		return nil, nil
	}
	params := make([]*Parameter, 0, len(order))
	for _, name := range order {
		params = append(params, byName[name])
	}
	return params, nil
}

// requestBody renders the body field.
//
// See: https://spec.openapis.org/oas/v3.0.3#request-body-object
func (g *generation) requestBody(f *Field) (*RequestBody, error) {
	schema, err := fieldSchema(f, g.names)
	if err != nil {
		return nil, err
	}
	mt := &MediaType{Schema: schema}
	if len(f.Examples) > 0 {
		mt.Examples = f.Examples
	} else if f.Example != nil {
		mt.Example = f.Example
	}
	return &RequestBody{
		Required: f.Required,
		Content:  map[string]*MediaType{f.mediaType(): mt},
	}, nil
}

// defaultResponse adds the route's own response at its status code.
func (g *generation) defaultResponse(op *Operation, r *Route) error {
	class := r.responseClass()
	status := r.StatusCode
	if status == 0 {
		status = class.StatusCode
	}
	if status == 0 {
		status = http.StatusOK
	}
	key := strconv.Itoa(status)

	resp := &Response{Description: r.responseDescription()}
	if class.MediaType != "" && bodyAllowed(key) {
		schema := &Schema{Type: "string"}
		if class.JSON {
			schema = &Schema{}
			if r.ResponseModel != nil {
				s, err := r.ResponseModel.Schema(g.names)
				if err != nil {
					return &SchemaError{Field: "response", Err: err}
				}
				schema = s
			}
		}
		resp.Content = map[string]*MediaType{class.MediaType: {Schema: schema}}
	}
	op.Responses[key] = resp
	return nil
}

// additionalResponses merges the explicitly declared responses into the
// operation. Keys are processed in sorted order.
func (g *generation) additionalResponses(op *Operation, r *Route) error {
	if len(r.Responses) == 0 {
		return nil
	}
	keys := make([]string, 0, len(r.Responses))
	for k := range r.Responses {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	mediaType := r.responseClass().MediaType
	if mediaType == "" {
		mediaType = "application/json"
	}

	for _, rawKey := range keys {
		ar := r.Responses[rawKey]
		if ar == nil {
			continue
		}
		key := strings.ToUpper(rawKey)
		if key == "DEFAULT" {
			key = "default"
		}

		declared := &Response{
			Content: ar.Content,
			Headers: ar.Headers,
			Links:   ar.Links,
		}
		patch, err := toTree(declared)
		if err != nil {
			return err
		}
		patchObj, _ := patch.(map[string]any)
		delete(patchObj, "description")

		if ar.Model != nil {
			schema, err := ar.Model.Schema(g.names)
			if err != nil {
				return &SchemaError{Field: "responses." + key, Err: err}
			}
			schemaTree, err := toTree(schema)
			if err != nil {
				return err
			}
			schemaObj, _ := schemaTree.(map[string]any)
			content, _ := patchObj["content"].(map[string]any)
			if content == nil {
				content = make(map[string]any)
				patchObj["content"] = content
			}
			media, _ := content[mediaType].(map[string]any)
			if media == nil {
				media = make(map[string]any)
				content[mediaType] = media
			}
			existing, _ := media["schema"].(map[string]any)
			media["schema"] = deepUpdate(existing, schemaObj)
		}

		resp := op.Responses[key]
		existingDesc := ""
		if resp == nil {
			resp = &Response{}
		} else {
			existingDesc = resp.Description
		}
		if err := updateTyped(resp, patchObj); err != nil {
			return err
		}
		resp.Description = additionalResponseDescription(key, ar.Description, existingDesc)
		op.Responses[key] = resp
	}
	return nil
}

// assignOperation assigns an operation to the HTTP method field of the
// path item.
func assignOperation(item *PathItem, method string, op *Operation) {
	switch method {
	case http.MethodGet:
		item.Get = op
	case http.MethodPost:
		item.Post = op
	case http.MethodPut:
		item.Put = op
	case http.MethodDelete:
		item.Delete = op
	case http.MethodPatch:
		item.Patch = op
	case http.MethodHead:
		item.Head = op
	case http.MethodOptions:
		item.Options = op
	case http.MethodTrace:
		item.Trace = op
	}
}

// operations returns the operations of a path item in method order.
func (item *PathItem) operations() []*Operation {
	var ops []*Operation
	for _, op := range []*Operation{
		item.Get, item.Put, item.Post, item.Delete,
		item.Options, item.Head, item.Patch, item.Trace,
	} {
		if op != nil {
			ops = append(ops, op)
		}
	}
	return ops
}

func uniqueStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
