package openapi

import (
	"encoding/json"
)

// Document represents the root of an OpenAPI v3.0 document.
//
// See: https://spec.openapis.org/oas/v3.0.3#openapi-object
type Document struct {
	OpenAPI    string               `json:"openapi"`
	Info       Info                 `json:"info"`
	Servers    []Server             `json:"servers,omitempty"`
	Paths      map[string]*PathItem `json:"paths"`
	Components *Components          `json:"components,omitempty"`
	Tags       []Tag                `json:"tags,omitempty"`
}

// Info provides metadata about the API.
//
// See: https://spec.openapis.org/oas/v3.0.3#info-object
type Info struct {
	Title          string   `json:"title" yaml:"title" validate:"required"`
	Description    string   `json:"description,omitempty" yaml:"description"`
	TermsOfService string   `json:"termsOfService,omitempty" yaml:"terms_of_service"`
	Contact        *Contact `json:"contact,omitempty" yaml:"contact"`
	License        *License `json:"license,omitempty" yaml:"license"`
	Version        string   `json:"version" yaml:"version" validate:"required"`
}

// Contact represents contact information for the API.
//
// See: https://spec.openapis.org/oas/v3.0.3#contact-object
type Contact struct {
	Name  string `json:"name,omitempty" yaml:"name"`
	URL   string `json:"url,omitempty" yaml:"url"`
	Email string `json:"email,omitempty" yaml:"email"`
}

// License represents license information for the API.
//
// See: https://spec.openapis.org/oas/v3.0.3#license-object
type License struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url,omitempty" yaml:"url"`
}

// Server represents a server.
//
// See: https://spec.openapis.org/oas/v3.0.3#server-object
type Server struct {
	URL         string                     `json:"url" yaml:"url" validate:"required"`
	Description string                     `json:"description,omitempty" yaml:"description"`
	Variables   map[string]*ServerVariable `json:"variables,omitempty" yaml:"variables"`
}

// ServerVariable represents a server variable for URL template substitution.
//
// See: https://spec.openapis.org/oas/v3.0.3#server-variable-object
type ServerVariable struct {
	Enum        []string `json:"enum,omitempty" yaml:"enum"`
	Default     string   `json:"default" yaml:"default"`
	Description string   `json:"description,omitempty" yaml:"description"`
}

// PathItem describes the operations available on a single path.
//
// See: https://spec.openapis.org/oas/v3.0.3#path-item-object
type PathItem struct {
	Get     *Operation `json:"get,omitempty"`
	Put     *Operation `json:"put,omitempty"`
	Post    *Operation `json:"post,omitempty"`
	Delete  *Operation `json:"delete,omitempty"`
	Options *Operation `json:"options,omitempty"`
	Head    *Operation `json:"head,omitempty"`
	Patch   *Operation `json:"patch,omitempty"`
	Trace   *Operation `json:"trace,omitempty"`
}

// Operation describes a single API operation on a path.
//
// Security uses omitzero: a nil slice is omitted while an empty slice is
// kept, which marks the operation as explicitly unauthenticated.
//
// See: https://spec.openapis.org/oas/v3.0.3#operation-object
type Operation struct {
	Tags         []string              `json:"tags,omitempty"`
	Summary      string                `json:"summary,omitempty"`
	Description  string                `json:"description,omitempty"`
	OperationID  string                `json:"operationId,omitempty"`
	Parameters   []*Parameter          `json:"parameters,omitempty"`
	RequestBody  *RequestBody          `json:"requestBody,omitempty"`
	Responses    map[string]*Response  `json:"responses"`
	Callbacks    map[string]Callback   `json:"callbacks,omitempty"`
	Deprecated   bool                  `json:"deprecated,omitempty"`
	Security     []SecurityRequirement `json:"security,omitzero"`
	Servers      []Server              `json:"servers,omitempty"`
	ExternalDocs *ExternalDocs         `json:"externalDocs,omitempty"`

	// Extensions holds keys outside the fixed fields, such as "x-" vendor
	// fields. They are inlined on marshal.
	Extensions map[string]any `json:"-"`
}

type operationAlias Operation

var operationFields = map[string]bool{
	"tags": true, "summary": true, "description": true, "operationId": true,
	"parameters": true, "requestBody": true, "responses": true, "callbacks": true,
	"deprecated": true, "security": true, "servers": true, "externalDocs": true,
}

// MarshalJSON inlines vendor extensions next to the fixed fields.
func (o Operation) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(operationAlias(o))
	if err != nil || len(o.Extensions) == 0 {
		return data, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	for key, value := range o.Extensions {
		if operationFields[key] {
			continue
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		fields[key] = raw
	}
	return json.Marshal(fields)
}

// UnmarshalJSON decodes the fixed fields and collects every other key into
// Extensions.
func (o *Operation) UnmarshalJSON(data []byte) error {
	var alias operationAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	for key, raw := range fields {
		if operationFields[key] {
			continue
		}
		value, err := decodeTree(raw)
		if err != nil {
			return err
		}
		if alias.Extensions == nil {
			alias.Extensions = make(map[string]any)
		}
		alias.Extensions[key] = value
	}

	*o = Operation(alias)
	return nil
}

// Parameter describes a single operation parameter.
//
// See: https://spec.openapis.org/oas/v3.0.3#parameter-object
type Parameter struct {
	Name        string              `json:"name"`
	In          string              `json:"in"`
	Description string              `json:"description,omitempty"`
	Required    bool                `json:"required,omitempty"`
	Deprecated  bool                `json:"deprecated,omitempty"`
	Schema      *Schema             `json:"schema,omitempty"`
	Example     any                 `json:"example,omitempty"`
	Examples    map[string]*Example `json:"examples,omitempty"`
}

// RequestBody describes a single request body. Required is omitted when false.
//
// See: https://spec.openapis.org/oas/v3.0.3#request-body-object
type RequestBody struct {
	Description string                `json:"description,omitempty"`
	Required    bool                  `json:"required,omitempty"`
	Content     map[string]*MediaType `json:"content"`
}

// Response describes a single response from an API operation.
//
// See: https://spec.openapis.org/oas/v3.0.3#response-object
type Response struct {
	Description string                `json:"description"`
	Headers     map[string]*Header    `json:"headers,omitempty"`
	Content     map[string]*MediaType `json:"content,omitempty"`
	Links       map[string]*Link      `json:"links,omitempty"`
}

// MediaType describes a media type with a schema and optional example.
//
// See: https://spec.openapis.org/oas/v3.0.3#media-type-object
type MediaType struct {
	Schema   *Schema             `json:"schema,omitempty"`
	Example  any                 `json:"example,omitempty"`
	Examples map[string]*Example `json:"examples,omitempty"`
}

// Header describes a single response header.
//
// See: https://spec.openapis.org/oas/v3.0.3#header-object
type Header struct {
	Description string  `json:"description,omitempty"`
	Required    bool    `json:"required,omitempty"`
	Deprecated  bool    `json:"deprecated,omitempty"`
	Schema      *Schema `json:"schema,omitempty"`
}

// Schema represents an OpenAPI 3.0 Schema Object, an extended subset of
// JSON Schema Wright Draft 00.
//
// See: https://spec.openapis.org/oas/v3.0.3#schema-object
type Schema struct {
	Ref string `json:"$ref,omitempty"`

	Type   string `json:"type,omitempty"`
	Format string `json:"format,omitempty"`

	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Default     any    `json:"default,omitempty"`
	Example     any    `json:"example,omitempty"`
	Nullable    bool   `json:"nullable,omitempty"`
	Deprecated  bool   `json:"deprecated,omitempty"`
	ReadOnly    bool   `json:"readOnly,omitempty"`
	WriteOnly   bool   `json:"writeOnly,omitempty"`

	Minimum   *float64 `json:"minimum,omitempty"`
	Maximum   *float64 `json:"maximum,omitempty"`
	MinLength *int     `json:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`

	Items       *Schema `json:"items,omitempty"`
	MinItems    *int    `json:"minItems,omitempty"`
	MaxItems    *int    `json:"maxItems,omitempty"`
	UniqueItems bool    `json:"uniqueItems,omitempty"`

	Properties           map[string]*Schema `json:"properties,omitempty"`
	AdditionalProperties *Schema            `json:"additionalProperties,omitempty"`
	Required             []string           `json:"required,omitempty"`

	Enum []any `json:"enum,omitempty"`

	AllOf []*Schema `json:"allOf,omitempty"`
	OneOf []*Schema `json:"oneOf,omitempty"`
	AnyOf []*Schema `json:"anyOf,omitempty"`
}

// Components holds reusable OpenAPI objects.
//
// See: https://spec.openapis.org/oas/v3.0.3#components-object
type Components struct {
	Schemas         map[string]*Schema         `json:"schemas,omitempty"`
	SecuritySchemes map[string]*SecurityScheme `json:"securitySchemes,omitempty"`
}

// Tag adds metadata to a single tag used by Operation Objects.
//
// See: https://spec.openapis.org/oas/v3.0.3#tag-object
type Tag struct {
	Name         string        `json:"name" yaml:"name" validate:"required"`
	Description  string        `json:"description,omitempty" yaml:"description"`
	ExternalDocs *ExternalDocs `json:"externalDocs,omitempty" yaml:"external_docs"`
}

// ExternalDocs allows referencing external documentation.
//
// See: https://spec.openapis.org/oas/v3.0.3#external-documentation-object
type ExternalDocs struct {
	Description string `json:"description,omitempty" yaml:"description"`
	URL         string `json:"url" yaml:"url"`
}

// Example represents an example value.
//
// See: https://spec.openapis.org/oas/v3.0.3#example-object
type Example struct {
	Summary       string `json:"summary,omitempty" yaml:"summary"`
	Description   string `json:"description,omitempty" yaml:"description"`
	Value         any    `json:"value,omitempty" yaml:"value"`
	ExternalValue string `json:"externalValue,omitempty" yaml:"external_value"`
}

// SecurityScheme defines a security scheme used by API operations.
// The "type" field determines the scheme: "apiKey", "http", "oauth2",
// or "openIdConnect".
//
// See: https://spec.openapis.org/oas/v3.0.3#security-scheme-object
type SecurityScheme struct {
	Type             string      `json:"type" yaml:"type" validate:"required,oneof=apiKey http oauth2 openIdConnect"`
	Description      string      `json:"description,omitempty" yaml:"description"`
	Name             string      `json:"name,omitempty" yaml:"name"`
	In               string      `json:"in,omitempty" yaml:"in"`
	Scheme           string      `json:"scheme,omitempty" yaml:"scheme"`
	BearerFormat     string      `json:"bearerFormat,omitempty" yaml:"bearer_format"`
	Flows            *OAuthFlows `json:"flows,omitempty" yaml:"flows"`
	OpenIDConnectURL string      `json:"openIdConnectUrl,omitempty" yaml:"open_id_connect_url"`
}

// OAuthFlows describes the available OAuth2 flows.
//
// See: https://spec.openapis.org/oas/v3.0.3#oauth-flows-object
type OAuthFlows struct {
	Implicit          *OAuthFlow `json:"implicit,omitempty" yaml:"implicit"`
	Password          *OAuthFlow `json:"password,omitempty" yaml:"password"`
	ClientCredentials *OAuthFlow `json:"clientCredentials,omitempty" yaml:"client_credentials"`
	AuthorizationCode *OAuthFlow `json:"authorizationCode,omitempty" yaml:"authorization_code"`
}

// OAuthFlow describes a single OAuth2 flow configuration.
//
// See: https://spec.openapis.org/oas/v3.0.3#oauth-flow-object
type OAuthFlow struct {
	AuthorizationURL string            `json:"authorizationUrl,omitempty" yaml:"authorization_url"`
	TokenURL         string            `json:"tokenUrl,omitempty" yaml:"token_url"`
	RefreshURL       string            `json:"refreshUrl,omitempty" yaml:"refresh_url"`
	Scopes           map[string]string `json:"scopes" yaml:"scopes"`
}

// Link represents a possible design-time link for a response.
//
// See: https://spec.openapis.org/oas/v3.0.3#link-object
type Link struct {
	OperationRef string         `json:"operationRef,omitempty"`
	OperationID  string         `json:"operationId,omitempty"`
	Parameters   map[string]any `json:"parameters,omitempty"`
	Description  string         `json:"description,omitempty"`
}

// SecurityRequirement lists required security schemes for an operation.
// Each key maps to a list of scope names.
//
// See: https://spec.openapis.org/oas/v3.0.3#security-requirement-object
type SecurityRequirement map[string][]string

// Callback is a map of expressions to path items.
//
// See: https://spec.openapis.org/oas/v3.0.3#callback-object
type Callback map[string]*PathItem
