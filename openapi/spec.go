package openapi

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// DefaultOpenAPIVersion is the version string emitted when none is set.
const DefaultOpenAPIVersion = "3.0.3"

// DuplicateIDPolicy controls how a reused operation id is handled.
type DuplicateIDPolicy int

const (
	// DuplicateIDWarn keeps duplicate ids as they are and reports a
	// diagnostic.
	DuplicateIDWarn DuplicateIDPolicy = iota
	// DuplicateIDReject aborts generation when an id is reused at a
	// different path template. Reuse at the same template is the merge case
	// and only warns.
	DuplicateIDReject
)

// Spec holds document-level metadata and generation options. It is not
// modified by Build, so one Spec may build documents concurrently once
// configured.
type Spec struct {
	info         Info
	version      string
	servers      []Server
	tags         []Tag
	log          *zap.Logger
	hook         func(Diagnostic)
	duplicateIDs DuplicateIDPolicy
}

// NewSpec creates a new spec builder with the given API info.
func NewSpec(info Info) *Spec {
	return &Spec{
		info:    info,
		version: DefaultOpenAPIVersion,
		log:     zap.NewNop(),
	}
}

// AddServer adds a server to the document.
func (s *Spec) AddServer(server Server) *Spec {
	s.servers = append(s.servers, server)
	return s
}

// AddTag adds a user-defined tag with optional description and external docs.
func (s *Spec) AddTag(tag Tag) *Spec {
	s.tags = append(s.tags, tag)
	return s
}

// SetOpenAPIVersion overrides the emitted "openapi" version string.
func (s *Spec) SetOpenAPIVersion(version string) *Spec {
	if version == "" {
		version = DefaultOpenAPIVersion
	}
	s.version = version
	return s
}

// SetLogger sets the logger diagnostics are written to. A nil logger
// disables logging.
func (s *Spec) SetLogger(log *zap.Logger) *Spec {
	if log == nil {
		log = zap.NewNop()
	}
	s.log = log
	return s
}

// OnDiagnostic registers a hook receiving every diagnostic. The hook may be
// called from concurrent Build calls.
func (s *Spec) OnDiagnostic(fn func(Diagnostic)) *Spec {
	s.hook = fn
	return s
}

// SetDuplicateIDPolicy selects how reused operation ids are handled.
func (s *Spec) SetDuplicateIDPolicy(policy DuplicateIDPolicy) *Spec {
	s.duplicateIDs = policy
	return s
}

func (s *Spec) logger() *zap.Logger {
	if s.log == nil {
		return zap.NewNop()
	}
	return s.log
}

// generation is the accumulator state of one Build call.
type generation struct {
	spec   *Spec
	runID  string
	rep    *reporter
	merger *Merger
	names  *nameMap

	// operationIDs maps each emitted id to the path it was first used at.
	operationIDs     map[string]string
	securitySchemes  map[string]*SecurityScheme
	validationErrors bool
}

func (s *Spec) newGeneration() *generation {
	runID := uuid.NewString()
	rep := &reporter{log: s.logger().With(zap.String("run_id", runID)), hook: s.hook}
	return &generation{
		spec:            s,
		runID:           runID,
		rep:             rep,
		merger:          &Merger{rep: rep},
		operationIDs:    make(map[string]string),
		securitySchemes: make(map[string]*SecurityScheme),
	}
}

// Build assembles a complete OpenAPI document from routes in declaration
// order. A malformed route or an unresolvable type aborts generation and no
// document is returned.
func (s *Spec) Build(routes []*Route) (*Document, error) {
	for _, r := range routes {
		if err := validateRoute(r); err != nil {
			return nil, err
		}
	}

	g := s.newGeneration()
	g.rep.log.Debug("generating document", zap.Int("routes", len(routes)))

	models := collectModels(routeTypes(routes))
	g.names = newNameMap(models)

	schemas, err := definitions(models, g.names)
	if err != nil {
		return nil, err
	}

	paths, err := g.paths(routes)
	if err != nil {
		return nil, err
	}

	if g.validationErrors {
		for name, def := range validationErrorSchemas() {
			if _, ok := schemas[name]; !ok {
				schemas[name] = def
			}
		}
	}

	doc := &Document{
		OpenAPI: s.version,
		Info:    s.info,
		Servers: s.servers,
		Paths:   paths,
		Tags:    s.documentTags(paths),
	}

	if len(schemas) > 0 || len(g.securitySchemes) > 0 {
		doc.Components = &Components{}
		if len(schemas) > 0 {
			doc.Components.Schemas = schemas
		}
		if len(g.securitySchemes) > 0 {
			doc.Components.SecuritySchemes = g.securitySchemes
		}
	}

	g.rep.log.Debug("document generated",
		zap.Int("paths", len(paths)),
		zap.Int("schemas", len(schemas)),
	)
	return doc, nil
}

// routeTypes returns every type reachable from the schema-visible routes,
// including callbacks.
func routeTypes(routes []*Route) []Type {
	var types []Type
	var walk func(r *Route)
	walk = func(r *Route) {
		if r == nil || r.Hidden {
			return
		}
		for _, p := range r.flatten().parameters {
			if !p.Hidden {
				types = append(types, p.Type)
			}
		}
		if r.Body != nil {
			types = append(types, r.Body.Type)
		}
		if r.ResponseModel != nil {
			types = append(types, r.ResponseModel)
		}
		for _, resp := range r.Responses {
			if resp != nil && resp.Model != nil {
				types = append(types, resp.Model)
			}
		}
		for _, cb := range r.Callbacks {
			walk(cb)
		}
	}
	for _, r := range routes {
		walk(r)
	}
	return types
}

// documentTags combines tags used by operations with user-defined tags.
// User-defined tags keep their description and externalDocs. The result is
// sorted by name.
func (s *Spec) documentTags(paths map[string]*PathItem) []Tag {
	userTags := make(map[string]Tag, len(s.tags))
	for _, tag := range s.tags {
		userTags[tag.Name] = tag
	}

	seen := make(map[string]bool)
	var tags []Tag
	add := func(tag Tag) {
		if seen[tag.Name] {
			return
		}
		seen[tag.Name] = true
		tags = append(tags, tag)
	}

	for _, item := range paths {
		for _, op := range item.operations() {
			for _, name := range op.Tags {
				if userTag, ok := userTags[name]; ok {
					add(userTag)
				} else {
					add(Tag{Name: name})
				}
			}
		}
	}
	for _, tag := range s.tags {
		add(tag)
	}

	sort.Slice(tags, func(i, j int) bool {
		return tags[i].Name < tags[j].Name
	})
	return tags
}

// JSON serializes the document with indentation. Object keys are emitted
// in sorted order, so equal documents serialize to identical bytes.
func (d *Document) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return data, nil
}

// YAML serializes the document. The JSON field names are used as keys.
func (d *Document) YAML() ([]byte, error) {
	tree, err := toTree(d)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	data, err := yaml.Marshal(yamlValue(tree))
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return data, nil
}

// yamlValue replaces json.Number leaves with native numbers so they are
// emitted unquoted.
func yamlValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = yamlValue(e)
		}
	case []any:
		for i, e := range t {
			t[i] = yamlValue(e)
		}
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	}
	return v
}
