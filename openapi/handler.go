package openapi

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// DocsUI selects which interactive documentation UI to serve.
type DocsUI int

const (
	DocsSwaggerUI DocsUI = iota
	DocsRapiDoc
	DocsRedoc
)

// RouteSource supplies the current route list of the hosting service.
type RouteSource interface {
	Routes() []*Route
}

// RoutesFunc adapts a function to RouteSource.
type RoutesFunc func() []*Route

// Routes implements RouteSource.
func (f RoutesFunc) Routes() []*Route { return f() }

// RouteList is a fixed route list.
type RouteList []*Route

// Routes implements RouteSource.
func (l RouteList) Routes() []*Route { return l }

// Router is the registration surface of a request multiplexer such as
// *http.ServeMux.
type Router interface {
	HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request))
}

// HandleConfig configures the endpoints registered by Handle.
type HandleConfig struct {
	// UI selects the interactive docs UI (default: DocsSwaggerUI).
	UI DocsUI

	// Title overrides the HTML page title (default: spec info.title).
	Title string

	// JSONFilename is the path for the JSON endpoint (default:
	// "schema.json"). Set to "-" to disable. Relative paths are joined with
	// the base path, absolute paths are used as is.
	JSONFilename string

	// YAMLFilename is the path for the YAML endpoint (default:
	// "schema.yaml"). Set to "-" to disable.
	YAMLFilename string

	// DisableDocs disables the interactive HTML docs UI endpoint.
	DisableDocs bool

	// Regenerate rebuilds the document on every request so that routes
	// added at runtime show up. By default the document is built once on
	// first request.
	Regenerate bool

	// SwaggerUIConfig provides additional SwaggerUIBundle configuration
	// options, rendered as JavaScript object properties after url and dom_id.
	//
	// See: https://swagger.io/docs/open-source-tools/swagger-ui/usage/configuration/
	SwaggerUIConfig map[string]any
}

func (cfg HandleConfig) jsonFilename() string {
	if cfg.JSONFilename == "" {
		return "schema.json"
	}
	return cfg.JSONFilename
}

func (cfg HandleConfig) yamlFilename() string {
	if cfg.YAMLFilename == "" {
		return "schema.yaml"
	}
	return cfg.YAMLFilename
}

// resolvePath returns the full route path for a filename.
// Absolute filenames (starting with "/") are returned as-is.
// Relative filenames are joined under basePath.
func resolvePath(basePath, filename string) string {
	if strings.HasPrefix(filename, "/") {
		return filename
	}
	if basePath == "" {
		return "/" + filename
	}
	return basePath + "/" + filename
}

// Handle registers the document endpoints under basePath:
//
//	<basePath>/            - interactive HTML docs (unless DisableDocs)
//	<JSONFilename path>    - document as JSON  (unless JSONFilename is "-")
//	<YAMLFilename path>    - document as YAML  (unless YAMLFilename is "-")
//
// The config parameter is optional; pass nil for defaults:
//
//	spec.Handle(http.DefaultServeMux, "/docs", openapi.RouteList(routes), nil)
//
// A generation failure answers 500 and is logged.
func (s *Spec) Handle(r Router, basePath string, source RouteSource, cfg *HandleConfig) {
	if cfg == nil {
		cfg = &HandleConfig{}
	}
	basePath = strings.TrimRight(basePath, "/")
	docs := &documentCache{spec: s, source: source, regenerate: cfg.Regenerate}

	var jsonPath, yamlPath string

	if jsonFile := cfg.jsonFilename(); jsonFile != "-" {
		jsonPath = resolvePath(basePath, jsonFile)
		r.HandleFunc(jsonPath, docs.serve("application/json", (*Document).JSON))
	}

	if yamlFile := cfg.yamlFilename(); yamlFile != "-" {
		yamlPath = resolvePath(basePath, yamlFile)
		r.HandleFunc(yamlPath, docs.serve("application/x-yaml", (*Document).YAML))
	}

	if !cfg.DisableDocs {
		specURL := jsonPath
		if specURL == "" {
			specURL = yamlPath
		}
		if specURL != "" {
			s.registerDocs(r, basePath, cfg, specURL)
		}
	}
}

// documentCache builds documents for the handlers of one Handle call.
type documentCache struct {
	spec       *Spec
	source     RouteSource
	regenerate bool

	once sync.Once
	doc  *Document
	err  error
}

func (c *documentCache) document() (*Document, error) {
	if c.regenerate {
		return c.spec.Build(c.source.Routes())
	}
	c.once.Do(func() {
		c.doc, c.err = c.spec.Build(c.source.Routes())
	})
	return c.doc, c.err
}

func (c *documentCache) serve(contentType string, encode func(*Document) ([]byte, error)) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, req *http.Request) {
		doc, err := c.document()
		var data []byte
		if err == nil {
			data, err = encode(doc)
		}
		if err != nil {
			c.spec.logger().Error("failed to generate OpenAPI document",
				zap.String("url", req.URL.Path),
				zap.Error(err),
			)
			http.Error(w, "failed to generate OpenAPI document", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

// registerDocs registers the interactive HTML documentation page.
func (s *Spec) registerDocs(r Router, basePath string, cfg *HandleConfig, specURL string) {
	title := cfg.Title
	if title == "" {
		title = s.info.Title
	}

	var page string
	switch cfg.UI {
	case DocsRapiDoc:
		page = rapidocTemplate(title, specURL)
	case DocsRedoc:
		page = redocTemplate(title, specURL)
	default:
		page = swaggerUITemplate(title, specURL, cfg.SwaggerUIConfig)
	}
	data := []byte(page)

	handler := func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
	if basePath == "" {
		r.HandleFunc("/{$}", handler)
		return
	}
	r.HandleFunc(basePath, handler)
	r.HandleFunc(basePath+"/{$}", handler)
}

func swaggerUITemplate(title, specPath string, config map[string]any) string {
	var extra string
	if len(config) > 0 {
		keys := make([]string, 0, len(config))
		for k := range config {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var buf strings.Builder
		for _, k := range keys {
			v, err := json.Marshal(config[k])
			if err != nil {
				continue
			}
			fmt.Fprintf(&buf, ", %s: %s", k, v)
		}
		extra = buf.String()
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
<link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist/swagger-ui.css">
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist/swagger-ui-bundle.js"></script>
<script>
SwaggerUIBundle({url: %q, dom_id: "#swagger-ui"%s});
</script>
</body>
</html>`, html.EscapeString(title), specPath, extra)
}

func rapidocTemplate(title, specPath string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
<script type="module" src="https://unpkg.com/rapidoc/dist/rapidoc-min.js"></script>
</head>
<body>
<rapi-doc spec-url=%q></rapi-doc>
</body>
</html>`, html.EscapeString(title), specPath)
}

func redocTemplate(title, specPath string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
</head>
<body>
<redoc spec-url=%q></redoc>
<script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
</body>
</html>`, html.EscapeString(title), specPath)
}
