package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/vitalvas/oasgen/openapi"
)

const testManifest = `
models:
  - name: Item
    properties:
      - {name: id, type: integer, required: true}
      - {name: name, type: string}
routes:
  - name: list_items
    path: /items
    methods: [GET]
    tags: [items]
    parameters:
      - {name: limit, type: integer}
    response_model: "[]Item"
  - name: get_item
    path: /items/{id}
    methods: [GET]
    tags: [items]
    parameters:
      - {name: id, in: path, type: integer}
    response_model: Item
`

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestGenerateOptionsFromFlags(t *testing.T) {
	var captured *GenerateOptions
	var capturedCfg *Config
	generateRunner = func(_ context.Context, _ io.Writer, cfg *Config, _ *zap.Logger, opts *GenerateOptions) error {
		captured, capturedCfg = opts, cfg
		return nil
	}
	t.Cleanup(func() { generateRunner = runGenerate })

	t.Run("explicit flags", func(t *testing.T) {
		_, err := execute(t, "--verbose", "generate", "-m", "routes.yaml", "-o", "out.json", "--format", "YAML", "--validate")
		require.NoError(t, err)
		require.NotNil(t, captured)

		assert.Equal(t, "routes.yaml", captured.Manifest)
		assert.Equal(t, "out.json", captured.Out)
		assert.Equal(t, "yaml", captured.Format)
		assert.True(t, captured.Validate)
		assert.Equal(t, "API", capturedCfg.Info.Title)
	})

	t.Run("format derived from output", func(t *testing.T) {
		_, err := execute(t, "generate", "--manifest", "routes.yaml", "--out", "openapi.yml")
		require.NoError(t, err)
		assert.Equal(t, "yaml", captured.Format)

		_, err = execute(t, "generate", "--manifest", "routes.yaml")
		require.NoError(t, err)
		assert.Equal(t, "json", captured.Format)
	})

	t.Run("config file", func(t *testing.T) {
		cfgPath := writeFile(t, t.TempDir(), "oasgen.yaml", `
info: {title: Shop, version: 2.0.0}
servers: [{url: "https://shop.example.com"}]
reject_duplicate_ids: true
`)
		_, err := execute(t, "--config", cfgPath, "generate", "-m", "routes.yaml")
		require.NoError(t, err)
		assert.Equal(t, "Shop", capturedCfg.Info.Title)
		assert.Equal(t, "2.0.0", capturedCfg.Info.Version)
		assert.Equal(t, []openapi.Server{{URL: "https://shop.example.com"}}, capturedCfg.Servers)
		assert.True(t, capturedCfg.RejectDuplicateIDs)
	})
}

func TestUsageErrors(t *testing.T) {
	dir := t.TempDir()
	tests := map[string][]string{
		"unknown flag":          {"generate", "--unknown-flag"},
		"missing manifest":      {"generate"},
		"unsupported format":    {"generate", "-m", "routes.yaml", "--format", "xml"},
		"invalid config":        {"--config", writeFile(t, dir, "bad.yaml", "openapi_version: 3.1.0"), "generate", "-m", "routes.yaml"},
		"invalid log level":     {"--config", writeFile(t, dir, "level.yaml", "log: {level: loud}"), "generate", "-m", "routes.yaml"},
		"unparsable config":     {"--config", writeFile(t, dir, "broken.yaml", "info: ["), "generate", "-m", "routes.yaml"},
		"serve without input":   {"serve"},
		"serve with unknown ui": {"serve", "-m", "routes.yaml", "--ui", "scalar"},
		"validate without file": {"validate"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := execute(t, args...)
			require.Error(t, err)
			if name != "validate without file" {
				assert.ErrorIs(t, err, ErrUsage)
			}
		})
	}

	t.Run("unknown flag shows usage", func(t *testing.T) {
		_, err := execute(t, "generate", "--unknown-flag")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown flag")
		assert.Contains(t, err.Error(), "Usage:")
	})
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	manifestPath := writeFile(t, dir, "routes.yaml", testManifest)

	t.Run("json to stdout", func(t *testing.T) {
		out, err := execute(t, "generate", "-m", manifestPath, "--validate")
		require.NoError(t, err)

		doc, err := decodeDocument([]byte(out))
		require.NoError(t, err)
		assert.Equal(t, openapi.DefaultOpenAPIVersion, doc["openapi"])
		assert.Contains(t, doc["paths"], "/items/{id}")
	})

	t.Run("yaml to file", func(t *testing.T) {
		outPath := filepath.Join(dir, "openapi.yaml")
		cfgPath := writeFile(t, dir, "oasgen.yaml", "info: {title: Items, version: 1.2.3}\ntags: [{name: items, description: Item catalog}]\n")

		out, err := execute(t, "--config", cfgPath, "generate", "-m", manifestPath, "-o", outPath)
		require.NoError(t, err)
		assert.Empty(t, out)

		data, err := os.ReadFile(outPath)
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, yaml.Unmarshal(data, &doc))
		assert.Equal(t, "Items", doc["info"].(map[string]any)["title"])
		assert.Equal(t, []any{map[string]any{"name": "items", "description": "Item catalog"}}, doc["tags"])
		require.NoError(t, validateDocument(context.Background(), data))
	})

	t.Run("manifest errors", func(t *testing.T) {
		badPath := writeFile(t, dir, "bad.yaml", "routes: [{name: a, path: /a, methods: [GET], response_model: Ghost}]")
		_, err := execute(t, "generate", "-m", badPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "routes[0].response_model")
	})

	t.Run("duplicate ids rejected by config", func(t *testing.T) {
		dupPath := writeFile(t, dir, "dup.yaml", `
routes:
  - {name: a, path: /a, methods: [GET], operation_id: get}
  - {name: b, path: /b, methods: [GET], operation_id: get}
`)
		cfgPath := writeFile(t, dir, "strict.yaml", "reject_duplicate_ids: true\n")

		_, err := execute(t, "generate", "-m", dupPath)
		require.NoError(t, err)

		_, err = execute(t, "--config", cfgPath, "generate", "-m", dupPath)
		require.Error(t, err)
		assert.ErrorIs(t, err, openapi.ErrDuplicateOperationID)
	})
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid document", func(t *testing.T) {
		manifestPath := writeFile(t, dir, "routes.yaml", testManifest)
		docPath := filepath.Join(dir, "openapi.json")
		_, err := execute(t, "generate", "-m", manifestPath, "-o", docPath)
		require.NoError(t, err)

		out, err := execute(t, "validate", docPath)
		require.NoError(t, err)
		assert.Equal(t, docPath+": valid\n", out)
	})

	t.Run("invalid document", func(t *testing.T) {
		docPath := writeFile(t, dir, "invalid.json", `{"openapi": "3.0.3", "info": {"title": "x"}, "paths": {"/a": {"get": {}}}}`)
		_, err := execute(t, "validate", docPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid document")
	})

	t.Run("unreadable document", func(t *testing.T) {
		_, err := execute(t, "validate", filepath.Join(dir, "missing.json"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestServe(t *testing.T) {
	dir := t.TempDir()
	manifestPath := writeFile(t, dir, "routes.yaml", testManifest)
	cfg := defaultConfig()
	opts := &ServeOptions{Manifest: manifestPath, BasePath: "/docs"}

	t.Run("serves the manifest", func(t *testing.T) {
		mux := docsMux(&cfg, zap.NewNop(), opts, openapi.DocsRedoc)

		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs/schema.json", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"/items/{id}"`)

		w = httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "<redoc")
	})

	t.Run("picks up manifest edits", func(t *testing.T) {
		path := writeFile(t, dir, "live.yaml", testManifest)
		mux := docsMux(&cfg, zap.NewNop(), &ServeOptions{Manifest: path, BasePath: "/docs"}, openapi.DocsSwaggerUI)

		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs/schema.json", nil))
		assert.NotContains(t, w.Body.String(), "/health")

		writeFile(t, dir, "live.yaml", testManifest+"  - {name: health, path: /health, methods: [GET]}\n")
		w = httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs/schema.json", nil))
		assert.Contains(t, w.Body.String(), `"/health"`)
	})

	t.Run("stops when the context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := serve(ctx, &cfg, zap.NewNop(), &ServeOptions{Manifest: manifestPath, Addr: "127.0.0.1:0", BasePath: "/docs"}, openapi.DocsSwaggerUI)
		assert.NoError(t, err)
	})
}

func TestNewLogger(t *testing.T) {
	log, err := newLogger(LogConfig{Level: "warn"}, false)
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zap.InfoLevel))
	assert.True(t, log.Core().Enabled(zap.WarnLevel))

	log, err = newLogger(LogConfig{Level: "error"}, true)
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zap.DebugLevel), "verbose overrides the configured level")

	_, err = newLogger(LogConfig{Level: "loud"}, false)
	assert.ErrorIs(t, err, ErrUsage)
}

func decodeDocument(data []byte) (map[string]any, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
