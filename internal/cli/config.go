package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/vitalvas/oasgen/openapi"
)

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// Config holds the document metadata and generation options read from the
// --config file.
type Config struct {
	Info               openapi.Info     `yaml:"info"`
	Servers            []openapi.Server `yaml:"servers" validate:"dive"`
	Tags               []openapi.Tag    `yaml:"tags" validate:"dive"`
	OpenAPIVersion     string           `yaml:"openapi_version" validate:"omitempty,startswith=3.0."`
	RejectDuplicateIDs bool             `yaml:"reject_duplicate_ids"`
	Log                LogConfig        `yaml:"log"`
}

// LogConfig selects the logger flavor and level.
type LogConfig struct {
	Level       string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Development bool   `yaml:"development"`
}

func defaultConfig() Config {
	return Config{
		Info: openapi.Info{Title: "API", Version: "0.1.0"},
	}
}

// loadConfig merges defaults with the --config file, if any, and
// validates the result.
func loadConfig(cmd *cobra.Command) (*Config, error) {
	cfg := defaultConfig()

	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	path = strings.TrimSpace(path)
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, newUsageError(fmt.Sprintf("parse config %s: %v", path, err))
		}
	}

	if err := configValidator.Struct(&cfg); err != nil {
		return nil, newUsageError(fmt.Sprintf("invalid config: %v", err))
	}
	return &cfg, nil
}

// newSpec builds the document builder described by the config.
func (c *Config) newSpec(log *zap.Logger) *openapi.Spec {
	spec := openapi.NewSpec(c.Info).
		SetOpenAPIVersion(c.OpenAPIVersion).
		SetLogger(log)
	for _, server := range c.Servers {
		spec.AddServer(server)
	}
	for _, tag := range c.Tags {
		spec.AddTag(tag)
	}
	if c.RejectDuplicateIDs {
		spec.SetDuplicateIDPolicy(openapi.DuplicateIDReject)
	}
	return spec
}

// setup loads the config and builds the logger shared by all commands.
func setup(cmd *cobra.Command) (*Config, *zap.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return nil, nil, err
	}
	log, err := newLogger(cfg.Log, verbose)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
