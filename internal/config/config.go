// Package config loads mdpreview CLI configuration from YAML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mdpreview/go-mdpreview/internal/fileutil"
	"github.com/mdpreview/go-mdpreview/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
)

// Field length limits.
const (
	MaxTitleLength = 200  // Standalone document title
	MaxTagLength   = 50   // Fence language tag
	MaxPathLength  = 2048 // Output directory
	MaxTags        = 20   // Configured fence tags
)

// Config holds all configuration for preview generation.
type Config struct {
	Output     OutputConfig     `yaml:"output"`
	Render     RenderConfig     `yaml:"render"`
	Standalone StandaloneConfig `yaml:"standalone"`
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default output directory (empty = same as source)
}

// RenderConfig defines rendering options.
type RenderConfig struct {
	Tags         []string `yaml:"tags"`         // Fence languages for client-side renderers
	NoEmbed      bool     `yaml:"noEmbed"`      // Disable image inlining
	MaxImageSize int64    `yaml:"maxImageSize"` // Bytes; 0 = library default
}

// StandaloneConfig defines full-document output options.
type StandaloneConfig struct {
	Enabled bool   `yaml:"enabled"`
	Title   string `yaml:"title"` // Empty = derived from the input filename
}

// Validate checks field lengths and value ranges.
// Called automatically by LoadConfig, but available for consumers who
// construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("standalone.title", c.Standalone.Title, MaxTitleLength); err != nil {
		return err
	}

	if len(c.Render.Tags) > MaxTags {
		return fmt.Errorf("render.tags: %d entries, max %d", len(c.Render.Tags), MaxTags)
	}
	for i, tag := range c.Render.Tags {
		if tag == "" {
			return fmt.Errorf("render.tags[%d]: tag cannot be empty", i)
		}
		if err := validateFieldLength(fmt.Sprintf("render.tags[%d]", i), tag, MaxTagLength); err != nil {
			return err
		}
	}

	if c.Render.MaxImageSize < 0 {
		return fmt.Errorf("render.maxImageSize: must not be negative, got %d", c.Render.MaxImageSize)
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns a neutral configuration.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/mdpreview/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	// Try current directory first (both extensions)
	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	// Try user config directory (both extensions)
	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "mdpreview", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
