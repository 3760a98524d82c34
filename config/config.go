// Package config reads and writes lrm.json, the project configuration
// file.
//
// When lrm.json exists in the project root it is the sole source of truth
// for the resource format, default language, and format options; no
// auto-detection is performed. The core commands only read the file;
// scaffolding (lrm init) is the one writer.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/localeworks/lrm/backup"
	"github.com/localeworks/lrm/codec"
	"github.com/localeworks/lrm/culture"
)

// FileName is the configuration file name.
const FileName = "lrm.json"

// ErrNotFound is returned by Load when the project root has no lrm.json.
var ErrNotFound = errors.New("lrm.json not found")

// JSONOptions configures the JSON codec.
type JSONOptions struct {
	// BaseName is the filename stem of the resource set (default "strings").
	BaseName string `json:"baseName,omitempty"`
	// UseNestedKeys selects the nested object layout.
	UseNestedKeys bool `json:"useNestedKeys,omitempty"`
	// IncludeMeta enables "@key" metadata objects.
	IncludeMeta bool `json:"includeMeta,omitempty"`
	// PreserveComments keeps comments through read/write cycles.
	PreserveComments bool `json:"preserveComments,omitempty"`
}

// AppleOptions configures the iOS codec.
type AppleOptions struct {
	// DefaultFolder is the .lproj folder of the default language:
	// "Base" or a language code. Empty selects the default language
	// code, falling back to "en".
	DefaultFolder string `json:"defaultFolder,omitempty"`
}

// BackupOptions configures the backup store.
type BackupOptions struct {
	// Retention caps snapshots kept per file (default 10).
	Retention int `json:"retention,omitempty"`
}

// Config is the lrm.json schema.
type Config struct {
	// DefaultLanguageCode is the code backing the default-language file's
	// identity (the file itself carries no code in its name).
	DefaultLanguageCode string `json:"defaultLanguageCode"`
	// ResourceFormat is one of "json", "resx", "android", "ios".
	ResourceFormat string `json:"resourceFormat"`

	JSON   JSONOptions   `json:"json,omitempty"`
	Apple  AppleOptions  `json:"apple,omitempty"`
	Backup BackupOptions `json:"backup,omitempty"`
}

// BaseName returns the resource set's filename stem.
func (c *Config) BaseName() string {
	if c.JSON.BaseName != "" {
		return c.JSON.BaseName
	}
	return "strings"
}

// Retention returns the configured backup retention cap.
func (c *Config) Retention() int {
	if c.Backup.Retention > 0 {
		return c.Backup.Retention
	}
	return backup.DefaultRetention
}

// CodecOptions maps the configuration onto codec options.
func (c *Config) CodecOptions() codec.Options {
	appleFolder := c.Apple.DefaultFolder
	if appleFolder == "" {
		appleFolder = c.DefaultLanguageCode
	}
	if appleFolder == "" {
		appleFolder = "en"
	}
	return codec.Options{
		JSONNested:           c.JSON.UseNestedKeys,
		JSONIncludeMeta:      c.JSON.IncludeMeta,
		JSONPreserveComments: c.JSON.PreserveComments,
		AppleDefaultFolder:   appleFolder,
	}
}

// Codec returns the configured codec.
func (c *Config) Codec() (codec.Codec, error) {
	return codec.For(c.ResourceFormat, c.CodecOptions())
}

// validate checks the fields a loaded or about-to-be-saved config must have.
func (c *Config) validate() error {
	if _, err := codec.For(c.ResourceFormat, codec.Options{}); err != nil {
		return err
	}
	if c.DefaultLanguageCode != "" {
		if _, ok := culture.Valid(c.DefaultLanguageCode); !ok {
			return fmt.Errorf("invalid defaultLanguageCode %q", c.DefaultLanguageCode)
		}
	}
	return nil
}

// Load reads lrm.json from dir.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w in %s", ErrNotFound, dir)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}

// Save writes the config to dir/lrm.json. Used by scaffolding only.
func (c *Config) Save(dir string) error {
	if err := c.validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
