// Package runtimeconfig aggregates the pipeline's tunables behind a single
// Config value with defaults, file and environment loading, and validation.
package runtimeconfig

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrContentDirRequired indicates an empty content root.
var ErrContentDirRequired = errors.New("mdpub config: content directory is required")

// ErrStagingDirRequired indicates an empty staging directory.
var ErrStagingDirRequired = errors.New("mdpub config: staging directory is required")

// ErrOutputDirRequired indicates an empty export output directory.
var ErrOutputDirRequired = errors.New("mdpub config: output directory is required")

// ErrOutputFormatInvalid rejects export formats other than md and mdx.
var ErrOutputFormatInvalid = errors.New("mdpub config: output format must be md or mdx")

// ErrMaxNestingInvalid bounds the section-splitting heading depth.
var ErrMaxNestingInvalid = errors.New("mdpub config: parser max nesting must be between 1 and 6")

// ErrStorageDriverUnknown rejects unsupported database drivers.
var ErrStorageDriverUnknown = errors.New("mdpub config: storage driver is invalid")

// ErrStorageDSNRequired indicates a missing database DSN.
var ErrStorageDSNRequired = errors.New("mdpub config: storage DSN is required")

// ErrRetentionLimitInvalid rejects negative version retention limits.
var ErrRetentionLimitInvalid = errors.New("mdpub config: version retention limit must be zero or positive")

// ErrExportLimitInvalid rejects negative sidecar truncation limits.
var ErrExportLimitInvalid = errors.New("mdpub config: export tag and metric limits must be zero or positive")

// ErrLoggingLevelInvalid rejects unknown logging levels.
var ErrLoggingLevelInvalid = errors.New("mdpub config: logging level is invalid")

// ErrLoggingFormatInvalid rejects unknown logging formats.
var ErrLoggingFormatInvalid = errors.New("mdpub config: logging format is invalid")

// Config aggregates pipeline behaviour for one project. Fields use simple
// types so host applications can populate them from their own sources.
type Config struct {
	// ContentDir is the root walked for markdown sources.
	ContentDir string `yaml:"content_dir"`
	// StagingDir holds the JSON files written by extract and read by commit.
	StagingDir string `yaml:"staging_dir"`
	// OutputDir is the export root; exported trees mirror source layout.
	OutputDir string `yaml:"output_dir"`
	// OutputFormat is the exported markdown extension, md or mdx.
	OutputFormat string `yaml:"output_format"`

	Parser    ParserConfig    `yaml:"parser"`
	Storage   StorageConfig   `yaml:"storage"`
	Retention RetentionConfig `yaml:"retention"`
	Export    ExportConfig    `yaml:"export"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ParserConfig captures tokenizer behaviour.
type ParserConfig struct {
	// Preset picks the goldmark extension set: gfm or commonmark.
	Preset string `yaml:"preset"`
	// MaxNesting bounds the heading depth that still opens a new section.
	MaxNesting int `yaml:"max_nesting"`
}

// StorageConfig captures database bindings.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// RetentionConfig bounds per-document version history. Zero keeps
// unlimited history.
type RetentionConfig struct {
	MaxVersions int `yaml:"max_versions"`
}

// ExportConfig captures sidecar truncation limits. Zero means unlimited.
type ExportConfig struct {
	MaxTags    int `yaml:"max_tags"`
	MaxMetrics int `yaml:"max_metrics"`
}

// LoggingConfig captures options for the runtime logger.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	AddSource bool   `yaml:"add_source"`
}

// DefaultConfig returns sensible defaults for a single-directory project
// backed by a local sqlite database.
func DefaultConfig() Config {
	return Config{
		ContentDir:   "content",
		StagingDir:   ".mdpub/staged",
		OutputDir:    "dist",
		OutputFormat: "md",
		Parser: ParserConfig{
			Preset:     "gfm",
			MaxNesting: 2,
		},
		Storage: StorageConfig{
			Driver: "sqlite3",
			DSN:    "file:mdpub.db?cache=shared&_fk=1",
		},
		Retention: RetentionConfig{
			MaxVersions: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadFile overlays YAML configuration from path onto cfg. A missing file
// is not an error; the defaults stand.
func LoadFile(cfg Config, path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("mdpub config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("mdpub config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overlays MDPUB_* environment variables onto cfg. Unset variables
// leave the current value untouched.
func ApplyEnv(cfg Config) Config {
	setString(&cfg.ContentDir, "MDPUB_CONTENT_DIR")
	setString(&cfg.StagingDir, "MDPUB_STAGING_DIR")
	setString(&cfg.OutputDir, "MDPUB_OUTPUT_DIR")
	setString(&cfg.OutputFormat, "MDPUB_OUTPUT_FORMAT")
	setString(&cfg.Parser.Preset, "MDPUB_PARSER_PRESET")
	setInt(&cfg.Parser.MaxNesting, "MDPUB_PARSER_MAX_NESTING")
	setString(&cfg.Storage.Driver, "MDPUB_DB_DRIVER")
	setString(&cfg.Storage.DSN, "MDPUB_DB_DSN")
	setInt(&cfg.Retention.MaxVersions, "MDPUB_MAX_VERSIONS")
	setInt(&cfg.Export.MaxTags, "MDPUB_EXPORT_MAX_TAGS")
	setInt(&cfg.Export.MaxMetrics, "MDPUB_EXPORT_MAX_METRICS")
	setString(&cfg.Logging.Level, "MDPUB_LOG_LEVEL")
	setString(&cfg.Logging.Format, "MDPUB_LOG_FORMAT")
	return cfg
}

func setString(target *string, name string) {
	if value, ok := os.LookupEnv(name); ok && strings.TrimSpace(value) != "" {
		*target = strings.TrimSpace(value)
	}
}

func setInt(target *int, name string) {
	value, ok := os.LookupEnv(name)
	if !ok {
		return
	}
	if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		*target = parsed
	}
}

// Validate checks cross-field consistency. It returns the first violation
// found so callers can surface one actionable message.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.ContentDir) == "" {
		return ErrContentDirRequired
	}
	if strings.TrimSpace(cfg.StagingDir) == "" {
		return ErrStagingDirRequired
	}
	if strings.TrimSpace(cfg.OutputDir) == "" {
		return ErrOutputDirRequired
	}
	if !isSupportedFormat(cfg.OutputFormat) {
		return ErrOutputFormatInvalid
	}
	if cfg.Parser.MaxNesting < 1 || cfg.Parser.MaxNesting > 6 {
		return ErrMaxNestingInvalid
	}
	if !isSupportedDriver(cfg.Storage.Driver) {
		return ErrStorageDriverUnknown
	}
	if strings.TrimSpace(cfg.Storage.DSN) == "" {
		return ErrStorageDSNRequired
	}
	if cfg.Retention.MaxVersions < 0 {
		return ErrRetentionLimitInvalid
	}
	if cfg.Export.MaxTags < 0 || cfg.Export.MaxMetrics < 0 {
		return ErrExportLimitInvalid
	}
	if !isSupportedLevel(cfg.Logging.Level) {
		return ErrLoggingLevelInvalid
	}
	if !isSupportedLogFormat(cfg.Logging.Format) {
		return ErrLoggingFormatInvalid
	}
	return nil
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "md", "mdx":
		return true
	}
	return false
}

func isSupportedDriver(driver string) bool {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3", "postgres", "pg", "pgx":
		return true
	}
	return false
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	}
	return false
}

func isSupportedLogFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "console", "json", "pretty":
		return true
	}
	return false
}
