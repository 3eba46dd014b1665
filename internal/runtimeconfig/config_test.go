package runtimeconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	t.Parallel()

	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"empty content dir", func(c *Config) { c.ContentDir = " " }, ErrContentDirRequired},
		{"empty staging dir", func(c *Config) { c.StagingDir = "" }, ErrStagingDirRequired},
		{"empty output dir", func(c *Config) { c.OutputDir = "" }, ErrOutputDirRequired},
		{"bad format", func(c *Config) { c.OutputFormat = "html" }, ErrOutputFormatInvalid},
		{"nesting too low", func(c *Config) { c.Parser.MaxNesting = 0 }, ErrMaxNestingInvalid},
		{"nesting too high", func(c *Config) { c.Parser.MaxNesting = 7 }, ErrMaxNestingInvalid},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "oracle" }, ErrStorageDriverUnknown},
		{"empty dsn", func(c *Config) { c.Storage.DSN = "" }, ErrStorageDSNRequired},
		{"negative retention", func(c *Config) { c.Retention.MaxVersions = -1 }, ErrRetentionLimitInvalid},
		{"negative tag limit", func(c *Config) { c.Export.MaxTags = -1 }, ErrExportLimitInvalid},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, ErrLoggingLevelInvalid},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, ErrLoggingFormatInvalid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadFileOverlaysYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mdpub.yml")
	payload := "content_dir: docs\nparser:\n  max_nesting: 3\nretention:\n  max_versions: 5\n"
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(DefaultConfig(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ContentDir != "docs" {
		t.Fatalf("content dir not overlaid: %q", cfg.ContentDir)
	}
	if cfg.Parser.MaxNesting != 3 || cfg.Retention.MaxVersions != 5 {
		t.Fatalf("nested values not overlaid: %+v", cfg)
	}
	if cfg.OutputDir != "dist" {
		t.Fatalf("unset values must keep defaults, got %q", cfg.OutputDir)
	}
}

func TestLoadFileMissingIsNotAnError(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFile(DefaultConfig(), filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
	if cfg.ContentDir != "content" {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("MDPUB_DB_DSN", "file:override.db")
	t.Setenv("MDPUB_PARSER_MAX_NESTING", "4")
	t.Setenv("MDPUB_OUTPUT_FORMAT", "mdx")
	t.Setenv("MDPUB_MAX_VERSIONS", "not-a-number")

	cfg := ApplyEnv(DefaultConfig())
	if cfg.Storage.DSN != "file:override.db" {
		t.Fatalf("dsn override lost: %q", cfg.Storage.DSN)
	}
	if cfg.Parser.MaxNesting != 4 {
		t.Fatalf("nesting override lost: %d", cfg.Parser.MaxNesting)
	}
	if cfg.OutputFormat != "mdx" {
		t.Fatalf("format override lost: %q", cfg.OutputFormat)
	}
	if cfg.Retention.MaxVersions != DefaultConfig().Retention.MaxVersions {
		t.Fatalf("unparseable int must keep the default, got %d", cfg.Retention.MaxVersions)
	}
}
