package mdpub

import "github.com/goliatone/go-mdpub/internal/runtimeconfig"

var (
	ErrContentDirRequired    = runtimeconfig.ErrContentDirRequired
	ErrStagingDirRequired    = runtimeconfig.ErrStagingDirRequired
	ErrOutputDirRequired     = runtimeconfig.ErrOutputDirRequired
	ErrOutputFormatInvalid   = runtimeconfig.ErrOutputFormatInvalid
	ErrMaxNestingInvalid     = runtimeconfig.ErrMaxNestingInvalid
	ErrStorageDriverUnknown  = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired    = runtimeconfig.ErrStorageDSNRequired
	ErrRetentionLimitInvalid = runtimeconfig.ErrRetentionLimitInvalid
	ErrExportLimitInvalid    = runtimeconfig.ErrExportLimitInvalid
	ErrLoggingLevelInvalid   = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid  = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config          = runtimeconfig.Config
	ParserConfig    = runtimeconfig.ParserConfig
	StorageConfig   = runtimeconfig.StorageConfig
	RetentionConfig = runtimeconfig.RetentionConfig
	ExportConfig    = runtimeconfig.ExportConfig
	LoggingConfig   = runtimeconfig.LoggingConfig
)

// DefaultConfig returns the baseline configuration for a local project.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig resolves the effective configuration: defaults, then the YAML
// file at path when it exists, then MDPUB_* environment variables.
func LoadConfig(path string) (Config, error) {
	cfg, err := runtimeconfig.LoadFile(runtimeconfig.DefaultConfig(), path)
	if err != nil {
		return cfg, err
	}
	return runtimeconfig.ApplyEnv(cfg), nil
}
