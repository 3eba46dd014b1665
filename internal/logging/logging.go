package logging

import (
	"context"
	"maps"

	"github.com/goliatone/go-mdpub/pkg/interfaces"
)

const (
	rootModule    = "mdpub"
	extractModule = "mdpub.extract"
	commitModule  = "mdpub.commit"
	exportModule  = "mdpub.export"
	storeModule   = "mdpub.store"
)

// WithFields attaches structured fields to a logger when the implementation
// supports the optional FieldsLogger extension. Callers can pass nil or an
// empty map to skip allocation safely.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		copied := make(map[string]any, len(fields))
		maps.Copy(copied, fields)
		return fieldsLogger.WithFields(copied)
	}

	return logger
}

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger carries
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// ExtractLogger returns the logger namespace reserved for the extract stage.
func ExtractLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, extractModule)
}

// CommitLogger returns the logger namespace reserved for the commit stage.
func CommitLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, commitModule)
}

// ExportLogger returns the logger namespace reserved for the export stage.
func ExportLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, exportModule)
}

// StoreLogger returns the logger namespace reserved for persistence.
func StoreLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, storeModule)
}

// WithDocumentContext enriches the provided logger with the source path and
// commit status of the document being processed. Empty values are ignored.
func WithDocumentContext(logger interfaces.Logger, path, status string) interfaces.Logger {
	fields := map[string]any{}
	if path != "" {
		fields["source_path"] = path
	}
	if status != "" {
		fields["status"] = status
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so pipeline stages can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}
var _ interfaces.FieldsLogger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}
