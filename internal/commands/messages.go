package commands

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	extractDirectoryMessageType = "mdpub.extract.directory"
	commitStagedMessageType     = "mdpub.commit.staged"
	exportDocumentsMessageType  = "mdpub.export.documents"
	buildMessageType            = "mdpub.build"
)

func requiredPath(code string) validation.Rule {
	return validation.By(func(value any) error {
		if strings.TrimSpace(value.(string)) == "" {
			return validation.NewError(code, "directory is required")
		}
		return nil
	})
}

// ExtractDirectoryCommand stages every markdown document found under
// Directory.
type ExtractDirectoryCommand struct {
	// Directory selects the content root to walk for markdown files. A path
	// to a single markdown file stages just that file.
	Directory string `json:"directory"`
}

// Type implements command.Message.
func (ExtractDirectoryCommand) Type() string { return extractDirectoryMessageType }

// Validate ensures directory input is present before handlers execute.
func (cmd ExtractDirectoryCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.Required,
			requiredPath("mdpub.extract.directory.directory_required")),
	)
}

// CommitStagedCommand reconciles every staged document against the store.
type CommitStagedCommand struct {
	// MaxVersions bounds per-document history retained when updates snapshot
	// prior state. Zero keeps unlimited history.
	MaxVersions int `json:"max_versions,omitempty"`
}

// Type implements command.Message.
func (CommitStagedCommand) Type() string { return commitStagedMessageType }

// Validate rejects negative retention limits.
func (cmd CommitStagedCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.MaxVersions, validation.Min(0)),
	)
}

// ExportDocumentsCommand renders committed documents to the output tree.
// With neither All nor Collection set, the most recent commit batch is
// exported.
type ExportDocumentsCommand struct {
	// All exports every stored document.
	All bool `json:"all,omitempty"`
	// Collection exports one top-level directory; "." selects root-level
	// documents. Mutually exclusive with All.
	Collection string `json:"collection,omitempty"`
	// OutDir overrides the configured output root when non-empty.
	OutDir string `json:"out_dir,omitempty"`
	// Format overrides the configured output extension, "md" or "mdx".
	Format string `json:"format,omitempty"`
	// MaxTags caps sidecar tags per section; zero means use the configured
	// default.
	MaxTags int `json:"max_tags,omitempty"`
	// MaxMetrics caps sidecar metrics per section; zero means use the
	// configured default.
	MaxMetrics int `json:"max_metrics,omitempty"`
}

// Type implements command.Message.
func (ExportDocumentsCommand) Type() string { return exportDocumentsMessageType }

// Validate rejects conflicting scopes and unknown formats.
func (cmd ExportDocumentsCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Collection, validation.By(func(any) error {
			if cmd.All && cmd.Collection != "" {
				return validation.NewError("mdpub.export.documents.scope_conflict",
					"all and collection are mutually exclusive")
			}
			return nil
		})),
		validation.Field(&cmd.Format, validation.In("", "md", "mdx")),
		validation.Field(&cmd.MaxTags, validation.Min(0)),
		validation.Field(&cmd.MaxMetrics, validation.Min(0)),
	)
}

// BuildCommand runs the full extract, commit, export sequence against one
// content root, exporting the batch it just committed.
type BuildCommand struct {
	// Directory selects the content root to walk for markdown files.
	Directory string `json:"directory"`
	// MaxVersions bounds per-document history; zero keeps unlimited history.
	MaxVersions int `json:"max_versions,omitempty"`
	// OutDir overrides the configured output root when non-empty.
	OutDir string `json:"out_dir,omitempty"`
	// Format overrides the configured output extension, "md" or "mdx".
	Format string `json:"format,omitempty"`
}

// Type implements command.Message.
func (BuildCommand) Type() string { return buildMessageType }

// Validate ensures directory input is present and the format is known.
func (cmd BuildCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.Required,
			requiredPath("mdpub.build.directory_required")),
		validation.Field(&cmd.MaxVersions, validation.Min(0)),
		validation.Field(&cmd.Format, validation.In("", "md", "mdx")),
	)
}
