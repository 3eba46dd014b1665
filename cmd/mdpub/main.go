// Command mdpub drives the markdown pipeline from the shell: stage sources,
// commit them into the structural store, and export normalized output.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	mdpub "github.com/goliatone/go-mdpub"
	"github.com/goliatone/go-mdpub/internal/commands"
	"github.com/goliatone/go-mdpub/internal/logging"
	"github.com/goliatone/go-mdpub/internal/pipeline"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type app struct {
	configPath string
	module     *mdpub.Module
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := mdpub.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	module, err := mdpub.New(cfg)
	if err != nil {
		return err
	}
	if err := module.Init(cmd.Context()); err != nil {
		module.Close()
		return err
	}
	a.module = module
	return nil
}

func (a *app) teardown(*cobra.Command, []string) error {
	if a.module == nil {
		return nil
	}
	return a.module.Close()
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "mdpub",
		Short:         "Markdown document pipeline: extract, commit, export",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "mdpub.yml", "path to the YAML config file")

	root.AddCommand(
		newInitCmd(a),
		newExtractCmd(a),
		newCommitCmd(a),
		newExportCmd(a),
		newBuildCmd(a),
		newCollectionsCmd(a),
		newVersionsCmd(a),
	)
	return root
}

func newInitCmd(a *app) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:                "init",
		Short:              "Create the database schema",
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if reset {
				if err := a.module.Reset(cmd.Context()); err != nil {
					return err
				}
				cmd.Println("schema reset")
				return nil
			}
			cmd.Println("schema ready")
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "drop and recreate the schema, discarding all data")
	return cmd
}

func newExtractCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:                "extract [dir]",
		Short:              "Stage markdown sources as structural JSON",
		Args:               cobra.MaximumNArgs(1),
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			handler := commands.NewExtractDirectoryHandler(
				a.module.Pipeline(),
				logging.ExtractLogger(a.module.LoggerProvider()),
				func(summary *pipeline.ExtractSummary) {
					for _, path := range summary.Staged {
						cmd.Println("staged", path)
					}
					for _, failure := range summary.Failed {
						cmd.PrintErrln("failed", failure.Path+":", failure.Err)
					}
					cmd.Printf("extracted %d document(s), %d failure(s)\n",
						len(summary.Staged), len(summary.Failed))
				},
			)
			return handler.Execute(cmd.Context(), commands.ExtractDirectoryCommand{Directory: dir})
		},
	}
}

func newCommitCmd(a *app) *cobra.Command {
	var maxVersions int

	cmd := &cobra.Command{
		Use:                "commit",
		Short:              "Reconcile staged documents into the store",
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit := maxVersions
			if !cmd.Flags().Changed("max-versions") {
				limit = a.module.Config().Retention.MaxVersions
			}

			handler := commands.NewCommitStagedHandler(
				a.module.Pipeline(),
				logging.CommitLogger(a.module.LoggerProvider()),
				func(summary *pipeline.CommitSummary) {
					for _, change := range summary.Changes {
						cmd.Println(change.Status, change.Path)
					}
					cmd.Printf("committed: %d created, %d updated, %d unchanged\n",
						summary.Created, summary.Updated, summary.Unchanged)
				},
			)
			return handler.Execute(cmd.Context(), commands.CommitStagedCommand{MaxVersions: limit})
		},
	}
	cmd.Flags().IntVar(&maxVersions, "max-versions", 0, "versions retained per document, 0 keeps all")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var (
		all        bool
		collection string
		outDir     string
		format     string
		maxTags    int
		maxMetrics int
	)

	cmd := &cobra.Command{
		Use:                "export",
		Short:              "Render committed documents to normalized output",
		Long:               "Render committed documents to normalized markdown plus JSON sidecars.\nWithout a scope flag only the most recent commit batch is exported.",
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
		RunE: func(cmd *cobra.Command, _ []string) error {
			handler := commands.NewExportDocumentsHandler(
				a.module.Pipeline(),
				a.module.Documents(),
				a.module.ExportOptions(),
				logging.ExportLogger(a.module.LoggerProvider()),
				func(summary *pipeline.ExportSummary) {
					for _, result := range summary.Documents {
						cmd.Println("wrote", result.MarkdownPath)
					}
					cmd.Printf("exported %d document(s)\n", len(summary.Documents))
				},
			)
			return handler.Execute(cmd.Context(), commands.ExportDocumentsCommand{
				All:        all,
				Collection: collection,
				OutDir:     outDir,
				Format:     format,
				MaxTags:    maxTags,
				MaxMetrics: maxMetrics,
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "export every stored document")
	cmd.Flags().StringVar(&collection, "collection", "", `export one top-level directory ("." for root documents)`)
	cmd.Flags().StringVar(&outDir, "out-dir", "", "override the configured output directory")
	cmd.Flags().StringVar(&format, "format", "", "override the output extension: md or mdx")
	cmd.Flags().IntVar(&maxTags, "max-tags", 0, "sidecar tags kept per section, 0 keeps all")
	cmd.Flags().IntVar(&maxMetrics, "max-metrics", 0, "sidecar metrics kept per section, 0 keeps all")
	return cmd
}

func newBuildCmd(a *app) *cobra.Command {
	var maxVersions int

	cmd := &cobra.Command{
		Use:                "build [dir]",
		Short:              "Run extract, commit, and export in sequence",
		Args:               cobra.MaximumNArgs(1),
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := a.module.Config().ContentDir
			if len(args) == 1 {
				dir = args[0]
			}
			limit := maxVersions
			if !cmd.Flags().Changed("max-versions") {
				limit = a.module.Config().Retention.MaxVersions
			}

			handler := commands.NewBuildHandler(
				a.module.Pipeline(),
				a.module.Documents(),
				a.module.ExportOptions(),
				logging.ModuleLogger(a.module.LoggerProvider(), ""),
				func(summary *commands.BuildSummary) {
					if summary.Extract != nil {
						cmd.Printf("extracted %d document(s), %d failure(s)\n",
							len(summary.Extract.Staged), len(summary.Extract.Failed))
					}
					if summary.Commit != nil {
						cmd.Printf("committed: %d created, %d updated, %d unchanged\n",
							summary.Commit.Created, summary.Commit.Updated, summary.Commit.Unchanged)
					}
					if summary.Export != nil {
						cmd.Printf("exported %d document(s)\n", len(summary.Export.Documents))
					}
				},
			)
			return handler.Execute(cmd.Context(), commands.BuildCommand{
				Directory:   dir,
				MaxVersions: limit,
			})
		},
	}
	cmd.Flags().IntVar(&maxVersions, "max-versions", 0, "versions retained per document, 0 keeps all")
	return cmd
}

func newCollectionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:                "collections",
		Short:              "List the top-level content directories in the store",
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
		RunE: func(cmd *cobra.Command, _ []string) error {
			collections, err := a.module.Documents().Collections(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range collections {
				docs, err := a.module.Documents().ByCollection(cmd.Context(), name)
				if err != nil {
					return err
				}
				cmd.Printf("%s\t%d document(s)\n", name, len(docs))
			}
			return nil
		},
	}
}

func newVersionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:                "versions",
		Short:              "Inspect and restore document history",
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}
	cmd.AddCommand(newVersionsListCmd(a), newVersionsDiffCmd(a), newVersionsRevertCmd(a))
	return cmd
}

func newVersionsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <source-path>",
		Short: "List the surviving versions of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.module.Documents().GetByPath(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			versions, err := a.module.Versions().List(cmd.Context(), doc.ID)
			if err != nil {
				return err
			}
			for _, version := range versions {
				cmd.Printf("v%d\t%s\t%s\n",
					version.VersionNum,
					version.CreatedAt.Format("2006-01-02 15:04:05"),
					version.Hash[:12])
			}
			cmd.Printf("%d version(s)\n", len(versions))
			return nil
		},
	}
}

func newVersionsDiffCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "diff <source-path> <from> <to>",
		Short: "Show a unified diff between two versions",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.module.Documents().GetByPath(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			from, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid version number %q", args[1])
			}
			to, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid version number %q", args[2])
			}

			diff, err := a.module.Versions().Diff(cmd.Context(), doc.ID, from, to)
			if err != nil {
				return err
			}
			if diff == "" {
				cmd.Println("no differences")
				return nil
			}
			cmd.Print(diff)
			return nil
		},
	}
}

func newVersionsRevertCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "revert <source-path> <version>",
		Short: "Restore a document's content from a prior version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.module.Documents().GetByPath(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			target, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid version number %q", args[1])
			}

			reverted, err := a.module.Versions().Revert(cmd.Context(), doc.ID,
				target, a.module.Config().Retention.MaxVersions)
			if err != nil {
				return err
			}
			cmd.Printf("reverted %s to v%d (hash %s)\n",
				reverted.SourcePath, target, reverted.Hash[:12])
			return nil
		},
	}
}
