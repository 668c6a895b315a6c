package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/iudanet/gophdraw/internal/storage/boltdb"
	"github.com/iudanet/gophdraw/internal/vcs"
)

const defaultRepoPath = ".gophdraw.db"

// app - общее состояние команд: флаги и открытый репозиторий.
type app struct {
	repoPath string
	author   string
	verbose  bool
	jsonOut  bool
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "gophdraw",
		Short: "Version control for collaborative drawings",
		Long: `gophdraw keeps the history of a drawing in a local repository file:
commits of entity operations, branches, tags and three-way merges.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.repoPath, "repo", "r", defaultRepoPath, "Path to the repository file")
	flags.StringVarP(&a.author, "author", "a", "", "Author name for commits and merges")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Log repository activity to stderr")
	flags.BoolVar(&a.jsonOut, "json", false, "Print results as JSON")

	rootCmd.AddCommand(
		a.newBranchCmd(),
		a.newCheckoutCmd(),
		a.newCommitCmd(),
		a.newLogCmd(),
		a.newShowCmd(),
		a.newSnapshotCmd(),
		a.newDiffCmd(),
		a.newMergeCmd(),
		a.newTagCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "GophDraw CLI\n")
			fmt.Fprintf(out, "Version:    %s\n", Version)
			fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
			fmt.Fprintf(out, "Git Commit: %s\n", GitCommit)
		},
	}
}

// withRepo открывает репозиторий, восстанавливает граф версий и
// закрывает файл после fn. Изменения пишутся в файл сразу.
func (a *app) withRepo(cmd *cobra.Command, fn func(vc *vcs.VersionControl) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := a.logger(cmd.ErrOrStderr())

	store, err := boltdb.New(ctx, a.repoPath)
	if err != nil {
		return fmt.Errorf("failed to open repository %s: %w", a.repoPath, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close repository", "error", err)
		}
	}()

	vc, err := vcs.Restore(ctx, store, vcs.WithSink(store), vcs.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to load repository: %w", err)
	}
	return fn(vc)
}

func (a *app) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// print пишет v как JSON при --json, иначе вызывает text.
func (a *app) print(cmd *cobra.Command, v any, text func(w io.Writer)) error {
	out := cmd.OutOrStdout()
	if !a.jsonOut {
		text(out)
		return nil
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

// resolveRef принимает id версии, имя тега или имя ветки.
// Пустая ссылка означает голову текущей ветки.
func resolveRef(vc *vcs.VersionControl, ref string) (uuid.UUID, error) {
	if ref == "" || ref == "HEAD" {
		return vc.Head(), nil
	}
	if id, err := uuid.Parse(ref); err == nil {
		if _, err := vc.Version(id); err != nil {
			return uuid.Nil, err
		}
		return id, nil
	}
	if id, ok := vc.VersionByTag(ref); ok {
		return id, nil
	}
	b, err := vc.Branch(ref)
	if err != nil {
		return uuid.Nil, fmt.Errorf("unknown revision %q: %w", ref, err)
	}
	return b.Head, nil
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
