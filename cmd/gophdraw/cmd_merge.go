package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iudanet/gophdraw/internal/models"
	"github.com/iudanet/gophdraw/internal/vcs"
)

func (a *app) newMergeCmd() *cobra.Command {
	var strategy string

	mergeCmd := &cobra.Command{
		Use:   "merge <branch>",
		Short: "Merge a branch into the current branch",
		Long: `Merges the given branch into the current one. Conflicting edits made on
both branches since their common ancestor are resolved with --strategy:
last_write_wins, first_write_wins, user_priority, crdt, merge, manual,
ours or theirs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRepo(cmd, func(vc *vcs.VersionControl) error {
				target := vc.CurrentBranch()
				result, err := vc.Merge(args[0], a.authorName(), models.ResolutionStrategy(strategy))
				if err != nil {
					return fmt.Errorf("failed to merge: %w", err)
				}
				return a.print(cmd, result, func(w io.Writer) {
					printMergeResult(w, args[0], target, result)
				})
			})
		},
	}
	mergeCmd.Flags().StringVarP(&strategy, "strategy", "s", "", "Conflict resolution strategy")
	return mergeCmd
}

func printMergeResult(w io.Writer, source, target string, result *vcs.MergeResult) {
	switch {
	case result.UpToDate:
		fmt.Fprintln(w, "Already up to date.")
	case result.FastForward:
		fmt.Fprintf(w, "Fast-forward %s to %s\n", target, shortID(result.MergeVersion))
	default:
		fmt.Fprintf(w, "Merged %s into %s as %s\n", source, target, shortID(result.MergeVersion))
		fmt.Fprintf(w, "%d operations, %d conflicts\n", len(result.MergedOperations), result.Conflicts)
		for _, r := range result.Resolutions {
			status := "resolved"
			if r.RequiresNotification {
				status = "needs manual resolution"
			}
			fmt.Fprintf(w, "  conflict %s: %s (%s)\n", shortID(r.ConflictID), status, r.Strategy)
		}
	}
}

func (a *app) newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <from> [to]",
		Short: "Show entities changed between two versions",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRepo(cmd, func(vc *vcs.VersionControl) error {
				from, err := resolveRef(vc, args[0])
				if err != nil {
					return err
				}
				to, err := resolveRef(vc, argOrEmpty(args, 1))
				if err != nil {
					return err
				}
				diff, err := vc.Diff(from, to)
				if err != nil {
					return fmt.Errorf("failed to diff: %w", err)
				}
				return a.print(cmd, diff, func(w io.Writer) {
					for _, id := range diff.Added {
						fmt.Fprintf(w, "A %s\n", id)
					}
					for _, id := range diff.Modified {
						fmt.Fprintf(w, "M %s %s\n", id, strings.Join(diff.ChangedProperties[id], ","))
					}
					for _, id := range diff.Deleted {
						fmt.Fprintf(w, "D %s\n", id)
					}
					fmt.Fprintf(w, "%d entities changed\n", diff.TotalChanges())
				})
			})
		},
	}
}
