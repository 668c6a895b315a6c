package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/iudanet/gophdraw/internal/crdt"
	"github.com/iudanet/gophdraw/internal/models"
	"github.com/iudanet/gophdraw/internal/vcs"
)

// authorEnv задает автора, если флаг --author не указан
const authorEnv = "GOPHDRAW_AUTHOR"

func (a *app) authorName() string {
	if a.author != "" {
		return a.author
	}
	return os.Getenv(authorEnv)
}

func (a *app) newCommitCmd() *cobra.Command {
	var message, file, actor string

	commitCmd := &cobra.Command{
		Use:   "commit",
		Short: "Commit operations from a JSON file to the current branch",
		Long: `Reads a JSON array of operations and records them as a new version
on the current branch. Use --file - to read from stdin.

Operations without a timestamp are stamped by a Lamport clock that
continues the largest counter in the repository.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			actorID := uuid.Nil
			if actor != "" {
				var err error
				if actorID, err = uuid.Parse(actor); err != nil {
					return fmt.Errorf("invalid actor id %q: %w", actor, err)
				}
			}
			ops, err := readOperations(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			return a.withRepo(cmd, func(vc *vcs.VersionControl) error {
				clock := vc.Clock(actorID)
				ops = models.StampOperations(clock, ops)

				id, err := vc.Commit(a.authorName(), message, ops)
				if err != nil {
					return fmt.Errorf("failed to commit: %w", err)
				}
				a.logger(cmd.ErrOrStderr()).Debug("Operations stamped",
					"actor", clock.ActorID(),
					"clock", clock.Now())

				out := struct {
					VersionID uuid.UUID             `json:"version_id"`
					Clock     crdt.LamportTimestamp `json:"clock"`
				}{id, clock.Now()}
				return a.print(cmd, out, func(w io.Writer) {
					fmt.Fprintf(w, "[%s %s] %s\n", vc.CurrentBranch(), shortID(id), message)
				})
			})
		},
	}
	commitCmd.Flags().StringVarP(&message, "message", "m", "", "Commit message")
	commitCmd.Flags().StringVarP(&file, "file", "f", "-", "Operations file, - for stdin")
	commitCmd.Flags().StringVar(&actor, "actor", "", "Actor UUID for stamping operations, random if empty")
	return commitCmd
}

func readOperations(stdin io.Reader, file string) (models.Operations, error) {
	var data []byte
	var err error
	if file == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read operations: %w", err)
	}

	var ops models.Operations
	if err := json.Unmarshal(data, &ops); err != nil {
		return nil, fmt.Errorf("failed to parse operations: %w", err)
	}
	return ops, nil
}

func (a *app) newLogCmd() *cobra.Command {
	var limit int

	logCmd := &cobra.Command{
		Use:     "log",
		Aliases: []string{"history"},
		Short:   "Show first-parent history of the current branch",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withRepo(cmd, func(vc *vcs.VersionControl) error {
				history := vc.History(limit)
				return a.print(cmd, history, func(w io.Writer) {
					for _, v := range history {
						printVersion(w, v)
						fmt.Fprintln(w)
					}
				})
			})
		},
	}
	logCmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of versions, 0 for all")
	return logCmd
}

func (a *app) newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [revision]",
		Short: "Show a version and its operations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRepo(cmd, func(vc *vcs.VersionControl) error {
				id, err := resolveRef(vc, argOrEmpty(args, 0))
				if err != nil {
					return err
				}
				v, err := vc.Version(id)
				if err != nil {
					return err
				}
				return a.print(cmd, v, func(w io.Writer) {
					printVersion(w, v)
					for _, op := range v.Operations {
						fmt.Fprintf(w, "    %-16s %s %s\n", op.Kind(), op.Entity(), op.Stamp())
					}
				})
			})
		},
	}
}

func (a *app) newSnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot [revision]",
		Short: "Print entity states at a version",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRepo(cmd, func(vc *vcs.VersionControl) error {
				id, err := resolveRef(vc, argOrEmpty(args, 0))
				if err != nil {
					return err
				}
				entities, err := vc.Snapshot(id)
				if err != nil {
					return err
				}
				return a.print(cmd, entities, func(w io.Writer) {
					ids := make([]uuid.UUID, 0, len(entities))
					for eid := range entities {
						ids = append(ids, eid)
					}
					slices.SortFunc(ids, func(x, y uuid.UUID) int {
						return strings.Compare(x.String(), y.String())
					})
					for _, eid := range ids {
						fmt.Fprintf(w, "%s %s\n", eid, formatProperties(entities[eid].Properties))
					}
				})
			})
		},
	}
}

func printVersion(w io.Writer, v *models.Version) {
	fmt.Fprintf(w, "version %s\n", v.ID)
	if v.IsMerge() {
		parents := make([]string, 0, len(v.Parents))
		for _, p := range v.Parents {
			parents = append(parents, shortID(p))
		}
		fmt.Fprintf(w, "Merge:  %s\n", strings.Join(parents, " "))
	}
	fmt.Fprintf(w, "Author: %s\n", v.Author)
	fmt.Fprintf(w, "Date:   %s\n", v.Timestamp.Local().Format(time.RFC1123))
	if len(v.Tags) > 0 {
		fmt.Fprintf(w, "Tags:   %s\n", strings.Join(v.Tags, ", "))
	}
	fmt.Fprintf(w, "\n    %s\n", v.Message)
}

func formatProperties(props map[string]any) string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, props[k]))
	}
	return strings.Join(parts, " ")
}

func argOrEmpty(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
