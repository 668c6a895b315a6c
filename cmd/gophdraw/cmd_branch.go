package main

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/iudanet/gophdraw/internal/models"
	"github.com/iudanet/gophdraw/internal/vcs"
)

func (a *app) newBranchCmd() *cobra.Command {
	var from string

	branchCmd := &cobra.Command{
		Use:   "branch",
		Short: "List, create or delete branches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withRepo(cmd, func(vc *vcs.VersionControl) error {
				current := vc.CurrentBranch()
				branches := vc.Branches()
				out := struct {
					Current  string          `json:"current"`
					Branches []models.Branch `json:"branches"`
				}{current, branches}
				return a.print(cmd, out, func(w io.Writer) {
					for _, b := range branches {
						mark := " "
						if b.Name == current {
							mark = "*"
						}
						fmt.Fprintf(w, "%s %s %s\n", mark, b.Name, shortID(b.Head))
					}
				})
			})
		},
	}

	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a branch at the current head or at --from",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRepo(cmd, func(vc *vcs.VersionControl) error {
				var start *uuid.UUID
				if from != "" {
					id, err := resolveRef(vc, from)
					if err != nil {
						return err
					}
					start = &id
				}
				if err := vc.CreateBranch(args[0], start); err != nil {
					return fmt.Errorf("failed to create branch: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created branch %s\n", args[0])
				return nil
			})
		},
	}
	createCmd.Flags().StringVar(&from, "from", "", "Start revision: version id, tag or branch")

	deleteCmd := &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a branch",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRepo(cmd, func(vc *vcs.VersionControl) error {
				if err := vc.DeleteBranch(args[0]); err != nil {
					return fmt.Errorf("failed to delete branch: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted branch %s\n", args[0])
				return nil
			})
		},
	}

	branchCmd.AddCommand(createCmd, deleteCmd)
	return branchCmd
}

func (a *app) newCheckoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <branch>",
		Short: "Switch the current branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRepo(cmd, func(vc *vcs.VersionControl) error {
				head, err := vc.Checkout(args[0])
				if err != nil {
					return fmt.Errorf("failed to checkout: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Switched to branch %s at %s\n", args[0], shortID(head))
				return nil
			})
		},
	}
}
