package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/iudanet/gophdraw/internal/vcs"
)

func (a *app) newTagCmd() *cobra.Command {
	tagCmd := &cobra.Command{
		Use:   "tag [name] [revision]",
		Short: "List tags, or tag a revision (the current head by default)",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRepo(cmd, func(vc *vcs.VersionControl) error {
				if len(args) == 0 {
					tags := vc.Tags()
					return a.print(cmd, tags, func(w io.Writer) {
						for _, t := range tags {
							fmt.Fprintf(w, "%s %s\n", t.Name, shortID(t.VersionID))
						}
					})
				}

				id, err := resolveRef(vc, argOrEmpty(args, 1))
				if err != nil {
					return err
				}
				if err := vc.CreateTag(args[0], id); err != nil {
					return fmt.Errorf("failed to create tag: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Tagged %s as %s\n", shortID(id), args[0])
				return nil
			})
		},
	}
	return tagCmd
}
