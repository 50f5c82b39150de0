package main

import (
	"errors"

	"braintrust/internal/render"

	"github.com/spf13/cobra"
)

var errArchiveDisabled = errors.New("archive.path is not set (or BRAINTRUST_ARCHIVE)")

func newHistoryCmd(root *rootOptions) *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "List archived deliberations or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			status := render.New(out, nil, render.Options{Plain: root.plain})
			rt, err := newRuntime(root, false)
			if err != nil {
				status.Failure("Configuration error", err)
				return errReported
			}
			defer rt.Close()

			store := rt.openArchive()
			if store == nil {
				status.Failure("Configuration error", errArchiveDisabled)
				return errReported
			}
			if len(args) == 0 {
				entries, err := store.List(cmd.Context(), limit, offset)
				if err != nil {
					status.Failure("Error", err)
					return errReported
				}
				status.History(entries)
				return nil
			}
			sess, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				status.Failure("Error", err)
				return errReported
			}
			r := render.New(out, rt.registry, render.Options{Verbose: root.verbose, Plain: root.plain})
			r.Question(sess.Question)
			r.Session(sess)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum sessions to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "Sessions to skip")
	return cmd
}
