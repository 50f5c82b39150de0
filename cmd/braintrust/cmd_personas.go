package main

import (
	"braintrust/internal/render"

	"github.com/spf13/cobra"
)

func newPersonasCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "personas",
		Short: "List the available advisor personas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := render.New(cmd.OutOrStdout(), nil, render.Options{Plain: root.plain})
			rt, err := newRuntime(root, false)
			if err != nil {
				r.Failure("Configuration error", err)
				return errReported
			}
			defer rt.Close()
			r.Personas(rt.registry)
			return nil
		},
	}
}
