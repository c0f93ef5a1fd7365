package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newClassesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "classes",
		Short: "List classes that have serializer metadata",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := buildPipeline(a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer a.closePipeline(p)
			names, err := p.source.AllClassNames(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range names {
				if _, err := fmt.Fprintln(out, name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
