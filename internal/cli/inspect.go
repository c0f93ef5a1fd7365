package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-serializer-metadata/pkg/exclusion"
	"github.com/goliatone/go-serializer-metadata/pkg/metadata"
)

func newInspectCommand(a *app) *cobra.Command {
	var (
		classes    []string
		groups     []string
		apiVersion string
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print decorated metadata for one or more classes",
		Long: `Loads serializer metadata from --metadata, decorates untyped properties
with types from the document mapping in --mapping and prints the result.

Without --class the command prompts for a class on a terminal and prints
every class otherwise.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := buildPipeline(a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer a.closePipeline(p)
			ctx := cmd.Context()

			if len(classes) == 0 {
				all, err := p.source.AllClassNames(ctx)
				if err != nil {
					return err
				}
				if a.interactive() {
					choice, err := a.prompter.SelectClass(ctx, all)
					if err != nil {
						return err
					}
					classes = []string{choice}
				} else {
					classes = all
				}
			}

			mds := make([]*metadata.ClassMetadata, 0, len(classes))
			for _, name := range classes {
				md, err := p.factory.ClassMetadataFor(ctx, metadata.NamedClass(name))
				if err != nil {
					return err
				}
				if len(groups) > 0 || apiVersion != "" {
					md = exclusion.Apply(md, exclusion.Default(), exclusion.Context{Groups: groups, Version: apiVersion})
				}
				a.logger.Debug("class inspected", zap.String("class", name), zap.Int("properties", len(md.Properties)))
				mds = append(mds, md)
			}
			return render(cmd.OutOrStdout(), a.cfg.Format, Version, mds)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVarP(&classes, "class", "c", nil, "class to inspect (repeatable)")
	flags.String("mapping", "", "directory of document mapping YAML files")
	flags.StringP("format", "f", FormatJSON, "output format: json, yaml or openapi")
	flags.String("collection-type", "", "collection type used for referenceMany properties")
	flags.StringSliceVar(&groups, "groups", nil, "only keep properties in these serialization groups")
	flags.StringVar(&apiVersion, "api-version", "", "only keep properties available in this version")
	cmd.PreRun = func(*cobra.Command, []string) {
		for i := range classes {
			classes[i] = strings.TrimSpace(classes[i])
		}
	}
	return cmd
}
