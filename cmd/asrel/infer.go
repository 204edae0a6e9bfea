package main

import (
	"github.com/spf13/cobra"

	"github.com/thalespaiva/bgphijack/pkg/config"
)

func newInferCmd(root *rootOptions) *cobra.Command {
	var (
		cf  corpusFlags
		inf inferenceFlags
		of  outputFlags
	)

	cmd := &cobra.Command{
		Use:   "infer",
		Short: "Infer relationships from the corpus and classify every path",
		Long: `Infer relationships from the corpus, then write one "path,GREEN" or
"path,RED" line per input path. Relationship statistics go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fs := cmd.Flags()
			cfg, err := root.loadConfig(func(cfg *config.Config) {
				cf.apply(fs, cfg)
				inf.apply(fs, cfg)
				of.apply(fs, cfg)
			})
			if err != nil {
				return err
			}

			_, err = newRunner(cmd, cfg).Infer(cmd.Context())
			return err
		},
	}

	cf.register(cmd.Flags())
	inf.register(cmd.Flags())
	of.register(cmd.Flags())
	return cmd
}
