package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/thalespaiva/bgphijack/pkg/config"
)

func newValidateCmd(root *rootOptions) *cobra.Command {
	var (
		relationships string
		cf            corpusFlags
		of            outputFlags
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Classify every path against a ground-truth relationship table",
		Long: `Classify every path of the corpus against an authoritative
"AS1|AS2|code" relationship table (-1 provider to customer, 0 peers,
1 siblings). Unparseable paths are reported on stderr and skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fs := cmd.Flags()
			cfg, err := root.loadConfig(func(cfg *config.Config) {
				if fs.Changed("relationships") {
					cfg.GroundTruth.Path = relationships
				}
				cf.apply(fs, cfg)
				of.apply(fs, cfg)
			})
			if err != nil {
				return err
			}
			if cfg.GroundTruth.Path == "" {
				return errors.New("--relationships or ground_truth.path is required")
			}

			_, err = newRunner(cmd, cfg).Validate(cmd.Context())
			return err
		},
	}

	cmd.Flags().StringVarP(&relationships, "relationships", "r", "", "ground-truth relationship table")
	cf.register(cmd.Flags())
	of.register(cmd.Flags())
	return cmd
}
