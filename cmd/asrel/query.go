package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thalespaiva/bgphijack/pkg/config"
	"github.com/thalespaiva/bgphijack/pkg/graphql"
)

func newQueryCmd(root *rootOptions) *cobra.Command {
	var (
		query     string
		variables string
		maxDepth  int
		cf        corpusFlags
		inf       inferenceFlags
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run inference and answer one GraphQL query over the result",
		Example: `  asrel query -i paths.txt -e '{ run { links notValleyFree } }'
  asrel query -i paths.txt -e 'query($a: String!) { as(asn: $a) { degree neighbors } }' --variables '{"a":"3356"}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var vars map[string]any
			if variables != "" {
				if err := json.Unmarshal([]byte(variables), &vars); err != nil {
					return fmt.Errorf("parse --variables: %w", err)
				}
			}

			fs := cmd.Flags()
			cfg, err := root.loadConfig(func(cfg *config.Config) {
				cf.apply(fs, cfg)
				inf.apply(fs, cfg)
			})
			if err != nil {
				return err
			}

			limits := graphql.DefaultLimitConfig()
			limits.MaxDepth = maxDepth
			return newRunner(cmd, cfg).Query(cmd.Context(), query, vars, limits)
		},
	}

	cmd.Flags().StringVarP(&query, "execute", "e", "", "GraphQL query")
	cmd.Flags().StringVar(&variables, "variables", "", "query variables as a JSON object")
	cmd.Flags().IntVar(&maxDepth, "max-depth", graphql.DefaultLimitConfig().MaxDepth, "maximum query depth (0 disables the check)")
	_ = cmd.MarkFlagRequired("execute")
	cf.register(cmd.Flags())
	inf.register(cmd.Flags())
	return cmd
}
