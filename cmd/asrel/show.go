package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/thalespaiva/bgphijack/pkg/config"
)

func newShowCmd(root *rootOptions) *cobra.Command {
	var postgres string

	cmd := &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Print a run stored with --postgres",
		Long: `Read a run exported by "infer --postgres" or "validate --postgres" back
from the database and print its record and verdict counts.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid run id %q: %w", args[0], err)
			}

			fs := cmd.Flags()
			cfg, err := root.loadConfig(func(cfg *config.Config) {
				if fs.Changed("postgres") {
					cfg.Export.PostgresDSN = postgres
				}
			})
			if err != nil {
				return err
			}
			if cfg.Export.PostgresDSN == "" {
				return errors.New("--postgres or export.postgres_dsn is required")
			}

			_, err = newRunner(cmd, cfg).ShowRun(cmd.Context(), id)
			return err
		},
	}

	cmd.Flags().StringVar(&postgres, "postgres", "", "PostgreSQL database holding exported runs")
	return cmd
}
