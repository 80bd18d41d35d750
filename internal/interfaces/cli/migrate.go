package cli

import (
	"github.com/spf13/cobra"

	"github.com/clauselens/clauselens/internal/infrastructure/database/postgres"
	"github.com/clauselens/clauselens/internal/infrastructure/monitoring/logging"
)

func newMigrateCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if opts.LogLevel != "" {
				cfg.Log.Level = opts.LogLevel
			}
			logger, err := logging.NewLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if err := postgres.Migrate(cfg.Database.DSN(), logger); err != nil {
				return err
			}
			return printResult(cmd, opts, "migrations applied")
		},
	}
}
