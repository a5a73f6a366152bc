package cli

import (
	"fmt"

	"github.com/fekuna/omnipos-stockroom/config"
	"github.com/fekuna/omnipos-stockroom/pkg/database"
	"github.com/fekuna/omnipos-stockroom/pkg/logger"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands. Empty flags fall back to
// the environment.
type RootOptions struct {
	Driver     string
	SQLitePath string
	Verbose    bool

	cfg *config.Config
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "stockctl",
		Short: "stockroom maintenance tool",
		Long:  "Administrative commands for the stockroom inventory service: schema, users and expiry scans.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			opts.cfg = config.LoadEnv()
			if opts.Driver != "" {
				opts.cfg.Database.Driver = opts.Driver
			}
			if opts.SQLitePath != "" {
				opts.cfg.Database.SQLitePath = opts.SQLitePath
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "database driver (pgx|sqlite3)")
	cmd.PersistentFlags().StringVar(&opts.SQLitePath, "sqlite-path", "", "sqlite database file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewCreateUserCommand(opts))
	cmd.AddCommand(NewExpiryScanCommand(opts))

	return cmd
}

func (o *RootOptions) logger() logger.ZapLogger {
	if !o.Verbose {
		return logger.NewNop()
	}
	return logger.NewZapLogger(&logger.ZapLoggerConfig{
		IsDevelopment:     true,
		Encoding:          "console",
		Level:             "debug",
		DisableStacktrace: true,
	})
}

// openDB connects and applies the schema so every command sees the tables.
func (o *RootOptions) openDB(cmd *cobra.Command) (*sqlx.DB, error) {
	db, err := database.Open(o.cfg.DatabaseConfig())
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.Migrate(cmd.Context(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}
