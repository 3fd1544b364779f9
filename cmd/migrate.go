package cmd

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/bootstrap"
	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/config"
)

const migrationsPath = "file://migrations"

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate <up|down>",
		Short:     "Apply or roll back database migrations",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"up", "down"},
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, cfgErr := bootstrap.LoadConfig(cfgFile)
			if cfgErr != nil {
				return fmt.Errorf("load config: %w", cfgErr)
			}

			m, newErr := migrate.New(migrationsPath, migrateURL(cfg.Database))
			if newErr != nil {
				return fmt.Errorf("create migrate instance: %w", newErr)
			}
			defer func() { _, _ = m.Close() }()

			var runErr error

			switch args[0] {
			case "up":
				runErr = m.Up()
			case "down":
				runErr = m.Steps(-1)
			default:
				return fmt.Errorf("invalid direction %q (must be up or down)", args[0])
			}

			if runErr != nil && !errors.Is(runErr, migrate.ErrNoChange) {
				return fmt.Errorf("migration %s: %w", args[0], runErr)
			}

			fmt.Printf("migration %s completed\n", args[0])

			return nil
		},
	}
}

func migrateURL(db config.DatabaseConfig) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(db.User), url.QueryEscape(db.Password),
		db.Host, db.Port, db.Database, db.SSLMode)
}
