// Package admin — служебные команды: миграции, проверка каталога загрузок, правка путей.
package admin

import (
	"Lura/internal/config"
	"Lura/internal/repo"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// Версия проставляется при сборке через -ldflags.
var (
	Version   = "dev"
	BuildDate = "unknown"
)

type options struct {
	dsn        string
	uploadsDir string
}

// NewRootCmd собирает дерево команд. Значения по умолчанию берутся из окружения.
func NewRootCmd() *cobra.Command {
	cfg := config.LoadEnv()
	opts := &options{dsn: cfg.DatabaseDSN, uploadsDir: cfg.UploadsDir}

	root := &cobra.Command{
		Use:           "lura-admin",
		Short:         "Maintenance commands for the Lura backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.dsn, "dsn", opts.dsn, "database DSN (DATABASE_URI)")
	root.PersistentFlags().StringVar(&opts.uploadsDir, "uploads", opts.uploadsDir, "uploads directory (UPLOADS_DIR)")

	root.AddCommand(
		newMigrateCmd(opts),
		newCheckUploadsCmd(opts),
		newFixPathsCmd(opts),
		newVersionCmd(),
	)
	return root
}

func (o *options) open() (*gorm.DB, error) {
	db, err := repo.Open(o.dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func newMigrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.open()
			if err != nil {
				return err
			}
			defer closeDB(db)
			if err := repo.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d tables\n", len(repo.Models()))
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lura-admin version %s\n  Built: %s\n", Version, BuildDate)
		},
	}
}
