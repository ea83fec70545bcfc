package repo

import (
	"Lura/internal/model"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// Models перечисляет сущности для AutoMigrate.
func Models() []any {
	return []any{
		&model.User{},
		&model.MagicLink{},
		&model.Workspace{},
		&model.WorkspaceUser{},
		&model.Tag{},
		&model.Case{},
		&model.CaseTag{},
		&model.Document{},
		&model.DocumentTag{},
		&model.Comment{},
		&model.CalendarEvent{},
		&model.Activity{},
	}
}

// Dialector выбирает драйвер по DSN: postgres для URL и key=value строк, иначе SQLite-файл.
func Dialector(dsn string) gorm.Dialector {
	if IsPostgresDSN(dsn) {
		return postgres.Open(dsn)
	}
	return gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
}

func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}

// InitDB открывает БД и прогоняет миграции.
func InitDB(dsn string) (*gorm.DB, error) {
	db, err := Open(dsn)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Open открывает БД без миграций.
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(Dialector(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
