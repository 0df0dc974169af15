package bundler

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SourceFile stores the original source file contents.
type SourceFile struct {
	FileName string `gorm:"primaryKey"`
	Contents string
}

// Unit is one top-level statement that translated.
type Unit struct {
	FileName string `gorm:"primaryKey"`
	Position int    `gorm:"primaryKey"`
	Tag      string
	Name     string `gorm:"index"`
	Text     string
	Core     string // JSON term of the desugared statement.
}

// Failure is one top-level statement that did not translate.
type Failure struct {
	FileName string `gorm:"primaryKey"`
	Position int    `gorm:"primaryKey"`
	Tag      string
	Name     string
	Stage    string
	Message  string
}

// DependsOn records an identifier that a translated unit reads.
type DependsOn struct {
	FileName string `gorm:"primaryKey;index"`
	Position int    `gorm:"primaryKey"`
	Needs    string `gorm:"primaryKey;index"`
}

// getMigrations returns the list of migrations for the bundle database.
func getMigrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "202511250001",
			Migrate: func(tx *gorm.DB) error {
				// Create initial schema.
				return tx.AutoMigrate(
					&SourceFile{},
					&Unit{},
					&Failure{},
				)
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(
					&Failure{},
					&Unit{},
					&SourceFile{},
				)
			},
		},
		{
			ID: "202511260001",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&DependsOn{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&DependsOn{})
			},
		},
	}
}

// Migrate performs database migrations using gormigrate.
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, getMigrations())
	return m.Migrate()
}

// CheckMigration checks if the database schema is up to date.
func CheckMigration(db *gorm.DB) (bool, error) {
	// A missing migrations table means no migrations have been run yet. Use a
	// silent logger to avoid spurious warnings on fresh databases.
	var lastMigration string
	err := db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)}).
		Table(gormigrate.DefaultOptions.TableName).
		Select("id").
		Order("id DESC").
		Limit(1).
		Scan(&lastMigration).Error
	if err != nil {
		return false, nil
	}

	migrations := getMigrations()
	if len(migrations) == 0 {
		return true, nil
	}
	expectedLastID := migrations[len(migrations)-1].ID
	return lastMigration == expectedLastID, nil
}
