package bundler

import (
	"fmt"

	"github.com/Warbo/python-decompiler/pkg/translate"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Bundler records translation results in an SQLite bundle.
type Bundler struct {
	db *gorm.DB
}

// NewBundler creates a new bundler with the given database connection.
func NewBundler(dbPath string) (*Bundler, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &Bundler{db: db}, nil
}

// Migrate performs database migrations.
func (b *Bundler) Migrate() error {
	return Migrate(b.db)
}

// CheckMigration checks if the database schema is up to date.
func (b *Bundler) CheckMigration() (bool, error) {
	return CheckMigration(b.db)
}

// AddSource stores the text a file's tree was read from.
func (b *Bundler) AddSource(fileName, contents string) error {
	if err := b.db.Save(&SourceFile{FileName: fileName, Contents: contents}).Error; err != nil {
		return fmt.Errorf("failed to save source file: %w", err)
	}
	return nil
}

// ProcessResult replaces everything recorded for fileName with the units
// and failures of result.
func (b *Bundler) ProcessResult(fileName string, result *translate.Result) error {
	return b.db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&Unit{}, &Failure{}, &DependsOn{}} {
			if err := tx.Where("file_name = ?", fileName).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to clear previous results: %w", err)
			}
		}
		for _, u := range result.Units {
			if u.Failed() {
				if err := saveFailure(tx, fileName, u); err != nil {
					return err
				}
				continue
			}
			if err := saveUnit(tx, fileName, u); err != nil {
				return err
			}
		}
		return nil
	})
}

func saveFailure(tx *gorm.DB, fileName string, u *translate.Unit) error {
	failure := Failure{
		FileName: fileName,
		Position: u.Index,
		Tag:      string(u.Tag),
		Name:     u.Name,
		Stage:    string(u.Stage),
		Message:  u.Err.Error(),
	}
	if err := tx.Create(&failure).Error; err != nil {
		return fmt.Errorf("failed to save failure: %w", err)
	}
	return nil
}

func saveUnit(tx *gorm.DB, fileName string, u *translate.Unit) error {
	core, err := EncodeTree(u.Core)
	if err != nil {
		return err
	}
	unit := Unit{
		FileName: fileName,
		Position: u.Index,
		Tag:      string(u.Tag),
		Name:     u.Name,
		Text:     u.Text,
		Core:     core,
	}
	if err := tx.Create(&unit).Error; err != nil {
		return fmt.Errorf("failed to save unit: %w", err)
	}
	for _, name := range findIdentifierReferences(u.Core) {
		ref := DependsOn{FileName: fileName, Position: u.Index, Needs: name}
		if err := tx.Create(&ref).Error; err != nil {
			return fmt.Errorf("failed to save reference: %w", err)
		}
	}
	return nil
}

// Units reads back every translated unit, by file and position.
func (b *Bundler) Units() ([]Unit, error) {
	var units []Unit
	if err := b.db.Order("file_name, position").Find(&units).Error; err != nil {
		return nil, fmt.Errorf("failed to read units: %w", err)
	}
	return units, nil
}

// Failures reads back every failed unit, by file and position.
func (b *Bundler) Failures() ([]Failure, error) {
	var failures []Failure
	if err := b.db.Order("file_name, position").Find(&failures).Error; err != nil {
		return nil, fmt.Errorf("failed to read failures: %w", err)
	}
	return failures, nil
}

// Source returns the stored contents of fileName.
func (b *Bundler) Source(fileName string) (string, error) {
	var file SourceFile
	if err := b.db.First(&file, "file_name = ?", fileName).Error; err != nil {
		return "", fmt.Errorf("failed to read source file %s: %w", fileName, err)
	}
	return file.Contents, nil
}

// Users lists the units that read the given identifier.
func (b *Bundler) Users(name string) ([]Unit, error) {
	var units []Unit
	err := b.db.
		Joins("JOIN depends_ons ON depends_ons.file_name = units.file_name AND depends_ons.position = units.position").
		Where("depends_ons.needs = ?", name).
		Order("units.file_name, units.position").
		Find(&units).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read users of %s: %w", name, err)
	}
	return units, nil
}

// Close closes the database connection.
func (b *Bundler) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
