package db

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/invomaker/invomaker/models"
)

// AutoMigrate creates or updates the tables for every persisted model.
// Versioned SQL migrations (see Migrator) run after this baseline for
// changes gorm cannot express, like backfills.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Business{},
		&models.Customer{},
		&models.Product{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.Payment{},
		&models.Subscription{},
		&models.AIUsage{},
	)
}

type Migration struct {
	Version string
	Name    string
	Up      func(*gorm.DB) error
	Down    func(*gorm.DB) error
}

// schemaMigration is one applied-version row in schema_migrations.
type schemaMigration struct {
	Version   string    `gorm:"primaryKey;size:255"`
	Name      string    `gorm:"size:255;not null"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

func (schemaMigration) TableName() string { return "schema_migrations" }

// Migrator applies versioned SQL migrations on top of the AutoMigrate
// baseline, tracking applied versions in schema_migrations.
type Migrator struct {
	db         *gorm.DB
	migrations []Migration
}

func CreateMigrator(db *gorm.DB) *Migrator {
	return &Migrator{
		db:         db,
		migrations: make([]Migration, 0),
	}
}

func (m *Migrator) AddMigration(version, name string, up, down func(*gorm.DB) error) {
	m.migrations = append(m.migrations, Migration{
		Version: version,
		Name:    name,
		Up:      up,
		Down:    down,
	})
}

// LoadMigrationsFromDir registers every NNN_name.sql file in dir, in
// version order. Files without a version prefix are skipped, and SQL
// migrations have no automatic rollback. A missing dir is not an
// error; the service ships without versioned migrations until one is
// needed.
func (m *Migrator) LoadMigrationsFromDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		filename := entry.Name()
		if entry.IsDir() || filepath.Ext(filename) != ".sql" {
			continue
		}

		version, name, ok := strings.Cut(strings.TrimSuffix(filename, ".sql"), "_")
		if !ok {
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, filename))
		if err != nil {
			return err
		}

		sql := string(content)
		m.AddMigration(version, name, func(db *gorm.DB) error {
			return db.Exec(sql).Error
		}, func(db *gorm.DB) error {
			return nil
		})
	}

	return nil
}

// Up applies every pending migration in version order. Applying and
// recording happen per migration, so a failure leaves earlier
// migrations recorded.
func (m *Migrator) Up() error {
	if err := m.db.AutoMigrate(&schemaMigration{}); err != nil {
		return err
	}

	applied, err := m.applied()
	if err != nil {
		return err
	}

	pending := make([]Migration, 0, len(m.migrations))
	for _, migration := range m.migrations {
		if !applied[migration.Version] {
			pending = append(pending, migration)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].Version < pending[j].Version
	})

	for _, migration := range pending {
		if err := migration.Up(m.db); err != nil {
			return fmt.Errorf("apply migration %s: %w", migration.Version, err)
		}
		record := schemaMigration{Version: migration.Version, Name: migration.Name}
		if err := m.db.Create(&record).Error; err != nil {
			return err
		}
	}

	return nil
}

// Down rolls back applied migrations newest-first, stopping at (and
// keeping) the given version.
func (m *Migrator) Down(version string) error {
	applied, err := m.applied()
	if err != nil {
		return err
	}

	for i := len(m.migrations) - 1; i >= 0; i-- {
		migration := m.migrations[i]
		if migration.Version == version {
			break
		}
		if !applied[migration.Version] {
			continue
		}

		if err := migration.Down(m.db); err != nil {
			return fmt.Errorf("rollback migration %s: %w", migration.Version, err)
		}
		if err := m.db.Delete(&schemaMigration{Version: migration.Version}).Error; err != nil {
			return err
		}
	}

	return nil
}

func (m *Migrator) applied() (map[string]bool, error) {
	var versions []string
	if err := m.db.Model(&schemaMigration{}).Pluck("version", &versions).Error; err != nil {
		return nil, err
	}

	applied := make(map[string]bool, len(versions))
	for _, version := range versions {
		applied[version] = true
	}
	return applied, nil
}

type MigrationStatus struct {
	Version string
	Name    string
	Applied bool
}

func (m *Migrator) Status() ([]MigrationStatus, error) {
	applied, err := m.applied()
	if err != nil {
		return nil, err
	}

	statuses := make([]MigrationStatus, 0, len(m.migrations))
	for _, migration := range m.migrations {
		statuses = append(statuses, MigrationStatus{
			Version: migration.Version,
			Name:    migration.Name,
			Applied: applied[migration.Version],
		})
	}
	return statuses, nil
}
