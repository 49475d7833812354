package database

import (
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/eventsync/internal/config"
	"github.com/mrlokans/eventsync/internal/entities"
)

var defaultCountries = []entities.Country{
	{Code: "DE", Name: "Germany"},
	{Code: "AT", Name: "Austria"},
	{Code: "CH", Name: "Switzerland"},
	{Code: "FR", Name: "France"},
	{Code: "IT", Name: "Italy"},
	{Code: "ES", Name: "Spain"},
	{Code: "PT", Name: "Portugal"},
	{Code: "NL", Name: "Netherlands"},
	{Code: "BE", Name: "Belgium"},
	{Code: "LU", Name: "Luxembourg"},
	{Code: "PL", Name: "Poland"},
	{Code: "CZ", Name: "Czech Republic"},
	{Code: "DK", Name: "Denmark"},
	{Code: "SE", Name: "Sweden"},
	{Code: "NO", Name: "Norway"},
	{Code: "FI", Name: "Finland"},
	{Code: "GB", Name: "United Kingdom"},
	{Code: "IE", Name: "Ireland"},
	{Code: "GR", Name: "Greece"},
	{Code: "UA", Name: "Ukraine"},
	{Code: "TR", Name: "Turkey"},
	{Code: "US", Name: "United States"},
	{Code: "MX", Name: "Mexico"},
	{Code: "BR", Name: "Brazil"},
	{Code: "CO", Name: "Colombia"},
	{Code: "PE", Name: "Peru"},
	{Code: "BO", Name: "Bolivia"},
	{Code: "EG", Name: "Egypt"},
	{Code: "MA", Name: "Morocco"},
	{Code: "SN", Name: "Senegal"},
	{Code: "GH", Name: "Ghana"},
	{Code: "NG", Name: "Nigeria"},
	{Code: "CM", Name: "Cameroon"},
	{Code: "KE", Name: "Kenya"},
	{Code: "TZ", Name: "Tanzania"},
	{Code: "UG", Name: "Uganda"},
	{Code: "RW", Name: "Rwanda"},
	{Code: "ET", Name: "Ethiopia"},
	{Code: "ZA", Name: "South Africa"},
	{Code: "IN", Name: "India"},
	{Code: "VN", Name: "Vietnam"},
	{Code: "KH", Name: "Cambodia"},
	{Code: "ID", Name: "Indonesia"},
	{Code: "PH", Name: "Philippines"},
}

type Database struct {
	DB *gorm.DB
}

// NewDatabase opens a sqlite database at dbPath.
func NewDatabase(dbPath string) (*Database, error) {
	return Open(config.Database{Driver: config.DriverSQLite, Path: dbPath}, logger.Warn)
}

// Open connects using the configured driver, migrates the schema and seeds
// the country list.
func Open(cfg config.Database, level logger.LogLevel) (*Database, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverSQLite, "":
		dialector = sqlite.Open(cfg.Path)
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, config.NewConfigurationError("DATABASE_DRIVER", "unknown driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.Country{},
		&entities.Category{},
		&entities.Entry{},
		&entities.Attachment{},
		&entities.Setting{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	database := &Database{DB: db}

	if err := database.seedCountries(); err != nil {
		return nil, fmt.Errorf("failed to seed countries: %w", err)
	}

	slog.Info("database initialized", "driver", dialector.Name())

	return database, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) seedCountries() error {
	for _, country := range defaultCountries {
		var existing entities.Country
		result := d.DB.Where("code = ?", country.Code).First(&existing)
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			if err := d.DB.Create(&country).Error; err != nil {
				return fmt.Errorf("failed to create country %s: %w", country.Code, err)
			}
		} else if result.Error != nil {
			return result.Error
		}
	}
	return nil
}
