package repositories

import (
	"fmt"

	"goldpredict/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store drivers accepted by OpenUserRepository.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// StoreConfig selects and configures the credential store backend.
type StoreConfig struct {
	Driver   string
	UserFile string
	DSN      string
}

// OpenUserRepository builds the UserRepository for cfg.Driver.
func OpenUserRepository(cfg StoreConfig) (UserRepository, error) {
	switch cfg.Driver {
	case DriverFile, "":
		return NewJSONFileUserRepository(cfg.UserFile)
	case DriverMemory:
		return NewMemoryUserRepository(), nil
	case DriverSQLite:
		return openGORM(sqlite.Open(cfg.DSN))
	case DriverPostgres:
		return openGORM(postgres.Open(cfg.DSN))
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func openGORM(dialector gorm.Dialector) (*GORMUserRepository, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return NewGORMUserRepository(db), nil
}
