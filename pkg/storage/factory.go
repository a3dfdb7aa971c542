package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	Memory   = "memory"
	SQLite   = "sqlite"
	Postgres = "postgres"
)

type Config struct {
	Type string `env:"TYPE" envDefault:"memory"`

	PostgresHost    string `env:"POSTGRES_HOST"    envDefault:"localhost"`
	PostgresPort    string `env:"POSTGRES_PORT"    envDefault:"5432"`
	PostgresUser    string `env:"POSTGRES_USER"    envDefault:"okailora"`
	PostgresPass    string `env:"POSTGRES_PASS"    envDefault:"okailora"`
	PostgresDB      string `env:"POSTGRES_DB"      envDefault:"okailora"`
	PostgresSSLMode string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	SQLitePath string `env:"SQLITE_PATH" envDefault:"./data/okailora.db"`
}

// Database hands out keyed stores. SQL stores share one connection and one
// table, separated by bucket; memory stores are independent maps.
type Database struct {
	db *gorm.DB
}

func Open(cfg Config) (*Database, error) {
	var dialector gorm.Dialector
	switch cfg.Type {
	case Memory:
		return &Database{}, nil
	case SQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dialector = sqlite.Open(cfg.SQLitePath)
	case Postgres:
		dialector = postgres.Open(fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPass, cfg.PostgresDB, cfg.PostgresSSLMode,
		))
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Discard})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDBConnection, err)
	}
	if err := db.AutoMigrate(&entry{}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMigration, err)
	}

	return &Database{db: db}, nil
}

// Store returns the store of bucket. decode turns a stored JSON value back
// into the type that was written; it is unused for memory stores.
func (d *Database) Store(bucket string, decode Decoder) Storage {
	if d.db == nil {
		return NewInMemoryStorage()
	}

	return &sqlStorage{
		db:     d.db,
		bucket: bucket,
		decode: decode,
	}
}

func (d *Database) Close() error {
	if d.db == nil {
		return nil
	}
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
