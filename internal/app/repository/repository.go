package repository

import (
	"context"
	"database/sql"
	"fmt"

	"carematch/internal/app/ds"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Repository is the entity store for users, requests and orders.
type Repository struct {
	db     *gorm.DB
	driver string
}

// New opens a Postgres-backed repository.
func New(dsn string) (*Repository, error) {
	return Open(DriverPostgres, dsn)
}

// NewSQLite opens a SQLite-backed repository. path may be a plain file name or
// a file: URI carrying driver options.
func NewSQLite(path string) (*Repository, error) {
	return Open(DriverSQLite, path)
}

func Open(driver, dsn string) (*Repository, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	return &Repository{
		db:     db,
		driver: driver,
	}, nil
}

// Migrate creates or updates the tables for all models.
func (r *Repository) Migrate() error {
	err := r.db.AutoMigrate(
		&ds.User{},
		&ds.Request{},
		&ds.Order{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func (r *Repository) Driver() string {
	return r.driver
}

// WithContext returns a repository whose queries are bound to ctx.
func (r *Repository) WithContext(ctx context.Context) *Repository {
	return &Repository{db: r.db.WithContext(ctx), driver: r.driver}
}

// Transaction runs fn inside one all-or-nothing transaction. On Postgres the
// transaction is SERIALIZABLE; SQLite write transactions are already serial.
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	var opts []*sql.TxOptions
	if r.driver == DriverPostgres {
		opts = append(opts, &sql.TxOptions{Isolation: sql.LevelSerializable})
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx, driver: r.driver})
	}, opts...)
	return translate(err)
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
