// Package db implements the data-access layer on top of GORM. Every method
// takes the request context; multi-step operations run inside
// WithTransaction, which hands the callback a transaction-bound Repository.
package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	e "github.com/Alexistodj124/kiarasoftwareback/internal/kiara/errors"
	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/models"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

type Repository struct {
	db *gorm.DB
}

type Config struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	// DSN overrides the fields above. For sqlite it is the database file.
	DSN string
}

// dialector builds the GORM dialector for the configured driver.
func (cfg *Config) dialector() (gorm.Dialector, error) {
	switch cfg.Driver {
	case DriverPostgres, "":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
				cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
		}
		return postgres.Open(dsn), nil
	case DriverMySQL:
		dsn := cfg.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
				cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)
		}
		return mysql.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(sqliteDSN(cfg.DSN)), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// sqliteDSN turns on foreign key enforcement, which SQLite leaves off by default.
func sqliteDSN(dsn string) string {
	if dsn == "" {
		dsn = "file::memory:"
	}
	if strings.Contains(dsn, "_foreign_keys") || strings.Contains(dsn, "_fk") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=1"
	}
	return dsn + "?_foreign_keys=1"
}

// Open connects to the database without migrating it.
func Open(cfg *Config) (*gorm.DB, error) {
	dialector, err := cfg.dialector()
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if dialector.Name() == DriverSQLite {
		// An in-memory database lives inside a single connection.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// NewRepository connects and migrates the schema.
func NewRepository(cfg *Config) (*Repository, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	repo := New(db)
	if err := repo.Migrate(); err != nil {
		return nil, err
	}
	return repo, nil
}

// Connect retries NewRepository with exponential backoff until maxElapsed
// passes, so the API can start before the database accepts connections.
func Connect(ctx context.Context, cfg *Config, maxElapsed time.Duration, log *zap.Logger) (*Repository, error) {
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = maxElapsed

	var repo *Repository
	err := backoff.RetryNotify(func() error {
		var err error
		repo, err = NewRepository(cfg)
		return err
	}, backoff.WithContext(policy, ctx), func(err error, wait time.Duration) {
		log.Warn("database not ready, retrying",
			zap.Error(err),
			zap.Duration("wait", wait),
		)
	})
	return repo, err
}

// New wraps an already opened connection.
func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates or updates every table.
func (r *Repository) Migrate() error {
	if err := r.db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func (r *Repository) WithTransaction(ctx context.Context, fn func(repo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func (r *Repository) Exec(ctx context.Context, query string, params ...interface{}) error {
	result := r.db.WithContext(ctx).Exec(query, params...)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

func (r *Repository) Close() error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

// first loads the row with the given id into dest, translating a miss into
// ErrNotFound with a message naming the entity.
func (r *Repository) first(ctx context.Context, dest interface{}, id uint, noun string, preloads ...string) error {
	q := r.db.WithContext(ctx)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if err := q.First(dest, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return e.NotFound("%s no encontrado", noun)
		}
		return err
	}
	return nil
}

// translateWrite maps constraint violations reported by the driver.
func translateWrite(err error, conflictMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return e.Conflict("%s", conflictMsg)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return e.Conflict("referencia inválida o en uso")
	default:
		return err
	}
}

// countRefs counts rows of table whose column equals id.
func (r *Repository) countRefs(ctx context.Context, table, column string, id uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Table(table).Where(column+" = ?", id).Count(&n).Error
	return n, err
}

// containsFold adds a case-insensitive substring condition on column.
// Postgres ILIKE and MySQL LOWER fold any letter. SQLite folds ASCII only,
// in both LIKE and LOWER, so there the needle is passed unchanged: "á"
// matches "Ángela" on Postgres and MySQL but not on SQLite.
func (r *Repository) containsFold(q *gorm.DB, column, needle string) *gorm.DB {
	switch r.db.Dialector.Name() {
	case DriverPostgres:
		return q.Where(column+" ILIKE ?", "%"+needle+"%")
	case DriverSQLite:
		return q.Where(column+" LIKE ?", "%"+needle+"%")
	default:
		return q.Where("LOWER("+column+") LIKE ?", "%"+strings.ToLower(needle)+"%")
	}
}
