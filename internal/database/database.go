package database

import (
	"context"
	"errors"
	"fmt"
	"immofds/server/internal/apperr"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	db *gorm.DB
}

type txKey struct{}

// NewDatabase opens (and creates if needed) the sqlite file at dbPath with
// foreign keys enforced. Transactions take the write lock when they begin, so
// concurrent writers queue on the busy timeout instead of failing half way.
func NewDatabase(dbPath string, log *logrus.Logger) (*Database, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate", dbPath)
	db, err := open(dsn, log)
	if err != nil {
		return nil, err
	}
	return &Database{db: db}, nil
}

// NewTestDB returns an isolated in-memory database. Each call gets its own
// schema-less store.
func NewTestDB() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := open(dsn, nil)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// A single connection keeps the in-memory database alive and serialises
	// writers the same way a file lock would.
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// Wrap turns an existing gorm handle, typically from NewTestDB, into a
// Database.
func Wrap(db *gorm.DB) *Database {
	return &Database{db: db}
}

func open(dsn string, log *logrus.Logger) (*gorm.DB, error) {
	cfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	}
	if log != nil && log.IsLevelEnabled(logrus.DebugLevel) {
		cfg.Logger = logger.New(log, logger.Config{LogLevel: logger.Info})
	}

	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) GetDB() *gorm.DB {
	return d.db
}

// Ping checks that the underlying connection is usable.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Transaction runs fn inside a transaction. Repository calls made with the
// context passed to fn join that transaction; nested calls use savepoints.
func (d *Database) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	err := d.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
	if err != nil && apperr.KindOf(err) == apperr.KindInternal && isBusy(err) {
		return apperr.Wrap(apperr.KindInvalidOperation, err, "the data was being changed by another request, retry")
	}
	return err
}

func (d *Database) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return d.db.WithContext(ctx)
}

// IsUniqueViolation reports whether err comes from a unique index.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isBusy reports whether err means another connection held the lock for
// longer than the busy timeout.
func isBusy(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}

// translate maps driver errors onto the application taxonomy.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Wrap(apperr.KindNotFound, err, "%s not found", what)
	}
	if IsUniqueViolation(err) {
		return apperr.Wrap(apperr.KindDuplicate, err, "%s already exists", what)
	}
	if isBusy(err) {
		return apperr.Wrap(apperr.KindInvalidOperation, err, "%s is being changed by another request, retry", what)
	}
	return fmt.Errorf("%s: %w", what, err)
}
