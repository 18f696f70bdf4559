package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/pressly/goose/v3"
	gormdriver "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// DB holds a pool for readers and a single-connection pool for the writer.
type DB struct {
	R *gorm.DB
	W *gorm.DB
}

type tx struct {
	*gorm.DB
}

func (db *DB) readTX(ctx context.Context, fn func(tx *tx) error) error {
	return db.R.WithContext(ctx).Transaction(func(g *gorm.DB) error {
		return fn(&tx{DB: g})
	}, &sql.TxOptions{ReadOnly: true})
}

func (db *DB) writeTX(ctx context.Context, fn func(tx *tx) error) error {
	return db.W.WithContext(ctx).Transaction(func(g *gorm.DB) error {
		return fn(&tx{DB: g})
	})
}

// Close closes both pools.
func (db *DB) Close() error {
	var firstErr error
	for _, g := range []*gorm.DB{db.R, db.W} {
		if err := closeGORM(g); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var _ io.Closer = (*DB)(nil)

// Open opens (creating if needed) the SQLite database at file and applies the
// embedded migrations.
func Open(ctx context.Context, file string) (*DB, error) {
	quiet := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Silent,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
		},
	)

	reader, err := gorm.Open(gormdriver.Dialector{DriverName: "sqlite", DSN: file}, &gorm.Config{
		PrepareStmt: true,
		Logger:      quiet,
	})
	if err != nil {
		return nil, fmt.Errorf("open read db: %w", err)
	}
	writer, err := gorm.Open(gormdriver.Dialector{DriverName: "sqlite", DSN: file}, &gorm.Config{
		PrepareStmt: true,
		Logger:      quiet,
	})
	if err != nil {
		_ = closeGORM(reader)
		return nil, fmt.Errorf("open write db: %w", err)
	}
	db := &DB{R: reader, W: writer}

	rdb, err := reader.DB()
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("reader sql db: %w", err)
	}
	wdb, err := writer.DB()
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("writer sql db: %w", err)
	}

	rdb.SetMaxOpenConns(runtime.NumCPU())
	rdb.SetMaxIdleConns(runtime.NumCPU())
	wdb.SetMaxOpenConns(1)
	wdb.SetMaxIdleConns(1)

	// The writer first, so WAL mode is set before readers attach.
	if err := applyPragmas(wdb, false); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("writer pragmas: %w", err)
	}
	if err := migrate(ctx, wdb); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := applyPragmas(rdb, true); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("reader pragmas: %w", err)
	}
	return db, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrationFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func applyPragmas(db *sql.DB, readOnly bool) error {
	stmts := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA busy_timeout = 5000;",
		"PRAGMA foreign_keys = ON;",
	}
	if readOnly {
		stmts = append(stmts, "PRAGMA query_only = ON;")
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt, err)
		}
	}
	return nil
}

func closeGORM(g *gorm.DB) error {
	if g == nil {
		return nil
	}
	sqlDB, err := g.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
