package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/hatlonely/litedb/rdb/schema"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const memoryDatabase = ":memory:"

type SQLOptions struct {
	// Driver sqlite3 为 mattn/go-sqlite3（cgo），sqlite 为 modernc.org/sqlite（纯 Go）
	Driver string `cfg:"driver" def:"sqlite3" validate:"omitempty,oneof=sqlite3 sqlite"`
	// Database 数据库文件路径，:memory: 为内存数据库
	Database string `cfg:"database" def:":memory:"`
	// DSN 非空时直接使用，忽略 Database 和连接参数
	DSN         string        `cfg:"dsn"`
	MaxConns    int           `cfg:"maxConns" def:"4"`
	MaxIdle     int           `cfg:"maxIdle" def:"2"`
	BusyTimeout time.Duration `cfg:"busyTimeout" def:"5s"`
	// DisableForeignKeys 关闭外键约束检查，默认开启
	DisableForeignKeys bool `cfg:"disableForeignKeys"`
}

// SQL 基于 database/sql 的引擎
type SQL struct {
	db     *sql.DB
	driver string
}

func NewSQLWithOptions(options *SQLOptions) (*SQL, error) {
	if options == nil {
		return nil, errors.New("options is nil")
	}

	driver := options.Driver
	if driver == "" {
		driver = "sqlite3"
	}
	database := options.Database
	if database == "" {
		database = memoryDatabase
	}

	dsn := options.DSN
	if dsn == "" {
		var err error
		if dsn, err = buildDSN(driver, database, options.BusyTimeout, !options.DisableForeignKeys); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "sql.Open %s failed", driver)
	}

	// 每个连接都有自己的内存数据库，只能使用一个连接
	if database == memoryDatabase && options.DSN == "" {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		if options.MaxConns > 0 {
			db.SetMaxOpenConns(options.MaxConns)
		}
		if options.MaxIdle > 0 {
			db.SetMaxIdleConns(options.MaxIdle)
		}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping failed")
	}

	if !options.DisableForeignKeys {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			_ = db.Close()
			return nil, errors.Wrap(err, "enable foreign keys failed")
		}
	}

	return &SQL{db: db, driver: driver}, nil
}

// buildDSN 把连接参数写入 DSN，使连接池中的每个连接都生效
func buildDSN(driver string, database string, busyTimeout time.Duration, foreignKeys bool) (string, error) {
	var params []string
	switch driver {
	case "sqlite3":
		if foreignKeys {
			params = append(params, "_foreign_keys=1")
		}
		if busyTimeout > 0 {
			params = append(params, fmt.Sprintf("_busy_timeout=%d", busyTimeout.Milliseconds()))
		}
	case "sqlite":
		if foreignKeys {
			params = append(params, "_pragma=foreign_keys(1)")
		}
		if busyTimeout > 0 {
			params = append(params, fmt.Sprintf("_pragma=busy_timeout(%d)", busyTimeout.Milliseconds()))
		}
	default:
		return "", errors.Errorf("unsupported driver: %s", driver)
	}

	if len(params) == 0 {
		return database, nil
	}
	sep := "?"
	if strings.Contains(database, "?") {
		sep = "&"
	}
	return database + sep + strings.Join(params, "&"), nil
}

func (s *SQL) Driver() string {
	return s.driver
}

// DB 底层连接池
func (s *SQL) DB() *sql.DB {
	return s.db
}

func (s *SQL) Exec(ctx context.Context, query string, args ...any) (Result, error) {
	return execResult(s.db.ExecContext(ctx, query, args...))
}

func (s *SQL) Query(ctx context.Context, query string, args ...any) (schema.Cursor, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return readCursor(rows)
}

func (s *SQL) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &SQLTx{tx: tx}, nil
}

func (s *SQL) Close() error {
	return s.db.Close()
}

// SQLTx database/sql 事务
type SQLTx struct {
	tx *sql.Tx
}

func (t *SQLTx) Exec(ctx context.Context, query string, args ...any) (Result, error) {
	return execResult(t.tx.ExecContext(ctx, query, args...))
}

func (t *SQLTx) Query(ctx context.Context, query string, args ...any) (schema.Cursor, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return readCursor(rows)
}

func (t *SQLTx) Commit() error {
	return t.tx.Commit()
}

func (t *SQLTx) Rollback() error {
	return t.tx.Rollback()
}

func execResult(res sql.Result, err error) (Result, error) {
	if err != nil {
		return Result{}, err
	}
	var r Result
	if r.LastInsertID, err = res.LastInsertId(); err != nil {
		return Result{}, err
	}
	if r.RowsAffected, err = res.RowsAffected(); err != nil {
		return Result{}, err
	}
	return r, nil
}
