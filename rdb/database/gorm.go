package database

import (
	"context"
	"database/sql"

	"github.com/hatlonely/litedb/rdb/schema"
	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type GormOptions struct {
	// Database 数据库文件路径，:memory: 为内存数据库
	Database string `cfg:"database" def:":memory:"`
	// DSN 非空时直接使用
	DSN      string `cfg:"dsn"`
	MaxConns int    `cfg:"maxConns" def:"4"`
	// LogLevel gorm 自身的日志级别：silent, error, warn, info
	LogLevel           string `cfg:"logLevel" def:"silent" validate:"omitempty,oneof=silent error warn info"`
	DisableForeignKeys bool   `cfg:"disableForeignKeys"`
}

// Gorm 基于 gorm 连接池的引擎，SQL 原样透传，不使用 gorm 的模型映射
type Gorm struct {
	db *gorm.DB
}

func NewGormWithOptions(options *GormOptions) (*Gorm, error) {
	if options == nil {
		return nil, errors.New("options is nil")
	}

	database := options.Database
	if database == "" {
		database = memoryDatabase
	}
	dsn := options.DSN
	if dsn == "" {
		var err error
		if dsn, err = buildDSN("sqlite3", database, 0, !options.DisableForeignKeys); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(gormLogLevel(options.LogLevel)),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "gorm.Open failed")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "gorm.DB failed")
	}
	if database == memoryDatabase && options.DSN == "" {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	} else if options.MaxConns > 0 {
		sqlDB.SetMaxOpenConns(options.MaxConns)
	}

	return &Gorm{db: db}, nil
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return logger.Silent
	}
}

func (g *Gorm) Exec(ctx context.Context, query string, args ...any) (Result, error) {
	return gormExec(g.db.WithContext(ctx), query, args)
}

func (g *Gorm) Query(ctx context.Context, query string, args ...any) (schema.Cursor, error) {
	return gormQuery(g.db.WithContext(ctx), query, args)
}

func (g *Gorm) Begin(ctx context.Context) (Tx, error) {
	tx := g.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &GormTx{tx: tx}, nil
}

func (g *Gorm) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GormTx gorm 事务
type GormTx struct {
	tx *gorm.DB
}

func (t *GormTx) Exec(ctx context.Context, query string, args ...any) (Result, error) {
	return gormExec(t.tx.WithContext(ctx), query, args)
}

func (t *GormTx) Query(ctx context.Context, query string, args ...any) (schema.Cursor, error) {
	return gormQuery(t.tx.WithContext(ctx), query, args)
}

func (t *GormTx) Commit() error {
	return t.tx.Commit().Error
}

func (t *GormTx) Rollback() error {
	return t.tx.Rollback().Error
}

// gormExec 直接在 gorm 当前的连接（或事务）上执行，以便拿到自增 id
func gormExec(db *gorm.DB, query string, args []any) (Result, error) {
	pool := db.Statement.ConnPool
	var res sql.Result
	var err error
	if pool == nil {
		return Result{}, errors.New("gorm connection pool is nil")
	}
	res, err = pool.ExecContext(db.Statement.Context, query, args...)
	return execResult(res, err)
}

func gormQuery(db *gorm.DB, query string, args []any) (schema.Cursor, error) {
	rows, err := db.Raw(query, args...).Rows()
	if err != nil {
		return nil, err
	}
	return readCursor(rows)
}
