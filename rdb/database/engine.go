package database

import (
	"context"
	"fmt"

	"github.com/hatlonely/litedb/cfg"
	"github.com/hatlonely/litedb/rdb/schema"
	"github.com/pkg/errors"
)

// Result 写操作的结果
type Result struct {
	LastInsertID int64
	RowsAffected int64
}

// Executor 执行 SQL 的最小接口，引擎和事务都实现了它
type Executor interface {
	Exec(ctx context.Context, query string, args ...any) (Result, error)
	// Query 的结果集被完整读出并缓存在游标中，调用方不需要关心底层连接
	Query(ctx context.Context, query string, args ...any) (schema.Cursor, error)
}

// Engine 嵌入式数据库引擎
type Engine interface {
	Executor
	Begin(ctx context.Context) (Tx, error)
	Close() error
}

// Tx 引擎上的事务
type Tx interface {
	Executor
	Commit() error
	Rollback() error
}

// StorageError 引擎执行失败，errors.Is 同时匹配 schema.ErrStorageOperationFailed 和底层错误
type StorageError struct {
	Op    string
	Table string
	Err   error
}

func (e *StorageError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("%s: %s: %v", schema.ErrStorageOperationFailed, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s %s: %v", schema.ErrStorageOperationFailed, e.Op, e.Table, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{schema.ErrStorageOperationFailed, e.Err}
}

// Cause 返回驱动层的原始错误，配合 errors.Cause 使用
func (e *StorageError) Cause() error {
	return e.Err
}

func storageError(op, table string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Table: table, Err: err}
}

type EngineOptions struct {
	// Type 引擎类型：sql 使用 database/sql，gorm 使用 gorm
	Type string `cfg:"type" def:"sql" validate:"oneof=sql gorm"`

	SQL  *SQLOptions  `cfg:"sql"`
	Gorm *GormOptions `cfg:"gorm"`

	// Observable 非空时为引擎加上指标、追踪和日志
	Observable *ObservableOptions `cfg:"observable"`
}

func NewEngineWithOptions(options *EngineOptions) (Engine, error) {
	if options == nil {
		return nil, errors.New("options is nil")
	}

	var engine Engine
	switch options.Type {
	case "", "sql":
		sqlOptions := options.SQL
		if sqlOptions == nil {
			sqlOptions = &SQLOptions{}
		}
		e, err := NewSQLWithOptions(sqlOptions)
		if err != nil {
			return nil, errors.WithMessage(err, "NewSQLWithOptions failed")
		}
		engine = e
	case "gorm":
		gormOptions := options.Gorm
		if gormOptions == nil {
			gormOptions = &GormOptions{}
		}
		e, err := NewGormWithOptions(gormOptions)
		if err != nil {
			return nil, errors.WithMessage(err, "NewGormWithOptions failed")
		}
		engine = e
	default:
		return nil, errors.Errorf("unsupported engine type: %s", options.Type)
	}

	if options.Observable == nil {
		return engine, nil
	}
	obs, err := NewObservableEngineWithOptions(engine, options.Observable)
	if err != nil {
		_ = engine.Close()
		return nil, errors.WithMessage(err, "NewObservableEngineWithOptions failed")
	}
	return obs, nil
}

// LoadEngineOptions 从配置文件加载引擎配置，格式由扩展名决定
func LoadEngineOptions(path string) (*EngineOptions, error) {
	var options EngineOptions
	if err := cfg.Load(path, &options); err != nil {
		return nil, errors.WithMessagef(err, "load engine options from %s", path)
	}
	return &options, nil
}

// WithTx 在事务中执行 fn，fn 返回错误或 panic 时回滚
func WithTx(ctx context.Context, engine Engine, fn func(tx Tx) error) (err error) {
	tx, err := engine.Begin(ctx)
	if err != nil {
		return storageError("begin", "", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return storageError("commit", "", tx.Commit())
}
