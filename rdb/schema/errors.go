package schema

import (
	"github.com/pkg/errors"
)

// 表结构定义错误，均在首次推导表结构时抛出，不可重试
var (
	ErrUnsupportedFieldType      = errors.New("unsupported field type")
	ErrColumnDefaultTypeMismatch = errors.New("column default type mismatch")
	ErrNamingRuleViolation       = errors.New("naming rule violation")
	ErrAnnotationNotAttached     = errors.New("schema metadata not attached")
	ErrPrimaryKeyNotSpecified    = errors.New("primary key not specified")
	ErrUniqueNotSpecified        = errors.New("unique not specified")
	ErrIndexNotSpecified         = errors.New("index not specified")
	ErrDuplicateColumn           = errors.New("duplicate column")
	ErrColumnNotFound            = errors.New("column not found")
	ErrInvalidAutoIncrement      = errors.New("invalid auto increment")
	ErrDuplicateIndex            = errors.New("duplicate index")
	ErrQueryNotSpecified         = errors.New("query not specified")
	ErrInvalidTrigger            = errors.New("invalid trigger")
)

// ErrStorageOperationFailed 数据库引擎执行失败，由调用方决定是否重试
var ErrStorageOperationFailed = errors.New("storage operation failed")
