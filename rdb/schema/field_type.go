package schema

import (
	"time"

	"github.com/pkg/errors"
)

// FieldType 列的逻辑类型
type FieldType string

const (
	FieldTypeText      FieldType = "text"
	FieldTypeInteger   FieldType = "integer"
	FieldTypeReal      FieldType = "real"
	FieldTypeBoolean   FieldType = "boolean"   // 以 INTEGER 0/1 存储
	FieldTypeTimestamp FieldType = "timestamp" // 以 INTEGER 毫秒时间戳存储
)

// SQLType 返回 SQLite 存储类型
func (t FieldType) SQLType() string {
	switch t {
	case FieldTypeText:
		return "TEXT"
	case FieldTypeReal:
		return "REAL"
	default:
		return "INTEGER"
	}
}

func (t FieldType) String() string {
	return string(t)
}

// MapValue 根据字段值的 Go 类型推断列类型，指针类型为可空列
//
// 支持 string、有符号整数（int8 ~ int64）、uint8 ~ uint32、float32/float64、bool、time.Time
// 以及它们的指针形式，其他类型返回 ErrUnsupportedFieldType
func MapValue(v any) (FieldType, bool, error) {
	switch v.(type) {
	case string:
		return FieldTypeText, false, nil
	case *string:
		return FieldTypeText, true, nil
	case int8, int16, int32, int, int64, uint8, uint16, uint32:
		return FieldTypeInteger, false, nil
	case *int8, *int16, *int32, *int, *int64, *uint8, *uint16, *uint32:
		return FieldTypeInteger, true, nil
	case float32, float64:
		return FieldTypeReal, false, nil
	case *float32, *float64:
		return FieldTypeReal, true, nil
	case bool:
		return FieldTypeBoolean, false, nil
	case *bool:
		return FieldTypeBoolean, true, nil
	case time.Time:
		return FieldTypeTimestamp, false, nil
	case *time.Time:
		return FieldTypeTimestamp, true, nil
	}
	return "", false, errors.Wrapf(ErrUnsupportedFieldType, "%T", v)
}

// MapType 同 MapValue，使用类型参数代替样例值
func MapType[V any]() (FieldType, bool, error) {
	var zero V
	return MapValue(any(zero))
}
