package schema

import (
	"time"
)

// StorageValue 把字段值转换为写入数据库的形式
//
// 整数统一为 int64，浮点为 float64，bool 为 0/1，time.Time 为毫秒时间戳，nil 指针为 nil
func StorageValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return x
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int:
		return int64(x)
	case int64:
		return x
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case float32:
		return float64(x)
	case float64:
		return x
	case bool:
		if x {
			return int64(1)
		}
		return int64(0)
	case time.Time:
		return x.UnixMilli()
	}

	if inner, ok := Deref(v); ok {
		return StorageValue(inner)
	}
	return v
}

// Deref 解引用受支持类型的指针，nil 指针返回 (nil, true)，非指针返回 (v, false)
func Deref(v any) (any, bool) {
	switch p := v.(type) {
	case *string:
		return derefOf(p), true
	case *int8:
		return derefOf(p), true
	case *int16:
		return derefOf(p), true
	case *int32:
		return derefOf(p), true
	case *int:
		return derefOf(p), true
	case *int64:
		return derefOf(p), true
	case *uint8:
		return derefOf(p), true
	case *uint16:
		return derefOf(p), true
	case *uint32:
		return derefOf(p), true
	case *float32:
		return derefOf(p), true
	case *float64:
		return derefOf(p), true
	case *bool:
		return derefOf(p), true
	case *time.Time:
		return derefOf(p), true
	}
	return v, false
}

func derefOf[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
