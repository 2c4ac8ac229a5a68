package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hatlonely/litedb/rdb/schema"
)

// Literal 把值转换为内联到 SQL 中的字面量
//
// 字符串加单引号，bool 为 1/0，时间为毫秒时间戳，nil 为 NULL，其余为自然字符串形式
func Literal(v any) string {
	if isNull(v) {
		return "NULL"
	}
	if inner, ok := schema.Deref(v); ok {
		v = inner
	}
	if s, ok := v.(string); ok {
		return "'" + strings.ReplaceAll(s, "'", "''") + "'"
	}
	return Arg(v)
}

// Arg 把非空值转换为绑定参数的字符串形式
func Arg(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		if x {
			return "1"
		}
		return "0"
	case time.Time:
		return strconv.FormatInt(x.UnixMilli(), 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}

	if inner, ok := schema.Deref(v); ok {
		if inner == nil {
			return "NULL"
		}
		return Arg(inner)
	}
	if i, ok := schema.StorageValue(v).(int64); ok {
		return strconv.FormatInt(i, 10)
	}
	return fmt.Sprint(v)
}

// isNull nil 以及受支持类型的 nil 指针都视为 NULL
func isNull(v any) bool {
	if v == nil {
		return true
	}
	inner, ok := schema.Deref(v)
	return ok && inner == nil
}

// operand 非空值渲染为占位符并追加参数，空值渲染为字面量
//
// 列的参数为字符串形式，由列的类型亲和性转换；表达式（聚合、原始模板）没有亲和性，
// 参数保持存储形式，否则 SUM(score) > '100' 这样的数字与文本比较永远为假
func operand(ref Ref, v any, args []any) (string, []any) {
	if isNull(v) {
		return Literal(v), args
	}
	if _, ok := ref.(expression); ok {
		return "?", append(args, schema.StorageValue(v))
	}
	return "?", append(args, Arg(v))
}
