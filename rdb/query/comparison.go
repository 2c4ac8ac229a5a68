package query

import (
	"github.com/hatlonely/litedb/rdb/schema"
)

// comparison 比较条件，值为 NULL 时直接内联字面量 NULL（col = NULL），不转换为 IS NULL
type comparison struct {
	and
	ref   Ref
	op    string
	value any
}

func (c comparison) Render(s *schema.TableSchema, alias string) (string, []any, error) {
	column, err := c.ref.Resolve(s, alias)
	if err != nil {
		return "", nil, err
	}
	placeholder, args := operand(c.ref, c.value, nil)
	return column + " " + c.op + " " + placeholder, args, nil
}

func Eq[E, V any](f schema.Field[E, V], v V) Condition {
	return comparison{ref: f, op: "=", value: v}
}

func Ne[E, V any](f schema.Field[E, V], v V) Condition {
	return comparison{ref: f, op: "<>", value: v}
}

func Lt[E, V any](f schema.Field[E, V], v V) Condition {
	return comparison{ref: f, op: "<", value: v}
}

func Le[E, V any](f schema.Field[E, V], v V) Condition {
	return comparison{ref: f, op: "<=", value: v}
}

func Gt[E, V any](f schema.Field[E, V], v V) Condition {
	return comparison{ref: f, op: ">", value: v}
}

func Ge[E, V any](f schema.Field[E, V], v V) Condition {
	return comparison{ref: f, op: ">=", value: v}
}

// EqCol 等同于 Eq，用于原始列名、表达式等非强类型的列引用
func EqCol(ref Ref, v any) Condition {
	return comparison{ref: ref, op: "=", value: v}
}

func NeCol(ref Ref, v any) Condition {
	return comparison{ref: ref, op: "<>", value: v}
}

func LtCol(ref Ref, v any) Condition {
	return comparison{ref: ref, op: "<", value: v}
}

func LeCol(ref Ref, v any) Condition {
	return comparison{ref: ref, op: "<=", value: v}
}

func GtCol(ref Ref, v any) Condition {
	return comparison{ref: ref, op: ">", value: v}
}

func GeCol(ref Ref, v any) Condition {
	return comparison{ref: ref, op: ">=", value: v}
}
