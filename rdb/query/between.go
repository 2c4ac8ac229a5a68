package query

import (
	"github.com/hatlonely/litedb/rdb/schema"
)

// between 两端各自独立决定使用占位符还是 NULL 字面量
type between struct {
	and
	ref      Ref
	low, high any
}

// Between col BETWEEN low AND high
func Between[E, V any](f schema.Field[E, V], low, high V) Condition {
	return between{ref: f, low: low, high: high}
}

func BetweenCol(ref Ref, low, high any) Condition {
	return between{ref: ref, low: low, high: high}
}

func (c between) Render(s *schema.TableSchema, alias string) (string, []any, error) {
	column, err := c.ref.Resolve(s, alias)
	if err != nil {
		return "", nil, err
	}
	low, args := operand(c.ref, c.low, nil)
	high, args := operand(c.ref, c.high, args)
	return column + " BETWEEN " + low + " AND " + high, args, nil
}
