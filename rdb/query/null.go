package query

import (
	"github.com/hatlonely/litedb/rdb/schema"
)

type nullCheck struct {
	and
	ref Ref
	not bool
}

// IsNull col IS NULL
func IsNull(ref Ref) Condition {
	return nullCheck{ref: ref}
}

// IsNotNull col IS NOT NULL
func IsNotNull(ref Ref) Condition {
	return nullCheck{ref: ref, not: true}
}

func (c nullCheck) Render(s *schema.TableSchema, alias string) (string, []any, error) {
	column, err := c.ref.Resolve(s, alias)
	if err != nil {
		return "", nil, err
	}
	if c.not {
		return column + " IS NOT NULL", nil, nil
	}
	return column + " IS NULL", nil, nil
}
