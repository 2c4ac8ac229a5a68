package query

import (
	"github.com/hatlonely/litedb/rdb/schema"
	"github.com/pkg/errors"
)

type paren struct {
	and
	conds []Condition
}

// Paren 把一组条件用括号包起来，组内按各自的连接方式拼接
//
//	query.Or(query.Paren(query.Eq(Age, 1), query.Or(query.Eq(Age, 2))))
func Paren(conds ...Condition) Condition {
	return paren{conds: conds}
}

func (c paren) Render(s *schema.TableSchema, alias string) (string, []any, error) {
	if len(c.conds) == 0 {
		return "", nil, errors.Wrap(ErrEmptyCondition, "parenthesis")
	}
	sql, args, err := Join(c.conds, s, alias)
	if err != nil {
		return "", nil, err
	}
	return "(" + sql + ")", args, nil
}

type not struct {
	and
	cond Condition
}

// Not NOT (cond)
func Not(cond Condition) Condition {
	return not{cond: cond}
}

func (c not) Render(s *schema.TableSchema, alias string) (string, []any, error) {
	sql, args, err := c.cond.Render(s, alias)
	if err != nil {
		return "", nil, err
	}
	return "NOT (" + sql + ")", args, nil
}
