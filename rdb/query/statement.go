package query

import (
	"fmt"
	"strings"

	"github.com/hatlonely/litedb/rdb/schema"
)

// SelectStatement 完整的查询语句，参数按文本顺序拼接
//
//	SELECT <select>
//	WHERE <where>
//	GROUP BY <group>
//	HAVING <having>
//	ORDER BY <order>
//	LIMIT n OFFSET m
type SelectStatement struct {
	Select  *SelectClause
	Where   []Condition
	GroupBy *GroupByClause
	Having  *HavingClause
	OrderBy *OrderByClause
	Limit   int // 0 表示不限制
	Offset  int
}

func (q *SelectStatement) Render(s *schema.TableSchema, alias string) (string, []any, error) {
	var b strings.Builder
	var args []any

	selectClause := q.Select
	if selectClause == nil {
		selectClause = Select()
	}
	sql, a, err := selectClause.Render(s, alias)
	if err != nil {
		return "", nil, err
	}
	b.WriteString("SELECT ")
	b.WriteString(sql)
	args = append(args, a...)

	if len(q.Where) > 0 {
		sql, a, err := Join(q.Where, s, alias)
		if err != nil {
			return "", nil, err
		}
		b.WriteString("\nWHERE ")
		b.WriteString(sql)
		args = append(args, a...)
	}

	clauses := []struct {
		keyword string
		clause  Clause
		present bool
	}{
		{"GROUP BY", q.GroupBy, q.GroupBy != nil && len(q.GroupBy.refs) > 0},
		{"HAVING", q.Having, q.Having != nil && len(q.Having.conds) > 0},
		{"ORDER BY", q.OrderBy, q.OrderBy != nil && len(q.OrderBy.orders) > 0},
	}
	for _, c := range clauses {
		if !c.present {
			continue
		}
		sql, a, err := c.clause.Render(s, alias)
		if err != nil {
			return "", nil, err
		}
		b.WriteString("\n" + c.keyword + " ")
		b.WriteString(sql)
		args = append(args, a...)
	}

	if q.Limit > 0 {
		fmt.Fprintf(&b, "\nLIMIT %d", q.Limit)
		if q.Offset > 0 {
			fmt.Fprintf(&b, " OFFSET %d", q.Offset)
		}
	} else if q.Offset > 0 {
		fmt.Fprintf(&b, "\nLIMIT -1 OFFSET %d", q.Offset)
	}

	return b.String(), args, nil
}

// WhereClause 单独渲染 WHERE 条件，没有条件时返回空串
func WhereClause(conds []Condition, s *schema.TableSchema, alias string) (string, []any, error) {
	if len(conds) == 0 {
		return "", nil, nil
	}
	return Join(conds, s, alias)
}
