package query

import (
	"strings"

	"github.com/hatlonely/litedb/rdb/schema"
)

// Clause SELECT/GROUP BY/HAVING/ORDER BY 子句
type Clause interface {
	Render(s *schema.TableSchema, alias string) (string, []any, error)
}

type SelectClause struct {
	refs []Ref
}

// Select 列清单，同时给出数据来源表；不传列时为 *
//
//	id, name
//	FROM items AS i
func Select(refs ...Ref) *SelectClause {
	return &SelectClause{refs: refs}
}

func (c *SelectClause) Render(s *schema.TableSchema, alias string) (string, []any, error) {
	columns, err := resolveAll(c.refs, s, alias)
	if err != nil {
		return "", nil, err
	}
	list := "*"
	if len(columns) > 0 {
		list = strings.Join(columns, ", ")
	}
	from := s.Name
	if alias != "" {
		from += " AS " + alias
	}
	return list + "\nFROM " + from, nil, nil
}

type GroupByClause struct {
	refs []Ref
}

func GroupBy(refs ...Ref) *GroupByClause {
	return &GroupByClause{refs: refs}
}

func (c *GroupByClause) Render(s *schema.TableSchema, alias string) (string, []any, error) {
	columns, err := resolveAll(c.refs, s, alias)
	if err != nil {
		return "", nil, err
	}
	return strings.Join(columns, ", "), nil, nil
}

type HavingClause struct {
	conds []Condition
}

func Having(conds ...Condition) *HavingClause {
	return &HavingClause{conds: conds}
}

func (c *HavingClause) Render(s *schema.TableSchema, alias string) (string, []any, error) {
	return Join(c.conds, s, alias)
}

type Direction string

const (
	DirectionAsc  Direction = "ASC"
	DirectionDesc Direction = "DESC"
)

// Order 排序项
type Order struct {
	Ref       Ref
	Direction Direction
}

func Asc(ref Ref) Order {
	return Order{Ref: ref, Direction: DirectionAsc}
}

func Desc(ref Ref) Order {
	return Order{Ref: ref, Direction: DirectionDesc}
}

type OrderByClause struct {
	orders []Order
}

func OrderBy(orders ...Order) *OrderByClause {
	return &OrderByClause{orders: orders}
}

func (c *OrderByClause) Render(s *schema.TableSchema, alias string) (string, []any, error) {
	items := make([]string, 0, len(c.orders))
	for _, o := range c.orders {
		column, err := o.Ref.Resolve(s, alias)
		if err != nil {
			return "", nil, err
		}
		direction := o.Direction
		if direction == "" {
			direction = DirectionAsc
		}
		items = append(items, column+" "+string(direction))
	}
	return strings.Join(items, ", "), nil, nil
}
