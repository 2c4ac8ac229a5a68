package schema

import (
	"github.com/pkg/errors"
)

// TableSchema 推导并校验后的表结构，构造后不可修改
type TableSchema struct {
	Name       string
	Columns    []*ColumnDefinition
	PrimaryKey []string   // nil 表示未声明主键
	Unique     []string   // nil 表示未声明唯一约束
	Indexes    [][]string // 按声明顺序
	Statements []string   // 触发器与附加语句，按收集顺序

	byName  map[string]*ColumnDefinition
	byField map[string]*ColumnDefinition
}

func newTableSchema(name string, columns []*ColumnDefinition) *TableSchema {
	s := &TableSchema{
		Name:    name,
		Columns: columns,
		byName:  make(map[string]*ColumnDefinition, len(columns)),
		byField: make(map[string]*ColumnDefinition, len(columns)),
	}
	for _, c := range columns {
		s.byName[c.Name] = c
		s.byField[c.FieldID] = c
	}
	return s
}

// Column 按列名查找
func (s *TableSchema) Column(name string) (*ColumnDefinition, bool) {
	c, ok := s.byName[name]
	return c, ok
}

// ColumnForField 按字段标识查找列，不存在时返回 ErrColumnNotFound
func (s *TableSchema) ColumnForField(fieldID string) (*ColumnDefinition, error) {
	c, ok := s.byField[fieldID]
	if !ok {
		return nil, errors.Wrapf(ErrColumnNotFound, "field %s in table %s", fieldID, s.Name)
	}
	return c, nil
}

// ColumnNames 按声明顺序返回所有列名
func (s *TableSchema) ColumnNames() []string {
	names := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		names = append(names, c.Name)
	}
	return names
}

// IsPrimaryKey 判断列是否属于主键
func (s *TableSchema) IsPrimaryKey(name string) bool {
	for _, pk := range s.PrimaryKey {
		if pk == name {
			return true
		}
	}
	return false
}

// AutoIncrementColumn 返回自增列，没有时返回 nil
func (s *TableSchema) AutoIncrementColumn() *ColumnDefinition {
	for _, c := range s.Columns {
		if c.AutoIncrement {
			return c
		}
	}
	return nil
}

// Qualify 给列名加上表别名前缀
func Qualify(alias, column string) string {
	if alias == "" {
		return column
	}
	return alias + "." + column
}
