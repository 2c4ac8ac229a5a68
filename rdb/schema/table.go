package schema

import (
	"reflect"

	"github.com/pkg/errors"
)

// Table 实体 E 的声明式表描述，同时持有字段的读写方法，用于插入取值和结果集回填
//
//	items := schema.NewTable[Item](schema.WithName("items"), schema.WithPrimaryKey("id"))
//	ItemID := schema.Column(items, "id", func(e *Item) *int64 { return &e.ID })
//	ItemName := schema.Column(items, "name", func(e *Item) *string { return &e.Name })
type Table[E any] struct {
	desc      *Descriptor
	accessors map[string]accessor[E]
}

type accessor[E any] interface {
	storage(e *E) any
	load(e *E, c Cursor, index int) error
	reset(e *E)
	assignInt(e *E, v int64) bool
}

// TableOption 表级声明
type TableOption func(*Descriptor)

// WithName 显式指定表名
func WithName(name string) TableOption {
	return func(d *Descriptor) {
		d.Name = name
	}
}

// WithPrimaryKey 声明主键列，不传参数视为声明了空主键
func WithPrimaryKey(columns ...string) TableOption {
	return func(d *Descriptor) {
		d.PrimaryKey = append(make([]string, 0, len(columns)), columns...)
	}
}

// WithUnique 声明表级唯一约束
func WithUnique(columns ...string) TableOption {
	return func(d *Descriptor) {
		d.Unique = append(make([]string, 0, len(columns)), columns...)
	}
}

// WithIndex 追加一个索引，可多次使用
func WithIndex(columns ...string) TableOption {
	return func(d *Descriptor) {
		d.Indexes = append(d.Indexes, append(make([]string, 0, len(columns)), columns...))
	}
}

// WithStatement 追加一条建表后执行的原始 SQL
func WithStatement(sql string) TableOption {
	return func(d *Descriptor) {
		d.Statements = append(d.Statements, sql)
	}
}

func NewTable[E any](opts ...TableOption) *Table[E] {
	t := &Table[E]{
		desc:      &Descriptor{Type: reflect.TypeOf((*E)(nil)).Elem()},
		accessors: map[string]accessor[E]{},
	}
	for _, opt := range opts {
		opt(t.desc)
	}
	return t
}

// Descriptor 表描述，nil 表返回 nil
func (t *Table[E]) Descriptor() *Descriptor {
	if t == nil {
		return nil
	}
	return t.desc
}

// Name 声明的表名
func (t *Table[E]) Name() string {
	return t.desc.TableName()
}

// Schema 从注册表获取（必要时推导）表结构
func (t *Table[E]) Schema(r *Registry) (*TableSchema, error) {
	return r.Get(t)
}

// Empty 构造所有字段均为类型零值的占位实体
func (t *Table[E]) Empty() *E {
	e := new(E)
	for _, a := range t.accessors {
		a.reset(e)
	}
	return e
}

// Hydrate 用游标当前行构造实体，缺失或为 NULL 的列取类型零值
func (t *Table[E]) Hydrate(s *TableSchema, c Cursor) (*E, error) {
	e := t.Empty()
	if err := t.HydrateInto(s, c, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (t *Table[E]) HydrateInto(s *TableSchema, c Cursor, e *E) error {
	for _, col := range s.Columns {
		a, err := t.accessor(s, col)
		if err != nil {
			return err
		}
		if err := a.load(e, c, c.ColumnIndex(col.Name)); err != nil {
			return errors.WithMessagef(err, "column %s", col.Name)
		}
	}
	return nil
}

// InsertValues 返回参与插入的列名与存储形式的值
func (t *Table[E]) InsertValues(s *TableSchema, e *E) ([]string, []any, error) {
	return t.values(s, e, func(c *ColumnDefinition) bool {
		return c.UseInInsert
	})
}

// UpdateValues 返回参与更新的非主键列名与值
func (t *Table[E]) UpdateValues(s *TableSchema, e *E) ([]string, []any, error) {
	return t.values(s, e, func(c *ColumnDefinition) bool {
		return c.UseInUpdate && !s.IsPrimaryKey(c.Name)
	})
}

// KeyValues 返回主键列名与值
func (t *Table[E]) KeyValues(s *TableSchema, e *E) ([]string, []any, error) {
	if len(s.PrimaryKey) == 0 {
		return nil, nil, errors.Wrapf(ErrPrimaryKeyNotSpecified, "table %s", s.Name)
	}
	names := make([]string, 0, len(s.PrimaryKey))
	values := make([]any, 0, len(s.PrimaryKey))
	for _, name := range s.PrimaryKey {
		col, _ := s.Column(name)
		a, err := t.accessor(s, col)
		if err != nil {
			return nil, nil, err
		}
		names = append(names, name)
		values = append(values, a.storage(e))
	}
	return names, values, nil
}

// AssignAutoIncrement 把插入得到的自增 id 写回实体，没有自增列时不做任何事
func (t *Table[E]) AssignAutoIncrement(s *TableSchema, e *E, id int64) error {
	col := s.AutoIncrementColumn()
	if col == nil {
		return nil
	}
	a, err := t.accessor(s, col)
	if err != nil {
		return err
	}
	if !a.assignInt(e, id) {
		return errors.Wrapf(ErrInvalidAutoIncrement, "table %s column %s cannot hold an integer id", s.Name, col.Name)
	}
	return nil
}

func (t *Table[E]) values(s *TableSchema, e *E, use func(*ColumnDefinition) bool) ([]string, []any, error) {
	var names []string
	var values []any
	for _, col := range s.Columns {
		if !use(col) {
			continue
		}
		a, err := t.accessor(s, col)
		if err != nil {
			return nil, nil, err
		}
		names = append(names, col.Name)
		values = append(values, a.storage(e))
	}
	return names, values, nil
}

func (t *Table[E]) accessor(s *TableSchema, col *ColumnDefinition) (accessor[E], error) {
	a, ok := t.accessors[col.FieldID]
	if !ok {
		return nil, errors.Wrapf(ErrColumnNotFound, "table %s has no field %s for column %s", t.Name(), col.FieldID, col.Name)
	}
	return a, nil
}

func (t *Table[E]) register(spec FieldSpec, a accessor[E]) {
	t.desc.Fields = append(t.desc.Fields, spec)
	t.accessors[spec.ID] = a
}
