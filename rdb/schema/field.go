package schema

import (
	"time"
)

// Field 强类型的字段引用，E 为实体类型，V 为字段值类型
//
// 查询条件通过 FieldID 在表结构中解析出列名
type Field[E, V any] struct {
	id  string
	ptr func(*E) *V
}

// ColumnOption 列级声明
type ColumnOption func(*ColumnOptions)

func Name(name string) ColumnOption {
	return func(o *ColumnOptions) {
		o.Name = name
	}
}

func Length(n uint) ColumnOption {
	return func(o *ColumnOptions) {
		o.Length = n
	}
}

// Default 列默认值，按列类型校验，时间戳列只接受 CurrentTime
func Default(value string) ColumnOption {
	return func(o *ColumnOptions) {
		o.Default = &value
	}
}

func AutoIncrement() ColumnOption {
	return func(o *ColumnOptions) {
		o.AutoIncrement = true
	}
}

func Nullable() ColumnOption {
	return func(o *ColumnOptions) {
		v := true
		o.Nullable = &v
	}
}

func NotNull() ColumnOption {
	return func(o *ColumnOptions) {
		v := false
		o.Nullable = &v
	}
}

// SkipInsert 插入时不写该列
func SkipInsert() ColumnOption {
	return func(o *ColumnOptions) {
		o.SkipInsert = true
	}
}

// SkipUpdate 更新时不写该列
func SkipUpdate() ColumnOption {
	return func(o *ColumnOptions) {
		o.SkipUpdate = true
	}
}

func Trigger(kind TriggerKind) ColumnOption {
	return func(o *ColumnOptions) {
		o.Triggers = append(o.Triggers, kind)
	}
}

// ForeignKeyOption 外键动作
type ForeignKeyOption func(*Reference)

func OnDelete(action Action) ForeignKeyOption {
	return func(r *Reference) {
		r.OnDelete = action
	}
}

func OnUpdate(action Action) ForeignKeyOption {
	return func(r *Reference) {
		r.OnUpdate = action
	}
}

func OnDeleteCascade() ForeignKeyOption {
	return OnDelete(ActionCascade)
}

// References 声明外键，column 为目标表的列名，为空时引用目标表的单列主键
func References(target Entity, column string, opts ...ForeignKeyOption) ColumnOption {
	return func(o *ColumnOptions) {
		ref := &Reference{Target: target, Column: column}
		for _, opt := range opts {
			opt(ref)
		}
		o.Reference = ref
	}
}

// Column 在表描述中登记一个列字段，按调用顺序即声明顺序
func Column[E, V any](t *Table[E], fieldID string, ptr func(*E) *V, opts ...ColumnOption) Field[E, V] {
	return column(t, fieldID, ptr, false, opts...)
}

func column[E, V any](t *Table[E], fieldID string, ptr func(*E) *V, inherited bool, opts ...ColumnOption) Field[E, V] {
	options := ColumnOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	var zero V
	f := Field[E, V]{id: fieldID, ptr: ptr}
	t.register(FieldSpec{
		ID:        fieldID,
		Sample:    any(zero),
		Options:   options,
		Inherited: inherited,
	}, f)
	return f
}

func (f Field[E, V]) FieldID() string {
	return f.id
}

// Resolve 在表结构中解析字段对应的列名，alias 非空时加上别名前缀
func (f Field[E, V]) Resolve(s *TableSchema, alias string) (string, error) {
	c, err := s.ColumnForField(f.id)
	if err != nil {
		return "", err
	}
	return Qualify(alias, c.Name), nil
}

func (f Field[E, V]) Get(e *E) V {
	return *f.ptr(e)
}

func (f Field[E, V]) Set(e *E, v V) {
	*f.ptr(e) = v
}

func (f Field[E, V]) storage(e *E) any {
	return StorageValue(any(*f.ptr(e)))
}

func (f Field[E, V]) reset(e *E) {
	var zero V
	*f.ptr(e) = zero
}

func (f Field[E, V]) load(e *E, c Cursor, index int) error {
	if index < 0 || c.IsNull(index) {
		f.reset(e)
		return nil
	}

	switch p := any(f.ptr(e)).(type) {
	case *string:
		return setValue(p, c.GetString, index)
	case **string:
		return setPointer(p, c.GetString, index)
	case *int8:
		return setValue(p, intGetter[int8](c), index)
	case **int8:
		return setPointer(p, intGetter[int8](c), index)
	case *int16:
		return setValue(p, c.GetInt16, index)
	case **int16:
		return setPointer(p, c.GetInt16, index)
	case *int32:
		return setValue(p, c.GetInt32, index)
	case **int32:
		return setPointer(p, c.GetInt32, index)
	case *int:
		return setValue(p, intGetter[int](c), index)
	case **int:
		return setPointer(p, intGetter[int](c), index)
	case *int64:
		return setValue(p, c.GetInt64, index)
	case **int64:
		return setPointer(p, c.GetInt64, index)
	case *uint8:
		return setValue(p, intGetter[uint8](c), index)
	case **uint8:
		return setPointer(p, intGetter[uint8](c), index)
	case *uint16:
		return setValue(p, intGetter[uint16](c), index)
	case **uint16:
		return setPointer(p, intGetter[uint16](c), index)
	case *uint32:
		return setValue(p, intGetter[uint32](c), index)
	case **uint32:
		return setPointer(p, intGetter[uint32](c), index)
	case *float32:
		return setValue(p, c.GetFloat32, index)
	case **float32:
		return setPointer(p, c.GetFloat32, index)
	case *float64:
		return setValue(p, c.GetFloat64, index)
	case **float64:
		return setPointer(p, c.GetFloat64, index)
	case *bool:
		return setValue(p, boolGetter(c), index)
	case **bool:
		return setPointer(p, boolGetter(c), index)
	case *time.Time:
		return setValue(p, timeGetter(c), index)
	case **time.Time:
		return setPointer(p, timeGetter(c), index)
	}

	_, _, err := MapValue(any(*f.ptr(e)))
	return err
}

// assignInt 覆盖所有映射为 Integer 的字段类型及其指针
func (f Field[E, V]) assignInt(e *E, v int64) bool {
	switch p := any(f.ptr(e)).(type) {
	case *int64:
		*p = v
	case **int64:
		*p = &v
	case *int:
		*p = int(v)
	case **int:
		setIntPointer(p, v)
	case *int32:
		*p = int32(v)
	case **int32:
		setIntPointer(p, v)
	case *int16:
		*p = int16(v)
	case **int16:
		setIntPointer(p, v)
	case *int8:
		*p = int8(v)
	case **int8:
		setIntPointer(p, v)
	case *uint32:
		*p = uint32(v)
	case **uint32:
		setIntPointer(p, v)
	case *uint16:
		*p = uint16(v)
	case **uint16:
		setIntPointer(p, v)
	case *uint8:
		*p = uint8(v)
	case **uint8:
		setIntPointer(p, v)
	default:
		return false
	}
	return true
}

func setIntPointer[T int8 | int16 | int32 | int | uint8 | uint16 | uint32](dst **T, v int64) {
	n := T(v)
	*dst = &n
}

func setValue[T any](dst *T, get func(int) (T, error), index int) error {
	v, err := get(index)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func setPointer[T any](dst **T, get func(int) (T, error), index int) error {
	v, err := get(index)
	if err != nil {
		return err
	}
	*dst = &v
	return nil
}

func intGetter[T int8 | int | uint8 | uint16 | uint32](c Cursor) func(int) (T, error) {
	return func(index int) (T, error) {
		v, err := c.GetInt64(index)
		return T(v), err
	}
}

func boolGetter(c Cursor) func(int) (bool, error) {
	return func(index int) (bool, error) {
		v, err := c.GetInt64(index)
		return v != 0, err
	}
}

func timeGetter(c Cursor) func(int) (time.Time, error) {
	return func(index int) (time.Time, error) {
		v, err := c.GetInt64(index)
		return time.UnixMilli(v), err
	}
}
