package schema

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// CurrentTime 时间戳列唯一允许的默认值，建表时渲染为当前毫秒时间戳表达式
const CurrentTime = "CURRENT_TIMESTAMP"

// NowMillis SQLite 中计算当前毫秒时间戳的表达式
const NowMillis = "(CAST((julianday('now') - 2440587.5) * 86400000 AS INTEGER))"

// Action 外键级联动作，零值表示未指定
type Action string

const (
	ActionNone       Action = ""
	ActionNoAction   Action = "NO ACTION"
	ActionRestrict   Action = "RESTRICT"
	ActionSetNull    Action = "SET NULL"
	ActionSetDefault Action = "SET DEFAULT"
	ActionCascade    Action = "CASCADE"
)

// TriggerKind 列级触发器类型
type TriggerKind string

const (
	// TriggerUpdatedAt 每次更新行时把该列置为当前时间
	TriggerUpdatedAt TriggerKind = "updated_at"
)

// ForeignKeyRef 已解析的外键引用
type ForeignKeyRef struct {
	Table    string
	Column   string
	OnUpdate Action
	OnDelete Action
}

// ColumnDefinition 单列的完整定义
type ColumnDefinition struct {
	FieldID       string
	Name          string
	Type          FieldType
	MaxLength     uint // 0 表示不限长度
	DefaultValue  *string
	AutoIncrement bool
	NotNull       bool
	ForeignKey    *ForeignKeyRef
	UseInInsert   bool
	UseInUpdate   bool
	Triggers      []TriggerKind
}

// Reference 外键声明，Target 在推导时解析为目标表结构
type Reference struct {
	Target   Entity
	Column   string // 为空时使用目标表的单列主键
	OnUpdate Action
	OnDelete Action
}

// ColumnOptions 字段上声明的原始列选项
type ColumnOptions struct {
	Name          string
	Length        uint
	Default       *string
	AutoIncrement bool
	Nullable      *bool // nil 时由字段类型决定，指针类型可空
	SkipInsert    bool
	SkipUpdate    bool
	Reference     *Reference
	Triggers      []TriggerKind
}

// BuildColumn 根据字段标识、字段样例值和列选项构造列定义
func BuildColumn(fieldID string, sample any, options *ColumnOptions) (*ColumnDefinition, error) {
	if options == nil {
		options = &ColumnOptions{}
	}

	fieldType, nullable, err := MapValue(sample)
	if err != nil {
		return nil, errors.WithMessagef(err, "field %s", fieldID)
	}
	if options.Nullable != nil {
		nullable = *options.Nullable
	}

	name := options.Name
	if name == "" {
		name = fieldID
	}

	col := &ColumnDefinition{
		FieldID:       fieldID,
		Name:          name,
		Type:          fieldType,
		MaxLength:     options.Length,
		AutoIncrement: options.AutoIncrement,
		NotNull:       !nullable,
		UseInInsert:   !options.SkipInsert && !options.AutoIncrement,
		UseInUpdate:   !options.SkipUpdate,
		Triggers:      append([]TriggerKind(nil), options.Triggers...),
	}

	if options.Default != nil {
		if err := checkDefault(fieldType, *options.Default); err != nil {
			return nil, errors.WithMessagef(err, "column %s", name)
		}
		v := *options.Default
		col.DefaultValue = &v
	}

	return col, nil
}

func checkDefault(fieldType FieldType, value string) error {
	switch fieldType {
	case FieldTypeInteger:
		if _, err := strconv.ParseInt(value, 10, 64); err != nil {
			return errors.Wrapf(ErrColumnDefaultTypeMismatch, "%q is not an integer", value)
		}
	case FieldTypeReal:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return errors.Wrapf(ErrColumnDefaultTypeMismatch, "%q is not a real", value)
		}
	case FieldTypeBoolean:
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil || (i != 0 && i != 1) {
			return errors.Wrapf(ErrColumnDefaultTypeMismatch, "%q is not 0 or 1", value)
		}
	case FieldTypeTimestamp:
		if value != CurrentTime {
			return errors.Wrapf(ErrColumnDefaultTypeMismatch, "timestamp default must be %s, got %q", CurrentTime, value)
		}
	}
	return nil
}

// DefaultSQL 返回建表语句中 DEFAULT 之后的文本
func (c *ColumnDefinition) DefaultSQL() string {
	if c.DefaultValue == nil {
		return ""
	}
	v := *c.DefaultValue
	switch c.Type {
	case FieldTypeTimestamp:
		return NowMillis
	case FieldTypeText:
		if len(v) >= 2 && v[0] == '\'' && v[len(v)-1] == '\'' {
			return v
		}
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	}
	return v
}

// HasTrigger 判断列上是否声明了指定触发器
func (c *ColumnDefinition) HasTrigger(kind TriggerKind) bool {
	for _, t := range c.Triggers {
		if t == kind {
			return true
		}
	}
	return false
}
