package schema

import (
	"fmt"
	"reflect"
)

// Entity 能够提供表描述的实体，通常是 *Table[E]
type Entity interface {
	Descriptor() *Descriptor
}

// FieldSpec 一个被标记为列的字段
type FieldSpec struct {
	ID      string
	Sample  any // 字段类型的零值，用于类型映射
	Options ColumnOptions

	// Inherited 组合进来的公共列（如审计列），排在实体自身字段之后
	Inherited bool
}

// Descriptor 实体的声明式表描述，由实体作者在启动时构造一次
//
// PrimaryKey/Unique 为 nil 表示未声明；非 nil 的空切片表示声明了但为空，推导时报错
type Descriptor struct {
	Type       reflect.Type
	Name       string
	Fields     []FieldSpec
	PrimaryKey []string
	Unique     []string
	Indexes    [][]string
	Statements []string
}

// Descriptor 使 *Descriptor 自身也满足 Entity
func (d *Descriptor) Descriptor() *Descriptor {
	return d
}

// TableName 显式表名优先，否则使用实体类型名
func (d *Descriptor) TableName() string {
	if d.Name != "" {
		return d.Name
	}
	if d.Type != nil {
		return d.Type.Name()
	}
	return ""
}

func (d *Descriptor) cacheKey() string {
	if d.Type != nil {
		return d.Type.PkgPath() + "." + d.Type.String()
	}
	return fmt.Sprintf("descriptor:%p", d)
}

// orderedFields 自身字段在前，组合字段在后，各自保持声明顺序
func (d *Descriptor) orderedFields() []FieldSpec {
	fields := make([]FieldSpec, 0, len(d.Fields))
	for _, f := range d.Fields {
		if !f.Inherited {
			fields = append(fields, f)
		}
	}
	for _, f := range d.Fields {
		if f.Inherited {
			fields = append(fields, f)
		}
	}
	return fields
}
