// Package query 构造参数化的 WHERE/HAVING 条件以及 SELECT/GROUP BY/ORDER BY 子句
//
// 所有节点都针对给定的表结构和可选的表别名渲染为 (SQL 片段, 参数列表)，渲染过程不修改任何状态
package query

import (
	"strings"

	"github.com/hatlonely/litedb/rdb/schema"
	"github.com/pkg/errors"
)

var ErrEmptyCondition = errors.New("empty condition group")

// Ref 列引用，schema.Field 实现了该接口
type Ref interface {
	Resolve(s *schema.TableSchema, alias string) (string, error)
}

// Conjunction 条件与前一个条件的连接方式
type Conjunction string

const (
	ConjunctionAnd Conjunction = "AND"
	ConjunctionOr  Conjunction = "OR"
)

// Condition WHERE/HAVING 条件节点
type Condition interface {
	Render(s *schema.TableSchema, alias string) (string, []any, error)
	// Conjunction 描述该节点如何接在前一个节点之后，列表中第一个节点的连接方式不起作用
	Conjunction() Conjunction
}

type conjunctive struct {
	Condition
	conjunction Conjunction
}

func (c conjunctive) Conjunction() Conjunction {
	return c.conjunction
}

// Or 以 OR 连接到前一个条件
func Or(c Condition) Condition {
	return conjunctive{Condition: unwrap(c), conjunction: ConjunctionOr}
}

// And 以 AND 连接到前一个条件，这也是默认的连接方式
func And(c Condition) Condition {
	return conjunctive{Condition: unwrap(c), conjunction: ConjunctionAnd}
}

func unwrap(c Condition) Condition {
	if w, ok := c.(conjunctive); ok {
		return w.Condition
	}
	return c
}

type and struct{}

func (and) Conjunction() Conjunction {
	return ConjunctionAnd
}

// Join 渲染条件列表：每个片段之后换行，再接下一个节点的 AND/OR
//
//	a = ?
//	OR b = ?
func Join(conds []Condition, s *schema.TableSchema, alias string) (string, []any, error) {
	var b strings.Builder
	var args []any
	for i, c := range conds {
		frag, a, err := c.Render(s, alias)
		if err != nil {
			return "", nil, err
		}
		if i > 0 {
			b.WriteString("\n")
			b.WriteString(string(c.Conjunction()))
			b.WriteString(" ")
		}
		b.WriteString(frag)
		args = append(args, a...)
	}
	return b.String(), args, nil
}

type name string

// Name 原始列名，不在表结构中校验
func Name(column string) Ref {
	return name(column)
}

func (n name) Resolve(_ *schema.TableSchema, alias string) (string, error) {
	return schema.Qualify(alias, string(n)), nil
}

type raw struct {
	template string
	ref      Ref
}

// Raw 原始 SQL 模板，模板中第一个 ? 替换为 ref 解析出的列名，ref 为 nil 时原样输出
//
//	query.Raw("LOWER(?)", ItemName)
func Raw(template string, ref Ref) Ref {
	return raw{template: template, ref: ref}
}

// expression 没有列亲和性的表达式
type expression interface {
	expression()
}

func (raw) expression() {}

func (r raw) Resolve(s *schema.TableSchema, alias string) (string, error) {
	if r.ref == nil {
		return r.template, nil
	}
	column, err := r.ref.Resolve(s, alias)
	if err != nil {
		return "", err
	}
	return strings.Replace(r.template, "?", column, 1), nil
}

type as struct {
	ref  Ref
	name string
}

// As 给列或表达式起别名，用于 SELECT 列表
func As(ref Ref, name string) Ref {
	return as{ref: ref, name: name}
}

func (a as) Resolve(s *schema.TableSchema, alias string) (string, error) {
	column, err := a.ref.Resolve(s, alias)
	if err != nil {
		return "", err
	}
	return column + " AS " + a.name, nil
}

func resolveAll(refs []Ref, s *schema.TableSchema, alias string) ([]string, error) {
	columns := make([]string, 0, len(refs))
	for _, ref := range refs {
		column, err := ref.Resolve(s, alias)
		if err != nil {
			return nil, err
		}
		columns = append(columns, column)
	}
	return columns, nil
}
