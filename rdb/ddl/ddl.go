// Package ddl 把推导好的表结构渲染为 SQLite 建表语句
package ddl

import (
	"fmt"
	"strings"

	"github.com/hatlonely/litedb/rdb/schema"
)

const indent = "    "

// CreateTable 渲染完整的建表文本：CREATE TABLE、索引以及触发器和附加语句，以换行分隔
//
// 相同的表结构总是得到相同的文本
func CreateTable(s *schema.TableSchema) string {
	return strings.Join(Statements(s), "\n")
}

// Statements 与 CreateTable 内容一致，但拆分为可逐条执行的语句
func Statements(s *schema.TableSchema) []string {
	stmts := make([]string, 0, 1+len(s.Indexes)+len(s.Statements))
	stmts = append(stmts, createTableSQL(s))
	for _, group := range s.Indexes {
		stmts = append(stmts, createIndexSQL(s.Name, group))
	}
	stmts = append(stmts, s.Statements...)
	return stmts
}

// DropTable 删除表，表不存在时不报错
func DropTable(name string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s;", name)
}

// IndexName 索引名为 <table>_<col1>_<col2>..._index
func IndexName(table string, columns []string) string {
	return table + "_" + strings.Join(columns, "_") + "_index"
}

func createTableSQL(s *schema.TableSchema) string {
	lines := make([]string, 0, len(s.Columns)+3)
	for _, c := range s.Columns {
		lines = append(lines, columnSQL(c))
	}

	// 自增列以内联主键的形式出现，不再重复表级主键
	if len(s.PrimaryKey) > 0 && s.AutoIncrementColumn() == nil {
		lines = append(lines, fmt.Sprintf("PRIMARY KEY(%s)", strings.Join(s.PrimaryKey, ", ")))
	}
	if len(s.Unique) > 0 {
		lines = append(lines, fmt.Sprintf("UNIQUE(%s)", strings.Join(s.Unique, ", ")))
	}
	lines = append(lines, foreignKeySQL(s.Columns)...)

	return fmt.Sprintf("CREATE TABLE %s (\n%s%s\n);", s.Name, indent, strings.Join(lines, ",\n"+indent))
}

func columnSQL(c *schema.ColumnDefinition) string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteString(" ")
	b.WriteString(c.Type.SQLType())
	if c.MaxLength > 0 {
		fmt.Fprintf(&b, "(%d)", c.MaxLength)
	}
	if c.AutoIncrement {
		b.WriteString(" PRIMARY KEY AUTOINCREMENT")
	}
	if c.DefaultValue != nil {
		b.WriteString(" DEFAULT ")
		b.WriteString(c.DefaultSQL())
	}
	if c.NotNull {
		b.WriteString(" NOT NULL")
	}
	return b.String()
}

type foreignKeyGroup struct {
	table    string
	columns  []string
	targets  []string
	onUpdate schema.Action
	onDelete schema.Action
}

// foreignKeySQL 按目标表分组，组内动作取列顺序中第一个显式指定的动作
func foreignKeySQL(columns []*schema.ColumnDefinition) []string {
	var groups []*foreignKeyGroup
	byTable := map[string]*foreignKeyGroup{}
	for _, c := range columns {
		fk := c.ForeignKey
		if fk == nil {
			continue
		}
		g, ok := byTable[fk.Table]
		if !ok {
			g = &foreignKeyGroup{table: fk.Table}
			byTable[fk.Table] = g
			groups = append(groups, g)
		}
		g.columns = append(g.columns, c.Name)
		g.targets = append(g.targets, fk.Column)
		if g.onUpdate == schema.ActionNone {
			g.onUpdate = fk.OnUpdate
		}
		if g.onDelete == schema.ActionNone {
			g.onDelete = fk.OnDelete
		}
	}

	lines := make([]string, 0, len(groups))
	for _, g := range groups {
		line := fmt.Sprintf("FOREIGN KEY(%s) REFERENCES %s(%s)", strings.Join(g.columns, ", "), g.table, strings.Join(g.targets, ", "))
		if g.onUpdate != schema.ActionNone {
			line += " ON UPDATE " + string(g.onUpdate)
		}
		if g.onDelete != schema.ActionNone {
			line += " ON DELETE " + string(g.onDelete)
		}
		lines = append(lines, line)
	}
	return lines
}

func createIndexSQL(table string, columns []string) string {
	return fmt.Sprintf("CREATE INDEX %s ON %s(%s);", IndexName(table, columns), table, strings.Join(columns, ", "))
}
