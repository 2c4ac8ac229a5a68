package schema

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

var identifierRegex = regexp.MustCompile(`^[_A-Za-z][_A-Za-z0-9]*$`)

// ValidateName 校验表名或列名
func ValidateName(name string) error {
	if !identifierRegex.MatchString(name) {
		return errors.Wrapf(ErrNamingRuleViolation, "%q", name)
	}
	return nil
}

// resolver 解析外键目标表，chain 为当前推导链上的表
type resolver interface {
	resolve(target *Descriptor, chain []string) (*TableSchema, error)
}

type directResolver struct{}

func (directResolver) resolve(target *Descriptor, chain []string) (*TableSchema, error) {
	return derive(target, chain, directResolver{})
}

// DeriveSchema 不经过缓存直接推导表结构，结果只取决于描述本身
func DeriveSchema(e Entity) (*TableSchema, error) {
	if e == nil {
		return nil, errors.Wrap(ErrAnnotationNotAttached, "nil entity")
	}
	d := e.Descriptor()
	if d == nil {
		return nil, errors.Wrapf(ErrAnnotationNotAttached, "%T", e)
	}
	return derive(d, []string{d.cacheKey()}, directResolver{})
}

func derive(d *Descriptor, chain []string, res resolver) (*TableSchema, error) {
	if d == nil || len(d.Fields) == 0 {
		return nil, errors.Wrap(ErrAnnotationNotAttached, "entity has no column fields")
	}

	// 表名
	name := d.TableName()
	if err := ValidateName(name); err != nil {
		return nil, errors.WithMessage(err, "table name")
	}

	// 列
	columns, err := buildColumns(d)
	if err != nil {
		return nil, errors.WithMessagef(err, "table %s", name)
	}

	// 外键
	for _, f := range d.orderedFields() {
		ref := f.Options.Reference
		if ref == nil {
			continue
		}
		col := findByField(columns, f.ID)
		fk, err := resolveReference(ref, chain, res)
		if err != nil {
			return nil, errors.WithMessagef(err, "table %s column %s", name, col.Name)
		}
		col.ForeignKey = fk
	}

	// 列名唯一
	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if _, ok := seen[c.Name]; ok {
			return nil, errors.Wrapf(ErrDuplicateColumn, "table %s column %s", name, c.Name)
		}
		seen[c.Name] = struct{}{}
	}

	s := newTableSchema(name, columns)

	// 主键、唯一约束、索引
	if d.PrimaryKey != nil {
		if err := checkGroup(s, d.PrimaryKey, ErrPrimaryKeyNotSpecified); err != nil {
			return nil, errors.WithMessagef(err, "table %s primary key", name)
		}
		s.PrimaryKey = append([]string{}, d.PrimaryKey...)
	}
	if d.Unique != nil {
		if err := checkGroup(s, d.Unique, ErrUniqueNotSpecified); err != nil {
			return nil, errors.WithMessagef(err, "table %s unique", name)
		}
		s.Unique = append([]string{}, d.Unique...)
	}
	indexKeys := make(map[string]struct{}, len(d.Indexes))
	for i, group := range d.Indexes {
		if err := checkGroup(s, group, ErrIndexNotSpecified); err != nil {
			return nil, errors.WithMessagef(err, "table %s index #%d", name, i)
		}
		key := setKey(group)
		if _, ok := indexKeys[key]; ok {
			return nil, errors.Wrapf(ErrDuplicateIndex, "table %s index (%s)", name, strings.Join(group, ", "))
		}
		indexKeys[key] = struct{}{}
		s.Indexes = append(s.Indexes, append([]string{}, group...))
	}

	// 自增列必须是整数且是唯一的主键列
	for _, c := range columns {
		if !c.AutoIncrement {
			continue
		}
		if c.Type != FieldTypeInteger {
			return nil, errors.Wrapf(ErrInvalidAutoIncrement, "table %s column %s is %s", name, c.Name, c.Type)
		}
		if !s.IsPrimaryKey(c.Name) {
			return nil, errors.Wrapf(ErrInvalidAutoIncrement, "table %s column %s is not in primary key", name, c.Name)
		}
		if len(s.PrimaryKey) != 1 {
			return nil, errors.Wrapf(ErrInvalidAutoIncrement, "table %s column %s must be the only primary key column", name, c.Name)
		}
	}

	// 触发器与附加语句
	for _, c := range columns {
		for _, kind := range c.Triggers {
			stmt, err := triggerSQL(s, c, kind)
			if err != nil {
				return nil, err
			}
			s.Statements = append(s.Statements, stmt)
		}
	}
	for i, stmt := range d.Statements {
		if strings.TrimSpace(stmt) == "" {
			return nil, errors.Wrapf(ErrQueryNotSpecified, "table %s statement #%d", name, i)
		}
		s.Statements = append(s.Statements, stmt)
	}

	return s, nil
}

func buildColumns(d *Descriptor) ([]*ColumnDefinition, error) {
	fields := d.orderedFields()
	columns := make([]*ColumnDefinition, 0, len(fields))
	for _, f := range fields {
		options := f.Options
		col, err := BuildColumn(f.ID, f.Sample, &options)
		if err != nil {
			return nil, err
		}
		if err := ValidateName(col.Name); err != nil {
			return nil, errors.WithMessagef(err, "field %s", f.ID)
		}
		columns = append(columns, col)
	}
	return columns, nil
}

func findByField(columns []*ColumnDefinition, fieldID string) *ColumnDefinition {
	for _, c := range columns {
		if c.FieldID == fieldID {
			return c
		}
	}
	return nil
}

func resolveReference(ref *Reference, chain []string, res resolver) (*ForeignKeyRef, error) {
	if ref.Target == nil || ref.Target.Descriptor() == nil {
		return nil, errors.Wrap(ErrAnnotationNotAttached, "foreign key target")
	}
	target := ref.Target.Descriptor()
	targetKey := target.cacheKey()

	var (
		targetName string
		hasColumn  func(string) bool
		primaryKey []string
	)

	// 推导链上的表（包括自引用）只能按声明的列校验，避免递归
	if inChain(chain, targetKey) {
		columns, err := buildColumns(target)
		if err != nil {
			return nil, err
		}
		targetName = target.TableName()
		hasColumn = func(name string) bool {
			for _, c := range columns {
				if c.Name == name {
					return true
				}
			}
			return false
		}
		primaryKey = target.PrimaryKey
	} else {
		next := append(chain[:len(chain):len(chain)], targetKey)
		ts, err := res.resolve(target, next)
		if err != nil {
			return nil, errors.WithMessage(err, "foreign key target")
		}
		targetName = ts.Name
		hasColumn = func(name string) bool {
			_, ok := ts.Column(name)
			return ok
		}
		primaryKey = ts.PrimaryKey
	}

	column := ref.Column
	if column == "" {
		if len(primaryKey) != 1 {
			return nil, errors.Wrapf(ErrColumnNotFound, "table %s has no single primary key to reference", targetName)
		}
		column = primaryKey[0]
	}
	if !hasColumn(column) {
		return nil, errors.Wrapf(ErrColumnNotFound, "%s.%s", targetName, column)
	}

	return &ForeignKeyRef{
		Table:    targetName,
		Column:   column,
		OnUpdate: ref.OnUpdate,
		OnDelete: ref.OnDelete,
	}, nil
}

func inChain(chain []string, key string) bool {
	for _, k := range chain {
		if k == key {
			return true
		}
	}
	return false
}

// checkGroup 校验主键、唯一约束或索引的列组
func checkGroup(s *TableSchema, group []string, notSpecified error) error {
	if len(group) == 0 {
		return errors.Wrap(notSpecified, "empty column group")
	}
	seen := make(map[string]struct{}, len(group))
	for _, name := range group {
		if strings.TrimSpace(name) == "" {
			return errors.Wrap(notSpecified, "blank column name")
		}
		if _, ok := seen[name]; ok {
			return errors.Wrapf(ErrDuplicateColumn, "%s", name)
		}
		seen[name] = struct{}{}
		if _, ok := s.Column(name); !ok {
			return errors.Wrapf(ErrColumnNotFound, "%s", name)
		}
	}
	return nil
}

func setKey(group []string) string {
	sorted := append([]string{}, group...)
	sort.Strings(sorted)
	return strings.Join(sorted, "\x00")
}

func triggerSQL(s *TableSchema, c *ColumnDefinition, kind TriggerKind) (string, error) {
	switch kind {
	case TriggerUpdatedAt:
		if c.Type != FieldTypeTimestamp {
			return "", errors.Wrapf(ErrInvalidTrigger, "table %s column %s: %s trigger needs a timestamp column", s.Name, c.Name, kind)
		}
		if len(s.PrimaryKey) == 0 {
			return "", errors.Wrapf(ErrInvalidTrigger, "table %s column %s: %s trigger needs a primary key", s.Name, c.Name, kind)
		}
		conds := make([]string, 0, len(s.PrimaryKey))
		for _, pk := range s.PrimaryKey {
			conds = append(conds, fmt.Sprintf("%s = NEW.%s", pk, pk))
		}
		return fmt.Sprintf("CREATE TRIGGER %s_%s_trigger AFTER UPDATE ON %s FOR EACH ROW BEGIN UPDATE %s SET %s = %s WHERE %s; END;",
			s.Name, c.Name, s.Name, s.Name, c.Name, NowMillis, strings.Join(conds, " AND ")), nil
	default:
		return "", errors.Wrapf(ErrInvalidTrigger, "table %s column %s: unknown trigger %q", s.Name, c.Name, kind)
	}
}
