package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/hatlonely/litedb/log"
	"github.com/hatlonely/litedb/rdb/ddl"
	"github.com/hatlonely/litedb/rdb/query"
	"github.com/hatlonely/litedb/rdb/schema"
	"github.com/pkg/errors"
)

var ErrRecordNotFound = errors.New("record not found")

// Operator 单个实体类型的增删改查
//
//	op := database.NewOperator(engine, registry, items)
//	id, err := op.Insert(ctx, &Item{Name: "a"})
//	list, err := op.Find(ctx, &query.SelectStatement{Where: []query.Condition{query.Eq(ItemName, "a")}})
type Operator[E any] struct {
	engine   Engine
	exec     Executor
	table    *schema.Table[E]
	registry *schema.Registry
	logger   log.Logger
}

type OperatorOption func(*operatorOptions)

type operatorOptions struct {
	logger log.Logger
}

func WithOperatorLogger(logger log.Logger) OperatorOption {
	return func(o *operatorOptions) {
		o.logger = logger
	}
}

func NewOperator[E any](engine Engine, registry *schema.Registry, table *schema.Table[E], opts ...OperatorOption) *Operator[E] {
	options := &operatorOptions{logger: log.Default()}
	for _, opt := range opts {
		opt(options)
	}
	return &Operator[E]{
		engine:   engine,
		exec:     engine,
		table:    table,
		registry: registry,
		logger:   options.logger.With("table", table.Name()),
	}
}

// Schema 实体的表结构
func (o *Operator[E]) Schema() (*schema.TableSchema, error) {
	return o.registry.Get(o.table)
}

// CreateTable 在一个事务中执行建表、建索引以及触发器和附加语句
func (o *Operator[E]) CreateTable(ctx context.Context) error {
	s, err := o.Schema()
	if err != nil {
		return err
	}
	return o.inTx(ctx, func(exec Executor) error {
		for _, stmt := range ddl.Statements(s) {
			if _, err := exec.Exec(ctx, stmt); err != nil {
				return storageError("create table", s.Name, err)
			}
		}
		o.logger.InfoContext(ctx, "table created", "statements", len(s.Statements)+len(s.Indexes)+1)
		return nil
	})
}

func (o *Operator[E]) DropTable(ctx context.Context) error {
	s, err := o.Schema()
	if err != nil {
		return err
	}
	if _, err := o.exec.Exec(ctx, ddl.DropTable(s.Name)); err != nil {
		return storageError("drop table", s.Name, err)
	}
	return nil
}

// Insert 插入一行并返回自增 id，有自增列时同时写回实体
func (o *Operator[E]) Insert(ctx context.Context, e *E) (int64, error) {
	s, err := o.Schema()
	if err != nil {
		return 0, err
	}
	return o.insert(ctx, o.exec, s, e)
}

func (o *Operator[E]) insert(ctx context.Context, exec Executor, s *schema.TableSchema, e *E) (int64, error) {
	columns, values, err := o.table.InsertValues(s, e)
	if err != nil {
		return 0, err
	}

	var sql string
	if len(columns) == 0 {
		sql = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", s.Name)
	} else {
		sql = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", s.Name, strings.Join(columns, ", "), placeholders(len(columns)))
	}

	res, err := exec.Exec(ctx, sql, values...)
	if err != nil {
		return 0, storageError("insert into", s.Name, err)
	}
	if err := o.table.AssignAutoIncrement(s, e, res.LastInsertID); err != nil {
		return 0, err
	}
	return res.LastInsertID, nil
}

// InsertAll 在一个事务中插入多行，任一行失败则全部回滚
func (o *Operator[E]) InsertAll(ctx context.Context, es []*E) error {
	s, err := o.Schema()
	if err != nil {
		return err
	}
	return o.inTx(ctx, func(exec Executor) error {
		for _, e := range es {
			if _, err := o.insert(ctx, exec, s, e); err != nil {
				return err
			}
		}
		return nil
	})
}

// Update 按主键更新所有参与更新的列，返回影响的行数
func (o *Operator[E]) Update(ctx context.Context, e *E) (int64, error) {
	s, err := o.Schema()
	if err != nil {
		return 0, err
	}
	columns, values, err := o.table.UpdateValues(s, e)
	if err != nil {
		return 0, err
	}
	keys, keyValues, err := o.table.KeyValues(s, e)
	if err != nil {
		return 0, err
	}
	if len(columns) == 0 {
		return 0, nil
	}

	sets := make([]string, 0, len(columns))
	for _, c := range columns {
		sets = append(sets, c+" = ?")
	}
	conds := make([]string, 0, len(keys))
	for _, k := range keys {
		conds = append(conds, k+" = ?")
	}
	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s", s.Name, strings.Join(sets, ", "), strings.Join(conds, " AND "))

	res, err := o.exec.Exec(ctx, sql, append(values, keyValues...)...)
	if err != nil {
		return 0, storageError("update", s.Name, err)
	}
	return res.RowsAffected, nil
}

// Delete 删除满足条件的行，不传条件时删除全部
func (o *Operator[E]) Delete(ctx context.Context, conds ...query.Condition) (int64, error) {
	s, err := o.Schema()
	if err != nil {
		return 0, err
	}
	where, args, err := query.WhereClause(conds, s, "")
	if err != nil {
		return 0, err
	}
	sql := "DELETE FROM " + s.Name
	if where != "" {
		sql += "\nWHERE " + where
	}
	res, err := o.exec.Exec(ctx, sql, args...)
	if err != nil {
		return 0, storageError("delete from", s.Name, err)
	}
	return res.RowsAffected, nil
}

// Find 执行查询并把每一行构造为实体
func (o *Operator[E]) Find(ctx context.Context, stmt *query.SelectStatement) ([]*E, error) {
	s, err := o.Schema()
	if err != nil {
		return nil, err
	}
	if stmt == nil {
		stmt = &query.SelectStatement{}
	}
	sql, args, err := stmt.Render(s, "")
	if err != nil {
		return nil, err
	}

	cursor, err := o.exec.Query(ctx, sql, args...)
	if err != nil {
		return nil, storageError("query", s.Name, err)
	}
	defer cursor.Close()

	result := make([]*E, 0, cursor.Count())
	for ok := cursor.MoveToFirst(); ok; ok = cursor.MoveToNext() {
		e, err := o.table.Hydrate(s, cursor)
		if err != nil {
			return nil, errors.WithMessagef(err, "hydrate %s", s.Name)
		}
		result = append(result, e)
	}
	return result, nil
}

// FindOne 返回第一条满足条件的记录，没有时返回 ErrRecordNotFound
func (o *Operator[E]) FindOne(ctx context.Context, conds ...query.Condition) (*E, error) {
	list, err := o.Find(ctx, &query.SelectStatement{Where: conds, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, errors.WithStack(ErrRecordNotFound)
	}
	return list[0], nil
}

// Count 满足条件的行数
func (o *Operator[E]) Count(ctx context.Context, conds ...query.Condition) (int64, error) {
	s, err := o.Schema()
	if err != nil {
		return 0, err
	}
	stmt := &query.SelectStatement{
		Select: query.Select(query.As(query.CountAll(), "n")),
		Where:  conds,
	}
	sql, args, err := stmt.Render(s, "")
	if err != nil {
		return 0, err
	}
	cursor, err := o.exec.Query(ctx, sql, args...)
	if err != nil {
		return 0, storageError("count", s.Name, err)
	}
	defer cursor.Close()
	if !cursor.MoveToFirst() {
		return 0, nil
	}
	return cursor.GetInt64(0)
}

// WithTx 在事务中执行 fn，fn 收到的 Operator 的所有操作都在该事务内
//
// 已经处于事务中时直接复用当前事务
func (o *Operator[E]) WithTx(ctx context.Context, fn func(op *Operator[E]) error) error {
	if o.engine == nil {
		return fn(o)
	}
	return WithTx(ctx, o.engine, func(tx Tx) error {
		return fn(&Operator[E]{
			exec:     tx,
			table:    o.table,
			registry: o.registry,
			logger:   o.logger,
		})
	})
}

func (o *Operator[E]) inTx(ctx context.Context, fn func(exec Executor) error) error {
	return o.WithTx(ctx, func(op *Operator[E]) error {
		return fn(op.exec)
	})
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
