package database

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// Cursor 完整缓存在内存中的结果集，实现 schema.Cursor
//
// 创建后停在第一行之前，需先调用 MoveToFirst
type Cursor struct {
	columns []string
	index   map[string]int
	rows    [][]any
	pos     int
}

func NewCursor(columns []string, rows [][]any) *Cursor {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, ok := index[c]; !ok {
			index[c] = i
		}
	}
	return &Cursor{columns: columns, index: index, rows: rows, pos: -1}
}

// readCursor 读出全部结果并关闭 rows
func readCursor(rows *sql.Rows) (*Cursor, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var data [][]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			// 驱动复用 []byte 缓冲区，需要复制一份
			if b, ok := v.([]byte); ok {
				values[i] = append([]byte(nil), b...)
			}
		}
		data = append(data, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return NewCursor(columns, data), nil
}

func (c *Cursor) MoveToFirst() bool {
	c.pos = 0
	return c.HasMore()
}

func (c *Cursor) MoveToNext() bool {
	if c.pos < len(c.rows) {
		c.pos++
	}
	return c.HasMore()
}

func (c *Cursor) HasMore() bool {
	return c.pos >= 0 && c.pos < len(c.rows)
}

func (c *Cursor) Count() int {
	return len(c.rows)
}

func (c *Cursor) Columns() []string {
	return c.columns
}

func (c *Cursor) ColumnIndex(name string) int {
	if i, ok := c.index[name]; ok {
		return i
	}
	return -1
}

func (c *Cursor) IsNull(index int) bool {
	v, err := c.value(index)
	return err != nil || v == nil
}

func (c *Cursor) GetString(index int) (string, error) {
	v, err := c.value(index)
	if err != nil {
		return "", err
	}
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(x), nil
	case time.Time:
		return x.Format(time.RFC3339Nano), nil
	}
	return "", errors.Errorf("column %d: cannot convert %T to string", index, v)
}

func (c *Cursor) GetInt64(index int) (int64, error) {
	v, err := c.value(index)
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return x, nil
	case float64:
		return int64(x), nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case time.Time:
		return x.UnixMilli(), nil
	case string:
		return parseInt(index, x)
	case []byte:
		return parseInt(index, string(x))
	}
	return 0, errors.Errorf("column %d: cannot convert %T to int64", index, v)
}

func (c *Cursor) GetInt32(index int) (int32, error) {
	v, err := c.GetInt64(index)
	return int32(v), err
}

func (c *Cursor) GetInt16(index int) (int16, error) {
	v, err := c.GetInt64(index)
	return int16(v), err
}

func (c *Cursor) GetFloat64(index int) (float64, error) {
	v, err := c.value(index)
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return x, nil
	case int64:
		return float64(x), nil
	case string:
		return parseFloat(index, x)
	case []byte:
		return parseFloat(index, string(x))
	}
	return 0, errors.Errorf("column %d: cannot convert %T to float64", index, v)
}

func (c *Cursor) GetFloat32(index int) (float32, error) {
	v, err := c.GetFloat64(index)
	return float32(v), err
}

func (c *Cursor) Close() error {
	c.rows = nil
	c.pos = -1
	return nil
}

func (c *Cursor) value(index int) (any, error) {
	if !c.HasMore() {
		return nil, errors.New("cursor is not positioned on a row")
	}
	if index < 0 || index >= len(c.columns) {
		return nil, errors.Errorf("column index %d out of range [0, %d)", index, len(c.columns))
	}
	return c.rows[c.pos][index], nil
}

func parseInt(index int, s string) (int64, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Errorf("column %d: cannot convert %q to int64", index, s)
	}
	return int64(f), nil
}

func parseFloat(index int, s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Errorf("column %d: cannot convert %q to float64", index, s)
	}
	return f, nil
}
