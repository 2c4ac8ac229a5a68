package schema

// Cursor 顺序读取查询结果的游标，由执行层提供
//
// MoveToFirst 定位到第一行，MoveToNext 前进一行，HasMore 表示当前是否停在有效行上。
// 取值方法按列下标读取当前行，ColumnIndex 在列不存在时返回 -1
type Cursor interface {
	MoveToFirst() bool
	MoveToNext() bool
	HasMore() bool
	Count() int
	ColumnIndex(name string) int
	IsNull(index int) bool
	GetString(index int) (string, error)
	GetInt16(index int) (int16, error)
	GetInt32(index int) (int32, error)
	GetInt64(index int) (int64, error)
	GetFloat32(index int) (float32, error)
	GetFloat64(index int) (float64, error)
	Close() error
}
