package query

import (
	"strings"

	"github.com/hatlonely/litedb/rdb/schema"
)

// like 模式总是作为参数绑定
type like struct {
	and
	ref     Ref
	pattern string
	escape  rune
}

// Like col LIKE ?
func Like(ref Ref, pattern string) Condition {
	return like{ref: ref, pattern: pattern}
}

// LikeEscape col LIKE ? ESCAPE '<escape>'
func LikeEscape(ref Ref, pattern string, escape rune) Condition {
	return like{ref: ref, pattern: pattern, escape: escape}
}

// Prefix 前缀匹配，前缀中的 % 和 _ 按字面匹配
func Prefix(ref Ref, prefix string) Condition {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)
	return like{ref: ref, pattern: escaped + "%", escape: '\\'}
}

// Wildcard 通配符匹配，* 匹配任意数量字符，? 匹配单个字符
func Wildcard(ref Ref, pattern string) Condition {
	return like{ref: ref, pattern: strings.NewReplacer("*", "%", "?", "_").Replace(pattern)}
}

func (c like) Render(s *schema.TableSchema, alias string) (string, []any, error) {
	column, err := c.ref.Resolve(s, alias)
	if err != nil {
		return "", nil, err
	}
	sql := column + " LIKE ?"
	if c.escape != 0 {
		sql += " ESCAPE '" + strings.ReplaceAll(string(c.escape), "'", "''") + "'"
	}
	return sql, []any{c.pattern}, nil
}
