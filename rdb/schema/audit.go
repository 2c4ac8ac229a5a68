package schema

import (
	"time"
)

// Audit 标准审计列，通过组合嵌入实体
type Audit struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WithAudit 为表追加 created_at/updated_at 两列
//
// 两列都由数据库维护：插入时取默认的当前时间，更新时由触发器刷新 updated_at，
// 因此不参与插入和更新。它们总是排在实体自身字段之后
func WithAudit[E any](t *Table[E], audit func(*E) *Audit) (createdAt, updatedAt Field[E, time.Time]) {
	createdAt = column(t, "createdAt", func(e *E) *time.Time {
		return &audit(e).CreatedAt
	}, true, Name("created_at"), Default(CurrentTime), SkipInsert(), SkipUpdate())

	updatedAt = column(t, "updatedAt", func(e *E) *time.Time {
		return &audit(e).UpdatedAt
	}, true, Name("updated_at"), Default(CurrentTime), SkipInsert(), SkipUpdate(), Trigger(TriggerUpdatedAt))

	return createdAt, updatedAt
}
