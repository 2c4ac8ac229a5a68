package schema

import (
	"sync"

	"github.com/hatlonely/litedb/log"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// Registry 进程级的表结构缓存，每个实体类型只推导一次
//
// 读路径只持读锁；同一实体的并发构建通过 singleflight 合并。
// 构建过程中解析外键目标时不再经过 singleflight，互相引用的表不会死锁，
// 最坏情况下目标表被重复推导一次，先写入者生效
//
// 缓存以 Go 类型为键，同一类型的第二个描述命中缓存时沿用已缓存的结构并告警一次
type Registry struct {
	mu          sync.RWMutex
	schemas     map[string]*TableSchema
	descriptors map[string]*Descriptor
	ignored     sync.Map
	group       singleflight.Group
	logger      log.Logger
}

type RegistryOption func(*Registry)

func WithLogger(logger log.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		schemas:     map[string]*TableSchema{},
		descriptors: map[string]*Descriptor{},
		logger:      log.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get 返回实体的表结构，首次调用时推导并校验，校验失败不缓存
func (r *Registry) Get(e Entity) (*TableSchema, error) {
	if e == nil || e.Descriptor() == nil {
		return nil, errors.Wrapf(ErrAnnotationNotAttached, "%T", e)
	}
	d := e.Descriptor()
	key := d.cacheKey()

	if s, ok := r.load(key, d); ok {
		return s, nil
	}

	v, err, _ := r.group.Do(key, func() (any, error) {
		if s, ok := r.load(key, d); ok {
			return s, nil
		}
		s, err := derive(d, []string{key}, r)
		if err != nil {
			r.logger.Error("derive table schema failed", "entity", key, "error", err.Error())
			return nil, err
		}
		return r.store(key, d, s), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*TableSchema), nil
}

// MustGet 同 Get，出错时 panic，适合在启动阶段使用
func (r *Registry) MustGet(e Entity) *TableSchema {
	s, err := r.Get(e)
	if err != nil {
		panic(err)
	}
	return s
}

// Len 已缓存的表结构数量
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.schemas)
}

// Reset 清空缓存，仅用于测试
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas = map[string]*TableSchema{}
	r.descriptors = map[string]*Descriptor{}
	r.ignored.Clear()
}

func (r *Registry) resolve(target *Descriptor, chain []string) (*TableSchema, error) {
	key := target.cacheKey()
	if s, ok := r.load(key, target); ok {
		return s, nil
	}
	s, err := derive(target, chain, r)
	if err != nil {
		return nil, err
	}
	return r.store(key, target, s), nil
}

func (r *Registry) load(key string, d *Descriptor) (*TableSchema, bool) {
	r.mu.RLock()
	s, ok := r.schemas[key]
	owner := r.descriptors[key]
	r.mu.RUnlock()
	if ok && owner != d {
		r.shadowed(key, d, s)
	}
	return s, ok
}

func (r *Registry) store(key string, d *Descriptor, s *TableSchema) *TableSchema {
	r.mu.Lock()
	existing, ok := r.schemas[key]
	owner := r.descriptors[key]
	if !ok {
		r.schemas[key] = s
		r.descriptors[key] = d
	}
	r.mu.Unlock()

	if ok {
		if owner != d {
			r.shadowed(key, d, existing)
		}
		return existing
	}
	r.logger.Debug("table schema derived", "table", s.Name, "columns", len(s.Columns), "statements", len(s.Statements))
	return s
}

// shadowed 同一类型的另一个描述命中缓存，它的声明不会生效
func (r *Registry) shadowed(key string, d *Descriptor, s *TableSchema) {
	if _, loaded := r.ignored.LoadOrStore(d, struct{}{}); loaded {
		return
	}
	r.logger.Warn("entity type already registered with another descriptor, reusing cached schema",
		"entity", key, "table", s.Name, "ignoredTable", d.TableName())
}
