package database

import (
	"context"
	"fmt"
	"time"

	"github.com/hatlonely/litedb/log"
	"github.com/hatlonely/litedb/rdb/schema"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type ObservableOptions struct {
	// Logger 为空时使用 log.Default()
	Logger *log.SLogOptions `cfg:"logger"`

	EnableMetrics bool `cfg:"enableMetrics" def:"true"`
	EnableLogging bool `cfg:"enableLogging" def:"true"`
	EnableTracing bool `cfg:"enableTracing" def:"false"`

	// Name 组件名称，作为指标名前缀、日志 component 字段和 span 属性
	Name string `cfg:"name" def:"litedb"`

	// Registerer 指标注册到的 prometheus registry，为空时使用默认 registry
	Registerer prometheus.Registerer `cfg:"-"`
}

// ObservableMetrics 引擎指标
type ObservableMetrics struct {
	operationCounter  *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	activeOperations  *prometheus.GaugeVec
}

// NewObservableMetrics 创建并注册指标，同名指标已注册时复用已有的
func NewObservableMetrics(name string, registerer prometheus.Registerer) *ObservableMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &ObservableMetrics{
		operationCounter: register(registerer, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: name + "_operations_total",
				Help: "Total number of database operations",
			},
			[]string{"operation", "status"},
		)),
		operationDuration: register(registerer, prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    name + "_operation_duration_seconds",
				Help:    "Duration of database operations in seconds",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
			},
			[]string{"operation"},
		)),
		activeOperations: register(registerer, prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: name + "_active_operations",
				Help: "Number of active database operations",
			},
			[]string{"operation"},
		)),
	}
}

func register[C prometheus.Collector](registerer prometheus.Registerer, c C) C {
	if err := registerer.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

// ObservableEngine 装饰器，为任意 Engine 加上指标、追踪和日志
type ObservableEngine struct {
	engine Engine
	observer
}

type observer struct {
	logger  log.Logger
	metrics *ObservableMetrics
	tracer  trace.Tracer
	name    string
}

func NewObservableEngineWithOptions(engine Engine, options *ObservableOptions) (*ObservableEngine, error) {
	if engine == nil {
		return nil, errors.New("engine is nil")
	}
	if options == nil {
		return nil, errors.New("options is nil")
	}

	name := options.Name
	if name == "" {
		name = "litedb"
	}
	obs := &ObservableEngine{engine: engine, observer: observer{name: name}}

	if options.EnableLogging {
		var logger log.Logger = log.Default()
		if options.Logger != nil {
			l, err := log.NewSLogWithOptions(options.Logger)
			if err != nil {
				return nil, errors.WithMessage(err, "failed to create logger")
			}
			logger = l
		}
		obs.logger = logger.WithGroup("observableEngine")
	}
	if options.EnableMetrics {
		obs.metrics = NewObservableMetrics(name, options.Registerer)
	}
	if options.EnableTracing {
		obs.tracer = otel.Tracer(fmt.Sprintf("litedb.%s", name))
	}

	return obs, nil
}

// observe 统一的操作观测逻辑
func (o *observer) observe(ctx context.Context, operation string, sql string, fn func(context.Context) error) error {
	start := time.Now()

	var span trace.Span
	if o.tracer != nil {
		ctx, span = o.tracer.Start(ctx, "litedb."+operation,
			trace.WithAttributes(
				attribute.String("component", o.name),
				attribute.String("operation", operation),
				attribute.String("db.system", "sqlite"),
				attribute.String("db.statement", sql),
			),
		)
		defer span.End()
	}

	if o.metrics != nil {
		o.metrics.activeOperations.WithLabelValues(operation).Inc()
		defer o.metrics.activeOperations.WithLabelValues(operation).Dec()
	}

	err := fn(ctx)
	duration := time.Since(start)

	if span != nil {
		span.SetAttributes(attribute.Int64("duration_ms", duration.Milliseconds()))
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			span.RecordError(err)
		} else {
			span.SetStatus(codes.Ok, "")
		}
	}

	if o.metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		o.metrics.operationCounter.WithLabelValues(operation, status).Inc()
		o.metrics.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	}

	if o.logger != nil {
		if err != nil {
			o.logger.ErrorContext(ctx, "database operation failed",
				"component", o.name,
				"operation", operation,
				"sql", sql,
				"duration_ms", duration.Milliseconds(),
				"error", err.Error(),
			)
		} else {
			o.logger.DebugContext(ctx, "database operation completed",
				"component", o.name,
				"operation", operation,
				"sql", sql,
				"duration_ms", duration.Milliseconds(),
			)
		}
	}

	return err
}

func (o *observer) exec(ctx context.Context, exec Executor, operation string, query string, args []any) (Result, error) {
	var res Result
	err := o.observe(ctx, operation, query, func(ctx context.Context) error {
		var err error
		res, err = exec.Exec(ctx, query, args...)
		return err
	})
	return res, err
}

func (o *observer) query(ctx context.Context, exec Executor, operation string, query string, args []any) (schema.Cursor, error) {
	var cursor schema.Cursor
	err := o.observe(ctx, operation, query, func(ctx context.Context) error {
		var err error
		cursor, err = exec.Query(ctx, query, args...)
		return err
	})
	return cursor, err
}

func (e *ObservableEngine) Exec(ctx context.Context, query string, args ...any) (Result, error) {
	return e.exec(ctx, e.engine, "exec", query, args)
}

func (e *ObservableEngine) Query(ctx context.Context, query string, args ...any) (schema.Cursor, error) {
	return e.query(ctx, e.engine, "query", query, args)
}

func (e *ObservableEngine) Begin(ctx context.Context) (Tx, error) {
	var tx Tx
	err := e.observe(ctx, "begin", "", func(ctx context.Context) error {
		var err error
		tx, err = e.engine.Begin(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &observableTx{tx: tx, observer: &e.observer}, nil
}

func (e *ObservableEngine) Close() error {
	return e.engine.Close()
}

type observableTx struct {
	tx Tx
	*observer
}

func (t *observableTx) Exec(ctx context.Context, query string, args ...any) (Result, error) {
	return t.exec(ctx, t.tx, "tx_exec", query, args)
}

func (t *observableTx) Query(ctx context.Context, query string, args ...any) (schema.Cursor, error) {
	return t.query(ctx, t.tx, "tx_query", query, args)
}

func (t *observableTx) Commit() error {
	return t.observe(context.Background(), "commit", "", func(context.Context) error {
		return t.tx.Commit()
	})
}

func (t *observableTx) Rollback() error {
	return t.observe(context.Background(), "rollback", "", func(context.Context) error {
		return t.tx.Rollback()
	})
}
