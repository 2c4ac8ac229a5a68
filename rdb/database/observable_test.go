package database

import (
	"context"
	"testing"

	"github.com/hatlonely/litedb/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestObservableEngine(t *testing.T) {
	Convey("ObservableEngine", t, func() {
		ctx := context.Background()
		registry := prometheus.NewRegistry()

		newEngine := func() *ObservableEngine {
			inner, err := NewSQLWithOptions(&SQLOptions{})
			So(err, ShouldBeNil)
			engine, err := NewObservableEngineWithOptions(inner, &ObservableOptions{
				Name:          "observable_test",
				EnableMetrics: true,
				EnableLogging: true,
				EnableTracing: true,
				Logger:        &log.SLogOptions{Level: "error", Output: "stderr"},
				Registerer:    registry,
			})
			So(err, ShouldBeNil)
			return engine
		}

		engine := newEngine()
		defer engine.Close()

		_, err := engine.Exec(ctx, "CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT)")
		So(err, ShouldBeNil)
		_, err = engine.Exec(ctx, "INSERT INTO missing VALUES (1)")
		So(err, ShouldNotBeNil)
		c, err := engine.Query(ctx, "SELECT * FROM kv")
		So(err, ShouldBeNil)
		So(c.Count(), ShouldEqual, 0)

		m := engine.metrics
		So(testutil.ToFloat64(m.operationCounter.WithLabelValues("exec", "success")), ShouldEqual, 1)
		So(testutil.ToFloat64(m.operationCounter.WithLabelValues("exec", "error")), ShouldEqual, 1)
		So(testutil.ToFloat64(m.operationCounter.WithLabelValues("query", "success")), ShouldEqual, 1)
		So(testutil.ToFloat64(m.activeOperations.WithLabelValues("exec")), ShouldEqual, 0)

		Convey("事务中的操作", func() {
			err := WithTx(ctx, engine, func(tx Tx) error {
				_, err := tx.Exec(ctx, "INSERT INTO kv (k, v) VALUES (?, ?)", "a", "1")
				return err
			})
			So(err, ShouldBeNil)
			So(testutil.ToFloat64(m.operationCounter.WithLabelValues("begin", "success")), ShouldEqual, 1)
			So(testutil.ToFloat64(m.operationCounter.WithLabelValues("tx_exec", "success")), ShouldEqual, 1)
			So(testutil.ToFloat64(m.operationCounter.WithLabelValues("commit", "success")), ShouldEqual, 1)
		})

		Convey("同名指标复用已注册的采集器", func() {
			other := newEngine()
			defer other.Close()
			So(other.metrics.operationCounter, ShouldEqual, m.operationCounter)
			_, err := other.Exec(ctx, "SELECT 1")
			So(err, ShouldBeNil)
			So(testutil.ToFloat64(m.operationCounter.WithLabelValues("exec", "success")), ShouldEqual, 2)
		})

		Convey("关闭指标和日志", func() {
			inner, err := NewSQLWithOptions(&SQLOptions{})
			So(err, ShouldBeNil)
			plain, err := NewObservableEngineWithOptions(inner, &ObservableOptions{})
			So(err, ShouldBeNil)
			defer plain.Close()
			So(plain.metrics, ShouldBeNil)
			So(plain.logger, ShouldBeNil)
			_, err = plain.Exec(ctx, "SELECT 1")
			So(err, ShouldBeNil)
		})

		Convey("参数校验", func() {
			_, err := NewObservableEngineWithOptions(nil, &ObservableOptions{})
			So(err, ShouldNotBeNil)
			_, err = NewObservableEngineWithOptions(engine, nil)
			So(err, ShouldNotBeNil)
		})
	})
}
