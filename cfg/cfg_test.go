package cfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

type poolOptions struct {
	MaxConns int           `cfg:"maxConns" def:"4"`
	Timeout  time.Duration `cfg:"timeout" def:"5s"`
}

type testOptions struct {
	Type    string       `cfg:"type" def:"sql" validate:"oneof=sql gorm"`
	Enabled bool         `cfg:"enabled" def:"true"`
	Ratio   float64      `cfg:"ratio"`
	Tags    []string     `cfg:"tags" def:"a,b"`
	Pool    *poolOptions `cfg:"pool"`
	Backup  *poolOptions `cfg:"backup"`
}

func TestLoadBytes(t *testing.T) {
	Convey("各格式的配置绑定结果一致", t, func() {
		sources := map[string]string{
			"yaml": `
type: gorm
enabled: false
ratio: 0.5
tags: [x, y]
pool:
  maxConns: 8
`,
			"json": `{
  // 注释
  "type": "gorm",
  "enabled": false,
  "ratio": 0.5,
  "tags": ["x", "y"],
  /* 连接池 */
  "pool": {"maxConns": 8}
}`,
			"toml": `
type = "gorm"
enabled = false
ratio = 0.5
tags = ["x", "y"]

[pool]
maxConns = 8
`,
			"ini": `
type = gorm
enabled = false
ratio = 0.5
tags = x, y

[pool]
maxConns = 8
`,
		}
		for format, data := range sources {
			var options testOptions
			So(LoadBytes([]byte(data), format, &options), ShouldBeNil)
			So(options.Type, ShouldEqual, "gorm")
			So(options.Enabled, ShouldBeFalse)
			So(options.Ratio, ShouldEqual, 0.5)
			So(options.Tags, ShouldResemble, []string{"x", "y"})
			So(options.Pool, ShouldNotBeNil)
			So(options.Pool.MaxConns, ShouldEqual, 8)
			So(options.Pool.Timeout, ShouldEqual, 5*time.Second)
			So(options.Backup, ShouldBeNil)
		}
	})

	Convey("空配置使用默认值", t, func() {
		var options testOptions
		So(LoadBytes([]byte("{}"), "json", &options), ShouldBeNil)
		So(options.Type, ShouldEqual, "sql")
		So(options.Enabled, ShouldBeTrue)
		So(options.Tags, ShouldResemble, []string{"a", "b"})
		So(options.Pool, ShouldBeNil)
	})

	Convey("字段名忽略大小写匹配", t, func() {
		var options testOptions
		So(LoadBytes([]byte("Type: gorm\nPOOL:\n  MAXCONNS: 2\n"), "yaml", &options), ShouldBeNil)
		So(options.Type, ShouldEqual, "gorm")
		So(options.Pool.MaxConns, ShouldEqual, 2)
	})

	Convey("只加载指定的部分", t, func() {
		var options poolOptions
		data := "database:\n  primary:\n    maxConns: 16\n    timeout: 1m\n"
		So(LoadBytes([]byte(data), "yml", &options, WithKey("database.primary")), ShouldBeNil)
		So(options.MaxConns, ShouldEqual, 16)
		So(options.Timeout, ShouldEqual, time.Minute)
	})

	Convey("校验失败", t, func() {
		var options testOptions
		So(LoadBytes([]byte("type: mysql"), "yaml", &options), ShouldNotBeNil)
	})

	Convey("类型不匹配", t, func() {
		var options testOptions
		So(LoadBytes([]byte("pool:\n  maxConns: many\n"), "yaml", &options), ShouldNotBeNil)
		So(LoadBytes([]byte("pool: 3\n"), "yaml", &options), ShouldNotBeNil)
	})

	Convey("不支持的格式和语法错误", t, func() {
		var options testOptions
		So(LoadBytes([]byte("type: sql"), "xml", &options), ShouldNotBeNil)
		So(LoadBytes([]byte("{"), "json", &options), ShouldNotBeNil)
		So(LoadBytes([]byte("type: sql"), "yaml", options), ShouldNotBeNil)
	})
}

func TestLoad(t *testing.T) {
	Convey("从文件加载", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "app.toml")
		So(os.WriteFile(path, []byte("type = \"gorm\"\n[backup]\ntimeout = \"2s\"\n"), 0644), ShouldBeNil)

		var options testOptions
		So(Load(path, &options), ShouldBeNil)
		So(options.Type, ShouldEqual, "gorm")
		So(options.Backup.Timeout, ShouldEqual, 2*time.Second)
		So(options.Backup.MaxConns, ShouldEqual, 4)

		So(Load(filepath.Join(dir, "missing.toml"), &options), ShouldNotBeNil)
		So(Load(filepath.Join(dir, "app.txt"), &options), ShouldNotBeNil)
	})
}
