package ddl

import (
	"strings"
	"testing"
	"time"

	"github.com/hatlonely/litedb/rdb/schema"
	. "github.com/smartystreets/goconvey/convey"
)

type Item struct {
	ID   int64
	Name string
}

type Parent struct {
	Key string
}

type Child struct {
	ID    int64
	Ref   string
	Owner *string
	Extra string
}

type Event struct {
	schema.Audit
	ID       int64
	Title    string
	Score    float64
	Done     bool
	Note     *string
	Happened time.Time
}

func mustDerive(e schema.Entity) *schema.TableSchema {
	s, err := schema.DeriveSchema(e)
	So(err, ShouldBeNil)
	return s
}

func TestCreateTable(t *testing.T) {
	Convey("CreateTable", t, func() {
		Convey("基本表", func() {
			items := schema.NewTable[Item](schema.WithName("items"), schema.WithPrimaryKey("id"))
			schema.Column(items, "id", func(e *Item) *int64 { return &e.ID })
			schema.Column(items, "name", func(e *Item) *string { return &e.Name })

			So(CreateTable(mustDerive(items)), ShouldEqual, "CREATE TABLE items (\n    id INTEGER NOT NULL,\n    name TEXT NOT NULL,\n    PRIMARY KEY(id)\n);")
		})

		Convey("没有任何约束", func() {
			items := schema.NewTable[Item](schema.WithName("items"))
			schema.Column(items, "name", func(e *Item) *string { return &e.Name }, schema.Length(32))
			So(CreateTable(mustDerive(items)), ShouldEqual, "CREATE TABLE items (\n    name TEXT(32) NOT NULL\n);")
		})

		Convey("长度、默认值、可空、自增与唯一约束", func() {
			events := schema.NewTable[Event](schema.WithName("events"), schema.WithPrimaryKey("id"), schema.WithUnique("title", "happened"))
			schema.WithAudit(events, func(e *Event) *schema.Audit { return &e.Audit })
			schema.Column(events, "id", func(e *Event) *int64 { return &e.ID }, schema.AutoIncrement())
			schema.Column(events, "title", func(e *Event) *string { return &e.Title }, schema.Length(1), schema.Default("it's"))
			schema.Column(events, "score", func(e *Event) *float64 { return &e.Score }, schema.Default("1.5"))
			schema.Column(events, "done", func(e *Event) *bool { return &e.Done }, schema.Default("0"))
			schema.Column(events, "note", func(e *Event) **string { return &e.Note }, schema.Default("'n/a'"))
			schema.Column(events, "happened", func(e *Event) *time.Time { return &e.Happened })

			stmts := Statements(mustDerive(events))
			So(len(stmts), ShouldEqual, 2)
			So(stmts[0], ShouldEqual, strings.Join([]string{
				"CREATE TABLE events (",
				"    id INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL,",
				"    title TEXT(1) DEFAULT 'it''s' NOT NULL,",
				"    score REAL DEFAULT 1.5 NOT NULL,",
				"    done INTEGER DEFAULT 0 NOT NULL,",
				"    note TEXT DEFAULT 'n/a',",
				"    happened INTEGER NOT NULL,",
				"    created_at INTEGER DEFAULT " + schema.NowMillis + " NOT NULL,",
				"    updated_at INTEGER DEFAULT " + schema.NowMillis + " NOT NULL,",
				"    UNIQUE(title, happened)",
				");",
			}, "\n"))
			So(stmts[1], ShouldStartWith, "CREATE TRIGGER events_updated_at_trigger AFTER UPDATE ON events")
		})

		Convey("外键", func() {
			parent := schema.NewTable[Parent](schema.WithName("parent"), schema.WithPrimaryKey("key_col"))
			schema.Column(parent, "key", func(e *Parent) *string { return &e.Key }, schema.Name("key_col"))

			Convey("级联删除", func() {
				child := schema.NewTable[Child](schema.WithName("child"))
				schema.Column(child, "ref", func(e *Child) *string { return &e.Ref }, schema.Name("ref_col"),
					schema.References(parent, "key_col", schema.OnDeleteCascade()))

				So(CreateTable(mustDerive(child)), ShouldEqual,
					"CREATE TABLE child (\n    ref_col TEXT NOT NULL,\n    FOREIGN KEY(ref_col) REFERENCES parent(key_col) ON DELETE CASCADE\n);")
			})

			Convey("同一目标表的列合并为一个外键，动作取第一个显式指定的", func() {
				items := schema.NewTable[Item](schema.WithName("items"), schema.WithPrimaryKey("id"))
				schema.Column(items, "id", func(e *Item) *int64 { return &e.ID })

				child := schema.NewTable[Child](schema.WithName("child"), schema.WithPrimaryKey("id"))
				schema.Column(child, "id", func(e *Child) *int64 { return &e.ID }, schema.References(items, ""))
				schema.Column(child, "ref", func(e *Child) *string { return &e.Ref }, schema.References(parent, ""))
				schema.Column(child, "owner", func(e *Child) **string { return &e.Owner },
					schema.References(parent, "key_col", schema.OnUpdate(schema.ActionRestrict), schema.OnDelete(schema.ActionSetNull)))
				schema.Column(child, "extra", func(e *Child) *string { return &e.Extra },
					schema.References(parent, "key_col", schema.OnDeleteCascade()))

				sql := CreateTable(mustDerive(child))
				So(sql, ShouldContainSubstring, "    FOREIGN KEY(id) REFERENCES items(id),\n")
				So(sql, ShouldContainSubstring, "    FOREIGN KEY(ref, owner, extra) REFERENCES parent(key_col, key_col, key_col) ON UPDATE RESTRICT ON DELETE SET NULL\n);")
			})
		})

		Convey("索引与附加语句按声明顺序追加", func() {
			items := schema.NewTable[Item](schema.WithName("items"), schema.WithPrimaryKey("id"),
				schema.WithIndex("name"), schema.WithIndex("name", "id"),
				schema.WithStatement("CREATE VIEW item_names AS SELECT name FROM items;"))
			schema.Column(items, "id", func(e *Item) *int64 { return &e.ID })
			schema.Column(items, "name", func(e *Item) *string { return &e.Name })
			s := mustDerive(items)

			So(Statements(s)[1:], ShouldResemble, []string{
				"CREATE INDEX items_name_index ON items(name);",
				"CREATE INDEX items_name_id_index ON items(name, id);",
				"CREATE VIEW item_names AS SELECT name FROM items;",
			})
			So(CreateTable(s), ShouldEqual, strings.Join(Statements(s), "\n"))
			So(CreateTable(s), ShouldEqual, CreateTable(mustDerive(items)))
		})
	})
}

func TestHelpers(t *testing.T) {
	Convey("辅助函数", t, func() {
		So(IndexName("items", []string{"a", "b"}), ShouldEqual, "items_a_b_index")
		So(DropTable("items"), ShouldEqual, "DROP TABLE IF EXISTS items;")
	})
}
