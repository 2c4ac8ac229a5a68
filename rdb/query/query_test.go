package query

import (
	"testing"
	"time"

	"github.com/hatlonely/litedb/rdb/schema"
	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
)

type Player struct {
	ID     int64
	Name   string
	Score  int64
	Rank   *int64
	Active bool
	Joined time.Time
	Ratio  float64
}

var (
	players      = schema.NewTable[Player](schema.WithName("players"), schema.WithPrimaryKey("id"))
	PlayerID     = schema.Column(players, "id", func(e *Player) *int64 { return &e.ID })
	PlayerName   = schema.Column(players, "name", func(e *Player) *string { return &e.Name })
	PlayerScore  = schema.Column(players, "score", func(e *Player) *int64 { return &e.Score })
	PlayerRank   = schema.Column(players, "rank", func(e *Player) **int64 { return &e.Rank }, schema.Name("nullable_int"))
	PlayerActive = schema.Column(players, "active", func(e *Player) *bool { return &e.Active })
	PlayerJoined = schema.Column(players, "joined", func(e *Player) *time.Time { return &e.Joined })
	PlayerRatio  = schema.Column(players, "ratio", func(e *Player) *float64 { return &e.Ratio })

	// 登记在另一个表描述上的字段，不属于 players
	PlayerGhost = schema.Column(schema.NewTable[Player](), "ghost", func(e *Player) *int64 { return &e.Score })
)

func playerSchema() *schema.TableSchema {
	s, err := schema.DeriveSchema(players)
	So(err, ShouldBeNil)
	return s
}

func render(c Condition, s *schema.TableSchema, alias string) (string, []any) {
	sql, args, err := c.Render(s, alias)
	So(err, ShouldBeNil)
	return sql, args
}

func TestComparison(t *testing.T) {
	Convey("比较条件", t, func() {
		s := playerSchema()

		Convey("非空值绑定为字符串参数", func() {
			sql, args := render(Eq(PlayerScore, 10), s, "")
			So(sql, ShouldEqual, "score = ?")
			So(args, ShouldResemble, []any{"10"})

			ops := map[string]Condition{
				"score <> ?": Ne(PlayerScore, 1),
				"score < ?":  Lt(PlayerScore, 1),
				"score <= ?": Le(PlayerScore, 1),
				"score > ?":  Gt(PlayerScore, 1),
				"score >= ?": Ge(PlayerScore, 1),
			}
			for want, c := range ops {
				sql, _ := render(c, s, "")
				So(sql, ShouldEqual, want)
			}
		})

		Convey("空值内联为 NULL 字面量", func() {
			sql, args := render(Eq(PlayerRank, nil), s, "")
			So(sql, ShouldEqual, "nullable_int = NULL")
			So(args, ShouldBeEmpty)

			sql, args = render(NeCol(Name("nullable_int"), nil), s, "")
			So(sql, ShouldEqual, "nullable_int <> NULL")
			So(args, ShouldBeEmpty)
		})

		Convey("可空字段的非空值", func() {
			rank := int64(3)
			sql, args := render(Le(PlayerRank, &rank), s, "")
			So(sql, ShouldEqual, "nullable_int <= ?")
			So(args, ShouldResemble, []any{"3"})
		})

		Convey("表别名", func() {
			sql, _ := render(Gt(PlayerScore, 1), s, "p")
			So(sql, ShouldEqual, "p.score > ?")
		})

		Convey("参数类型转换", func() {
			joined := time.UnixMilli(1700000000000)
			_, args := render(Eq(PlayerActive, true), s, "")
			So(args, ShouldResemble, []any{"1"})
			_, args = render(Eq(PlayerActive, false), s, "")
			So(args, ShouldResemble, []any{"0"})
			_, args = render(Eq(PlayerJoined, joined), s, "")
			So(args, ShouldResemble, []any{"1700000000000"})
			_, args = render(Eq(PlayerRatio, 1.5), s, "")
			So(args, ShouldResemble, []any{"1.5"})
			_, args = render(Eq(PlayerName, "it's"), s, "")
			So(args, ShouldResemble, []any{"it's"})
		})

		Convey("表达式的参数保持存储形式", func() {
			sql, args := render(GtCol(Sum(PlayerScore), 100), s, "")
			So(sql, ShouldEqual, "SUM(score) > ?")
			So(args, ShouldResemble, []any{int64(100)})
			_, args = render(GeCol(Avg(PlayerRatio), float32(0.5)), s, "")
			So(args, ShouldResemble, []any{float64(0.5)})
			_, args = render(EqCol(Raw("MAX(?)", PlayerActive), true), s, "")
			So(args, ShouldResemble, []any{int64(1)})
			_, args = render(EqCol(Raw("LOWER(?)", PlayerName), "bob"), s, "")
			So(args, ShouldResemble, []any{"bob"})
			sql, args = render(BetweenCol(Count(PlayerID), 2, nil), s, "")
			So(sql, ShouldEqual, "COUNT(id) BETWEEN ? AND NULL")
			So(args, ShouldResemble, []any{int64(2)})
			// 普通列仍然是字符串
			_, args = render(GtCol(Name("score"), 100), s, "")
			So(args, ShouldResemble, []any{"100"})
		})

		Convey("字段不在表结构中", func() {
			_, _, err := Eq(PlayerGhost, 1).Render(s, "")
			So(errors.Is(err, schema.ErrColumnNotFound), ShouldBeTrue)
		})
	})
}

func TestNullAndRange(t *testing.T) {
	Convey("空值判断与范围", t, func() {
		s := playerSchema()

		sql, args := render(IsNull(PlayerRank), s, "")
		So(sql, ShouldEqual, "nullable_int IS NULL")
		So(args, ShouldBeEmpty)

		sql, _ = render(IsNotNull(PlayerRank), s, "p")
		So(sql, ShouldEqual, "p.nullable_int IS NOT NULL")

		Convey("上界为空", func() {
			sql, args := render(BetweenCol(PlayerScore, 10, nil), s, "")
			So(sql, ShouldEqual, "score BETWEEN ? AND NULL")
			So(args, ShouldResemble, []any{"10"})
		})

		Convey("两端都有值", func() {
			sql, args := render(Between(PlayerScore, 1, 5), s, "")
			So(sql, ShouldEqual, "score BETWEEN ? AND ?")
			So(args, ShouldResemble, []any{"1", "5"})
		})

		Convey("下界为空", func() {
			high := int64(9)
			sql, args := render(Between(PlayerRank, nil, &high), s, "")
			So(sql, ShouldEqual, "nullable_int BETWEEN NULL AND ?")
			So(args, ShouldResemble, []any{"9"})
		})
	})
}

func TestLike(t *testing.T) {
	Convey("模式匹配", t, func() {
		s := playerSchema()

		sql, args := render(Like(PlayerName, "a%"), s, "")
		So(sql, ShouldEqual, "name LIKE ?")
		So(args, ShouldResemble, []any{"a%"})

		sql, args = render(LikeEscape(PlayerName, "50!%%", '!'), s, "")
		So(sql, ShouldEqual, "name LIKE ? ESCAPE '!'")
		So(args, ShouldResemble, []any{"50!%%"})

		sql, args = render(Prefix(PlayerName, "10%_"), s, "")
		So(sql, ShouldEqual, `name LIKE ? ESCAPE '\'`)
		So(args, ShouldResemble, []any{`10\%\_%`})

		_, args = render(Wildcard(PlayerName, "a*b?"), s, "")
		So(args, ShouldResemble, []any{"a%b_"})
	})
}

func TestJoin(t *testing.T) {
	Convey("条件列表拼接", t, func() {
		s := playerSchema()

		Convey("换行之后接下一个节点的连接词", func() {
			sql, args, err := Join([]Condition{
				Eq(PlayerName, "a"),
				Gt(PlayerScore, 1),
				Or(IsNull(PlayerRank)),
			}, s, "")
			So(err, ShouldBeNil)
			So(sql, ShouldEqual, "name = ?\nAND score > ?\nOR nullable_int IS NULL")
			So(args, ShouldResemble, []any{"a", "1"})
		})

		Convey("第一个节点的连接方式不起作用", func() {
			sql, _, err := Join([]Condition{Or(Eq(PlayerID, 1)), And(Or(Eq(PlayerID, 2)))}, s, "")
			So(err, ShouldBeNil)
			So(sql, ShouldEqual, "id = ?\nAND id = ?")
		})

		Convey("括号分组", func() {
			sql, args, err := Join([]Condition{
				Eq(PlayerActive, true),
				Paren(Lt(PlayerScore, 10), Or(Gt(PlayerScore, 90))),
				Or(Not(Paren(Eq(PlayerName, "x")))),
			}, s, "p")
			So(err, ShouldBeNil)
			So(sql, ShouldEqual, "p.active = ?\nAND (p.score < ?\nOR p.score > ?)\nOR NOT ((p.name = ?))")
			So(args, ShouldResemble, []any{"1", "10", "90", "x"})
		})

		Convey("空的括号分组", func() {
			_, _, err := Paren().Render(s, "")
			So(errors.Is(err, ErrEmptyCondition), ShouldBeTrue)
		})

		Convey("任一节点出错则整体出错", func() {
			_, _, err := Join([]Condition{Eq(PlayerID, 1), Eq(PlayerGhost, 1)}, s, "")
			So(errors.Is(err, schema.ErrColumnNotFound), ShouldBeTrue)
		})

		Convey("渲染不改变节点", func() {
			conds := []Condition{Eq(PlayerID, 1), Or(BetweenCol(PlayerScore, 1, nil))}
			sql1, args1, _ := Join(conds, s, "")
			sql2, args2, _ := Join(conds, s, "")
			So(sql1, ShouldEqual, sql2)
			So(args1, ShouldResemble, args2)
		})
	})
}

func TestValue(t *testing.T) {
	Convey("字面量转换", t, func() {
		So(Literal(nil), ShouldEqual, "NULL")
		So(Literal((*int64)(nil)), ShouldEqual, "NULL")
		So(Literal("it's"), ShouldEqual, "'it''s'")
		So(Literal(true), ShouldEqual, "1")
		So(Literal(false), ShouldEqual, "0")
		So(Literal(time.UnixMilli(42)), ShouldEqual, "42")
		So(Literal(int32(-7)), ShouldEqual, "-7")
		So(Literal(float32(0.1)), ShouldEqual, "0.1")
		name := "x"
		So(Literal(&name), ShouldEqual, "'x'")

		So(Arg(uint16(8)), ShouldEqual, "8")
		So(Arg("raw"), ShouldEqual, "raw")
	})
}
