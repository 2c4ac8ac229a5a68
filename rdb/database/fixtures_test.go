package database

import (
	"github.com/hatlonely/litedb/rdb/schema"
)

type Team struct {
	ID   int64
	Name string
}

type Player struct {
	ID     int64
	TeamID int64
	Name   string
	Score  float64
	Nick   *string
	schema.Audit
}

var (
	teams = schema.NewTable[Team](schema.WithName("teams"), schema.WithPrimaryKey("id"), schema.WithUnique("name"))

	TeamID   = schema.Column(teams, "id", func(e *Team) *int64 { return &e.ID }, schema.AutoIncrement())
	TeamName = schema.Column(teams, "name", func(e *Team) *string { return &e.Name }, schema.Length(64))
)

var (
	players = schema.NewTable[Player](schema.WithName("players"), schema.WithPrimaryKey("id"), schema.WithIndex("team_id"))

	PlayerID     = schema.Column(players, "id", func(e *Player) *int64 { return &e.ID }, schema.AutoIncrement())
	PlayerTeamID = schema.Column(players, "teamID", func(e *Player) *int64 { return &e.TeamID },
		schema.Name("team_id"), schema.References(teams, "id", schema.OnDeleteCascade()))
	PlayerName  = schema.Column(players, "name", func(e *Player) *string { return &e.Name })
	PlayerScore = schema.Column(players, "score", func(e *Player) *float64 { return &e.Score }, schema.Default("0"))
	PlayerNick  = schema.Column(players, "nick", func(e *Player) **string { return &e.Nick })

	PlayerCreatedAt, PlayerUpdatedAt = schema.WithAudit(players, func(e *Player) *schema.Audit { return &e.Audit })
)

type engineFactory struct {
	name string
	open func() (Engine, error)
}

// 三种引擎都使用内存数据库
func engineFactories() []engineFactory {
	return []engineFactory{
		{"mattn/go-sqlite3", func() (Engine, error) {
			return NewSQLWithOptions(&SQLOptions{Driver: "sqlite3"})
		}},
		{"modernc.org/sqlite", func() (Engine, error) {
			return NewSQLWithOptions(&SQLOptions{Driver: "sqlite"})
		}},
		{"gorm", func() (Engine, error) {
			return NewGormWithOptions(&GormOptions{})
		}},
	}
}

func strPtr(s string) *string {
	return &s
}

// Broken 自增列不在主键中
type Broken struct {
	ID int64
}
