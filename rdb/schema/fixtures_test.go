package schema

// 测试用实体

type Item struct {
	ID   int64
	Name string
}

func newItemTable(opts ...TableOption) *Table[Item] {
	t := NewTable[Item](append([]TableOption{WithName("items"), WithPrimaryKey("id")}, opts...)...)
	Column(t, "id", func(e *Item) *int64 { return &e.ID })
	Column(t, "name", func(e *Item) *string { return &e.Name })
	return t
}

type Parent struct {
	Key   string
	Label string
}

type Child struct {
	ID  int64
	Ref string
}

func newParentChild() (*Table[Parent], *Table[Child]) {
	parent := NewTable[Parent](WithName("parent"), WithPrimaryKey("key_col"))
	Column(parent, "key", func(e *Parent) *string { return &e.Key }, Name("key_col"))
	Column(parent, "label", func(e *Parent) *string { return &e.Label })

	child := NewTable[Child](WithName("child"), WithPrimaryKey("id"))
	Column(child, "id", func(e *Child) *int64 { return &e.ID }, AutoIncrement())
	Column(child, "ref", func(e *Child) *string { return &e.Ref }, Name("ref_col"), References(parent, "key_col", OnDeleteCascade()))
	return parent, child
}

type Node struct {
	ID       int64
	ParentID *int64
}

func newNodeTable() *Table[Node] {
	nodes := NewTable[Node](WithName("nodes"), WithPrimaryKey("id"))
	Column(nodes, "id", func(e *Node) *int64 { return &e.ID })
	Column(nodes, "parentID", func(e *Node) **int64 { return &e.ParentID }, Name("parent_id"), References(nodes, "id", OnDelete(ActionSetNull)))
	return nodes
}

type Author struct {
	ID       int64
	AvatarID *int64
}

type Avatar struct {
	ID       int64
	AuthorID int64
}

func newAuthorAvatar() (*Table[Author], *Table[Avatar]) {
	authors := NewTable[Author](WithName("authors"), WithPrimaryKey("id"))
	avatars := NewTable[Avatar](WithName("avatars"), WithPrimaryKey("id"))

	Column(authors, "id", func(e *Author) *int64 { return &e.ID })
	Column(authors, "avatarID", func(e *Author) **int64 { return &e.AvatarID }, Name("avatar_id"), References(avatars, ""))

	Column(avatars, "id", func(e *Avatar) *int64 { return &e.ID })
	Column(avatars, "authorID", func(e *Avatar) *int64 { return &e.AuthorID }, Name("author_id"), References(authors, "id", OnDeleteCascade(), OnUpdate(ActionRestrict)))
	return authors, avatars
}

type Article struct {
	Audit
	ID    int64
	Title string
}

func newArticleTable(opts ...TableOption) *Table[Article] {
	articles := NewTable[Article](append([]TableOption{WithName("articles"), WithPrimaryKey("id")}, opts...)...)
	// 审计列先登记，推导后仍排在自身字段之后
	WithAudit(articles, func(e *Article) *Audit { return &e.Audit })
	Column(articles, "id", func(e *Article) *int64 { return &e.ID }, AutoIncrement())
	Column(articles, "title", func(e *Article) *string { return &e.Title }, Length(256))
	return articles
}
