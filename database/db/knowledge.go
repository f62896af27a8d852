package db

type KnowledgeSnippet struct {
	ID       string `db:"id"`
	Content  string `db:"content"`
	Tone     string `db:"tone"`
	IsActive bool   `db:"is_active"`
}
