package domain

import "time"

// UnknownPublisher is used when a record carries no author name.
const UnknownPublisher = "Unknown publisher"

type Post struct {
	ID        string
	Publisher string
	Text      string
	Image     string
	Link      string
	PostedAt  time.Time
	Included  bool
}

type Summary struct {
	Title    string
	Synopsis string
}

func (s Summary) IsEmpty() bool {
	return s.Title == "" && s.Synopsis == ""
}

type Group struct {
	Publisher string
	Posts     []Post
}

type Newsletter struct {
	ID        string
	CreatedAt time.Time
	PostCount int
	Context   string
	Body      string
}
