package model

import "time"

// Comment is a reply to a news article. AuthorID owns the comment for
// edit and delete; Author is the username shown next to it.
type Comment struct {
	ID       int64     `json:"id"`
	NewsID   int64     `json:"news_id"`
	AuthorID int64     `json:"author_id"`
	Author   string    `json:"author"`
	Text     string    `json:"text"`
	Created  time.Time `json:"created"`
}

// NewComment creates a comment on newsID by the given user.
func NewComment(newsID int64, author User, text string) Comment {
	return Comment{
		NewsID:   newsID,
		AuthorID: author.ID,
		Author:   author.Username,
		Text:     text,
		Created:  time.Now().UTC(),
	}
}

// OwnedBy reports whether u wrote the comment.
func (c Comment) OwnedBy(u *User) bool {
	return u != nil && u.ID != 0 && u.ID == c.AuthorID
}
