package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vector76/news_server/internal/model"
	"github.com/vector76/news_server/internal/store"
)

const commentColumns = `c.id, c.news_id, c.author_id, u.username, c.text, c.created`

func scanComment(row interface{ Scan(...any) error }, c *model.Comment) error {
	return row.Scan(&c.ID, &c.NewsID, &c.AuthorID, &c.Author, &c.Text, &c.Created)
}

// CreateComment inserts a comment on an existing article by an existing user.
func (s *Store) CreateComment(ctx context.Context, c model.Comment) (model.Comment, error) {
	if _, err := s.GetNews(ctx, c.NewsID); err != nil {
		return model.Comment{}, err
	}
	author, err := s.GetUser(ctx, c.AuthorID)
	if err != nil {
		return model.Comment{}, err
	}
	c.Author = author.Username
	if c.Created.IsZero() {
		c.Created = time.Now().UTC()
	}

	id, err := s.insert(ctx,
		`INSERT INTO comments (news_id, author_id, text, created) VALUES (?, ?, ?, ?)`,
		c.NewsID, c.AuthorID, c.Text, c.Created)
	if err != nil {
		return model.Comment{}, fmt.Errorf("CreateComment: %w", err)
	}
	c.ID = id
	return c, nil
}

// GetComment returns a comment by ID.
func (s *Store) GetComment(ctx context.Context, id int64) (model.Comment, error) {
	query := `SELECT ` + commentColumns + `
FROM comments c
JOIN users u ON u.id = c.author_id
WHERE c.id = ?`

	var c model.Comment
	err := scanComment(s.db.QueryRowContext(ctx, s.rebind(query), id), &c)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Comment{}, &store.NotFoundError{Message: fmt.Sprintf("comment %d not found", id)}
	}
	if err != nil {
		return model.Comment{}, fmt.Errorf("GetComment: %w", err)
	}
	return c, nil
}

// UpdateComment replaces a comment's text.
func (s *Store) UpdateComment(ctx context.Context, id int64, text string) (model.Comment, error) {
	c, err := s.GetComment(ctx, id)
	if err != nil {
		return model.Comment{}, err
	}
	if _, err := s.db.ExecContext(ctx, s.rebind(`UPDATE comments SET text = ? WHERE id = ?`), text, id); err != nil {
		return model.Comment{}, fmt.Errorf("UpdateComment: %w", err)
	}
	c.Text = text
	return c, nil
}

// DeleteComment removes a comment and returns what was removed.
func (s *Store) DeleteComment(ctx context.Context, id int64) (model.Comment, error) {
	c, err := s.GetComment(ctx, id)
	if err != nil {
		return model.Comment{}, err
	}
	if _, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM comments WHERE id = ?`), id); err != nil {
		return model.Comment{}, fmt.Errorf("DeleteComment: %w", err)
	}
	return c, nil
}

// Comments returns the comments on an article, oldest first.
func (s *Store) Comments(ctx context.Context, newsID int64) ([]model.Comment, error) {
	if _, err := s.GetNews(ctx, newsID); err != nil {
		return nil, err
	}

	query := `SELECT ` + commentColumns + `
FROM comments c
JOIN users u ON u.id = c.author_id
WHERE c.news_id = ?
ORDER BY c.created ASC, c.id ASC`

	rows, err := s.db.QueryContext(ctx, s.rebind(query), newsID)
	if err != nil {
		return nil, fmt.Errorf("Comments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		if err := scanComment(rows, &c); err != nil {
			return nil, fmt.Errorf("Comments: scan: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Comments: rows: %w", err)
	}
	return result, nil
}
