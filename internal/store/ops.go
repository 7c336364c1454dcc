package store

import (
	"context"
	"fmt"
	"time"

	"github.com/vector76/news_server/internal/model"
)

// NotFoundError represents a 404 Not Found error for lookups.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// ConflictError represents a uniqueness violation, such as a taken username.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

// CreateComment appends a comment to an existing article and persists.
// A zero Created is stamped with the current time; a non-zero one is kept.
func (s *Store) CreateComment(_ context.Context, c model.Comment) (model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.news[c.NewsID]; !ok {
		return model.Comment{}, &NotFoundError{Message: fmt.Sprintf("news %d not found", c.NewsID)}
	}
	if _, ok := s.users[c.AuthorID]; !ok {
		return model.Comment{}, &NotFoundError{Message: fmt.Sprintf("user %d not found", c.AuthorID)}
	}

	c.ID = s.seq.Comment + 1
	if c.Created.IsZero() {
		c.Created = nowUTC()
	}

	oldSeq := s.seq
	s.seq.Comment = c.ID
	s.comments[c.ID] = c
	if err := s.save(); err != nil {
		delete(s.comments, c.ID)
		s.seq = oldSeq
		return model.Comment{}, err
	}

	return c, nil
}

// GetComment returns a comment by ID.
func (s *Store) GetComment(_ context.Context, id int64) (model.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.comments[id]
	if !ok {
		return model.Comment{}, &NotFoundError{Message: fmt.Sprintf("comment %d not found", id)}
	}
	return c, nil
}

// UpdateComment replaces a comment's text and persists.
func (s *Store) UpdateComment(_ context.Context, id int64, text string) (model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok {
		return model.Comment{}, &NotFoundError{Message: fmt.Sprintf("comment %d not found", id)}
	}

	old := c
	c.Text = text
	s.comments[id] = c

	if err := s.save(); err != nil {
		s.comments[id] = old
		return model.Comment{}, err
	}

	return c, nil
}

// DeleteComment removes a comment and returns what was removed.
func (s *Store) DeleteComment(_ context.Context, id int64) (model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok {
		return model.Comment{}, &NotFoundError{Message: fmt.Sprintf("comment %d not found", id)}
	}

	delete(s.comments, id)
	if err := s.save(); err != nil {
		s.comments[id] = c
		return model.Comment{}, err
	}

	return c, nil
}

// Comments returns the comments on an article, oldest first.
func (s *Store) Comments(_ context.Context, newsID int64) ([]model.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.news[newsID]; !ok {
		return nil, &NotFoundError{Message: fmt.Sprintf("news %d not found", newsID)}
	}

	result := []model.Comment{}
	for _, c := range s.comments {
		if c.NewsID == newsID {
			result = append(result, c)
		}
	}
	SortComments(result)
	return result, nil
}
