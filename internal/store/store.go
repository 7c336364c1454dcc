package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vector76/news_server/internal/model"
)

// Store holds news, comments and users in memory and persists them to a
// JSON file.
type Store struct {
	mu       sync.RWMutex
	news     map[int64]model.News
	comments map[int64]model.Comment
	users    map[int64]model.User
	seq      sequences
	filePath string
}

// sequences holds the last issued ID per table. IDs are never reused,
// even after a delete.
type sequences struct {
	News    int64 `json:"news"`
	Comment int64 `json:"comment"`
	User    int64 `json:"user"`
}

// fileData is the on-disk JSON format.
type fileData struct {
	News     []model.News    `json:"news"`
	Comments []model.Comment `json:"comments"`
	Users    []model.User    `json:"users"`
	Seq      sequences       `json:"seq"`
}

// Load reads the data file at path, or initializes an empty store if the
// file does not exist. Sequences are raised to at least the highest ID
// present so hand-edited files cannot produce duplicate IDs.
func Load(path string) (*Store, error) {
	s := &Store{
		news:     make(map[int64]model.News),
		comments: make(map[int64]model.Comment),
		users:    make(map[int64]model.User),
		filePath: path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading data file: %w", err)
	}

	var fd fileData
	if err := json.Unmarshal(data, &fd); err != nil {
		return nil, fmt.Errorf("parsing data file: %w", err)
	}

	s.seq = fd.Seq
	for _, n := range fd.News {
		s.news[n.ID] = n
		s.seq.News = max(s.seq.News, n.ID)
	}
	for _, c := range fd.Comments {
		s.comments[c.ID] = c
		s.seq.Comment = max(s.seq.Comment, c.ID)
	}
	for _, u := range fd.Users {
		s.users[u.ID] = u
		s.seq.User = max(s.seq.User, u.ID)
	}

	return s, nil
}

// save writes everything to disk atomically (temp file + rename).
// Caller must hold s.mu.
func (s *Store) save() error {
	fd := fileData{
		News:     make([]model.News, 0, len(s.news)),
		Comments: make([]model.Comment, 0, len(s.comments)),
		Users:    make([]model.User, 0, len(s.users)),
		Seq:      s.seq,
	}
	for _, n := range s.news {
		fd.News = append(fd.News, n)
	}
	for _, c := range s.comments {
		fd.Comments = append(fd.Comments, c)
	}
	for _, u := range s.users {
		fd.Users = append(fd.Users, u)
	}
	sortNewsByID(fd.News)
	sortCommentsByID(fd.Comments)
	sortUsersByID(fd.Users)

	data, err := json.MarshalIndent(fd, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling data: %w", err)
	}

	dir := filepath.Dir(s.filePath)
	tmp, err := os.CreateTemp(dir, "news-*.json.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.filePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}

// CreateNews adds an article and persists. A zero ID is assigned from the
// sequence; a zero Date defaults to today.
func (s *Store) CreateNews(_ context.Context, n model.News) (model.News, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n.ID == 0 {
		n.ID = s.seq.News + 1
	} else if _, exists := s.news[n.ID]; exists {
		return model.News{}, &ConflictError{Message: fmt.Sprintf("news %d already exists", n.ID)}
	}
	if n.Date.IsZero() {
		n.Date = model.Today()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = nowUTC()
	}

	oldSeq := s.seq
	s.seq.News = max(s.seq.News, n.ID)
	s.news[n.ID] = n
	if err := s.save(); err != nil {
		delete(s.news, n.ID)
		s.seq = oldSeq
		return model.News{}, err
	}

	return n, nil
}

// GetNews returns an article by ID.
func (s *Store) GetNews(_ context.Context, id int64) (model.News, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.news[id]
	if !ok {
		return model.News{}, &NotFoundError{Message: fmt.Sprintf("news %d not found", id)}
	}
	return n, nil
}

// CreateUser adds a user and persists. Usernames are unique.
func (s *Store) CreateUser(_ context.Context, u model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == u.Username {
			return model.User{}, &ConflictError{Message: fmt.Sprintf("user %q already exists", u.Username)}
		}
	}

	u.ID = s.seq.User + 1
	if u.DateJoined.IsZero() {
		u.DateJoined = nowUTC()
	}

	oldSeq := s.seq
	s.seq.User = u.ID
	s.users[u.ID] = u
	if err := s.save(); err != nil {
		delete(s.users, u.ID)
		s.seq = oldSeq
		return model.User{}, err
	}

	return u, nil
}

// GetUser returns a user by ID.
func (s *Store) GetUser(_ context.Context, id int64) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return model.User{}, &NotFoundError{Message: fmt.Sprintf("user %d not found", id)}
	}
	return u, nil
}

// UserByUsername returns a user by exact username.
func (s *Store) UserByUsername(_ context.Context, username string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, &NotFoundError{Message: fmt.Sprintf("user %q not found", username)}
}

// AllComments returns every comment in the store ordered by ID.
func (s *Store) AllComments() []model.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.Comment, 0, len(s.comments))
	for _, c := range s.comments {
		result = append(result, c)
	}
	sortCommentsByID(result)
	return result
}

// Close is a no-op; every mutation is already on disk.
func (s *Store) Close() error {
	return nil
}
