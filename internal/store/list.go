package store

import (
	"context"
	"sort"

	"github.com/vector76/news_server/internal/model"
)

// NewsSummary is one row of the home page listing.
type NewsSummary struct {
	model.News
	CommentCount int `json:"comment_count"`
}

// ListOptions controls ListNews paging. Limit < 1 means no limit.
type ListOptions struct {
	Limit  int
	Offset int
}

// ListNews returns articles newest first, paginated by opts.
func (s *Store) ListNews(_ context.Context, opts ListOptions) ([]NewsSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]model.News, 0, len(s.news))
	for _, n := range s.news {
		all = append(all, n)
	}
	SortNews(all)

	counts := make(map[int64]int, len(s.news))
	for _, c := range s.comments {
		counts[c.NewsID]++
	}

	page := paginate(all, opts)
	result := make([]NewsSummary, len(page))
	for i, n := range page {
		result[i] = NewsSummary{News: n, CommentCount: counts[n.ID]}
	}
	return result, nil
}

// SortNews sorts by date (newest first), then ID descending.
func SortNews(news []model.News) {
	sort.SliceStable(news, func(i, j int) bool {
		if !news[i].Date.Equal(news[j].Date) {
			return news[j].Date.Before(news[i].Date)
		}
		return news[i].ID > news[j].ID
	})
}

// SortComments sorts by creation time (oldest first), then ID ascending.
func SortComments(comments []model.Comment) {
	sort.SliceStable(comments, func(i, j int) bool {
		if !comments[i].Created.Equal(comments[j].Created) {
			return comments[i].Created.Before(comments[j].Created)
		}
		return comments[i].ID < comments[j].ID
	})
}

func sortNewsByID(news []model.News) {
	sort.Slice(news, func(i, j int) bool { return news[i].ID < news[j].ID })
}

func sortCommentsByID(comments []model.Comment) {
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
}

func sortUsersByID(users []model.User) {
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
}

// paginate returns the window of news selected by opts.
func paginate(news []model.News, opts ListOptions) []model.News {
	total := len(news)
	start := max(opts.Offset, 0)
	if start > total {
		start = total
	}
	end := total
	if opts.Limit > 0 && start+opts.Limit < total {
		end = start + opts.Limit
	}
	return news[start:end]
}
