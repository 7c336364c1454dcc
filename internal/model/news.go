package model

import "time"

// News is a published article. Date is a calendar day; the home page
// orders by it, newest first.
type News struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

// Today returns the current calendar day at midnight UTC.
func Today() time.Time {
	return Day(time.Now())
}

// Day truncates t to midnight UTC of the same calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewNews creates a News dated today. The ID is assigned by the store.
func NewNews(title, text string) News {
	return News{
		Title:     title,
		Text:      text,
		Date:      Today(),
		CreatedAt: time.Now().UTC(),
	}
}
