// Package feedimport turns RSS and Atom entries into news articles.
package feedimport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/vector76/news_server/internal/model"
)

// NewsCreator stores imported articles.
type NewsCreator interface {
	CreateNews(ctx context.Context, n model.News) (model.News, error)
}

// Importer fetches feeds and stores their entries as news.
type Importer struct {
	parser *gofeed.Parser
	log    *slog.Logger
	now    func() time.Time
}

// New returns an Importer using client for remote feeds. A nil client
// uses http.DefaultClient.
func New(client *http.Client, log *slog.Logger) *Importer {
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = slog.Default()
	}
	fp := gofeed.NewParser()
	fp.UserAgent = "NewsServerImporter"
	fp.Client = client
	return &Importer{parser: fp, log: log, now: time.Now}
}

// Fetch parses src, which is either an http(s) URL or a local file path.
func (im *Importer) Fetch(ctx context.Context, src string) (*gofeed.Feed, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		feed, err := im.parser.ParseURLWithContext(src, ctx)
		if err != nil {
			return nil, fmt.Errorf("fetching feed %s: %w", src, err)
		}
		return feed, nil
	}
	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("opening feed file: %w", err)
	}
	defer f.Close()
	return im.Parse(f)
}

// Parse reads a feed document from r.
func (im *Importer) Parse(r io.Reader) (*gofeed.Feed, error) {
	feed, err := im.parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}
	return feed, nil
}

// Articles converts feed entries to news. Entries without a title are
// skipped. Content is preferred over the description, and markup is
// reduced to plain text.
func (im *Importer) Articles(feed *gofeed.Feed) []model.News {
	out := make([]model.News, 0, len(feed.Items))
	for i, it := range feed.Items {
		title := strings.TrimSpace(it.Title)
		if title == "" {
			im.log.Debug("skipping feed item with empty title", slog.Int("index", i))
			continue
		}

		content := it.Content
		if content == "" {
			content = it.Description
		}

		published := im.now()
		switch {
		case it.PublishedParsed != nil:
			published = *it.PublishedParsed
		case it.UpdatedParsed != nil:
			published = *it.UpdatedParsed
		}

		out = append(out, model.News{
			Title:     title,
			Text:      PlainText(content),
			Date:      model.Day(published),
			CreatedAt: im.now().UTC(),
		})
	}
	return out
}

// Import stores every article in feed and returns how many were created.
// It stops at the first store error.
func (im *Importer) Import(ctx context.Context, repo NewsCreator, feed *gofeed.Feed) (int, error) {
	created := 0
	for _, n := range im.Articles(feed) {
		saved, err := repo.CreateNews(ctx, n)
		if err != nil {
			return created, fmt.Errorf("storing %q: %w", n.Title, err)
		}
		created++
		im.log.Info("imported news", slog.Int64("news_id", saved.ID), slog.String("title", saved.Title))
	}
	return created, nil
}

// PlainText strips HTML tags from s and collapses runs of whitespace.
// Text without markup is returned trimmed but otherwise unchanged.
func PlainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
