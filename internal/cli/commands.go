package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/vector76/news_server/internal/auth"
	"github.com/vector76/news_server/internal/feedimport"
	"github.com/vector76/news_server/internal/model"
	"github.com/vector76/news_server/internal/store"
)

// withRepository resolves settings, opens the repository and passes it
// to fn with the process logger, closing it afterwards.
func withRepository(cmd *cobra.Command, fn func(repo store.Repository, log *slog.Logger) error) error {
	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cmd.ErrOrStderr(), settings)
	if err != nil {
		return err
	}
	repo, err := openRepository(cmd.Context(), settings, log)
	if err != nil {
		return err
	}
	defer repo.Close()
	return fn(repo, log)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newNewsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "news",
		Short: "Manage news articles",
	}
	cmd.AddCommand(newNewsAddCmd(), newNewsListCmd(), newNewsImportCmd())
	return cmd
}

func newNewsAddCmd() *cobra.Command {
	var text string
	var date string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Publish a news article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := model.NewNews(args[0], text)
			if date != "" {
				d, err := time.Parse(time.DateOnly, date)
				if err != nil {
					return fmt.Errorf("invalid --date %q: want YYYY-MM-DD", date)
				}
				n.Date = model.Day(d)
			}
			return withRepository(cmd, func(repo store.Repository, _ *slog.Logger) error {
				saved, err := repo.CreateNews(cmd.Context(), n)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), saved)
			})
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "article text (markdown)")
	cmd.Flags().StringVar(&date, "date", "", "publication day, YYYY-MM-DD (default today)")
	return cmd
}

func newNewsListCmd() *cobra.Command {
	var limit int
	var offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List news, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepository(cmd, func(repo store.Repository, _ *slog.Logger) error {
				news, err := repo.ListNews(cmd.Context(), store.ListOptions{Limit: limit, Offset: offset})
				if err != nil {
					return err
				}
				if news == nil {
					news = []store.NewsSummary{}
				}
				return printJSON(cmd.OutOrStdout(), news)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of articles (0 for all)")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of articles to skip")
	return cmd
}

func newNewsImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <feed-url-or-file>",
		Short: "Import RSS or Atom entries as news",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepository(cmd, func(repo store.Repository, log *slog.Logger) error {
				im := feedimport.New(nil, log)
				feed, err := im.Fetch(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				n, err := im.Import(cmd.Context(), repo, feed)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{"imported": n, "feed": feed.Title})
			})
		},
	}
}

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(newUserAddCmd())
	return cmd
}

func newUserAddCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Create a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				return fmt.Errorf("--password is required")
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			return withRepository(cmd, func(repo store.Repository, _ *slog.Logger) error {
				u, err := repo.CreateUser(cmd.Context(), model.NewUser(args[0], hash))
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), u.Public())
			})
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

// headline is one row printed by the headlines command.
type headline struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Date         time.Time `json:"date"`
	CommentCount int       `json:"comment_count"`
}

func newHeadlinesCmd() *cobra.Command {
	var baseURL string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "headlines",
		Short: "Print the home page listing of a running server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := NewClientFromEnv()
			if baseURL != "" {
				c.BaseURL = baseURL
			}
			var page struct {
				ObjectList []headline `json:"object_list"`
			}
			if err := c.Get(cmd.Context(), "/", &page); err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), page.ObjectList)
			}
			for _, h := range page.ObjectList {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  #%d  %s (%d)\n",
					h.Date.UTC().Format(time.DateOnly), h.ID, h.Title, h.CommentCount)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "url", "", "server URL (env NS_URL, default "+defaultURL+")")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of text")
	return cmd
}
