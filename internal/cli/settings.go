package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vector76/news_server/internal/config"
	"github.com/vector76/news_server/internal/logging"
	"github.com/vector76/news_server/internal/store"
	"github.com/vector76/news_server/internal/store/sqlstore"
)

// addStorageFlags registers the flags every command that opens the
// repository shares.
func addStorageFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String("config", "", "path to YAML settings file (env NS_CONFIG)")
	f.String("data-file", "", "path to JSON data file")
	f.String("database-driver", "", "SQL driver: pgx or mysql (default JSON file store)")
	f.String("database-url", "", "SQL connection string")
	f.String("log-level", "", "log level: debug, info, warn, error")
}

// resolveSettings applies, in increasing precedence, defaults, the YAML
// file, NS_* variables and explicitly set flags.
func resolveSettings(cmd *cobra.Command) (config.Settings, error) {
	flags := cmd.Flags()

	path, _ := flags.GetString("config")
	if path == "" {
		path = getenv("NS_CONFIG")
	}
	s := config.Default()
	if path != "" {
		var err error
		if s, err = config.LoadFile(path); err != nil {
			return config.Settings{}, err
		}
	}

	if err := s.ApplyEnv(getenv); err != nil {
		return config.Settings{}, err
	}

	stringFlag := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	intFlag := func(name string, dst *int) {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			*dst, _ = flags.GetInt(name)
		}
	}
	stringFlag("data-file", &s.DataFile)
	stringFlag("database-driver", &s.Database.Driver)
	stringFlag("database-url", &s.Database.URL)
	stringFlag("log-level", &s.LogLevel)
	if flags.Lookup("secret") != nil {
		stringFlag("secret", &s.Secret)
	}
	intFlag("port", &s.Port)
	intFlag("news-per-page", &s.NewsCountOnHomePage)

	return s, nil
}

// newLogger builds the process logger from settings.
func newLogger(w io.Writer, s config.Settings) (*slog.Logger, error) {
	level, err := logging.ParseLevel(s.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(w, level, s.LogFormat), nil
}

// openRepository opens the SQL store when a driver is configured and the
// JSON file store otherwise.
func openRepository(ctx context.Context, s config.Settings, log *slog.Logger) (store.Repository, error) {
	if s.Database.Driver == "" {
		st, err := store.Load(s.DataFile)
		if err != nil {
			return nil, fmt.Errorf("loading data file: %w", err)
		}
		log.Info("using JSON file store", slog.String("path", s.DataFile))
		return st, nil
	}
	return sqlstore.Open(ctx, s.Database.Driver, s.Database.URL, sqlstore.DefaultConnectionConfig(), log)
}
