package cli

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var version = "dev"

func init() {
	if version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok &&
			info.Main.Version != "" &&
			info.Main.Version != "(devel)" {
			version = strings.TrimPrefix(info.Main.Version, "v")
		}
	}
}

// NewRootCmd creates the root cobra command for the ns CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ns",
		Short: "News server CLI",
		Long: "News server CLI: runs the news site and manages its articles and accounts.\n\n" +
			"Settings come from flags, NS_* variables (also read from .env) and an optional YAML file.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			showVersion, _ := cmd.Flags().GetBool("version")
			if !showVersion {
				return cmd.Help()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "client: %s\n", version)

			serverVersion := "unavailable"
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Second)
			defer cancel()
			var health struct {
				Version string `json:"version"`
			}
			if err := NewClientFromEnv().Get(ctx, "/healthz", &health); err == nil && health.Version != "" {
				serverVersion = health.Version
			}
			fmt.Fprintf(cmd.OutOrStdout(), "server: %s\n", serverVersion)
			return nil
		},
	}

	root.Flags().BoolP("version", "v", false, "show version information")
	root.CompletionOptions.DisableDefaultCmd = true
	addStorageFlags(root)

	root.AddGroup(
		&cobra.Group{ID: "server", Title: "Server Commands:"},
		&cobra.Group{ID: "admin", Title: "Admin Commands:"},
		&cobra.Group{ID: "client", Title: "Client Commands:"},
	)

	serveCmd := newServeCmd()
	serveCmd.GroupID = "server"
	root.AddCommand(serveCmd)

	for _, cmd := range []*cobra.Command{newNewsCmd(), newUserCmd()} {
		cmd.GroupID = "admin"
		root.AddCommand(cmd)
	}

	headlines := newHeadlinesCmd()
	headlines.GroupID = "client"
	root.AddCommand(headlines)

	return root
}
