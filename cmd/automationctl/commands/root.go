package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/execution-hub/repo-automation/internal/bootstrap"
	"github.com/execution-hub/repo-automation/internal/config"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "automationctl",
	Short: "Manage and run repository automation rules",
	Long: `automationctl works directly against the rule store selected by
RULE_STORE and friends, the same environment the server reads.

Environment variables:
  RULE_STORE       memory, file, bolt or postgres (default: file)
  RULE_STORE_PATH  Path for the file and bolt stores
  DATABASE_URL     Connection string for the postgres store
  GITHUB_TOKEN     Token used when running rules locally`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log engine activity to stderr")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func newLogger() zerolog.Logger {
	if !verbose {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

func openEngine(ctx context.Context) (*bootstrap.Engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return bootstrap.NewEngine(ctx, cfg, nil, newLogger())
}

// parseRepo splits owner/name.
func parseRepo(s string) (string, string, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository %q: expected owner/name", s)
	}
	return parts[0], parts[1], nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
