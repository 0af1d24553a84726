package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dhis2-sre/im-remote-cluster/pkg/client"
	"github.com/dhis2-sre/im-remote-cluster/pkg/console"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// load and save errors have been alerted already
		if !console.IsLoadError(err) && !console.IsSaveError(err) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

type rootFlags struct {
	host     string
	basePath string
	token    string
	verbose  bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "remote-cluster",
		Short: "Manage remote clusters",
		Long: `Create, inspect and edit remote clusters binding view services to the clusters
hosting them.

Defaults for the connection flags are read from REMOTE_CLUSTER_HOST,
REMOTE_CLUSTER_BASE_PATH and REMOTE_CLUSTER_TOKEN.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flags.host, "host", envOr("REMOTE_CLUSTER_HOST", "http://localhost:8080"), "URL of the remote cluster service")
	cmd.PersistentFlags().StringVar(&flags.basePath, "base-path", envOr("REMOTE_CLUSTER_BASE_PATH", ""), "Base path of the remote cluster service")
	cmd.PersistentFlags().StringVar(&flags.token, "token", envOr("REMOTE_CLUSTER_TOKEN", ""), "Access token")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Log requests and state changes")

	cmd.AddCommand(newListCmd(flags))
	cmd.AddCommand(newGetCmd(flags))
	cmd.AddCommand(newCreateCmd(flags))
	cmd.AddCommand(newEditCmd(flags))
	cmd.AddCommand(newDeleteCmd(flags))
	cmd.AddCommand(newCatalogCmd(flags))

	return cmd
}

func envOr(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// backend is what the commands need from the remote cluster service.
type backend interface {
	console.Backend
	DeleteRemoteCluster(ctx context.Context, name string) error
}

func (f *rootFlags) backend() backend {
	return client.New(f.host, f.basePath, f.token)
}

func (f *rootFlags) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if f.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// writerAlerter prints alerts for the user.
type writerAlerter struct {
	out io.Writer
	err io.Writer
}

func (a writerAlerter) Success(title string) {
	fmt.Fprintln(a.out, title)
}

func (a writerAlerter) Error(title, message string) {
	fmt.Fprintf(a.err, "%s: %s\n", title, message)
}
