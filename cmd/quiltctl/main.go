/*
Package main is quiltctl, the operator CLI of the Free Quilt pattern site.

It browses the catalog, manages the mock member directory, uploads pattern
PDFs to S3, shows a member dashboard and applies database migrations. It
reads the same environment variables as the server.
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"freequilt/internal/app/prefstore"
	"freequilt/internal/app/storage"
	"freequilt/internal/configs"
	"freequilt/internal/pkg/logx"
)

// app holds the backends commands open lazily, so tests can swap them.
type app struct {
	loadConfig func() (*configs.AppConfig, error)
	openStore  func(ctx context.Context, cfg *configs.AppConfig) (prefstore.Store, error)
	openFiles  func(ctx context.Context, cfg *configs.AppConfig) (storage.StorageService, error)

	verbose bool
}

func newApp() *app {
	return &app{
		loadConfig: configs.LoadConfig,
		openStore:  prefstore.Open,
		openFiles: func(ctx context.Context, cfg *configs.AppConfig) (storage.StorageService, error) {
			return storage.NewStorageService(ctx, storage.ConfigFrom(cfg))
		},
	}
}

// withStore loads the configuration, opens the preference store and runs fn.
func (a *app) withStore(ctx context.Context, fn func(cfg *configs.AppConfig, store prefstore.Store) error) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	store, err := a.openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	return fn(cfg, store)
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "quiltctl",
		Short:         "Operate the Free Quilt pattern site",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.WarnLevel
			if a.verbose {
				level = zerolog.DebugLevel
			}
			logx.InitWithWriter(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: true}, level)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		newCatalogCmd(),
		newUserCmd(a),
		newPatternCmd(a),
		newDashboardCmd(a),
		newMigrateCmd(a),
	)

	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(newApp()).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
