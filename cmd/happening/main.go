// Happening Now: real-time news aggregation server and terminal client.
//
// Usage:
//
//	happening serve                 # run the HTTP API
//	happening headlines --tag Tech  # print the latest headlines
//	happening watch                 # keep headlines refreshed in the terminal
//	happening trends                # print trending keywords
//	happening subscribers           # list stored subscribers
//	happening version
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/RobinCoderZhao/happening-now/internal/refresh"
	"github.com/RobinCoderZhao/happening-now/internal/subscriber"
)

var version = "dev"

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "happening",
		Short:         "Real-time news aggregation",
		Long:          "Happening Now aggregates top headlines, tags them by topic, tracks trending keywords and publishes an RSS feed.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "happening.yaml", "config file path")

	load := func() (AppConfig, error) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		slog.SetDefault(newLogger(os.Stderr, cfg.Log))
		return cfg, nil
	}

	rootCmd.AddCommand(serveCmd(load))
	rootCmd.AddCommand(headlinesCmd(load))
	rootCmd.AddCommand(watchCmd(load))
	rootCmd.AddCommand(trendsCmd(load))
	rootCmd.AddCommand(subscribersCmd(load))
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

type loader func() (AppConfig, error)

func serveCmd(load loader) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return runServe(cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

func runServe(cfg AppConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := slog.Default()
	srv, cleanup, err := newHTTPServer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting Happening Now API", "addr", srv.Addr, "provider", cfg.News.Provider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

func serverURL(flag string, cfg AppConfig) string {
	if flag != "" {
		return strings.TrimRight(flag, "/")
	}
	return strings.TrimRight(cfg.Refresh.ServerURL, "/")
}

func headlinesCmd(load loader) *cobra.Command {
	var (
		tag    string
		force  bool
		server string
	)

	cmd := &cobra.Command{
		Use:   "headlines",
		Short: "Print the latest headlines",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Refresh.Timeout)
			defer cancel()

			ctrl, cleanup, err := newController(ctx, cfg, serverURL(server, cfg), nil)
			if err != nil {
				return err
			}
			defer cleanup()

			ctrl.Hydrate(ctx)
			ctrl.Refresh(ctx, force)

			printHeadlines(os.Stdout, ctrl.Snapshot(), ctrl.FilteredArticles(tag), tag, time.Now())
			return nil
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", refresh.AllTag, "only show articles with this tag")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "ignore the cache and fetch now")
	cmd.Flags().StringVar(&server, "server", "", "API base URL (overrides refresh.server_url)")
	return cmd
}

func watchCmd(load loader) *cobra.Command {
	var (
		tag    string
		server string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep headlines refreshed in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			base := serverURL(server, cfg)
			conn := refresh.NewConnectivity(true)
			go conn.Probe(ctx, nil, base+"/healthz", time.Minute)

			ctrl, cleanup, err := newController(ctx, cfg, base, conn)
			if err != nil {
				return err
			}
			defer cleanup()

			ctrl.Start(ctx)
			defer ctrl.Stop()

			var last time.Time
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					snap := ctrl.Snapshot()
					if snap.Loading || snap.LastUpdated.Equal(last) {
						continue
					}
					last = snap.LastUpdated
					printHeadlines(os.Stdout, snap, ctrl.FilteredArticles(tag), tag, time.Now())
				}
			}
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", refresh.AllTag, "only show articles with this tag")
	cmd.Flags().StringVar(&server, "server", "", "API base URL (overrides refresh.server_url)")
	return cmd
}

func trendsCmd(load loader) *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Print trending keywords",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Refresh.Timeout)
			defer cancel()

			fetcher := refresh.NewHTTPFetcher(serverURL(server, cfg), &http.Client{Timeout: cfg.Refresh.Timeout})
			trends, err := fetcher.FetchTrends(ctx)
			if err != nil {
				return fmt.Errorf("fetch trends: %w", err)
			}
			printTrends(os.Stdout, trends)
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "API base URL (overrides refresh.server_url)")
	return cmd
}

func subscribersCmd(load loader) *cobra.Command {
	var remove string

	cmd := &cobra.Command{
		Use:   "subscribers",
		Short: "List stored subscribers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if cfg.Database.DSN == "" {
				return fmt.Errorf("database.dsn is not configured; subscriptions are only logged")
			}
			ctx := cmd.Context()

			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			store, err := subscriber.NewStore(ctx, db)
			if err != nil {
				return err
			}

			if remove != "" {
				ok, err := store.Remove(ctx, remove)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("subscriber %s not found", remove)
				}
				fmt.Println(successStyle.Render("Removed " + remove))
				return nil
			}

			subs, err := store.List(ctx)
			if err != nil {
				return err
			}
			printSubscribers(os.Stdout, subs, time.Now())
			return nil
		},
	}

	cmd.Flags().StringVar(&remove, "remove", "", "remove the subscriber with this email")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("happening %s\n", version)
		},
	}
}
