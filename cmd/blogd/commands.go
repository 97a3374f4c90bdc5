package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/d60-Lab/gin-blog/internal/api"
	"github.com/d60-Lab/gin-blog/internal/api/handler"
	"github.com/d60-Lab/gin-blog/internal/repository"
	"github.com/d60-Lab/gin-blog/internal/seed"
	"github.com/d60-Lab/gin-blog/internal/service"
	"github.com/d60-Lab/gin-blog/internal/tagsuggest"
	"github.com/d60-Lab/gin-blog/pkg/database"
	"github.com/d60-Lab/gin-blog/pkg/logger"
	"github.com/d60-Lab/gin-blog/pkg/tracing"
)

// NewServeCommand 启动 HTTP 服务
func NewServeCommand(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configDir)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if cfg.Sentry.DSN != "" {
				if err := sentry.Init(sentry.ClientOptions{
					Dsn:         cfg.Sentry.DSN,
					Environment: cfg.Sentry.Environment,
					Release:     version,
				}); err != nil {
					return fmt.Errorf("init sentry: %w", err)
				}
				defer sentry.Flush(2 * time.Second)
			}

			shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
			if err != nil {
				return err
			}
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
				defer cancel()
				if err := shutdownTracing(sctx); err != nil {
					logger.Warn("tracing shutdown", zap.Error(err))
				}
			}()

			st, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			if cfg.Blog.Seed {
				if _, err := seed.Load(ctx, st.repo, cfg.Blog.DefaultImageURL); err != nil {
					return fmt.Errorf("seed: %w", err)
				}
			}

			svc := service.NewPostService(st.repo,
				service.WithStrictComments(cfg.Blog.StrictComments),
				service.WithDefaultImageURL(cfg.Blog.DefaultImageURL),
			)
			var suggester tagsuggest.Suggester
			if cfg.TagSuggest.Enabled() {
				suggester = tagsuggest.NewClient(cfg.TagSuggest)
			}

			srv := &http.Server{
				Addr:         cfg.Server.Addr(),
				Handler:      api.NewRouter(cfg, handler.New(svc, suggester)),
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(sctx)
		},
	}
}

// NewMigrateCommand 建表（仅 gorm 后端）
func NewMigrateCommand(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the SQL schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configDir)
			if err != nil {
				return err
			}
			db, err := database.InitDB(cfg)
			if err != nil {
				return err
			}
			repo := repository.NewGormPostRepository(db)
			defer repo.Close()
			if err := repo.InitSchema(); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", cfg.Database.Driver)
			return nil
		},
	}
}

// NewSeedCommand 向空库写入示例文章
func NewSeedCommand(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the sample posts into an empty store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configDir)
			if err != nil {
				return err
			}
			st, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			n, err := seed.Load(cmd.Context(), st.repo, cfg.Blog.DefaultImageURL)
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "store is not empty, nothing to do")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "loaded %d posts\n", n)
			return nil
		},
	}
}
