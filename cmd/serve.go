package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shouni/go-poster-kit/internal/builder"
	"github.com/shouni/go-poster-kit/internal/config"
	"github.com/shouni/go-poster-kit/internal/server"
)

const shutdownTimeout = 10 * time.Second

// serveCmd は、編集セッションを HTTP API として公開するのだ。
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "ポスター編集用の HTTP サーバーを起動するのだ。",
	Long: `1つの編集セッションを JSON API として公開するのだ。
商品画像のアップロード、生成、ドラッグやスケールの編集、PNG の書き出しができるのだよ。`,
	Annotations: map[string]string{"requiresAPIKey": "true"},
	RunE:        serveCommand,
}

func init() {
	serveCmd.Flags().StringVar(&opts.Addr, "addr", "", "待ち受けアドレスなのだ（既定は :8080）。")
}

func serveCommand(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(opts)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	app, err := builder.NewAppContext(ctx, cfg, opts.Offline)
	if err != nil {
		return fmt.Errorf("アプリケーションの初期化に失敗したのだ: %w", err)
	}

	srv, err := server.New(cfg.Addr, logger, server.Deps{
		Session:        app.Session,
		Workflow:       app.Workflow,
		Publisher:      app.Publisher,
		OutputDir:      cfg.OutputDir,
		RequestTimeout: cfg.RequestTimeout,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("サーバーが停止したのだ: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("シャットダウンするのだ")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
