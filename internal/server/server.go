package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/shouni/go-poster-kit/pkg/editor"
	"github.com/shouni/go-poster-kit/pkg/publisher"
	"github.com/shouni/go-poster-kit/pkg/workflow"
)

const (
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 2 * time.Minute
	maxUploadBytes    = 20 << 20
)

// Deps はサーバーが1つの編集セッションを公開するために使う依存です。
type Deps struct {
	Session   *editor.Session
	Workflow  workflow.Workflow
	Publisher *publisher.PosterPublisher
	// OutputDir は「バージョン保存」の書き出し先です。
	OutputDir string
	// RequestTimeout は生成を含む1リクエストの上限です。0 なら制限しません。
	RequestTimeout time.Duration
}

// Server は chi ルーターと http.Server をまとめたものです。
type Server struct {
	httpServer *http.Server
	router     chi.Router
	log        *slog.Logger
}

// New はミドルウェアとルートを登録したサーバーを作成します。
func New(addr string, log *slog.Logger, deps Deps) (*Server, error) {
	if deps.Session == nil {
		return nil, fmt.Errorf("session は必須です")
	}
	if deps.Workflow == nil {
		return nil, fmt.Errorf("workflow は必須です")
	}
	if deps.Publisher == nil {
		return nil, fmt.Errorf("publisher は必須です")
	}
	if log == nil {
		log = slog.Default()
	}

	h := &handler{deps: deps}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.CleanPath)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		ok(w, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		// 変更通知のストリームは接続が続く限り開いたままにする
		api.Get("/events", h.events)

		api.Group(func(api chi.Router) {
			if deps.RequestTimeout > 0 {
				api.Use(middleware.Timeout(deps.RequestTimeout))
			}
			h.routes(api)
		})
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: readHeaderTimeout,
			IdleTimeout:       idleTimeout,
		},
	}, nil
}

// routes は /api 以下の通常のルートを登録します。
func (h *handler) routes(api chi.Router) {
	api.Get("/state", h.state)
	api.Get("/layouts", h.layouts)
	api.Put("/layout", h.setLayout)

	api.Post("/product", h.uploadProduct)
	api.Delete("/product", h.resetProduct)
	api.Post("/generate", h.generate)

	api.Get("/document", h.document)
	api.Get("/background", h.background)
	api.Get("/scene", h.scene)
	api.Put("/edit-mode", h.setEditMode)

	api.Post("/pointer/{kind}", h.pointer)
	api.Put("/selection", h.selectElement)
	api.Delete("/selection", h.clearSelection)

	api.Route("/elements/{id}", func(el chi.Router) {
		el.Put("/text", h.setText)
		el.Post("/scale", h.adjustScale)
		el.Put("/scale", h.setScale)
		el.Post("/center", h.center)
		el.Post("/layer", h.toggleLayer)
	})

	api.Get("/export.png", h.exportPNG)
	api.Post("/versions", h.saveVersion)
}

// Handler はルーターを返します。テストから直接呼び出せます。
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe はサーバーを起動し、終了するまでブロックします。
func (s *Server) ListenAndServe() error {
	s.log.Info("サーバーを起動します", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown は処理中のリクエストを待ってから停止します。
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// requestLogger はリクエストごとにステータスと所要時間を記録します。
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			case r.URL.Path == "/api/pointer/move":
				// ドラッグ中は大量に届くので通常は出さない
				level = slog.LevelDebug
			}
			log.Log(r.Context(), level, "http_request_finished",
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"latency_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
