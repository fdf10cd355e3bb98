package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/trustedapp/site/internal/config"
	"github.com/trustedapp/site/internal/db"
	"github.com/trustedapp/site/internal/estimates"
	"github.com/trustedapp/site/internal/logging"
	"github.com/trustedapp/site/internal/migrations"
	"github.com/trustedapp/site/internal/money"
	"github.com/trustedapp/site/internal/pricing"
	"github.com/trustedapp/site/internal/seed"
	"github.com/trustedapp/site/internal/waitlist"
	"github.com/trustedapp/site/web"
)

const shutdownTimeout = 10 * time.Second

var pages = []string{"home.html", "calculator.html", "estimate.html", "estimates.html"}

type server struct {
	logger    *zap.Logger
	tables    *pricing.Tables
	estimates *estimates.Repository
	templates map[string]*template.Template
}

type baseViewData struct {
	ErrorMessage   string
	SuccessMessage string
}

func main() {
	cfg := config.Load()

	logger := logging.New(logging.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Development: cfg.IsDev(),
	})
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	if err := migrations.Up(ctx, database.DB); err != nil {
		return fmt.Errorf("run database migrations: %w", err)
	}

	repo := estimates.NewRepository(database)
	if cfg.SeedSamples {
		stats, err := seed.Run(ctx, database, repo)
		if err != nil {
			return fmt.Errorf("seed sample estimates: %w", err)
		}
		logger.Info("seeded sample estimates", zap.Int("inserts", stats.Inserts))
	}

	srv, err := newServer(logger, pricing.DefaultTables(), repo)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", httpServer.Addr), zap.String("env", cfg.Env))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("shutting down")
	return httpServer.Shutdown(shutdownCtx)
}

func newServer(logger *zap.Logger, tables *pricing.Tables, repo *estimates.Repository) (*server, error) {
	funcs := template.FuncMap{
		"money":   money.Format,
		"whole":   money.Whole,
		"percent": money.Percent,
		"mult":    money.Multiplier,
		"pct":     money.Points,
	}

	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(web.Templates,
			"templates/layout.html",
			"templates/results.html",
			"templates/"+page,
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		templates[page] = t
	}

	return &server{logger: logger, tables: tables, estimates: repo, templates: templates}, nil
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(web.Static()))))
	r.Get("/", s.handleHome)
	r.Get("/calculator", s.handleCalculator)
	r.Post("/preferences/sharing", s.handleSharingPreference)
	r.Get("/estimates", s.handleEstimatesList)
	r.Post("/estimates", s.handleEstimateSave)
	r.Get("/estimates/{id}", s.handleEstimateDetail)

	r.Route("/api", func(r chi.Router) {
		r.Post("/estimate", s.handleAPIEstimate)
		r.Post("/estimate/quick", s.handleAPIQuickEstimate)
		r.Handle("/waitlist", waitlist.NewHandler(waitlist.LogRecorder{Logger: s.logger}, s.logger))
	})

	return r
}

func (s *server) renderTemplate(w http.ResponseWriter, status int, page string, data any) {
	t, ok := s.templates[page]
	if !ok {
		http.Error(w, "unknown template", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		s.logger.Error("render template", zap.String("page", page), zap.Error(err))
		http.Error(w, "failed to render template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
