package main

import (
	"context"
	"database/sql"
	"embed"
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

	"github.com/Simplici0/margin/internal/catalog"
	"github.com/Simplici0/margin/internal/config"
	"github.com/Simplici0/margin/internal/db"
	"github.com/Simplici0/margin/internal/logging"
	"github.com/Simplici0/margin/internal/migrations"
	"github.com/Simplici0/margin/internal/profile"
	"github.com/Simplici0/margin/internal/seed"
)

//go:embed templates/*.html
var templatesFS embed.FS

type server struct {
	db       *sql.DB
	catalog  *catalog.Store
	profiles *profile.Set
}

type baseViewData struct {
	ErrorMessage   string
	SuccessMessage string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		logging.Fatal("failed to open database", zap.Error(err))
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(ctx, database); err != nil {
			logging.Fatal("failed to run database migrations", zap.Error(err))
		}
	}

	stats, err := seed.Run(ctx, database, catalog.Builtin())
	if err != nil {
		logging.Fatal("failed to seed catalog", zap.Error(err))
	}
	logging.Info("catalog ready", zap.Int("inserts", stats.Inserts))

	profiles, err := profile.Load(cfg.ProfilesPath)
	if err != nil {
		logging.Fatal("failed to load profiles", zap.Error(err))
	}

	srv := &server{db: database, catalog: catalog.NewStore(database), profiles: profiles}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logging.Info("listening", zap.String("addr", httpServer.Addr), zap.String("env", cfg.Env))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Fatal("server stopped", zap.Error(err))
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleCalculator)
	r.Post("/", s.handleCalculatorSubmit)
	r.Post("/api/quote", s.handleAPIQuote)
	r.Get("/admin/catalog", s.handleAdminCatalog)
	r.Post("/admin/catalog/prices", s.handleAdminPricesSubmit)
	r.Post("/admin/catalog/rates", s.handleAdminRatesSubmit)
	r.Get("/healthz", s.handleHealth)
	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

var templateFuncs = template.FuncMap{
	"pct": func(f float64) string { return fmt.Sprintf("%.0f", f*100) },
}

func (s *server) renderTemplate(w http.ResponseWriter, status int, page string, data any) {
	templates, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(
		templatesFS,
		"templates/layout.html",
		"templates/"+page,
	)
	if err != nil {
		logging.Error("parse template", zap.String("page", page), zap.Error(err))
		http.Error(w, "failed to parse template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ExecuteTemplate(w, "layout.html", data); err != nil {
		logging.Error("render template", zap.String("page", page), zap.Error(err))
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logging.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
