package main

import (
	"context"
	"embed"
	"flag"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"colorcal/internal/calendars"
	"colorcal/internal/config"
	"colorcal/internal/db"
	mcpserver "colorcal/internal/mcp"

	"github.com/mark3labs/mcp-go/server"
)

//go:embed static
var staticFS embed.FS

func main() {
	configPath := flag.String("config", "colorcal.yaml", "path to YAML config file")
	flag.Parse()

	// Config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	level, _ := config.ParseLevel(cfg.LogLevel)

	// Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))

	// Context for startup
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	if err := store.EnsureIndexes(ctx); err != nil {
		logger.Warn("failed to ensure indexes", "error", err)
	}

	// Wire dependencies
	calSvc := calendars.NewService(store)
	calHandler := calendars.NewHandler(calSvc, logger, cfg.DefaultOwner, cfg.BaseURL)

	// Create MCP server
	mcpSrv := mcpserver.NewServer(calSvc, cfg.DefaultOwner)

	var janitor *calendars.Janitor
	if cfg.SweepCron != "" {
		janitor, err = calendars.NewJanitor(calSvc, cfg.SweepCron, logger)
		if err != nil {
			log.Fatalf("failed to schedule janitor: %v", err)
		}
		janitor.Start()
		logger.Info("janitor scheduled", "cron", cfg.SweepCron)
	}

	// HTTP router
	mux := http.NewServeMux()

	// Static files
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		log.Fatalf("failed to get static fs: %v", err)
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(sub))))

	// REST API endpoints
	mux.HandleFunc("POST /api/calendars", calHandler.CreateCalendar)
	mux.HandleFunc("GET /api/calendars", calHandler.ListCalendars)
	mux.HandleFunc("GET /api/calendars/{id}", calHandler.GetCalendar)
	mux.HandleFunc("PATCH /api/calendars/{id}", calHandler.UpdateCalendar)
	mux.HandleFunc("DELETE /api/calendars/{id}", calHandler.DeleteCalendar)
	mux.HandleFunc("GET /api/calendars/{id}/export.ics", calHandler.ExportICS)
	mux.HandleFunc("POST /api/calendars/{id}/categories", calHandler.AddCategory)
	mux.HandleFunc("POST /api/calendars/{id}/autocolor", calHandler.AutoColor)
	mux.HandleFunc("POST /api/calendars/{id}/days/toggle", calHandler.ToggleDay)
	mux.HandleFunc("PATCH /api/categories/{id}", calHandler.RenameCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", calHandler.DeleteCategory)
	mux.HandleFunc("POST /api/categories/{id}/rotate", calHandler.RotateCategoryColor)
	mux.HandleFunc("GET /api/categories/{id}/outline", calHandler.CategoryOutline)
	mux.HandleFunc("PATCH /api/days/{id}", calHandler.UpdateDay)

	// Web UI
	mux.HandleFunc("GET /", calHandler.HomePage)
	mux.HandleFunc("POST /c", calHandler.CreateCalendarForm)
	mux.HandleFunc("GET /c/{id}", calHandler.EditorPage)
	mux.HandleFunc("GET /p/{slug}", calHandler.PublicPage)
	mux.HandleFunc("GET /fragments/grid/{id}", calHandler.GridFragment)

	// MCP endpoint (HTTP transport)
	// MCP uses POST for requests and GET for SSE streams
	mcpHTTP := server.NewStreamableHTTPServer(mcpSrv)
	mux.Handle("POST /mcp", mcpHTTP)
	mux.Handle("GET /mcp", mcpHTTP)
	mux.Handle("DELETE /mcp", mcpHTTP)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Start server
	srv := &http.Server{
		Addr:         cfg.Listen,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
		if janitor != nil {
			janitor.Stop(shutdownCtx)
		}
		if err := store.Close(shutdownCtx); err != nil {
			logger.Error("store close error", "error", err)
		}
	}()

	logger.Info("server starting", "listen", cfg.Listen, "store", cfg.Store.Driver)
	logger.Info("endpoints available",
		"web", "http://"+displayAddr(cfg.Listen),
		"api", "http://"+displayAddr(cfg.Listen)+"/api",
		"mcp", "http://"+displayAddr(cfg.Listen)+"/mcp",
	)

	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}

	logger.Info("server stopped")
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (calendars.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverMongo:
		logger.Info("connecting to MongoDB", "uri", cfg.Store.MongoURI, "database", cfg.Store.MongoDatabase)
		database, err := db.Connect(ctx, cfg.Store.MongoURI, cfg.Store.MongoDatabase)
		if err != nil {
			return nil, err
		}
		logger.Info("connected to MongoDB")
		return calendars.NewMongoStore(database), nil
	default:
		logger.Info("opening SQLite database", "path", cfg.Store.SQLitePath)
		sqlDB, err := db.OpenSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		return calendars.NewSQLiteStore(sqlDB)
	}
}

func displayAddr(listen string) string {
	if len(listen) > 0 && listen[0] == ':' {
		return "localhost" + listen
	}
	return listen
}
