package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/lingesh369/tradelens/backend/src/config"
	"github.com/lingesh369/tradelens/backend/src/database"
	"github.com/lingesh369/tradelens/backend/src/handlers"
	"github.com/lingesh369/tradelens/backend/src/logger"
	"github.com/lingesh369/tradelens/backend/src/processors"
	"github.com/lingesh369/tradelens/backend/src/security"
	"github.com/lingesh369/tradelens/backend/src/services"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			config.Cfg.AllowedOrigin: true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "ETag, Content-Disposition")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("TradeLens import backend starting...")

	if len(config.Cfg.AuthJWTSecret) < 32 {
		logger.L.Error("AUTH_JWT_SECRET configuration invalid. Must be at least 32 bytes.")
		os.Exit(1)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing report cache...")
	reportCache := cache.New(config.Cfg.ReportCacheTTL, config.Cfg.ReportCacheCleanup)

	logger.L.Info("Initializing services and handlers...")
	authService := security.NewAuthService(config.Cfg.AuthJWTSecret)
	statsProcessor := processors.NewStatsProcessor()

	importService := services.NewImportService(
		statsProcessor, reportCache,
		config.Cfg.ImportSessionTTL, config.Cfg.PreviewRowLimit,
	)

	importHandler := handlers.NewImportHandler(importService)
	tradeHandler := handlers.NewTradeHandler(importService)

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	requireAuth := handlers.NewAuthMiddleware(authService)
	applyAuth := func(handler http.HandlerFunc) http.Handler {
		return requireAuth(handler)
	}

	apiRouter.Handle("GET /api/import/fields", http.HandlerFunc(importHandler.HandleGetFields))
	apiRouter.Handle("POST /api/import/preview", applyAuth(importHandler.HandlePreview))
	apiRouter.Handle("POST /api/import/commit", applyAuth(importHandler.HandleCommit))
	apiRouter.Handle("GET /api/trades", applyAuth(tradeHandler.HandleGetTrades))
	apiRouter.Handle("GET /api/trades/stats", applyAuth(tradeHandler.HandleGetTradeStats))
	apiRouter.Handle("GET /api/trades/export", applyAuth(tradeHandler.HandleExportTrades))
	apiRouter.Handle("DELETE /api/trades/all", applyAuth(tradeHandler.HandleDeleteAllTrades))

	rootMux.Handle("/api/", apiRouter)

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "TradeLens import backend is running"})
		} else {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
				http.NotFound(w, r)
			}
		}
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := enableCORS(rateLimitMiddleware(rootMux))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
