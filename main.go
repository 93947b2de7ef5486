package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"idCardStudioAPI/handlers"
	"idCardStudioAPI/internal/assets"
	"idCardStudioAPI/internal/editor"
	"idCardStudioAPI/internal/notification"
	"idCardStudioAPI/internal/raster"
	"idCardStudioAPI/middleware"
	"idCardStudioAPI/services"
)

var (
	dbPool              *pgxpool.Pool
	assetStore          *assets.Store
	sessionManager      *editor.Manager
	renderer            *raster.CanvasRenderer
	designService       *services.DesignService
	settingsService     *services.SettingsService
	notificationService *services.NotificationService
	exportService       *services.ExportService
	fcmService          *notification.FCMService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)
	log.Println("Clerk initialized successfully")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}
	log.Println("Successfully connected to NeonDB")

	assetsDir := os.Getenv("ASSETS_DIR")
	if assetsDir == "" {
		assetsDir = "./assets"
	}
	assetStore, err = assets.NewStore(assetsDir)
	if err != nil {
		log.Fatal("Failed to initialize asset store:", err)
	}

	renderer, err = raster.NewCanvasRenderer(assetStore)
	if err != nil {
		log.Fatal("Failed to initialize renderer:", err)
	}

	sessionManager = editor.NewManager(assetStore)
	designService = services.NewDesignService(dbPool, assetStore)
	settingsService = services.NewSettingsService(dbPool)
	notificationService = services.NewNotificationService(dbPool)
	exportService = services.NewExportService(renderer, designService, notificationService)

	fcmService, err = notification.NewFCMService("./serviceAccountKey.json")
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		notificationService.SetPushProvider(fcmService)
		log.Println("FCM Push Provider initialized successfully")
	}

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	editorHandler := handlers.NewEditorHandler(sessionManager, assetStore)
	exportHandler := handlers.NewExportHandler(sessionManager, exportService, settingsService, assetStore)
	designHandler := handlers.NewDesignHandler(designService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()
	go sessionManager.CleanupIdleSessions(10*time.Minute, time.Hour)

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))

	assetsDir := os.Getenv("ASSETS_DIR")
	if assetsDir == "" {
		assetsDir = "./assets"
	}
	fs := http.FileServer(http.Dir(assetsDir))
	r.PathPrefix("/assets/").Handler(http.StripPrefix("/assets/", fs))
	log.Printf("Serving static files from %s at /assets/", assetsDir)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "idCardStudio-api"}`))
	}).Methods("GET")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/settings/login-requirement", settingsHandler.GetDownloadPolicy).Methods("GET")

	// Editor sessions are anonymous-friendly: auth is attached when the
	// caller has it, and the download gate decides later whether it was
	// required.
	studio := api.PathPrefix("/editor").Subrouter()
	studio.Use(middleware.OptionalAuthMiddleware)

	studio.HandleFunc("/sessions", editorHandler.CreateSession).Methods("POST")
	studio.HandleFunc("/sessions/{sessionId}", editorHandler.GetSession).Methods("GET")
	studio.HandleFunc("/sessions/{sessionId}", editorHandler.DeleteSession).Methods("DELETE")
	studio.HandleFunc("/sessions/{sessionId}/elements", editorHandler.AddElement).Methods("POST")
	studio.HandleFunc("/sessions/{sessionId}/elements/{elementId}", editorHandler.UpdateElement).Methods("PUT")
	studio.HandleFunc("/sessions/{sessionId}/elements/{elementId}", editorHandler.DeleteElement).Methods("DELETE")
	studio.HandleFunc("/sessions/{sessionId}/elements/{elementId}/reorder", editorHandler.ReorderElement).Methods("POST")
	studio.HandleFunc("/sessions/{sessionId}/select", editorHandler.SelectElement).Methods("POST")
	studio.HandleFunc("/sessions/{sessionId}/commands", editorHandler.DispatchCommand).Methods("POST")
	studio.HandleFunc("/sessions/{sessionId}/images", editorHandler.ApplyImage).Methods("POST")
	studio.HandleFunc("/sessions/{sessionId}/export", exportHandler.ExportCard).Methods("POST")
	studio.HandleFunc("/sessions/{sessionId}/bulk-export", exportHandler.BulkExport).Methods("POST")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/designs/upload", designHandler.UploadDesign).Methods("POST")
	protected.HandleFunc("/designs", designHandler.ListDesigns).Methods("GET")
	protected.HandleFunc("/designs/{designId}/share", designHandler.ShareDesign).Methods("GET")

	protected.HandleFunc("/notifications/register-device", notificationHandler.RegisterDevice).Methods("POST")

	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length", "Content-Disposition", "X-Records-Attempted", "X-Records-Skipped"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // bulk archives can take a while to stream
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
