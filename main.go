// main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go-drop-registry/config"
	"go-drop-registry/controllers"
	"go-drop-registry/logger"
	"go-drop-registry/middleware"
	"go-drop-registry/services"
	"go-drop-registry/store"
	"go-drop-registry/websocket"
)

const sessionName = "dropsession"

// App holds everything the router and background loops share.
type App struct {
	Config      *config.Config
	Store       store.Interface
	Clock       services.Clock
	Registry    *prometheus.Registry
	Metrics     *services.Metrics
	Service     *services.RegistrationService
	Verifier    *services.TokenVerifier
	Credentials *services.AdminCredentials
	Exporter    controllers.SheetExporter
	Hub         *websocket.Hub
	Feed        *websocket.Feed
	Heartbeat   *HeartbeatManager
	RateLimiter *middleware.RateLimiter
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.SetLogLevel(cfg.Env)
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.StoreBackend, err)
	}

	app, err := newApp(ctx, cfg, st)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}

	if err := app.Feed.Start(ctx); err != nil {
		logger.Error.Printf("main: live feed disabled: %v", err)
	}
	go app.Heartbeat.Run(ctx)

	var handler http.Handler = setupRouter(app)
	if cfg.XRayEnabled {
		handler = xray.Handler(xray.NewFixedSegmentNamer(cfg.XRayName), handler)
		logger.Info.Printf("main: X-Ray tracing enabled as %s", cfg.XRayName)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info.Printf("main: listening on %s (store=%s)", cfg.HTTPAddr, cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to run server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info.Println("main: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	app.Feed.Stop()
	app.Hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error.Printf("main: server shutdown: %v", err)
	}
	if err := app.Store.Close(shutdownCtx); err != nil {
		logger.Error.Printf("main: store close: %v", err)
	}
}

// openStore connects the configured backend.
func openStore(ctx context.Context, cfg *config.Config) (store.Interface, error) {
	switch cfg.StoreBackend {
	case config.BackendMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		s, err := store.NewMongoStore(connectCtx, cfg.MongoURI, cfg.MongoDatabase, cfg.StatusPollInterval)
		if err != nil {
			return nil, err
		}
		if err := s.EnsureIndexes(connectCtx); err != nil {
			logger.Warn.Printf("openStore: index creation failed: %v", err)
		}
		return s, nil
	case config.BackendFirestore:
		return store.NewFirestoreStore(ctx, cfg.FirestoreProject, cfg.GoogleCredentials)
	default:
		logger.Warn.Println("openStore: using the in-memory store; data is lost on restart")
		return store.NewMemoryStore(), nil
	}
}

// newApp wires services around st. Optional integrations that fail to start
// are logged and left out.
func newApp(ctx context.Context, cfg *config.Config, st store.Interface) (*App, error) {
	clock := services.NewClock(cfg.TimeZone)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	var cloud *services.CloudWatchPublisher
	if cfg.CloudWatchEnabled {
		cloud = services.NewCloudWatchPublisher("DropRegistry")
	}
	metrics := services.NewMetrics(registry, cloud)

	service := services.NewRegistrationService(st, clock, metrics, buildNotifier(cfg))

	hub := websocket.NewHub(cfg.AllowedOrigins, metrics)
	messenger := websocket.NewMessenger(hub)
	countdown := websocket.NewCountdownManager(messenger)

	app := &App{
		Config:      cfg,
		Store:       st,
		Clock:       clock,
		Registry:    registry,
		Metrics:     metrics,
		Service:     service,
		Verifier:    services.NewTokenVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.IsAdminEmail),
		Credentials: services.NewAdminCredentials(cfg.AdminPassword, cfg.AdminPasswordHash),
		Hub:         hub,
		Feed:        websocket.NewFeed(st, messenger, countdown, clock),
		Heartbeat:   NewHeartbeatManager(st, 30*time.Second),
		RateLimiter: middleware.NewRateLimiter(cfg.SubmitRatePerMinute, cfg.SubmitBurst),
	}

	if cfg.SheetsSpreadsheetID != "" {
		client, err := services.NewSheetsClient(ctx, cfg.GoogleCredentials, cfg.SheetsSpreadsheetID)
		if err != nil {
			logger.Error.Printf("newApp: Google Sheets export disabled: %v", err)
		} else {
			app.Exporter = &services.SheetsExporter{Writer: client}
		}
	}

	controllers.SetConfig(cfg.ApplicationURL)
	return app, nil
}

// buildNotifier returns nil when no channel is configured.
func buildNotifier(cfg *config.Config) services.Notifier {
	var multi services.MultiNotifier
	if cfg.TelegramToken != "" && len(cfg.TelegramChatIDs) > 0 {
		n, err := services.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatIDs)
		if err != nil {
			logger.Error.Printf("buildNotifier: Telegram disabled: %v", err)
		} else {
			multi = append(multi, n)
		}
	}
	if cfg.DiscordToken != "" && cfg.DiscordChannel != "" {
		n, err := services.NewDiscordNotifier(cfg.DiscordToken, cfg.DiscordChannel)
		if err != nil {
			logger.Error.Printf("buildNotifier: Discord disabled: %v", err)
		} else {
			multi = append(multi, n)
		}
	}
	if len(multi) == 0 {
		return nil
	}
	return multi
}

// corsConfig allows credentials from the listed origins. An empty list or
// "*" allows every origin.
func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	return c
}

// setupRouter registers every route on a fresh engine.
func setupRouter(app *App) *gin.Engine {
	cfg := app.Config
	router := gin.New()
	router.Use(gin.Recovery(), gin.LoggerWithWriter(logger.Info.Writer()))
	router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	cookieStore := cookie.NewStore([]byte(cfg.SessionSecret))
	cookieStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions(sessionName, cookieStore))

	registration := controllers.NewRegistrationController(app.Service)
	admin := controllers.NewAdminController(app.Service, app.Exporter)
	auth := controllers.NewAuthController(app.Verifier, app.Credentials)

	router.GET("/health", controllers.Health(app.Heartbeat))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{})))
	router.GET("/qrcode", controllers.GetQRCode(nil))
	router.GET("/ws", app.Hub.Serve(websocket.TopicPublic))

	router.POST("/auth/session", auth.CreateSession)
	router.POST("/auth/logout", auth.Logout)

	api := router.Group("/api")
	{
		api.GET("/status", registration.Status)
		api.GET("/slots", registration.Slots)
		api.GET("/options", registration.Options)
		api.GET("/slots/:slot/taken", registration.Taken)
		api.GET("/slots/:slot/teams", registration.Teams)
		api.POST("/verify-admin-password", auth.VerifyAdminPassword)

		signedIn := api.Group("", middleware.AuthRequired(app.Verifier))
		signedIn.GET("/me", registration.Me)
		signedIn.POST("/registrations", app.RateLimiter.Middleware(), registration.Submit)
	}

	adminGroup := router.Group("/admin", middleware.AuthRequired(app.Verifier), middleware.AdminRequired())
	{
		adminGroup.GET("/status", admin.Status)
		adminGroup.POST("/registration/open", admin.Open)
		adminGroup.POST("/registration/close", admin.Close)
		adminGroup.POST("/day/reset", admin.ResetDay)
		adminGroup.PUT("/schedule", admin.Schedule)
		adminGroup.PUT("/slots/:slot/limit", admin.SetSlotLimit)
		adminGroup.PUT("/slots/:slot/active", admin.SetSlotActive)
		adminGroup.GET("/registrations", admin.Registrations)
		adminGroup.GET("/slots/:slot/contacts", admin.Contacts)
		adminGroup.GET("/slots/:slot/export.csv", admin.ExportCSV)
		adminGroup.POST("/export/sheets", admin.ExportSheets)
		adminGroup.GET("/ws", app.Hub.Serve(websocket.TopicAdmin))
	}

	return router
}
