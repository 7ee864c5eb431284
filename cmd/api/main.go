package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	authhttp "github.com/Skotchmaster/shop_orders/internal/auth/httpserver"
	authservice "github.com/Skotchmaster/shop_orders/internal/auth/service"
	cataloghttp "github.com/Skotchmaster/shop_orders/internal/catalog/httpserver"
	catalogrepo "github.com/Skotchmaster/shop_orders/internal/catalog/repo"
	"github.com/Skotchmaster/shop_orders/internal/catalog/search"
	catalogservice "github.com/Skotchmaster/shop_orders/internal/catalog/service"
	"github.com/Skotchmaster/shop_orders/internal/metrics"
	"github.com/Skotchmaster/shop_orders/internal/notify"
	orderhttp "github.com/Skotchmaster/shop_orders/internal/order/httpserver"
	orderrepo "github.com/Skotchmaster/shop_orders/internal/order/repo"
	orderservice "github.com/Skotchmaster/shop_orders/internal/order/service"
	httpserver "github.com/Skotchmaster/shop_orders/internal/transport/http"
	userhttp "github.com/Skotchmaster/shop_orders/internal/user/httpserver"
	userrepo "github.com/Skotchmaster/shop_orders/internal/user/repo"
	userservice "github.com/Skotchmaster/shop_orders/internal/user/service"
	"github.com/Skotchmaster/shop_orders/pkg/apperr"
	"github.com/Skotchmaster/shop_orders/pkg/config"
	pkgdb "github.com/Skotchmaster/shop_orders/pkg/db"
	"github.com/Skotchmaster/shop_orders/pkg/events"
	"github.com/Skotchmaster/shop_orders/pkg/logging"
	middleware "github.com/Skotchmaster/shop_orders/pkg/middleware/auth"
	loggingmw "github.com/Skotchmaster/shop_orders/pkg/middleware/logging"
	"github.com/Skotchmaster/shop_orders/pkg/middleware/ratelimit"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := pkgdb.Migrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	var publisher events.Publisher = events.Noop{}
	producer := events.NewProducer(cfg.KafkaBrokers)
	if producer.Enabled() {
		publisher = producer
	} else {
		logger.Warn("kafka disabled, events are dropped")
	}

	catalogSvc := &catalogservice.CatalogService{Repo: &catalogrepo.GormRepo{DB: db}}
	if cfg.ESURL != "" {
		esCtx, esCancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := search.NewClient(esCtx, cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		esCancel()
		if err != nil {
			logger.Error("elasticsearch unavailable, falling back to database search", "error", err)
		} else {
			catalogSvc.Index = &search.Index{ES: client, Index: cfg.ESIndex}
		}
	}

	contact := &notify.ContactHTTP{To: cfg.MailTo}
	if cfg.MailEnabled() {
		contact.Mailer = notify.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	}

	m := metrics.NewServerMetrics(strings.ReplaceAll(cfg.ServiceName, "-", "_"))
	orderSvc := orderservice.NewOrderService(&orderrepo.GormRepo{DB: db}, &orderrepo.GormTxRunner{DB: db})
	orderSvc.Observer = m

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = apperr.HTTPErrorHandler
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(m.Middleware())
	e.Use(ratelimit.PerHour(cfg.RateLimitPerHour, func(c echo.Context) bool {
		return strings.HasPrefix(c.Path(), "/health") || c.Path() == "/metrics"
	}))

	httpserver.Register(e, &httpserver.Deps{
		DB:      db,
		Auth:    middleware.NewBearerMiddleware(cfg.JWTSecret),
		Metrics: m,
		AuthHandler: &authhttp.AuthHTTP{Svc: &authservice.AuthService{
			Users:     &userrepo.GormRepo{DB: db},
			JWTSecret: cfg.JWTSecret,
			TokenTTL:  cfg.JWTTTL,
		}},
		UserHandler:    &userhttp.UserHTTP{Svc: &userservice.UserService{Repo: &userrepo.GormRepo{DB: db}}, Events: publisher},
		CatalogHandler: &cataloghttp.CatalogHTTP{Svc: catalogSvc, Events: publisher},
		OrderHandler:   &orderhttp.OrderHTTP{Svc: orderSvc, Events: publisher},
		ContactHandler: contact,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if err := producer.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}
	if err := pkgdb.Close(db); err != nil {
		logger.Error("db close error", "error", err)
	}

	logger.Info("shutdown complete")
}
