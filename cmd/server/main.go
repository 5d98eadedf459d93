package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/droneshop/internal/cache"
	"github.com/Skotchmaster/droneshop/internal/config"
	"github.com/Skotchmaster/droneshop/internal/events"
	"github.com/Skotchmaster/droneshop/internal/httpserver"
	"github.com/Skotchmaster/droneshop/internal/logging"
	"github.com/Skotchmaster/droneshop/internal/mailer"
	"github.com/Skotchmaster/droneshop/internal/media"
	"github.com/Skotchmaster/droneshop/internal/metrics"
	authmw "github.com/Skotchmaster/droneshop/internal/middleware/auth"
	csrfmw "github.com/Skotchmaster/droneshop/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/droneshop/internal/middleware/logging"
	readymw "github.com/Skotchmaster/droneshop/internal/middleware/ready"
	"github.com/Skotchmaster/droneshop/internal/search"
	"github.com/Skotchmaster/droneshop/internal/service"
	"github.com/Skotchmaster/droneshop/internal/store/storeopen"
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

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	st, err := storeopen.Open(ctx, cfg, logger)
	cancel()
	if err != nil {
		log.Fatalf("store open: %v", err)
	}

	m := metrics.New(cfg.ServiceName)
	site := mailer.Site{Name: cfg.Site.Name, Description: cfg.Site.Description, FrontendURL: cfg.Site.FrontendURL}

	smtp := mailer.NewSMTPMailer(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.Sender(cfg.Site.Name),
	})
	if !smtp.Configured() {
		logger.Warn("email_not_configured", "reason", "SMTP_USER or SMTP_PASS missing; registration is disabled")
	}
	queue := mailer.NewQueue(smtp, logger, cfg.Mail.Size, cfg.Mail.Workers)
	queue.Observe(m.MailResult)
	queue.Start()

	var publisher events.Publisher = events.Noop{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewProducer(cfg.Kafka.Brokers)
		logger.Info("kafka_enabled", "brokers", cfg.Kafka.Brokers)
	}

	var index service.ProductIndex
	if cfg.ES.URL != "" {
		if idx, err := openIndex(cfg.ES); err != nil {
			logger.Warn("search_index_disabled", "error", err)
		} else {
			index = idx
		}
	}

	var images httpserver.ImageStore
	if cfg.MinIO.Endpoint != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		ms, err := media.New(ctx, media.Config{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			Bucket:    cfg.MinIO.Bucket,
			UseSSL:    cfg.MinIO.UseSSL,
			PublicURL: cfg.MinIO.PublicURL,
		})
		cancel()
		if err != nil {
			logger.Warn("object_storage_disabled", "error", err)
		} else {
			images = ms
		}
	}

	var readCache service.ReadCache
	var redisCache *cache.Redis
	if cfg.Redis.Addr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rc, err := cache.New(ctx, cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.ServiceName + ":",
		})
		cancel()
		if err != nil {
			logger.Warn("cache_disabled", "error", err)
		} else {
			readCache, redisCache = rc, rc
		}
	}

	probe := readymw.NewProbe(st, 3*time.Second)
	probeCtx, stopProbe := context.WithCancel(context.Background())
	go probe.Run(probeCtx, cfg.ReadyInterval)

	if len(cfg.JWTAccessSecret) == 0 {
		logger.Warn("admin_routes_unprotected", "reason", "JWT_SECRET is empty")
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httpserver.HTTPErrorHandler
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(m.Middleware())
	e.Use(echomw.CORSWithConfig(corsConfig(cfg.CORSOrigins)))
	if cfg.CSRF {
		csrfCfg := csrfmw.DefaultConfig()
		csrfCfg.Secure = cfg.CookieSecure
		e.Use(csrfmw.Middleware(csrfCfg))
	}
	e.Use(echomw.ContextTimeout(cfg.RequestTimeout))

	httpserver.Register(e, &httpserver.Deps{
		Account: &httpserver.AccountHTTP{Svc: &service.AccountService{
			Store:     st,
			Mailer:    smtp,
			Site:      site,
			Events:    publisher,
			JWTSecret: cfg.JWTAccessSecret,
			AccessTTL: cfg.AccessTTL,
		}},
		Catalog: &httpserver.CatalogHTTP{Svc: &service.CatalogService{
			Store:    st,
			Index:    index,
			Events:   publisher,
			Cache:    readCache,
			CacheTTL: cfg.Redis.TTL,
		}},
		Order:    &httpserver.OrderHTTP{Svc: &service.OrderService{Store: st, Mail: queue, Site: site, Events: publisher}},
		Cart:     &httpserver.CartHTTP{Svc: &service.CartService{Store: st}},
		Wishlist: &httpserver.WishlistHTTP{Svc: &service.WishlistService{Store: st}},
		User:     &httpserver.UserHTTP{Svc: &service.UserService{Store: st, Events: publisher}},
		Upload:   &httpserver.UploadHTTP{Media: images},
		Health:   &httpserver.HealthHTTP{Ready: probe},
		Auth:     authmw.New(cfg.JWTAccessSecret),
		Ready:    probe.Middleware(),
		Metrics:  m,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server_listening", "addr", srv.Addr, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting_down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	stopProbe()
	if err := queue.Close(shutdownCtx); err != nil {
		logger.Warn("mail_queue_close_error", "error", err)
	}
	if err := publisher.Close(); err != nil {
		logger.Warn("kafka_close_error", "error", err)
	}
	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			logger.Warn("cache_close_error", "error", err)
		}
	}
	if err := st.Close(shutdownCtx); err != nil {
		logger.Warn("store_close_error", "error", err)
	}

	logger.Info("shutdown_complete")
}

func openIndex(cfg config.Elastic) (*search.Index, error) {
	client, err := search.NewClient(search.Config{URL: cfg.URL, User: cfg.User, Password: cfg.Password})
	if err != nil {
		return nil, err
	}
	idx := search.NewIndex(client, cfg.Index)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := idx.EnsureIndex(ctx); err != nil {
		return nil, err
	}
	return idx, nil
}

func corsConfig(origins []string) echomw.CORSConfig {
	cfg := echomw.DefaultCORSConfig
	cfg.ExposeHeaders = []string{"X-CSRF-Token"}
	if len(origins) > 0 {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}
