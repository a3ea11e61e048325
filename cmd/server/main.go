package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/storefront/internal/admin"
	"github.com/Skotchmaster/storefront/internal/auth"
	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/catalog"
	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/contact"
	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/logging"
	appmw "github.com/Skotchmaster/storefront/internal/middleware"
	"github.com/Skotchmaster/storefront/internal/order"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/storage"
	"github.com/Skotchmaster/storefront/internal/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	cfg.MustValidate()

	logger := logging.New(cfg.LogLevel).With("service", "storefront")
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gormDB, err := db.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers)
	} else {
		logger.Warn("KAFKA_BROKERS not set, event publishing disabled")
	}

	var index search.ProductIndex
	if cfg.ESURL != "" {
		esIndex, err := search.NewESIndex(search.Config{
			URL:      cfg.ESURL,
			User:     cfg.ESUser,
			Password: cfg.ESPassword,
			Index:    cfg.ESIndex,
		})
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		index = esIndex
	} else {
		logger.Warn("ES_URL not set, product search disabled")
	}

	storeCtx, storeCancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := storage.NewS3Store(storeCtx, cfg.S3Bucket)
	storeCancel()
	if err != nil {
		log.Fatalf("s3: %v", err)
	}

	authRepo := &auth.GormRepo{DB: gormDB}
	catalogRepo := &catalog.GormRepo{DB: gormDB}
	cartRepo := &cart.GormRepo{DB: gormDB}
	orderRepo := &order.GormRepo{DB: gormDB}
	userRepo := &user.GormRepo{DB: gormDB}
	contactRepo := &contact.GormRepo{DB: gormDB}

	authSvc := &auth.Service{Repo: authRepo, JWTSecret: cfg.JWTSecret}
	catalogSvc := &catalog.Service{Repo: catalogRepo, Store: store, Index: index}
	cartSvc := &cart.Service{Repo: cartRepo, Products: catalogRepo}
	orderSvc := &order.Service{Repo: orderRepo}
	userSvc := &user.Service{Repo: userRepo, Store: store}
	contactSvc := &contact.Service{Repo: contactRepo}

	stripe := payment.NewStripeClient(payment.StripeConfig{
		BaseURL:       cfg.StripeBaseURL,
		SecretKey:     cfg.StripeSecretKey,
		PublicBaseURL: cfg.PublicBaseURL,
	})
	paypal := payment.NewPayPalClient(payment.PayPalConfig{
		BaseURL:       cfg.PayPalBaseURL,
		ClientID:      cfg.PayPalClientID,
		Secret:        cfg.PayPalSecret,
		PublicBaseURL: cfg.PublicBaseURL,
	})

	var pub events.Publisher
	if producer != nil {
		pub = producer
	}

	e := echo.New()
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(appmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		JWTSecret: cfg.JWTSecret,
		Auth:      &auth.HTTP{Svc: authSvc, Producer: pub},
		Catalog:   &catalog.HTTP{Svc: catalogSvc, Producer: pub},
		Cart:      &cart.HTTP{Svc: cartSvc, Producer: pub},
		Orders:    &order.HTTP{Svc: orderSvc, Producer: pub},
		Payments:  &payment.HTTP{Stripe: stripe, PayPal: paypal, Orders: orderSvc, Producer: pub},
		Users:     &user.HTTP{Svc: userSvc, Producer: pub},
		Contact:   &contact.HTTP{Svc: contactSvc},
		Admin: &admin.HTTP{
			Users:    userRepo,
			Products: catalogRepo,
			Orders:   orderRepo,
			Messages: contactRepo,
		},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)

	if producer != nil {
		_ = producer.Close()
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("stopped")
}
