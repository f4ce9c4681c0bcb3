package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"greek-irini/config"
	httpapi "greek-irini/internal/api/http"
	"greek-irini/internal/domain"
	"greek-irini/internal/logger"
	"greek-irini/internal/notify"
	"greek-irini/internal/service"
	"greek-irini/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the yaml config")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("invalid config")
	}
	if err := logger.Setup(logger.Options{
		Level:  conf.Logging.Level,
		Format: conf.Logging.Format,
		Path:   conf.Logging.Path,
	}); err != nil {
		log.WithError(err).Fatal("logging setup")
	}
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := config.MustInitRedis(conf)
	defer rdb.Close()
	store := storage.NewRedisStore(rdb, conf.SessionTTL())
	state := service.NewState(store)

	var repos service.Repositories
	if conf.HasDatabase() {
		db, err := config.ConnectDB(ctx, conf)
		if err != nil {
			log.WithError(err).Warn("record store unavailable, serving from snapshots")
		} else {
			defer db.Close()
			pg := storage.NewPostgresRepository(db)
			if err := pg.EnsureSchema(ctx); err != nil {
				log.WithError(err).Fatal("schema setup")
			}
			repos = service.Repositories{
				Menu:         pg,
				Orders:       pg,
				Drivers:      pg,
				Reservations: pg,
				Settings:     pg,
				Content:      pg,
			}
		}
	}
	report := state.Refresh(ctx, repos)
	log.WithFields(log.Fields{"sources": report.Sources, "local_orders": report.LocalOrders}).Info("state loaded")

	var publisher service.ChangePublisher
	if len(conf.Kafka.Brokers) > 0 {
		writer := config.NewKafkaWriter(conf)
		defer writer.Close()
		publisher = storage.NewKafkaPublisher(writer)

		reader := config.NewKafkaReader(conf, conf.Kafka.GroupPrefix+"-"+state.Source())
		defer reader.Close()
		feed := storage.NewChangeFeed(reader)
		handle := feed.Subscribe(state.ApplyEvent)
		defer feed.Unsubscribe(handle)
		go func() {
			if err := feed.Run(ctx); err != nil {
				log.WithError(err).Error("change feed stopped")
			}
		}()
	}

	restaurant := func() domain.GeneralSettings { return state.Settings().GeneralSettings }
	var mailer service.Mailer = notify.NewLogMailer(restaurant)
	if conf.RabbitMQ.URL != "" {
		if conn, err := config.DialRabbitMQ(conf); err != nil {
			log.WithError(err).Warn("email broker unavailable, logging emails instead")
		} else {
			defer conn.Close()
			pub, err := notify.NewAMQPPublisher(conn, conf.RabbitMQ.Exchange)
			if err != nil {
				log.WithError(err).Warn("email channel setup failed, logging emails instead")
			} else {
				defer pub.Close()
				mailer = notify.NewAMQPMailer(pub, conf.RabbitMQ.Exchange, restaurant)
			}
		}
	}

	orders := service.NewOrderService(state, service.OrderServiceDeps{
		Orders:            repos.Orders,
		Drivers:           repos.Drivers,
		Carts:             store,
		Sessions:          store,
		Mailer:            mailer,
		QR:                service.DefaultQRGenerator{BaseURL: conf.Server.BaseURL},
		Publisher:         publisher,
		StrictTransitions: conf.Checkout.StrictTransitions,
	})
	payments := service.NewRandomPaymentSimulator(conf.Checkout.PaymentSuccessRate, conf.PaymentDelay())
	printer := service.NewReceiptPrinter(orders, conf.PrintDelay())
	go prunePrintJobs(ctx, printer)

	handler := httpapi.NewHandler(httpapi.Services{
		Menu:         service.NewMenuService(state, repos.Menu, publisher),
		Cart:         service.NewCartService(store, store, state),
		Checkout:     service.NewCheckoutService(state, store, store, orders, payments),
		Orders:       orders,
		Settings:     service.NewSettingsService(state, repos.Settings, publisher),
		Content:      service.NewContentService(state, repos.Content, publisher),
		Reservations: service.NewReservationService(state, repos.Reservations, mailer, publisher),
		Drivers:      service.NewDriverService(state, repos.Drivers, publisher),
		Analytics:    service.NewAnalyticsService(state, decimal.NewFromFloat(conf.Analytics.TaxRate)),
		Printer:      printer,
		Sessions:     store,
		Refresh: func(ctx context.Context) service.RefreshReport {
			return state.Refresh(ctx, repos)
		},
	})
	if conf.Auth.JWTSecret == "" {
		log.Warn("auth.jwtSecret is empty, admin routes are open")
	}

	srv := &http.Server{
		Addr:              ":" + conf.Server.Port,
		Handler:           httpapi.NewRouter(handler, []byte(conf.Auth.JWTSecret)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("addr", srv.Addr).Info("Greek Irini backend starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(conf.Server.ShutdownTimeoutSec)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http shutdown")
	}
}

func prunePrintJobs(ctx context.Context, printer *service.ReceiptPrinter) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := printer.Prune(time.Hour); n > 0 {
				log.WithField("jobs", n).Debug("pruned print jobs")
			}
		}
	}
}
