package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/bookstock/inventory-service/config"
	"github.com/bookstock/inventory-service/pkg/broker"
	"github.com/bookstock/inventory-service/pkg/cache"
	"github.com/bookstock/inventory-service/pkg/logger"
	"github.com/bookstock/inventory-service/pkg/postgres"
	"github.com/bookstock/inventory-service/pkg/search"

	invListener "github.com/bookstock/inventory-service/internal/inventory/listener"
	invUC "github.com/bookstock/inventory-service/internal/inventory/usecase"
	ledgerRepoPkg "github.com/bookstock/inventory-service/internal/ledger/repository"
	notifyRepoPkg "github.com/bookstock/inventory-service/internal/notify/repository"
	notifySender "github.com/bookstock/inventory-service/internal/notify/sender"
	notifyUC "github.com/bookstock/inventory-service/internal/notify/usecase"
	resRepoPkg "github.com/bookstock/inventory-service/internal/reservation/repository"
	resUC "github.com/bookstock/inventory-service/internal/reservation/usecase"
	"github.com/bookstock/inventory-service/internal/worker"
)

func main() {
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	logConfig := &logger.Config{
		IsDevelopment:     cfg.Server.AppEnv == "dev",
		Level:             cfg.Logger.Level,
		Encoding:          cfg.Logger.Encoding,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	db, err := postgres.New(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("connected to postgres", zap.String("db_name", cfg.Postgres.DBName))

	txm := postgres.NewTxManager(db)

	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Warn("could not connect to redis, summary cache disabled", zap.Error(err))
		redisClient = nil
	} else {
		defer redisClient.Close()
		appLogger.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))
	}

	esClient, err := search.NewClient(&search.Config{
		Addresses: cfg.Elastic.Addresses,
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		appLogger.Warn("could not connect to elasticsearch, search falls back to SQL", zap.Error(err))
		esClient = nil
	} else {
		appLogger.Info("connected to elasticsearch")
	}

	notifyProducer := broker.NewProducer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.NotifyTopic,
	})
	defer notifyProducer.Close()

	receiptsConsumer := broker.NewConsumer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.ReceiptsTopic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer receiptsConsumer.Close()

	ledgerRepo := ledgerRepoPkg.NewPGRepository()
	resRepo := resRepoPkg.NewPGRepository()
	notifyRepo := notifyRepoPkg.NewPGRepository()

	sender := notifySender.NewKafkaSender(notifyProducer)
	notifier := notifyUC.NewNotifyUseCase(db, notifyRepo, sender, appLogger, cfg.Reservation.OutboxMaxAttempts)

	reservations := resUC.NewReservationUseCase(
		db, txm, resRepo, ledgerRepo, notifier, redisClient, esClient, appLogger, cfg.Reservation,
	)

	inventoryUseCase := invUC.NewInventoryUseCase(
		db, txm, ledgerRepo, resRepo, reservations, redisClient, appLogger,
		time.Duration(cfg.Reservation.SummaryCacheTTLSec)*time.Second,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := resUC.EnsureSearchIndex(ctx, esClient); err != nil {
		appLogger.Warn("could not ensure search index", zap.Error(err))
	}

	receiptListener := invListener.NewReceiptListener(receiptsConsumer, inventoryUseCase, appLogger)
	go receiptListener.Start(ctx)

	expiryWorker := worker.NewExpiryWorker(
		reservations, notifier, appLogger,
		time.Duration(cfg.Reservation.ExpirySweepSeconds)*time.Second,
		cfg.Reservation.OutboxDrainLimit,
	)
	go expiryWorker.Start(ctx)

	appLogger.Info("inventory service started", zap.String("env", cfg.Server.AppEnv))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	appLogger.Info("shutting down", zap.String("signal", sig.String()))
	cancel()

	// Give the listener and worker a moment to observe cancellation.
	time.Sleep(500 * time.Millisecond)
}
