package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	redisclient "github.com/redis/go-redis/v9"
	mongoadapter "github.com/robertarktes/booth-auction-manager/internal/adapters/mongo"
	"github.com/robertarktes/booth-auction-manager/internal/adapters/rabbit"
	redisadapter "github.com/robertarktes/booth-auction-manager/internal/adapters/redis"
	"github.com/robertarktes/booth-auction-manager/internal/config"
	"github.com/robertarktes/booth-auction-manager/internal/engine"
	httphandler "github.com/robertarktes/booth-auction-manager/internal/http"
	"github.com/robertarktes/booth-auction-manager/internal/idempotency"
	"github.com/robertarktes/booth-auction-manager/internal/observability"
	"github.com/robertarktes/booth-auction-manager/internal/rateLimit"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdownOtel, err := observability.SetupOTel(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdownOtel()

	logger := observability.NewLogger()
	observability.InitMetrics()

	engineOpts := []engine.Option{}

	var rl *rateLimit.RateLimiter
	var idemp *idempotency.Idempotency
	if cfg.RedisAddr != "" {
		redisClient := redisclient.NewClient(&redisclient.Options{Addr: cfg.RedisAddr})
		rl = rateLimit.NewRateLimiter(redisadapter.NewCache(redisClient))
		idemp = idempotency.NewIdempotency(redisadapter.NewIdempotency(redisClient), time.Hour)
	}

	if cfg.RabbitURL != "" {
		rabbitConn, err := amqp.Dial(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect to rabbitmq: %v", err)
		}
		defer rabbitConn.Close()
		rabbitPub, err := rabbit.NewPublisher(rabbitConn)
		if err != nil {
			log.Fatalf("failed to create publisher: %v", err)
		}
		engineOpts = append(engineOpts, engine.WithPublisher(rabbitPub))
	}

	if cfg.MongoURI != "" {
		mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatalf("failed to connect to mongo: %v", err)
		}
		defer mongoClient.Disconnect(context.Background())
		mirror := mongoadapter.NewAuditMirror(mongoClient.Database("bam"), logger)
		engineOpts = append(engineOpts, engine.WithAuditMirror(mirror))
	}

	eng := engine.New(engine.Config{
		CircuitUnitCost:   cfg.CircuitUnitCost,
		ExtensionWindow:   cfg.ExtensionWindow,
		ExtensionDuration: cfg.ExtensionDuration,
		PaymentDelay:      cfg.PaymentDelay,
		RivalBidder: engine.RivalConfig{
			Enabled: cfg.RivalBidderEnabled,
			Name:    cfg.RivalBidderName,
			Delay:   cfg.RivalBidderDelay,
		},
	}, logger, engineOpts...)
	eng.Seed(context.Background())

	handlers := httphandler.NewHandlers(eng, idemp)
	r := httphandler.SetupRouter(handlers, logger, rl)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		logger.WithField("addr", cfg.HTTPAddr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
		case <-ctx.Done():
		}
		logger.Info("Shutdown Server ...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("server error: %v", err)
	}
	logger.Info("Server exiting")
}
