package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"walletrep/internal/application"
	"walletrep/internal/config"
	"walletrep/internal/infrastructure/cache"
	"walletrep/internal/infrastructure/etherscan"
	"walletrep/internal/infrastructure/kafka"
	"walletrep/internal/infrastructure/logging"
	"walletrep/internal/infrastructure/mysql"
	"walletrep/internal/infrastructure/sqlite"
	"walletrep/internal/infrastructure/telemetry"
	"walletrep/internal/infrastructure/thegraph"
	"walletrep/internal/interfaces/httpapi"
)

var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

type reportStore interface {
	application.ReportRepository
	httpapi.ReportStore
	Close() error
}

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	rotating, err := logging.Init(logging.Config{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		log.Fatalf("logging error: %v", err)
	}
	if rotating != nil {
		defer rotating.Close()
	}

	shutdownTracing, err := telemetry.InitTracer(context.Background(), "walletrep-scored", cfg.OtelEndpoint)
	if err != nil {
		log.Printf("tracing init error: %v", err)
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(ctx); err != nil {
				log.Printf("tracing shutdown error: %v", err)
			}
		}()
	}

	var store reportStore
	if cfg.MySQLDSN != "" {
		store, err = mysql.NewRepository(cfg.MySQLDSN)
	} else {
		store, err = sqlite.NewRepository(cfg.SQLitePath)
	}
	if err != nil {
		log.Fatalf("report store error: %v", err)
	}
	defer store.Close()

	historyClient, err := etherscan.NewClient(etherscan.Config{
		BaseURL:   cfg.EtherscanAPIURL,
		APIKey:    cfg.EtherscanAPIKey,
		PageDelay: cfg.PageDelay,
	})
	if err != nil {
		log.Fatalf("etherscan client error: %v", err)
	}

	graphClient, err := thegraph.NewClient(thegraph.Config{
		GatewayURL:  cfg.GraphGatewayURL,
		APIKey:      cfg.GraphAPIKey,
		SnapshotURL: cfg.SnapshotURL,
	})
	if err != nil {
		log.Fatalf("graph client error: %v", err)
	}

	metrics := httpapi.NewMetrics()

	var payloadCache etherscan.PayloadCache
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedis(cache.Config{Addr: cfg.RedisAddr, TTL: cfg.CacheTTL})
		if err != nil {
			log.Printf("history cache disabled: %v", err)
		} else {
			defer redisCache.Close()
			payloadCache = redisCache
		}
	}
	history := etherscan.NewCachedClient(historyClient, payloadCache, metrics)

	var writer application.StreamWriter
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(kafka.ProducerConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
		})
		if err != nil {
			log.Fatalf("kafka producer error: %v", err)
		}
		defer producer.Close()
		writer = producer
	} else {
		log.Printf("score event publishing disabled: no kafka brokers configured")
	}

	analyzer, err := application.NewAnalyzer(history, graphClient, store, writer, metrics, application.AnalyzerConfig{})
	if err != nil {
		log.Fatalf("analyzer error: %v", err)
	}

	httpServer, err := httpapi.NewServer(analyzer, store, metrics, httpapi.BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
	})
	if err != nil {
		log.Fatalf("http server error: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Printf("http server listening on %s", cfg.HTTPAddr)
	if err := httpServer.ListenAndServe(ctx, cfg.HTTPAddr); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("http server error: %v", err)
	}
}
