package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"walletrep/internal/application"
	"walletrep/internal/config"
	"walletrep/internal/domain"
	"walletrep/internal/infrastructure/cache"
	"walletrep/internal/infrastructure/etherscan"
	"walletrep/internal/infrastructure/logging"
	"walletrep/internal/infrastructure/thegraph"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <wallet-address>\n", os.Args[0])
		os.Exit(2)
	}
	address := os.Args[1]
	if !domain.ValidAddress(address) {
		fmt.Fprintln(os.Stderr, "invalid Ethereum address format (expected 0x + 40 hex chars)")
		os.Exit(2)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if _, err := logging.Init(logging.Config{Level: cfg.LogLevel}); err != nil {
		log.Fatalf("logging error: %v", err)
	}

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

	var payloadCache etherscan.PayloadCache
	if cfg.RedisAddr != "" {
		if redisCache, err := cache.NewRedis(cache.Config{Addr: cfg.RedisAddr, TTL: cfg.CacheTTL}); err == nil {
			defer redisCache.Close()
			payloadCache = redisCache
		}
	}
	history := etherscan.NewCachedClient(historyClient, payloadCache, nil)

	analyzer, err := application.NewAnalyzer(history, graphClient, nil, nil, nil, application.AnalyzerConfig{})
	if err != nil {
		log.Fatalf("analyzer error: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	report, err := analyzer.Score(ctx, address)
	if err != nil {
		log.Fatalf("scoring error: %v", err)
	}

	fmt.Printf("\nReputation report for %s\n", report.Address)
	fmt.Println("-----------------------------------")
	for _, entry := range report.Breakdown {
		fmt.Println(entry)
	}
	fmt.Println("-----------------------------------")
	fmt.Printf("Final score: %d/100\n", report.Score)
}
