package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	EtherscanAPIURL string
	EtherscanAPIKey string
	GraphAPIKey     string
	GraphGatewayURL string
	SnapshotURL     string
	HTTPAddr        string
	SQLitePath      string
	MySQLDSN        string
	RedisAddr       string
	CacheTTL        time.Duration
	PageDelay       time.Duration
	OtelEndpoint    string
	KafkaBrokers    []string
	KafkaTopic      string
	KafkaGroupID    string
	LogLevel        string
	LogFile         string
}

type EnvSource interface {
	Lookup(key string) (string, bool)
}

type EnvMap map[string]string

func (e EnvMap) Lookup(key string) (string, bool) {
	value, ok := e[key]
	return value, ok
}

func FromEnviron() EnvSource {
	env := make(EnvMap)
	for _, entry := range os.Environ() {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		env[parts[0]] = parts[1]
	}
	return env
}

// Load reads and validates configuration from an env source. Provider API
// keys are demanded here, once, so a misconfigured process fails at startup
// instead of mid-fetch.
func Load(source EnvSource) (Config, error) {
	if source == nil {
		return Config{}, errors.New("env source is required")
	}

	etherscanKey, ok := source.Lookup("ETHERSCAN_API_KEY")
	if !ok || strings.TrimSpace(etherscanKey) == "" {
		return Config{}, errors.New("ETHERSCAN_API_KEY is required")
	}
	graphKey, ok := source.Lookup("THEGRAPH_API_KEY")
	if !ok || strings.TrimSpace(graphKey) == "" {
		return Config{}, errors.New("THEGRAPH_API_KEY is required")
	}

	etherscanURL := "https://api.etherscan.io/api"
	if raw, ok := source.Lookup("ETHERSCAN_API_URL"); ok && strings.TrimSpace(raw) != "" {
		etherscanURL = strings.TrimSpace(raw)
	}
	gatewayURL, _ := source.Lookup("GRAPH_GATEWAY_URL")
	snapshotURL, _ := source.Lookup("SNAPSHOT_URL")

	httpAddr := ":8080"
	if raw, ok := source.Lookup("HTTP_ADDR"); ok && raw != "" {
		httpAddr = raw
	}

	sqlitePath := "walletrep.db"
	if raw, ok := source.Lookup("SQLITE_PATH"); ok && strings.TrimSpace(raw) != "" {
		sqlitePath = strings.TrimSpace(raw)
	}
	mysqlDSN, _ := source.Lookup("MYSQL_DSN")

	redisAddr, _ := source.Lookup("REDIS_ADDR")
	redisAddr = strings.TrimSpace(redisAddr)

	cacheTTL, err := parseDurationEnv(source, "CACHE_TTL", 4*time.Hour)
	if err != nil {
		return Config{}, err
	}
	pageDelay, err := parseDurationEnv(source, "PAGE_DELAY", 200*time.Millisecond)
	if err != nil {
		return Config{}, err
	}

	otelEndpoint, _ := source.Lookup("OTEL_EXPORTER_OTLP_ENDPOINT")
	otelEndpoint = strings.TrimSpace(otelEndpoint)

	kafkaBrokers := parseList(source, "KAFKA_BROKERS")
	kafkaTopic, ok := source.Lookup("KAFKA_TOPIC")
	if !ok || kafkaTopic == "" {
		kafkaTopic = "walletrep-scores"
	}
	kafkaGroupID, ok := source.Lookup("KAFKA_GROUP_ID")
	if !ok || kafkaGroupID == "" {
		kafkaGroupID = "walletrep-auditor"
	}

	logLevel, _ := source.Lookup("LOG_LEVEL")
	logFile, _ := source.Lookup("LOG_FILE")

	return Config{
		EtherscanAPIURL: etherscanURL,
		EtherscanAPIKey: strings.TrimSpace(etherscanKey),
		GraphAPIKey:     strings.TrimSpace(graphKey),
		GraphGatewayURL: strings.TrimSpace(gatewayURL),
		SnapshotURL:     strings.TrimSpace(snapshotURL),
		HTTPAddr:        httpAddr,
		SQLitePath:      sqlitePath,
		MySQLDSN:        strings.TrimSpace(mysqlDSN),
		RedisAddr:       redisAddr,
		CacheTTL:        cacheTTL,
		PageDelay:       pageDelay,
		OtelEndpoint:    otelEndpoint,
		KafkaBrokers:    kafkaBrokers,
		KafkaTopic:      kafkaTopic,
		KafkaGroupID:    kafkaGroupID,
		LogLevel:        logLevel,
		LogFile:         logFile,
	}, nil
}

func parseDurationEnv(source EnvSource, key string, defaultValue time.Duration) (time.Duration, error) {
	raw, ok := source.Lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return defaultValue, nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return value, nil
}

func parseList(source EnvSource, key string) []string {
	raw, ok := source.Lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	var values []string
	for _, item := range items {
		value := strings.TrimSpace(item)
		if value == "" {
			continue
		}
		values = append(values, value)
	}
	return values
}
