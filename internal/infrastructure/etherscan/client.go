package etherscan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"walletrep/internal/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultBaseURL   = "https://api.etherscan.io/api"
	defaultPageSize  = 1000
	defaultPageDelay = 200 * time.Millisecond
)

type Config struct {
	BaseURL   string
	APIKey    string
	PageSize  int
	PageDelay time.Duration
}

// Client fetches a wallet's full transaction and token-transfer history from
// the Etherscan account API, ascending by timestamp, following pagination
// until a short page.
type Client struct {
	baseURL    string
	apiKey     string
	pageSize   int
	pageDelay  time.Duration
	httpClient *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("etherscan api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.PageDelay <= 0 {
		cfg.PageDelay = defaultPageDelay
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		pageSize:   cfg.PageSize,
		pageDelay:  cfg.PageDelay,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (c *Client) Transactions(ctx context.Context, address string) ([]domain.Transaction, error) {
	rows, err := c.fetchAll(ctx, "txlist", address)
	if err != nil {
		return nil, err
	}
	txs := make([]domain.Transaction, 0, len(rows))
	for _, row := range rows {
		timestamp, err := strconv.ParseInt(row.TimeStamp, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp %q: %w", row.TimeStamp, err)
		}
		txs = append(txs, domain.Transaction{
			Hash:            row.Hash,
			From:            domain.NormalizeAddress(row.From),
			To:              domain.NormalizeAddress(row.To),
			Value:           row.Value,
			Timestamp:       timestamp,
			Failed:          row.IsError == "1",
			ContractAddress: domain.NormalizeAddress(row.ContractAddress),
		})
	}
	return txs, nil
}

func (c *Client) TokenTransfers(ctx context.Context, address string) ([]domain.TokenTransfer, error) {
	rows, err := c.fetchAll(ctx, "tokentx", address)
	if err != nil {
		return nil, err
	}
	transfers := make([]domain.TokenTransfer, 0, len(rows))
	for _, row := range rows {
		timestamp, err := strconv.ParseInt(row.TimeStamp, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp %q: %w", row.TimeStamp, err)
		}
		value, ok := new(big.Int).SetString(row.Value, 10)
		if !ok {
			value = new(big.Int)
		}
		transfers = append(transfers, domain.TokenTransfer{
			ContractAddress: domain.NormalizeAddress(row.ContractAddress),
			From:            domain.NormalizeAddress(row.From),
			To:              domain.NormalizeAddress(row.To),
			Value:           value,
			Timestamp:       timestamp,
		})
	}
	return transfers, nil
}

type accountRow struct {
	Hash            string `json:"hash"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	TimeStamp       string `json:"timeStamp"`
	IsError         string `json:"isError"`
	ContractAddress string `json:"contractAddress"`
}

type accountResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

func (c *Client) fetchAll(ctx context.Context, action, address string) ([]accountRow, error) {
	tracer := otel.Tracer("walletrep/etherscan")
	ctx, span := tracer.Start(ctx, "etherscan.fetch_all")
	span.SetAttributes(
		attribute.String("etherscan.action", action),
		attribute.String("wallet.address", address),
	)
	defer span.End()

	var all []accountRow
	for page := 1; ; page++ {
		rows, err := c.fetchPage(ctx, action, address, page)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		all = append(all, rows...)
		if len(rows) < c.pageSize {
			break
		}
		// Respect the upstream rate limit between pages.
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pageDelay):
		}
	}
	span.SetAttributes(attribute.Int("etherscan.rows", len(all)))
	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, action, address string, page int) ([]accountRow, error) {
	params := url.Values{}
	params.Set("module", "account")
	params.Set("action", action)
	params.Set("address", address)
	params.Set("startblock", "0")
	params.Set("endblock", "99999999")
	params.Set("page", strconv.Itoa(page))
	params.Set("offset", strconv.Itoa(c.pageSize))
	params.Set("sort", "asc")
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("etherscan status %d", resp.StatusCode)
	}

	var decoded accountResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}
	// Status "0" with "No transactions found" is an empty result, not an
	// error; the result field is a string there, so only decode rows on "1".
	if decoded.Status != "1" {
		return nil, nil
	}
	var rows []accountRow
	if err := json.Unmarshal(decoded.Result, &rows); err != nil {
		return nil, fmt.Errorf("etherscan result decode: %w", err)
	}
	return rows, nil
}
