package thegraph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"walletrep/internal/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultGatewayURL  = "https://gateway-arbitrum.network.thegraph.com"
	defaultSnapshotURL = "https://hub.snapshot.org/graphql"

	// Mainnet subgraph deployments served through the gateway.
	aaveV2Subgraph    = "5tUNTMY2323yV22u9mKGAo5p75bNgkFqw4BwAMb2fB8Y"
	uniswapV3Subgraph = "7SP2t3PQd7LX19riCfwX5znhFdULjwRofQZtRZMJ8iW8"
)

const liquidationsQuery = `query ($user_address: String!) {
  liquidationCallHistoryEntities(where: {user: $user_address}) { id }
}`

const swapsQuery = `query ($user_address: String!) {
  swaps(where: {origin: $user_address}, first: 1000) { id timestamp }
}`

const votesQuery = `query ($user_address: String!) {
  votes(where: {voter: $user_address}, first: 500) { id }
}`

type Config struct {
	GatewayURL  string
	APIKey      string
	SnapshotURL string
}

// Client counts indexed events for a wallet across three subgraphs: Uniswap
// swaps, Aave liquidations, and Snapshot governance votes.
type Client struct {
	aaveURL     string
	uniswapURL  string
	snapshotURL string
	httpClient  *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("graph api key is required")
	}
	if cfg.GatewayURL == "" {
		cfg.GatewayURL = defaultGatewayURL
	}
	if cfg.SnapshotURL == "" {
		cfg.SnapshotURL = defaultSnapshotURL
	}
	gateway := func(subgraph string) string {
		return fmt.Sprintf("%s/api/%s/subgraphs/id/%s", cfg.GatewayURL, cfg.APIKey, subgraph)
	}
	return &Client{
		aaveURL:     gateway(aaveV2Subgraph),
		uniswapURL:  gateway(uniswapV3Subgraph),
		snapshotURL: cfg.SnapshotURL,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (c *Client) SwapCount(ctx context.Context, address string) (int, error) {
	var result struct {
		Swaps []struct {
			ID string `json:"id"`
		} `json:"swaps"`
	}
	if err := c.query(ctx, "swaps", c.uniswapURL, swapsQuery, address, &result); err != nil {
		return 0, err
	}
	return len(result.Swaps), nil
}

func (c *Client) LiquidationCount(ctx context.Context, address string) (int, error) {
	var result struct {
		Liquidations []struct {
			ID string `json:"id"`
		} `json:"liquidationCallHistoryEntities"`
	}
	if err := c.query(ctx, "liquidations", c.aaveURL, liquidationsQuery, address, &result); err != nil {
		return 0, err
	}
	return len(result.Liquidations), nil
}

func (c *Client) VoteCount(ctx context.Context, address string) (int, error) {
	var result struct {
		Votes []struct {
			ID string `json:"id"`
		} `json:"votes"`
	}
	if err := c.query(ctx, "votes", c.snapshotURL, votesQuery, address, &result); err != nil {
		return 0, err
	}
	return len(result.Votes), nil
}

type graphRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *Client) query(ctx context.Context, name, endpoint, query, address string, result any) error {
	tracer := otel.Tracer("walletrep/thegraph")
	ctx, span := tracer.Start(ctx, "thegraph.query")
	span.SetAttributes(
		attribute.String("graph.query", name),
		attribute.String("wallet.address", address),
	)
	defer span.End()

	payload, err := json.Marshal(graphRequest{
		Query:     query,
		Variables: map[string]any{"user_address": domain.NormalizeAddress(address)},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("graph status %d", resp.StatusCode)
	}

	var decoded graphResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return err
	}
	if len(decoded.Errors) > 0 {
		return fmt.Errorf("graph error: %s", decoded.Errors[0].Message)
	}
	if len(decoded.Data) == 0 {
		return errors.New("graph response has no data")
	}
	return json.Unmarshal(decoded.Data, result)
}
