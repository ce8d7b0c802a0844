package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"stride/internal/cache"
	"stride/internal/logger"
	"stride/internal/metrics"
)

type Client struct {
	endpoint    string
	accessToken string
	httpClient  *http.Client
	cache       cache.Cache
	cacheTTL    time.Duration
	logger      *logger.Logger
}

// NewClient creates a Storefront API client for storeDomain. A domain without
// a scheme is reached over https.
func NewClient(storeDomain, accessToken, apiVersion string, logger *logger.Logger) *Client {
	base := strings.TrimSuffix(strings.TrimSpace(storeDomain), "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}

	return &Client{
		endpoint:    fmt.Sprintf("%s/api/%s/graphql.json", base, apiVersion),
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache:  cache.Noop{},
		logger: logger.With("component", "storefront", "store", base),
	}
}

// WithCache enables response caching for queries. Mutations are never cached.
func (c *Client) WithCache(cc cache.Cache, ttl time.Duration) *Client {
	if cc != nil && ttl > 0 {
		c.cache = cc
		c.cacheTTL = ttl
	}
	return c
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors GraphQLErrors   `json:"errors,omitempty"`
}

// Query runs a read-only operation and decodes its data into out. Results
// are served from the cache when one is configured.
func (c *Client) Query(ctx context.Context, operation, query string, variables map[string]interface{}, out interface{}) error {
	key := cache.Key(query, variables)
	if cached, ok, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warn("Storefront cache read failed for %s: %v", operation, err)
	} else if ok {
		return decodeData(cached, out)
	}

	data, err := c.execute(ctx, operation, query, variables)
	if err != nil {
		return err
	}

	if c.cacheTTL > 0 {
		if err := c.cache.Set(ctx, key, data, c.cacheTTL); err != nil {
			c.logger.Warn("Storefront cache write failed for %s: %v", operation, err)
		}
	}
	return decodeData(data, out)
}

// QueryNoCache runs a read that must always be fresh, such as a cart or
// customer lookup.
func (c *Client) QueryNoCache(ctx context.Context, operation, query string, variables map[string]interface{}, out interface{}) error {
	data, err := c.execute(ctx, operation, query, variables)
	if err != nil {
		return err
	}
	return decodeData(data, out)
}

// Mutate runs a mutation, returning the raw data payload alongside the
// decoded value so callers can inspect userErrors.
func (c *Client) Mutate(ctx context.Context, operation, mutation string, variables map[string]interface{}, out interface{}) ([]byte, error) {
	data, err := c.execute(ctx, operation, mutation, variables)
	if err != nil {
		return nil, err
	}
	return data, decodeData(data, out)
}

func (c *Client) execute(ctx context.Context, operation, query string, variables map[string]interface{}) (data []byte, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordStorefrontCall(operation, err, time.Since(start))
	}()

	jsonData, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Shopify-Storefront-Access-Token", c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var gqlResp graphQLResponse
	if err := json.Unmarshal(body, &gqlResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(gqlResp.Errors) > 0 {
		return nil, gqlResp.Errors
	}

	c.logger.Debug("Storefront %s completed in %s", operation, time.Since(start))
	return gqlResp.Data, nil
}

func decodeData(data []byte, out interface{}) error {
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode data: %w", err)
	}
	return nil
}
