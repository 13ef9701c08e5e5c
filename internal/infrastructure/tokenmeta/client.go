package tokenmeta

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"treasury_dashboard/internal/app/port"
	"treasury_dashboard/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client talks to the token metadata/price backend.
type Client struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	limiter *rate.Limiter
	logger  *zap.Logger
	maxIDs  int
}

// NewClient creates a new token metadata client. maxIDs caps how many asset
// ids a single request may carry; callers batch above it.
func NewClient(baseURL string, timeout time.Duration, requestsPerSecond float64, maxIDs int, logger *zap.Logger) *Client {
	return &Client{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		logger:  logger.Named("TokenMetaClient"),
		maxIDs:  maxIDs,
	}
}

var _ port.TokenMetaClient = (*Client)(nil)

// SupportedTokenCatalog returns the full catalog of tokens the intents
// settlement system supports.
func (c *Client) SupportedTokenCatalog(ctx context.Context) ([]entity.CatalogToken, error) {
	var catalog []entity.CatalogToken
	if err := c.getJSON(ctx, c.baseURL+"/tokens/supported", &catalog); err != nil {
		return nil, err
	}
	return catalog, nil
}

// MetadataByDefuseAssetID returns price/display metadata for the given asset
// ids. Unknown ids are simply absent from the response.
func (c *Client) MetadataByDefuseAssetID(ctx context.Context, ids []string) ([]entity.TokenMetadata, error) {
	if len(ids) == 0 {
		return []entity.TokenMetadata{}, nil
	}
	if len(ids) > c.maxIDs {
		c.logger.Warn("Number of asset ids exceeds the per-request limit",
			zap.Int("requestedCount", len(ids)), zap.Int("maxAllowed", c.maxIDs))
		return nil, fmt.Errorf("number of asset ids (%d) exceeds max ids per request (%d)", len(ids), c.maxIDs)
	}

	requestURL := fmt.Sprintf("%s/tokens/metadata?ids=%s", c.baseURL, url.QueryEscape(strings.Join(ids, ",")))
	var metadata []entity.TokenMetadata
	if err := c.getJSON(ctx, requestURL, &metadata); err != nil {
		return nil, err
	}
	return metadata, nil
}

// BlockchainInfo returns display info for the named source chains.
func (c *Client) BlockchainInfo(ctx context.Context, names []string) ([]entity.NetworkInfo, error) {
	if len(names) == 0 {
		return []entity.NetworkInfo{}, nil
	}
	requestURL := fmt.Sprintf("%s/blockchains?names=%s", c.baseURL, url.QueryEscape(strings.Join(names, ",")))
	var infos []entity.NetworkInfo
	if err := c.getJSON(ctx, requestURL, &infos); err != nil {
		return nil, err
	}
	return infos, nil
}

func (c *Client) getJSON(ctx context.Context, requestURL string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	c.logger.Debug("Requesting token metadata backend", zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetContentTypeBytes([]byte("application/json"))

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		c.logger.Error("Failed to execute metadata request", zap.String("url", requestURL), zap.Error(err))
		return fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Error("Metadata backend request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", resp.Body()))
		return fmt.Errorf("metadata request to %s failed with status %d: %s", requestURL, resp.StatusCode(), string(resp.Body()))
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to unmarshal metadata response from %s: %w", requestURL, err)
	}
	return nil
}
