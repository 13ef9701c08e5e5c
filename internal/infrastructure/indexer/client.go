package indexer

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"treasury_dashboard/internal/app/port"
	"treasury_dashboard/internal/domain/entity"
	"treasury_dashboard/internal/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client talks to the external proposal indexer. Outbound requests are rate
// limited so a burst of dashboard traffic cannot hammer the indexer.
type Client struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient creates a new indexer client.
func NewClient(baseURL string, timeout time.Duration, requestsPerSecond float64, logger *zap.Logger) *Client {
	return &Client{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		logger:  logger.Named("IndexerClient"),
	}
}

var _ port.IndexerClient = (*Client)(nil)

// QueryProposals returns one page of proposals matching the query.
func (c *Client) QueryProposals(ctx context.Context, q entity.ProposalQuery) (*entity.ProposalPage, error) {
	requestURL := fmt.Sprintf("%s/proposals/%s?%s", c.baseURL, url.PathEscape(q.DaoID), queryValues(q).Encode())

	body, status, err := c.get(ctx, requestURL)
	if err != nil {
		return nil, err
	}
	if status != fasthttp.StatusOK {
		return nil, fmt.Errorf("indexer request to %s failed with status %d: %s", requestURL, status, string(body))
	}

	var page entity.ProposalPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to unmarshal proposal page from %s: %w", requestURL, err)
	}
	if page.Proposals == nil {
		page.Proposals = []entity.Proposal{}
	}
	return &page, nil
}

// ProposalByID returns a single proposal, or nil when the indexer has not
// observed it yet.
func (c *Client) ProposalByID(ctx context.Context, daoID string, proposalID int64) (*entity.Proposal, error) {
	requestURL := fmt.Sprintf("%s/proposals/%s/%d", c.baseURL, url.PathEscape(daoID), proposalID)

	body, status, err := c.get(ctx, requestURL)
	if err != nil {
		return nil, err
	}
	if status == fasthttp.StatusNotFound {
		return nil, nil
	}
	if status != fasthttp.StatusOK {
		return nil, fmt.Errorf("indexer request to %s failed with status %d: %s", requestURL, status, string(body))
	}

	var proposal entity.Proposal
	if err := json.Unmarshal(body, &proposal); err != nil {
		return nil, fmt.Errorf("failed to unmarshal proposal from %s: %w", requestURL, err)
	}
	return &proposal, nil
}

// CSVExportURL builds the indexer-side CSV export URL for the query. No CSV
// is produced here; the dashboard redirects the browser to this URL.
func (c *Client) CSVExportURL(q entity.ProposalQuery) string {
	values := queryValues(q)
	values.Del("page")
	values.Del("pageSize")
	return fmt.Sprintf("%s/csv/proposals/%s?%s", c.baseURL, url.PathEscape(q.DaoID), values.Encode())
}

func (c *Client) get(ctx context.Context, requestURL string) ([]byte, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	c.logger.Debug("Requesting indexer", zap.String("url", requestURL))

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
		metrics.IndexerRequestsTotal.WithLabelValues("error").Inc()
		c.logger.Error("Failed to execute indexer request", zap.String("url", requestURL), zap.Error(err))
		return nil, 0, fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
	}

	metrics.IndexerRequestsTotal.WithLabelValues("ok").Inc()
	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return body, resp.StatusCode(), nil
}

func queryValues(q entity.ProposalQuery) url.Values {
	values := url.Values{}
	if q.Category != "" {
		values.Set("category", q.Category)
	}
	if len(q.Statuses) > 0 {
		values.Set("statuses", strings.Join(q.Statuses, ","))
	}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	values.Set("page", strconv.Itoa(q.Page))
	values.Set("pageSize", strconv.Itoa(q.PageSize))
	return values
}
