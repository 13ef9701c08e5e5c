package socialdb

import (
	"context"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"treasury_dashboard/internal/app/port"
	"treasury_dashboard/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client resolves social profiles from the profile service.
type Client struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient creates a new social profile client.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		logger:  logger.Named("SocialProfileClient"),
	}
}

var _ port.ProfileClient = (*Client)(nil)

type profilePayload struct {
	Profile struct {
		Name  string `json:"name"`
		Image struct {
			URL  string `json:"url"`
			IPFS string `json:"ipfs_cid"`
		} `json:"image"`
	} `json:"profile"`
}

// ProfilesByAccountIDs fetches profiles for the given ids in one request.
// Accounts without a profile are absent from the result.
func (c *Client) ProfilesByAccountIDs(ctx context.Context, ids []string) (map[string]entity.Profile, error) {
	if len(ids) == 0 {
		return map[string]entity.Profile{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, id+"/profile/**")
	}
	body, err := json.Marshal(map[string]any{"keys": keys})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile request: %w", err)
	}

	requestURL := c.baseURL + "/get"
	c.logger.Debug("Requesting social profiles", zap.String("url", requestURL), zap.Int("accounts", len(ids)))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentTypeBytes([]byte("application/json"))
	req.SetBody(body)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		c.logger.Error("Failed to execute profile request", zap.String("url", requestURL), zap.Error(err))
		return nil, fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("profile request to %s failed with status %d: %s", requestURL, resp.StatusCode(), string(resp.Body()))
	}

	var raw map[string]profilePayload
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile response from %s: %w", requestURL, err)
	}

	profiles := make(map[string]entity.Profile, len(raw))
	for accountID, payload := range raw {
		image := payload.Profile.Image.URL
		if image == "" && payload.Profile.Image.IPFS != "" {
			image = "https://ipfs.near.social/ipfs/" + payload.Profile.Image.IPFS
		}
		profiles[accountID] = entity.Profile{
			Name:  payload.Profile.Name,
			Image: image,
		}
	}
	return profiles, nil
}
