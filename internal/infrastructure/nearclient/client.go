package nearclient

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"treasury_dashboard/internal/app/port"
	"treasury_dashboard/internal/domain/entity"
	"treasury_dashboard/internal/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client is a read-only JSON-RPC client for the chain node. It implements
// port.ChainViewClient. Requests go to the primary URL first and fall back to
// the configured alternates on transport failure.
type Client struct {
	client  *fasthttp.Client
	urls    []string
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient creates a new chain RPC client. fallbackURLs may be empty.
func NewClient(url string, fallbackURLs []string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		client:  &fasthttp.Client{},
		urls:    append([]string{url}, fallbackURLs...),
		timeout: timeout,
		logger:  logger.Named("ChainRPCClient"),
	}
}

var _ port.ChainViewClient = (*Client)(nil)

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcError struct {
	Name  string `json:"name"`
	Cause struct {
		Name string `json:"name"`
	} `json:"cause"`
	Message string `json:"message"`
	Data    string `json:"data"`
}

type rpcResponse struct {
	Result jsoniter.RawMessage `json:"result"`
	Error  *rpcError           `json:"error"`
}

// query runs one JSON-RPC "query" request and unmarshals the result envelope.
func (c *Client) query(ctx context.Context, requestType string, params map[string]any, out any) error {
	params["request_type"] = requestType
	params["finality"] = "final"

	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      "treasury-dashboard",
		Method:  "query",
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", requestType, err)
	}

	var lastErr error
	for _, url := range c.urls {
		raw, err := c.post(ctx, url, body)
		if err != nil {
			c.logger.Warn("RPC endpoint failed, trying next",
				zap.String("url", url), zap.String("requestType", requestType), zap.Error(err))
			lastErr = err
			continue
		}

		var resp rpcResponse
		if err := json.Unmarshal(raw, &resp); err != nil {
			metrics.RPCRequestsTotal.WithLabelValues(requestType, "error").Inc()
			return fmt.Errorf("failed to unmarshal RPC response: %w", err)
		}
		if resp.Error != nil {
			if isUnknownAccount(resp.Error) {
				metrics.RPCRequestsTotal.WithLabelValues(requestType, "ok").Inc()
				return errAccountNotFound
			}
			metrics.RPCRequestsTotal.WithLabelValues(requestType, "error").Inc()
			return fmt.Errorf("RPC %s failed: %s: %s", requestType, resp.Error.Name, resp.Error.Message)
		}

		if err := json.Unmarshal(resp.Result, out); err != nil {
			metrics.RPCRequestsTotal.WithLabelValues(requestType, "error").Inc()
			return fmt.Errorf("failed to unmarshal %s result: %w", requestType, err)
		}
		metrics.RPCRequestsTotal.WithLabelValues(requestType, "ok").Inc()
		return nil
	}

	metrics.RPCRequestsTotal.WithLabelValues(requestType, "error").Inc()
	return fmt.Errorf("all RPC endpoints failed for %s: %w", requestType, lastErr)
}

func (c *Client) post(ctx context.Context, url string, body []byte) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentTypeBytes([]byte("application/json"))
	req.SetBody(body)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, fmt.Errorf("failed to execute request to %s: %w", url, err)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			return nil, fmt.Errorf("failed to execute request to %s with default timeout: %w", url, err)
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("RPC request to %s failed with status %d: %s", url, resp.StatusCode(), string(resp.Body()))
	}

	// The response body is reused by fasthttp after release; copy it out.
	out := make([]byte, len(resp.Body()))
	copy(out, resp.Body())
	return out, nil
}

// ViewAccount returns the raw account view, or nil when the account does not
// exist on chain.
func (c *Client) ViewAccount(ctx context.Context, accountID string) (*entity.RawAccountView, error) {
	var result struct {
		Amount       string `json:"amount"`
		StorageUsage uint64 `json:"storage_usage"`
	}
	err := c.query(ctx, "view_account", map[string]any{"account_id": accountID}, &result)
	if err == errAccountNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entity.RawAccountView{
		AccountID:    accountID,
		Amount:       result.Amount,
		StorageUsage: result.StorageUsage,
	}, nil
}

// ViewFunction executes a view call and unmarshals the JSON result into out.
func (c *Client) ViewFunction(ctx context.Context, contractID, method string, args any, out any) error {
	if args == nil {
		args = map[string]any{}
	}
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("failed to marshal args for %s.%s: %w", contractID, method, err)
	}

	// The node returns the call result as an array of byte values.
	var result struct {
		Result []int `json:"result"`
	}
	err = c.query(ctx, "call_function", map[string]any{
		"account_id":  contractID,
		"method_name": method,
		"args_base64": base64.StdEncoding.EncodeToString(argsJSON),
	}, &result)
	if err == errAccountNotFound {
		return fmt.Errorf("contract %s does not exist", contractID)
	}
	if err != nil {
		return err
	}

	payload := make([]byte, len(result.Result))
	for i, b := range result.Result {
		payload[i] = byte(b)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to decode %s.%s result: %w", contractID, method, err)
	}
	return nil
}

// ViewState returns the contract's raw storage, base64-encoded, optionally
// filtered by a base64 key prefix.
func (c *Client) ViewState(ctx context.Context, contractID, prefixBase64 string) ([]entity.StateItem, error) {
	var result struct {
		Values []entity.StateItem `json:"values"`
	}
	err := c.query(ctx, "view_state", map[string]any{
		"account_id":    contractID,
		"prefix_base64": prefixBase64,
	}, &result)
	if err == errAccountNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return result.Values, nil
}

// BatchBalanceOf queries the settlement contract's mt_batch_balance_of view
// for the given token ids. The contract returns one amount string per id, in
// request order.
func (c *Client) BatchBalanceOf(ctx context.Context, contractID, accountID string, tokenIDs []string) ([]string, error) {
	var amounts []string
	err := c.ViewFunction(ctx, contractID, "mt_batch_balance_of", map[string]any{
		"account_id": accountID,
		"token_ids":  tokenIDs,
	}, &amounts)
	if err != nil {
		return nil, err
	}
	if len(amounts) != len(tokenIDs) {
		return nil, fmt.Errorf("mt_batch_balance_of returned %d amounts for %d token ids", len(amounts), len(tokenIDs))
	}
	return amounts, nil
}

var errAccountNotFound = fmt.Errorf("account not found")

func isUnknownAccount(e *rpcError) bool {
	if e.Cause.Name == "UNKNOWN_ACCOUNT" {
		return true
	}
	return strings.Contains(e.Data, "does not exist") || strings.Contains(e.Message, "does not exist")
}
