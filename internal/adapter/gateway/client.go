package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/homebooking/internal/domain/model"
)

// ErrTransactionNotFound indicates the gateway has no transaction for the order yet.
var ErrTransactionNotFound = errors.New("transaction not found")

// TooManyRequestsError represents rate limiting signal from the gateway.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// Client queries the gateway for the current payment status of an order.
type Client interface {
	Status(ctx context.Context, orderID uuid.UUID) (model.PaymentSignal, error)
}

// HTTPClient implements Client via the gateway status API.
type HTTPClient struct {
	baseURL    *url.URL
	serverKey  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPClient creates a status client with default timeout.
func NewHTTPClient(baseURL, serverKey string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse gateway url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("gateway url must be absolute")
	}
	return &HTTPClient{
		baseURL:   parsed,
		serverKey: serverKey,
		logger:    logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// Status fetches the order's transaction and returns it as a poll-channel signal.
func (c *HTTPClient) Status(ctx context.Context, orderID uuid.UUID) (model.PaymentSignal, error) {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/v2/", orderID.String(), "status")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return model.PaymentSignal{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.serverKey, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.PaymentSignal{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return model.PaymentSignal{}, err
		}
		var data Notification
		if err := json.Unmarshal(body, &data); err != nil {
			return model.PaymentSignal{}, err
		}
		// The gateway reports unknown transactions inside a 200 body.
		if data.StatusCode == "404" {
			return model.PaymentSignal{}, ErrTransactionNotFound
		}
		return data.Signal(model.ChannelPoll)
	case http.StatusNotFound:
		return model.PaymentSignal{}, ErrTransactionNotFound
	case http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		return model.PaymentSignal{}, TooManyRequestsError{RetryAfter: retryAfter}
	default:
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("gateway status request failed",
			slog.String("order_id", orderID.String()),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)),
		)
		return model.PaymentSignal{}, fmt.Errorf("gateway error: %s", resp.Status)
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 5 * time.Second
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 5 * time.Second
}
