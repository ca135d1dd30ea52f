package calllog

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/repository"
	"github.com/jwalitptl/dental-admin/pkg/circuitbreaker"
	"github.com/jwalitptl/dental-admin/pkg/logger"
)

type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	RetryCount int
	RetryWait  time.Duration
}

// Client reads call logs from the intake provider's REST API.
type Client struct {
	http   *resty.Client
	cb     *circuitbreaker.CircuitBreaker
	logger *logger.Logger
}

func NewClient(cfg Config, log *logger.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.RetryWait <= 0 {
		cfg.RetryWait = 200 * time.Millisecond
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTransport(otelhttp.NewTransport(http.DefaultTransport)).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(4*cfg.RetryWait).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return resp != nil && resp.StatusCode() >= http.StatusInternalServerError
		}).
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		httpClient.SetAuthToken(cfg.APIKey)
	}

	return &Client{
		http: httpClient,
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:             "calllog-api",
			MaxRequests:      1,
			Interval:         30 * time.Second,
			Timeout:          10 * time.Second,
			FailureThreshold: 5,
		}),
		logger: log.With("calllog-client"),
	}
}

func (c *Client) GetCallLog(ctx context.Context, callID uuid.UUID, externalCallID *string) (*model.CallLog, error) {
	var (
		result model.CallLog
		found  bool
	)

	err := c.cb.Execute(func() error {
		req := c.http.R().
			SetContext(ctx).
			SetPathParam("callId", callID.String()).
			SetResult(&result)
		if externalCallID != nil {
			req.SetQueryParam("external_id", *externalCallID)
		}

		resp, err := req.Get("/v1/call-logs/{callId}")
		if err != nil {
			return fmt.Errorf("failed to call call-log API: %w", err)
		}
		switch {
		case resp.StatusCode() == http.StatusNotFound:
			// a missing log is an answer, not a provider failure
			return nil
		case resp.IsError():
			return fmt.Errorf("call-log API returned status %d", resp.StatusCode())
		}
		found = true
		return nil
	})
	if err != nil {
		c.logger.Warn(err, "call log lookup failed", "call_id", callID.String())
		return nil, err
	}
	if !found {
		return nil, repository.ErrNotFound
	}
	return &result, nil
}

var _ repository.CallLogRepository = (*Client)(nil)
