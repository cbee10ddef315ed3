// Package transport issues authenticated requests to the location API and
// maps every outcome onto the status taxonomy.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"com.aviebrantz.radar-client/pkg/core/settings"
	"com.aviebrantz.radar-client/pkg/status"
	"github.com/apex/log"
	"go.opencensus.io/stats"
	"go.opencensus.io/tag"
	"golang.org/x/time/rate"
)

// SDKVersion is reported with every request.
const SDKVersion = "3.2.1"

// Header names set on every request.
const (
	HeaderDeviceType = "X-Radar-Device-Type"
	HeaderSDKVersion = "X-Radar-SDK-Version"

	platformDeviceType = "Web"
)

// Response is a parsed JSON response body.
type Response map[string]interface{}

// Requester issues one API request.
type Requester interface {
	Request(ctx context.Context, method, endpoint string, params Params) (Response, error)
}

// Client is the Requester used in production. It is safe for concurrent use.
type Client struct {
	settings   *settings.Settings
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Entry
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithRateLimit paces outgoing requests to rps per second. Requests wait
// for their turn; none are dropped or retried.
func WithRateLimit(rps float64) Option {
	return func(cl *Client) {
		if rps > 0 {
			cl.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

func New(s *settings.Settings, opts ...Option) *Client {
	c := &Client{
		settings:   s,
		httpClient: &http.Client{},
		logger:     log.WithField("module", "transport"),
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := registerMetrics(); err != nil {
		c.logger.Errorf("err registering views: %v", err)
	}
	return c
}

// Request sends params to {host}/{basePath}/{endpoint}. GET requests carry
// params in the query string; other methods send them as a JSON body.
// Only a 200 response succeeds; every failure is a *status.Error.
func (c *Client) Request(ctx context.Context, method, endpoint string, params Params) (Response, error) {
	cfg := c.settings.Config(ctx)
	if cfg.PublishableKey == "" {
		return nil, status.New(status.ErrorPublishableKey)
	}

	req, err := c.newRequest(ctx, cfg, method, endpoint, params)
	if err != nil {
		return nil, status.Wrap(status.ErrorUnknown, err)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, status.Wrap(status.ErrorNetwork, err)
		}
	}

	startTime := time.Now()
	outcome := status.ErrorUnknown
	defer func() {
		mctx, err := tag.New(ctx, tag.Upsert(KeyMethod, method), tag.Upsert(KeyStatus, string(outcome)))
		if err != nil {
			c.logger.Errorf("err creating metric for request %v", err)
			return
		}
		stats.Record(mctx, MLatencyMs.M(sinceInMilliseconds(startTime)), MRequests.M(1))
	}()

	res, err := c.httpClient.Do(req)
	if err != nil {
		outcome = transportFailure(err)
		c.logger.Warnf("%s %s failed: %v", method, endpoint, err)
		return nil, status.Wrap(outcome, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		outcome = transportFailure(err)
		return nil, status.Wrap(outcome, err)
	}

	var response Response
	if err := json.Unmarshal(body, &response); err != nil {
		outcome = status.ErrorServer
		c.logger.Errorf("%s %s returned a malformed body (%d): %q", method, endpoint, res.StatusCode, body)
		return nil, &status.Error{Status: outcome, Body: body, Err: err}
	}

	outcome = status.FromHTTPStatus(res.StatusCode)
	if outcome != status.Success {
		c.logger.Debugf("%s %s: %d %s", method, endpoint, res.StatusCode, outcome)
		return nil, &status.Error{Status: outcome, Response: response, Body: body}
	}
	return response, nil
}

func (c *Client) newRequest(ctx context.Context, cfg settings.ClientConfig, method, endpoint string, params Params) (*http.Request, error) {
	url := cfg.Host + "/" + cfg.BasePath + "/" + strings.TrimLeft(endpoint, "/")
	values := params.compact()

	var body io.Reader
	if method == http.MethodGet {
		if len(values) > 0 {
			url += "?" + encodeQuery(values)
		}
	} else {
		data, err := json.Marshal(values)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", cfg.PublishableKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderDeviceType, platformDeviceType)
	req.Header.Set(HeaderSDKVersion, SDKVersion)
	for name, value := range cfg.CustomHeaders {
		req.Header.Set(name, value)
	}

	return req, nil
}

// transportFailure classifies a request that produced no response.
func transportFailure(err error) status.Status {
	if errors.Is(err, context.DeadlineExceeded) {
		return status.ErrorNetwork
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return status.ErrorNetwork
	}
	return status.ErrorServer
}
