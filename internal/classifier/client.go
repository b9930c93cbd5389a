// Package classifier calls the external natural-language classification
// service and returns its intents and entities for one utterance.
package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	commonhttp "negotiation-gateway/internal/common/http"
	"negotiation-gateway/internal/common/metrics"
	"negotiation-gateway/internal/common/validation"
	"negotiation-gateway/internal/models"
)

var (
	ErrClassificationFailed = errors.New("CLASSIFICATION_FAILED")
	ErrClassifierTimeout    = errors.New("CLASSIFIER_TIMEOUT")
)

var resultSchema = validation.MustValidator(validation.ClassificationResultSchema)

type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Request is one utterance to classify.
type Request struct {
	Text            string `json:"text"`
	Role            string `json:"role,omitempty"`
	Addressee       string `json:"addressee,omitempty"`
	Speaker         string `json:"speaker,omitempty"`
	EnvironmentUUID string `json:"environmentUUID,omitempty"`
}

type Client struct {
	config *Config
	http   *commonhttp.Client
	cache  *Cache
	logger Logger
}

type Option func(*Client)

// WithCache enables the result cache. A nil cache is ignored.
func WithCache(c *Cache) Option {
	return func(cl *Client) { cl.cache = c }
}

func NewClient(cfg *Config, log Logger, opts ...Option) *Client {
	httpClient := commonhttp.NewClient(cfg.Timeout)
	if cfg.APIKey != "" {
		httpClient = httpClient.WithHeader("Authorization", "Bearer "+cfg.APIKey)
	}
	c := &Client{config: cfg, http: httpClient, logger: log}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns the classification of req.Text. Transport and decode
// failures wrap ErrClassificationFailed, deadline expiry wraps
// ErrClassifierTimeout.
func (c *Client) Classify(ctx context.Context, req Request) (*models.ClassificationResult, error) {
	if c.cache != nil {
		cached, err := c.cache.Get(ctx, req.Text)
		switch {
		case err != nil:
			metrics.ClassifierCacheLookups.WithLabelValues("error").Inc()
			c.logger.Warn("classifier cache unavailable", map[string]interface{}{"error": err})
		case cached != nil:
			metrics.ClassifierCacheLookups.WithLabelValues("hit").Inc()
			fillInput(cached, req)
			return cached, nil
		default:
			metrics.ClassifierCacheLookups.WithLabelValues("miss").Inc()
		}
	}

	start := time.Now()
	res, err := c.call(ctx, req)
	status := metrics.StatusOK
	if err != nil {
		status = metrics.StatusError
	}
	metrics.ClassifierRequestDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Put(ctx, req.Text, res); err != nil {
			c.logger.Warn("classifier cache write failed", map[string]interface{}{"error": err})
		}
	}

	fillInput(res, req)
	return res, nil
}

func (c *Client) call(ctx context.Context, req Request) (*models.ClassificationResult, error) {
	url := strings.TrimRight(c.config.BaseURL, "/") + c.config.ClassifyPath

	var (
		body    []byte
		lastErr error
	)
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.config.BaseBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrClassifierTimeout, ctx.Err())
			}
		}

		body, lastErr = c.http.DoJSON(ctx, "POST", url, req)
		if lastErr == nil {
			break
		}
		if isTimeout(ctx, lastErr) {
			return nil, fmt.Errorf("%w: %v", ErrClassifierTimeout, lastErr)
		}
		if !retryable(lastErr) {
			break
		}
		c.logger.Debug("classifier call failed", map[string]interface{}{
			"attempt": attempt + 1,
			"error":   lastErr,
		})
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrClassificationFailed, lastErr)
	}

	report, err := resultSchema.ValidateBytes(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClassificationFailed, err)
	}
	if !report.Valid {
		c.logger.Error("classifier returned malformed result", map[string]interface{}{
			"violations": report.Error(),
		})
		return nil, fmt.Errorf("%w: malformed result: %s", ErrClassificationFailed, report.Error())
	}

	var res models.ClassificationResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", ErrClassificationFailed, err)
	}
	return &res, nil
}

// fillInput copies request fields into any the service left empty.
func fillInput(res *models.ClassificationResult, req Request) {
	in := &res.Input
	if in.Text == "" {
		in.Text = req.Text
	}
	if in.Role == "" {
		in.Role = req.Role
	}
	if in.Addressee == "" {
		in.Addressee = req.Addressee
	}
	if in.Speaker == "" {
		in.Speaker = req.Speaker
	}
	if in.EnvironmentUUID == "" {
		in.EnvironmentUUID = req.EnvironmentUUID
	}
}

func isTimeout(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// retryable is true for transport errors and 5xx responses.
func retryable(err error) bool {
	var statusErr *commonhttp.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500
	}
	return true
}
