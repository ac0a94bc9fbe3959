package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/go-service-bootstrap/internal/crypto"
	"github.com/MKhiriev/go-service-bootstrap/internal/logger"
	"github.com/MKhiriev/go-service-bootstrap/internal/utils"
	"github.com/MKhiriev/go-service-bootstrap/models"
)

// maxRandNum keeps correlation tokens exact after a float64 JSON round trip.
const maxRandNum = 1 << 31

// Config configures [NewHTTPServiceClient].
type Config struct {
	// BaseURL is the service address. A missing scheme defaults to http.
	BaseURL string

	// Timeout bounds every request. Zero means no timeout.
	Timeout time.Duration

	// RetryCount retries requests that failed at the transport level or
	// with 503.
	RetryCount int

	// EncryptionKey enables the payload envelope. It must match the key of
	// the service.
	EncryptionKey string

	// Codec overrides the envelope codec.
	Codec crypto.EnvelopeCodec
}

type httpServiceClient struct {
	client *utils.HTTPClient
	key    string
	codec  crypto.EnvelopeCodec

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// NewHTTPServiceClient constructs an HTTP implementation of [ServiceClient].
//
// Returns an error if cfg.BaseURL is empty or cannot be parsed as a valid
// URL.
func NewHTTPServiceClient(cfg Config, logger *logger.Logger) (ServiceClient, error) {
	baseURL, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid service base url: %w", err)
	}

	client := utils.NewHTTPClient()
	client.
		SetBaseURL(baseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return err != nil || resp.StatusCode() == http.StatusServiceUnavailable
		})

	if cfg.Codec == nil {
		cfg.Codec = crypto.NewEnvelopeCodec()
	}

	return &httpServiceClient{
		client: client,
		key:    cfg.EncryptionKey,
		codec:  cfg.Codec,
		logger: logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", errors.New("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

func (c *httpServiceClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = strings.TrimSpace(token)
}

func (c *httpServiceClient) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *httpServiceClient) Do(ctx context.Context, method, path string, body, out any) error {
	req := c.request(ctx)

	// the service echoes 0 when a request carries no token
	var randNum int64
	if c.key != "" && (body != nil || method == http.MethodGet) {
		randNum = rand.Int64N(maxRandNum) + 1
	}

	if body != nil {
		payload, err := c.encodeBody(body, randNum)
		if err != nil {
			return fmt.Errorf("%s %s encode body: %w", method, path, err)
		}
		req.SetHeader("Content-Type", "application/json").SetBody(payload)
	}
	if c.key != "" && method == http.MethodGet {
		req.SetHeader(models.RandNumHeader, strconv.FormatInt(randNum, 10))
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s request: %w", method, path, err)
	}
	if err = mapHTTPError(resp); err != nil {
		c.logger.Debug().Err(err).Str("method", method).Str("path", path).Msg("service returned an error")
		return err
	}

	data, err := c.decodeBody(resp, randNum)
	if err != nil {
		return fmt.Errorf("%s %s decode response: %w", method, path, err)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err = json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s decode response: %w", method, path, err)
	}
	return nil
}

func (c *httpServiceClient) Health(ctx context.Context) error {
	return c.probe(ctx, "/health-check")
}

func (c *httpServiceClient) Ready(ctx context.Context) error {
	return c.probe(ctx, "/ready-check")
}

func (c *httpServiceClient) probe(ctx context.Context, path string) error {
	resp, err := c.client.R().SetContext(ctx).Get(path)
	if err != nil {
		return fmt.Errorf("probe %s: %w", path, err)
	}
	return mapHTTPError(resp)
}

func (c *httpServiceClient) request(ctx context.Context) *resty.Request {
	req := c.client.R().SetContext(ctx)
	if token := c.Token(); token != "" {
		req.SetAuthToken(token)
	}
	return req
}

// encodeBody marshals body and, with a key, seals it together with randNum.
func (c *httpServiceClient) encodeBody(body any, randNum int64) ([]byte, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	if c.key == "" {
		return raw, nil
	}

	ciphertext, err := c.codec.Encrypt(models.EnvelopeRequest{ActualData: raw, RandNum: randNum}, c.key)
	if err != nil {
		return nil, err
	}
	return json.Marshal(models.Envelope{Data: ciphertext})
}

// openedResponse keeps randNum in its textual form so that it can be
// compared without float conversion.
type openedResponse struct {
	ResponseData json.RawMessage `json:"responseData"`
	RandNum      json.RawMessage `json:"randNum"`
}

// decodeBody opens an envelope response. Bodies that are not envelopes are
// returned as they are: the service leaves non-JSON payloads alone and does
// not encrypt in development.
func (c *httpServiceClient) decodeBody(resp *resty.Response, randNum int64) ([]byte, error) {
	body := resp.Body()
	if c.key == "" {
		return body, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope) != 1 {
		return body, nil
	}
	var ciphertext string
	if err := json.Unmarshal(envelope["data"], &ciphertext); err != nil || ciphertext == "" {
		return body, nil
	}

	var opened openedResponse
	if err := c.codec.OpenInto(ciphertext, c.key, &opened); err != nil {
		return nil, errors.Join(ErrInvalidEnvelope, err)
	}
	if got := string(bytes.TrimSpace(opened.RandNum)); got != strconv.FormatInt(randNum, 10) {
		return nil, fmt.Errorf("%w: sent %d, got %s", ErrRandNumMismatch, randNum, got)
	}
	return opened.ResponseData, nil
}
