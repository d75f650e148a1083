// Package backend is the typed client for the remote wardrobe API.
//
// Every call is bounded by a per-attempt timeout. A request that fails to
// complete (dial error, timeout, reset, truncated body) is retried up to the
// configured number of times; a response with a non-2xx status is never
// retried and is returned as an application error carrying the server's
// message.
package backend

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"wardrobe-client/pkg/apierror"
	"wardrobe-client/pkg/uid"
)

const maxResponseBytes = 4 << 20

// Options configures a Client.
type Options struct {
	BaseURL      string
	Timeout      time.Duration
	Retries      int
	RetryBackoff time.Duration
	HTTPClient   *http.Client
	Metrics      *Metrics
	Logger       *slog.Logger
}

// Client talks to the wardrobe backend.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	timeout      time.Duration
	retries      int
	retryBackoff time.Duration
	metrics      *Metrics
	logger       *slog.Logger
}

// errorBody covers the error shapes the backend produces: {"detail": "..."},
// {"detail": [{"msg": "..."}]} for validation failures, or {"message": "..."}.
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

// NewClient creates a backend client.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient:   httpClient,
		baseURL:      strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		timeout:      timeout,
		retries:      opts.Retries,
		retryBackoff: opts.RetryBackoff,
		metrics:      opts.Metrics,
		logger:       logger.With("component", "backend"),
	}
}

// NewHTTPClient returns the transport used when none is supplied.
func NewHTTPClient() *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		ForceAttemptHTTP2:   true,
		DialContext: (&net.Dialer{
			Timeout: 10 * time.Second,
		}).DialContext,
	}
	return &http.Client{Transport: transport}
}

// call describes one logical backend operation.
type call struct {
	op       string
	method   string
	path     string
	body     any
	out      any
	fallback string
}

func (c *Client) do(ctx context.Context, cl call) error {
	var payload []byte
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", cl.op, err)
		}
		payload = b
	}

	requestID := RequestID(ctx)
	if requestID == "" {
		requestID = uid.New()
	}
	start := time.Now()

	var (
		status int
		body   []byte
		err    error
	)
	for attempt := 0; ; attempt++ {
		status, body, err = c.attempt(ctx, cl.method, cl.path, payload, requestID)
		if err == nil {
			break
		}
		if ctx.Err() != nil || attempt >= c.retries || !isNetworkError(err) {
			c.metrics.observe(cl.op, outcomeNetworkError, time.Since(start))
			c.logger.Warn("Backend request failed",
				"op", cl.op, "request_id", requestID, "attempts", attempt+1, "error", err)
			return apierror.Network(err)
		}

		c.metrics.retry(cl.op)
		c.logger.Warn("Retrying backend request",
			"op", cl.op, "request_id", requestID, "error", err)
		if c.retryBackoff > 0 {
			select {
			case <-ctx.Done():
				return apierror.Network(ctx.Err())
			case <-time.After(c.retryBackoff):
			}
		}
	}

	if status < 200 || status >= 300 {
		c.metrics.observe(cl.op, outcomeApplicationError, time.Since(start))
		msg := errorMessage(body)
		c.logger.Info("Backend returned error",
			"op", cl.op, "request_id", requestID, "status", status, "message", msg)
		return apierror.Application(status, msg, cl.fallback)
	}

	c.metrics.observe(cl.op, outcomeOK, time.Since(start))
	c.logger.Debug("Backend request ok",
		"op", cl.op, "request_id", requestID, "status", status, "duration_ms", time.Since(start).Milliseconds())

	if cl.out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, cl.out); err != nil {
		apiErr := apierror.Application(status, "", cl.fallback)
		apiErr.Err = fmt.Errorf("decode %s response: %w", cl.op, err)
		return apiErr
	}
	return nil
}

// attempt performs a single round trip bounded by the client timeout and
// reads the whole body before the attempt context is released.
func (c *Client) attempt(ctx context.Context, method, path string, payload []byte, requestID string) (int, []byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var r io.Reader
	if payload != nil {
		r = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, c.baseURL+path, r)
	if err != nil {
		return 0, nil, &requestError{err: err}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

// requestError marks failures that happened before anything was sent.
type requestError struct{ err error }

func (e *requestError) Error() string { return "build request: " + e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

// isNetworkError reports whether err is a transport failure worth retrying.
// Certificate and TLS protocol failures fail the same way on every attempt.
func isNetworkError(err error) bool {
	var re *requestError
	if errors.As(err, &re) {
		return false
	}
	if isTLSFailure(err) {
		return false
	}
	var ne net.Error
	switch {
	case errors.As(err, &ne):
		return true
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return true
	case errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.ECONNREFUSED):
		return true
	case errors.Is(err, context.DeadlineExceeded):
		return true
	}
	return false
}

func isTLSFailure(err error) bool {
	var (
		verifyErr    *tls.CertificateVerificationError
		recordErr    tls.RecordHeaderError
		authorityErr x509.UnknownAuthorityError
		hostnameErr  x509.HostnameError
		invalidErr   x509.CertificateInvalidError
	)
	return errors.As(err, &verifyErr) ||
		errors.As(err, &recordErr) ||
		errors.As(err, &authorityErr) ||
		errors.As(err, &hostnameErr) ||
		errors.As(err, &invalidErr)
}

func errorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}

	if len(eb.Detail) > 0 {
		var s string
		if err := json.Unmarshal(eb.Detail, &s); err == nil && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
		var list []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(eb.Detail, &list); err == nil {
			msgs := make([]string, 0, len(list))
			for _, d := range list {
				if d.Msg != "" {
					msgs = append(msgs, d.Msg)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
	}
	if strings.TrimSpace(eb.Message) != "" {
		return strings.TrimSpace(eb.Message)
	}
	return strings.TrimSpace(eb.Error)
}
