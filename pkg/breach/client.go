// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package breach

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/hashicorp/go-retryablehttp"
	"io"
	"net"
	"net/http"
	"time"
)

const (
	DefaultURL     = "http://checker:8000/check"
	DefaultTimeout = 5 * time.Second
	// maxBodySize bounds how much of a response is read.
	maxBodySize = 64 * 1024
)

type lookupRequest struct {
	Password string `json:"password"`
}

type lookupResponse struct {
	Leaked *bool `json:"leaked"`
	Count  *int  `json:"count"`
}

// Client calls the Breach Lookup Service. It never returns an error to the
// caller, failures are reported as a degraded Result.
type Client struct {
	url     string
	timeout time.Duration
	http    *retryablehttp.Client
}

type Option func(*Client)

// WithTimeout bounds a whole lookup, retries included.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithRetries sets how many times a failed call is retried. Defaults to 0.
func WithRetries(retries int) Option {
	return func(c *Client) {
		if retries >= 0 {
			c.http.RetryMax = retries
		}
	}
}

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http.HTTPClient = hc
	}
}

func NewClient(url string, opts ...Option) *Client {
	if url == "" {
		url = DefaultURL
	}

	c := &Client{
		url:     url,
		timeout: DefaultTimeout,
		http:    initHttpClient(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func initHttpClient() *retryablehttp.Client {
	client := retryablehttp.NewClient()
	// retryablehttp logs the request URL and nothing else, but we have our own logging.
	client.Logger = nil
	client.RetryMax = 0
	client.RetryWaitMin = 100 * time.Millisecond
	client.RetryWaitMax = 1 * time.Second
	// Hand back the last response instead of a generic "giving up" error, so
	// status failures can be told apart from network failures.
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client.HTTPClient = &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   DefaultTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   DefaultTimeout,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}

	return client
}

// Lookup asks the service whether the password is part of the breach corpus.
func (c *Client) Lookup(ctx context.Context, password string) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(lookupRequest{Password: password})
	if err != nil {
		return Degraded(ReasonMalformed, err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return Degraded(ReasonUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if res != nil {
		defer func(Body io.ReadCloser) {
			_, _ = io.Copy(io.Discard, io.LimitReader(Body, maxBodySize))
			_ = Body.Close()
		}(res.Body)
	}

	if err != nil {
		return Degraded(reasonFor(ctx, err), err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return Degraded(ReasonStatus, fmt.Errorf("breach service responded with status [%d] %s", res.StatusCode, res.Status))
	}

	var payload lookupResponse
	if err = json.NewDecoder(io.LimitReader(res.Body, maxBodySize)).Decode(&payload); err != nil {
		if ctx.Err() != nil {
			return Degraded(reasonFor(ctx, err), err)
		}
		return Degraded(ReasonMalformed, fmt.Errorf("decoding breach response: %w", err))
	}

	if payload.Leaked == nil {
		return Degraded(ReasonMalformed, errors.New("breach response is missing the leaked field"))
	}
	if payload.Count != nil && *payload.Count < 0 {
		return Degraded(ReasonMalformed, fmt.Errorf("breach response has a negative count %d", *payload.Count))
	}

	return Found(*payload.Leaked, payload.Count)
}

func reasonFor(ctx context.Context, err error) Reason {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(ctx.Err(), context.Canceled), errors.Is(err, context.Canceled):
		return ReasonCancelled
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonTimeout
	}

	return ReasonUnavailable
}

// Offline never calls a service. Every lookup is degraded with ReasonDisabled.
type Offline struct{}

func (Offline) Lookup(context.Context, string) Result {
	return Degraded(ReasonDisabled, nil)
}
