package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
)

// HTTPClient wraps net/http.Client with the defaults and error types used across certwatch.
type HTTPClient struct {
	client *http.Client
	config HTTPClientConfig
	logger zerolog.Logger
}

// NewHTTPClient creates a new HTTP client with the given configuration using net/http
func NewHTTPClient(config HTTPClientConfig, logger zerolog.Logger) (*HTTPClient, error) {
	transport := &http.Transport{
		MaxIdleConns:          config.MaxIdleConns,
		MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
		MaxConnsPerHost:       config.MaxConnsPerHost,
		IdleConnTimeout:       config.IdleConnTimeout,
		TLSHandshakeTimeout:   config.TLSHandshakeTimeout,
		ExpectContinueTimeout: config.ExpectContinueTimeout,
		DialContext: (&net.Dialer{
			Timeout:   config.DialTimeout,
			KeepAlive: config.KeepAlive,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: config.InsecureSkipVerify,
		},
	}

	if config.EnableHTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			logger.Warn().Err(err).Msg("Failed to configure HTTP/2, falling back to HTTP/1.1")
		}
	}

	if config.Proxy != "" {
		proxyURL, err := url.Parse(config.Proxy)
		if err != nil {
			return nil, WrapError(err, "failed to parse proxy URL")
		}
		transport.Proxy = http.ProxyURL(proxyURL)
		logger.Info().Str("proxy", config.Proxy).Msg("HTTP client configured with proxy")
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   config.Timeout,
	}

	if !config.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	} else if config.MaxRedirects > 0 {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= config.MaxRedirects {
				return fmt.Errorf("stopped after %d redirects", config.MaxRedirects)
			}
			return nil
		}
	}

	logger.Debug().
		Dur("timeout", config.Timeout).
		Bool("insecure_skip_verify", config.InsecureSkipVerify).
		Bool("follow_redirects", config.FollowRedirects).
		Int("max_redirects", config.MaxRedirects).
		Int("max_content_size", config.MaxContentSize).
		Bool("http2_enabled", config.EnableHTTP2).
		Msg("HTTP client created")

	return &HTTPClient{
		client: client,
		config: config,
		logger: logger,
	}, nil
}

// Config returns the configuration the client was built with.
func (c *HTTPClient) Config() HTTPClientConfig {
	return c.config
}

// Do performs a single HTTP request. Failures before a response is fully read
// are returned as *NetworkError; the status code is never treated as an error here.
func (c *HTTPClient) Do(req *HTTPRequest) (*HTTPResponse, error) {
	ctx := req.Context
	if ctx == nil {
		ctx = context.Background()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, req.Body)
	if err != nil {
		return nil, WrapError(err, "failed to create HTTP request")
	}

	// Defaults from config first, request headers override them.
	for key, value := range c.config.CustomHeaders {
		httpReq.Header.Set(key, value)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	if c.config.UserAgent != "" && httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", c.config.UserAgent)
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "*/*")
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, NewNetworkError(req.URL, "request failed", err)
	}
	defer resp.Body.Close()

	body, truncated, err := c.readBody(resp.Body)
	if err != nil {
		return nil, NewNetworkError(req.URL, "failed to read response body", err)
	}
	if truncated {
		c.logger.Warn().
			Str("url", req.URL).
			Int("max_content_size", c.config.MaxContentSize).
			Msg("Content size exceeds limit, truncating")
	}

	httpResp := &HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    make(map[string]string, len(resp.Header)),
		Body:       body,
		Truncated:  truncated,
	}
	for key, values := range resp.Header {
		if len(values) > 0 {
			httpResp.Headers[key] = values[0]
		}
	}

	return httpResp, nil
}

// GetText fetches url and returns its body decoded to UTF-8 according to the
// response charset. Any response status is accepted. A body larger than
// MaxContentSize is a NetworkError wrapping ErrContentTooLarge.
func (c *HTTPClient) GetText(ctx context.Context, url string) (string, error) {
	resp, err := c.Do(&HTTPRequest{URL: url, Method: http.MethodGet, Context: ctx})
	if err != nil {
		return "", err
	}

	if !resp.IsSuccess() {
		c.logger.Debug().Str("url", url).Int("status_code", resp.StatusCode).Msg("Non-OK status, classifying body anyway")
	}

	// A cut-off body cannot be classified: the tail may hold the phrase or the reference.
	if resp.Truncated {
		return "", NewNetworkError(url, "response body too large", ErrContentTooLarge)
	}

	text, err := DecodeBody(resp.Body, resp.ContentType(), false)
	if err != nil {
		return "", NewNetworkError(url, "failed to decode response body", err)
	}

	c.logger.Debug().
		Str("url", url).
		Int("status_code", resp.StatusCode).
		Int("content_size", len(resp.Body)).
		Str("content_type", resp.ContentType()).
		Msg("Successfully fetched content")

	return text, nil
}

// PostJSON sends payload as a JSON body and returns an *HTTPError for non-2xx answers.
func (c *HTTPClient) PostJSON(ctx context.Context, url string, payload []byte) (*HTTPResponse, error) {
	return c.post(ctx, url, payload, map[string]string{"Content-Type": "application/json"})
}

// PostText sends body as text/plain with the given extra headers.
func (c *HTTPClient) PostText(ctx context.Context, url string, body string, headers map[string]string) (*HTTPResponse, error) {
	merged := map[string]string{"Content-Type": "text/plain; charset=utf-8"}
	for k, v := range headers {
		merged[k] = v
	}
	return c.post(ctx, url, []byte(body), merged)
}

func (c *HTTPClient) post(ctx context.Context, url string, body []byte, headers map[string]string) (*HTTPResponse, error) {
	resp, err := c.Do(&HTTPRequest{
		URL:     url,
		Method:  http.MethodPost,
		Headers: headers,
		Body:    bytes.NewReader(body),
		Context: ctx,
	})
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return resp, NewHTTPErrorWithURL(resp.StatusCode, string(resp.Body), url)
	}
	return resp, nil
}

func (c *HTTPClient) readBody(r io.Reader) ([]byte, bool, error) {
	if c.config.MaxContentSize <= 0 {
		body, err := io.ReadAll(r)
		return body, false, err
	}

	limit := int64(c.config.MaxContentSize)
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(body)) > limit {
		return body[:limit], true, nil
	}
	return body, false, nil
}
