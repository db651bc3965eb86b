package instagram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/adforge/igpub/internal/logging"
)

// NewClient builds a Graph API client, applying defaults for every Config
// field left unset.
func NewClient(cfg Config) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiVersion: cfg.APIVersion,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
		maxPolls:   cfg.MaxPolls,
		pollDelay:  cfg.PollDelay,
		sleep:      cfg.Sleep,
		reporter:   cfg.Reporter,
	}
	if c.baseURL == "" {
		c.baseURL = GraphAPIBaseURL
	}
	if c.apiVersion == "" {
		c.apiVersion = DefaultAPIVersion
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if c.logger == nil {
		c.logger = logging.NewLogger()
	}
	if c.maxPolls <= 0 {
		c.maxPolls = DefaultMaxPolls
	}
	if c.pollDelay <= 0 {
		c.pollDelay = DefaultPollDelay
	}
	if c.sleep == nil {
		c.sleep = sleepContext
	}
	return c
}

func (c *Client) endpoint(path string) string {
	return fmt.Sprintf("%s/%s/%s", c.baseURL, c.apiVersion, path)
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values) (*graphResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, transportError(path, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	c.logRequest(http.MethodPost, path, form)
	return c.do(req, path)
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (*graphResponse, error) {
	endpoint := c.endpoint(path)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, transportError(path, err)
	}

	c.logRequest(http.MethodGet, path, query)
	return c.do(req, path)
}

// postBinary sends a raw byte payload. The access token travels in the
// Authorization header or the query string, never in the logged fields.
func (c *Client) postBinary(ctx context.Context, path string, body io.Reader, size int64, contentType string, headers map[string]string, query url.Values) (*graphResponse, error) {
	endpoint := c.endpoint(path)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, transportError(path, err)
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", contentType)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	c.logRequest(http.MethodPost, path, nil)
	return c.do(req, path)
}

func (c *Client) postMultipart(ctx context.Context, path string, fields url.Values, fileField, fileName string, file []byte) (*graphResponse, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key := range fields {
		if err := writer.WriteField(key, fields.Get(key)); err != nil {
			return nil, transportError(path, err)
		}
	}
	part, err := writer.CreateFormFile(fileField, fileName)
	if err != nil {
		return nil, transportError(path, err)
	}
	if _, err := part.Write(file); err != nil {
		return nil, transportError(path, err)
	}
	if err := writer.Close(); err != nil {
		return nil, transportError(path, err)
	}

	body := c.wrapProgress(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), body)
	if err != nil {
		return nil, transportError(path, err)
	}
	req.ContentLength = int64(buf.Len())
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c.logRequest(http.MethodPost, path, nil)
	return c.do(req, path)
}

func (c *Client) do(req *http.Request, path string) (*graphResponse, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(path, fmt.Errorf("failed to read response: %w", err))
	}

	gr := &graphResponse{StatusCode: resp.StatusCode, Body: body}
	if err := json.Unmarshal(body, &gr.Data); err != nil {
		return nil, &Error{
			Type:       ErrorTypeTransport,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("invalid response from %s: %v", requestLabel(path), err),
			Err:        err,
		}
	}

	c.logger.WithFields(logging.Fields{
		"endpoint": requestLabel(path),
		"status":   resp.StatusCode,
		"body":     string(body),
	}).Debug("graph api response")

	return gr, nil
}

func (c *Client) logRequest(method, path string, params url.Values) {
	fields := logging.Fields{"method": method, "endpoint": requestLabel(path)}
	if params != nil {
		fields["params"] = redactToken(params).Encode()
	}
	c.logger.WithFields(fields).Debug("graph api request")
}

// transportError reduces an HTTP layer failure to its cause before
// formatting. A *url.Error prints the full request URL, which can carry
// the access token in its query string.
func transportError(path string, err error) *Error {
	cause := err
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		cause = urlErr.Err
	}
	return &Error{
		Type:    ErrorTypeTransport,
		Message: fmt.Sprintf("request to %s failed: %v", requestLabel(path), cause),
		Err:     err,
	}
}

// requestLabel is the loggable name of an endpoint path. Only the last
// segment is kept so the business account id stays out of the logs.
func requestLabel(path string) string {
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

func redactToken(values url.Values) url.Values {
	if values.Get("access_token") == "" {
		return values
	}
	redacted := url.Values{}
	for key, value := range values {
		redacted[key] = value
	}
	redacted.Set("access_token", "[redacted]")
	return redacted
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
