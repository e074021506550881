// Package api is the client for the Geographia REST backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// TokenSource supplies the bearer token for authenticated calls
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed TokenSource
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// Client talks to the backend
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     logrus.FieldLogger
}

// NewClient creates a client rooted at baseURL, e.g. http://localhost:3000/api
func NewClient(baseURL string, timeout time.Duration, tokens TokenSource, log logrus.FieldLogger) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if tokens == nil {
		tokens = StaticToken("")
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		log:     log.WithField("component", "api"),
	}
}

// BaseURL returns the root the client was created with
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request is one call: body is JSON encoded unless contentType is set
type request struct {
	method      string
	path        string
	body        any
	raw         io.Reader
	contentType string
	auth        bool
}

// do performs req and decodes a 2xx JSON response into out (which may be nil)
func (c *Client) do(ctx context.Context, req request, out any) error {
	op := req.method + " " + req.path

	body := req.raw
	contentType := req.contentType
	if req.body != nil && body == nil {
		buf, err := json.Marshal(req.body)
		if err != nil {
			return &Failure{Kind: KindUnexpected, Op: op, Err: fmt.Errorf("encode body: %w", err)}
		}
		body = bytes.NewReader(buf)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return &Failure{Kind: KindUnexpected, Op: op, Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if req.auth {
		if token := c.tokens.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.log.WithError(err).WithField("op", op).Warn("request failed")
		return &Failure{Kind: KindUnexpected, Op: op, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Failure{Kind: KindUnexpected, Op: op, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f := &Failure{
			Kind:    Classify(resp.StatusCode),
			Status:  resp.StatusCode,
			Op:      op,
			Message: serverMessage(payload),
		}
		c.log.WithFields(logrus.Fields{"op": op, "status": resp.StatusCode}).Debug("request rejected")
		return f
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &Failure{Kind: KindUnexpected, Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// serverMessage extracts the error text the backend puts in its JSON body
func serverMessage(payload []byte) string {
	if !gjson.ValidBytes(payload) {
		return ""
	}
	for _, path := range []string{"message", "error", "msg"} {
		if v := gjson.GetBytes(payload, path); v.Type == gjson.String {
			return v.String()
		}
	}
	return ""
}
