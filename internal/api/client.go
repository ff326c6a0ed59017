package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// TokenSource returns the persisted bearer token, or "" when none is stored.
type TokenSource interface {
	Load() (string, error)
}

// Client talks to the FASTYR backend REST API.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for the backend at baseURL. tokens may be nil, in
// which case requests are sent without a bearer token.
func New(baseURL string, tokens TokenSource, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		tokens:  tokens,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Register creates an account. It does not sign the user in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.postJSON(ctx, "register", "/register", FallbackRegister, req, nil)
}

// Login exchanges credentials for a bearer token. The email is sent as the
// form field username.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var resp LoginResponse
	err := c.do(ctx, "login", FallbackLogin, &resp, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/token", strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ForgotPassword asks the backend to email a reset passcode.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.postJSON(ctx, "forgot-password", "/forgot-password", FallbackForgot, forgotRequest{Email: email}, nil)
}

// VerifyPin checks a reset passcode.
func (c *Client) VerifyPin(ctx context.Context, email, pin string) error {
	return c.postJSON(ctx, "pin-verification", "/pin-verification", FallbackVerifyPin, verifyRequest{Email: email, PinCode: pin}, nil)
}

// ResetPassword sets a new password after the passcode was verified.
func (c *Client) ResetPassword(ctx context.Context, req ResetRequest) error {
	return c.postJSON(ctx, "reset-password", "/reset-password", FallbackReset, req, nil)
}

// UploadFile sends one file as multipart field "file".
func (c *Client) UploadFile(ctx context.Context, email string, f File) (*UploadResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(f.Name)))
	ct := f.Type
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)

	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, &Error{Op: "upload", Fallback: FallbackUpload, Err: err}
	}
	if _, err := part.Write(f.Data); err != nil {
		return nil, &Error{Op: "upload", Fallback: FallbackUpload, Err: err}
	}
	if err := mw.Close(); err != nil {
		return nil, &Error{Op: "upload", Fallback: FallbackUpload, Err: err}
	}

	var resp UploadResponse
	err = c.do(ctx, "upload", FallbackUpload, &resp, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/upload/"+url.PathEscape(email), bytes.NewReader(buf.Bytes()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateChat sends a prompt and returns the response fragments.
func (c *Client) CreateChat(ctx context.Context, email, prompt string) (*ChatResponse, error) {
	q := url.Values{}
	q.Set("email", email)
	q.Set("prompt", prompt)

	var resp ChatResponse
	err := c.do(ctx, "chat", FallbackChat, &resp, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/chat/create?"+q.Encode(), nil)
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ClearHistory deletes the server-side chat history for email.
func (c *Client) ClearHistory(ctx context.Context, email string) error {
	return c.do(ctx, "clear-history", FallbackClearHistory, nil, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/chat/clearHistory/"+url.PathEscape(email), nil)
	})
}

func (c *Client) postJSON(ctx context.Context, op, path, fallback string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &Error{Op: op, Fallback: fallback, Err: fmt.Errorf("encode request: %w", err)}
	}
	return c.do(ctx, op, fallback, out, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
}

// do builds the request, attaches the bearer token, and decodes a 2xx body
// into out when out is non-nil. Every failure is returned as *Error.
func (c *Client) do(ctx context.Context, op, fallback string, out any, build func() (*http.Request, error)) error {
	req, err := build()
	if err != nil {
		return &Error{Op: op, Fallback: fallback, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	if c.tokens != nil {
		token, err := c.tokens.Load()
		if err != nil {
			c.logger.Warn("load bearer token", zap.String("op", op), zap.Error(err))
		} else if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Op: op, Fallback: fallback, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Op: op, Status: resp.StatusCode, Fallback: fallback, Err: err}
	}

	c.logger.Debug("api request",
		zap.String("op", op),
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Op: op, Status: resp.StatusCode, Detail: parseDetail(body), Fallback: fallback}
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Op: op, Status: resp.StatusCode, Fallback: fallback, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
