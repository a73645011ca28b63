// Package client is a small SDK for the nooklet service REST API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/nooklet/nooklet/internal/model"
)

// Client talks to a running nooklet service. It is safe for concurrent use
// once the token is set.
type Client struct {
	http *resty.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithTimeout overrides the default 30s request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

// WithToken sets the bearer token up front, skipping Login.
func WithToken(token string) Option {
	return func(c *Client) { c.http.SetAuthToken(token) }
}

// New constructs a Client against baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Content-Type", "application/json").
			SetTimeout(30 * time.Second),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Tag        string
	Message    string
}

func (e *APIError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Tag, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the service.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type errorBody struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

type dataEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// apiErr builds an APIError from a non-2xx resty response.
func apiErr(resp *resty.Response) error {
	var body errorBody
	_ = json.Unmarshal(resp.Body(), &body)
	msg := body.Message
	if msg == "" {
		msg = resp.Status()
	}
	return &APIError{StatusCode: resp.StatusCode(), Tag: body.Tag, Message: msg}
}

func decodeData(resp *resty.Response, out interface{}) error {
	var env dataEnvelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return json.Unmarshal(env.Data, out)
}

// Register creates an account. Username and displayName are optional.
func (c *Client) Register(ctx context.Context, email, password string, username, displayName *string) error {
	payload := map[string]interface{}{"email": email, "password": password}
	if username != nil {
		payload["username"] = *username
	}
	if displayName != nil {
		payload["displayName"] = *displayName
	}
	resp, err := c.http.R().SetContext(ctx).SetBody(payload).Post("/api/v1/auth/register")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return apiErr(resp)
	}
	return nil
}

// Login authenticates, stores the session token on the client and
// returns it so callers can persist it across processes.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	resp, err := c.http.R().SetContext(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		Post("/api/v1/auth/login")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", apiErr(resp)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := decodeData(resp, &out); err != nil {
		return "", err
	}
	c.http.SetAuthToken(out.Token)
	return out.Token, nil
}

// Logout invalidates the stored session token.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Post("/api/v1/auth/logout")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return apiErr(resp)
	}
	c.http.SetAuthToken("")
	return nil
}

// ListNooklets returns the caller's active (non-archived) nooklets.
func (c *Client) ListNooklets(ctx context.Context) ([]*model.Nooklet, error) {
	resp, err := c.http.R().SetContext(ctx).Get("/api/v1/nooklets")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiErr(resp)
	}
	var out []*model.Nooklet
	if err := decodeData(resp, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateNookletRequest carries the creation payload.
type CreateNookletRequest struct {
	Content    string                 `json:"content"`
	Type       string                 `json:"type,omitempty"`
	RawContent *string                `json:"rawContent,omitempty"`
	Summary    *string                `json:"summary,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	IsDraft    bool                   `json:"isDraft,omitempty"`
	IsFavorite bool                   `json:"isFavorite,omitempty"`
}

// CreateNooklet creates a new entry.
func (c *Client) CreateNooklet(ctx context.Context, req CreateNookletRequest) (*model.Nooklet, error) {
	resp, err := c.http.R().SetContext(ctx).SetBody(req).Post("/api/v1/nooklets")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiErr(resp)
	}
	var out model.Nooklet
	if err := decodeData(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateNooklet applies a partial patch; only the fields present in patch
// are touched, so an explicit nil value clears a nullable field.
func (c *Client) UpdateNooklet(ctx context.Context, id string, patch map[string]interface{}) (*model.Nooklet, error) {
	resp, err := c.http.R().SetContext(ctx).SetBody(patch).Put("/api/v1/nooklets/" + id)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiErr(resp)
	}
	var out model.Nooklet
	if err := decodeData(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ArchiveNooklet soft-deletes an entry; it disappears from listings but is
// retained in storage.
func (c *Client) ArchiveNooklet(ctx context.Context, id string) (*model.Nooklet, error) {
	resp, err := c.http.R().SetContext(ctx).Delete("/api/v1/nooklets/" + id)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiErr(resp)
	}
	var out model.Nooklet
	if err := decodeData(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RestoreNooklet un-archives an entry.
func (c *Client) RestoreNooklet(ctx context.Context, id string) (*model.Nooklet, error) {
	resp, err := c.http.R().SetContext(ctx).Post("/api/v1/nooklets/" + id + "/restore")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiErr(resp)
	}
	var out model.Nooklet
	if err := decodeData(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
