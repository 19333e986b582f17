// Package client is the HTTP client used by the gophreport CLI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/atinyakov/GophReport/internal/models"
)

// ErrNotLoggedIn is returned by calls that need a token when none is set.
var ErrNotLoggedIn = errors.New("not logged in")

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
}

// Profile is the answer of GET /api/users/me.
type Profile struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ComplaintInput is what a user fills in to file a complaint.
type ComplaintInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Address     string  `json:"address,omitempty"`
}

// Client talks to the GophReport API. The zero value is not usable; use New.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// New returns a Client for baseURL. A nil hc uses http.DefaultClient.
func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// SetToken sets the bearer token sent with every request.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	return c.token
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, email, name, password string) error {
	body := map[string]string{"email": email, "name": name, "password": password}
	return c.do(ctx, http.MethodPost, "/api/auth/register", body, nil)
}

// Login exchanges credentials for a token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &resp); err != nil {
		return "", err
	}
	c.token = resp.Token
	return resp.Token, nil
}

// Me returns the profile of the logged-in user.
func (c *Client) Me(ctx context.Context) (Profile, error) {
	var p Profile
	if c.token == "" {
		return p, ErrNotLoggedIn
	}
	err := c.do(ctx, http.MethodGet, "/api/users/me", nil, &p)
	return p, err
}

// CreateComplaint files a complaint as the logged-in user.
func (c *Client) CreateComplaint(ctx context.Context, in ComplaintInput) (models.Complaint, error) {
	var out models.Complaint
	if c.token == "" {
		return out, ErrNotLoggedIn
	}
	err := c.do(ctx, http.MethodPost, "/api/complaints", in, &out)
	return out, err
}

// ListComplaints lists complaints, optionally only those of owner.
func (c *Client) ListComplaints(ctx context.Context, owner string) ([]models.Complaint, error) {
	path := "/api/complaints"
	if owner != "" {
		path += "?" + url.Values{"owner": {owner}}.Encode()
	}
	var out []models.Complaint
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// DeleteComplaint deletes a complaint owned by the user, or any if admin.
func (c *Client) DeleteComplaint(ctx context.Context, id int64) error {
	if c.token == "" {
		return ErrNotLoggedIn
	}
	return c.do(ctx, http.MethodDelete, "/api/complaints/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
