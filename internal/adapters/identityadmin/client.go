package identityadmin

// Package identityadmin talks to the identity service's privileged admin
// API using the service-role key. It implements ports.IdentityAdmin.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/Shiki0138/fleeksonline/internal/errors"
	"github.com/Shiki0138/fleeksonline/internal/ports"
)

// Config captures runtime configuration for the identity admin client.
type Config struct {
	BaseURL        string
	ServiceRoleKey string
	Timeout        time.Duration
	Client         *http.Client
}

// Client calls the identity service admin API.
type Client struct {
	baseURL string
	key     string
	client  *http.Client
}

// NewClient constructs an identity admin client from config.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("identity admin: base URL is required")
	}
	key := strings.TrimSpace(cfg.ServiceRoleKey)
	if key == "" {
		return nil, errors.New("identity admin: service role key is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{baseURL: base, key: key, client: hc}, nil
}

// userRecord mirrors the identity service's user representation.
type userRecord struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Metadata struct {
		FullName string   `json:"full_name"`
		Groups   []string `json:"groups"`
	} `json:"user_metadata"`
}

func (u userRecord) toPort() ports.IdentityUser {
	return ports.IdentityUser{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.Metadata.FullName,
		Groups:   u.Metadata.Groups,
	}
}

// FindUserByEmail looks up an account by email via the admin users listing.
func (c *Client) FindUserByEmail(ctx context.Context, email string) (ports.IdentityUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ports.IdentityUser{}, apperrors.Validation("email is required")
	}

	endpoint := c.baseURL + "/admin/users?email=" + url.QueryEscape(email)
	var out struct {
		Users []userRecord `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return ports.IdentityUser{}, err
	}

	for _, u := range out.Users {
		if strings.EqualFold(u.Email, email) {
			return u.toPort(), nil
		}
	}
	return ports.IdentityUser{}, apperrors.NotFoundf("no account for %s", email)
}

// UpdatePassword sets a new password for the account.
func (c *Client) UpdatePassword(ctx context.Context, userID, newPassword string) error {
	if strings.TrimSpace(userID) == "" {
		return apperrors.Validation("user ID is required")
	}
	if newPassword == "" {
		return apperrors.Validation("new password is required")
	}

	endpoint := c.baseURL + "/admin/users/" + url.PathEscape(userID)
	body := map[string]string{"password": newPassword}
	return c.do(ctx, http.MethodPut, endpoint, body, nil)
}

// VerifyPassword checks credentials using the password grant without
// keeping the minted tokens. A 400/401 response means bad credentials.
func (c *Client) VerifyPassword(ctx context.Context, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}

	endpoint := c.baseURL + "/token?grant_type=password"
	body := map[string]string{"email": email, "password": password}

	err := c.do(ctx, http.MethodPost, endpoint, body, nil)
	if err == nil {
		return true, nil
	}
	if apperrors.IsUnauthorized(err) || apperrors.IsValidation(err) {
		return false, nil
	}
	return false, err
}

// CreateUser provisions a confirmed account.
func (c *Client) CreateUser(ctx context.Context, email, password, fullName string) (ports.IdentityUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ports.IdentityUser{}, apperrors.Validation("email is required")
	}
	if password == "" {
		return ports.IdentityUser{}, apperrors.Validation("password is required")
	}

	endpoint := c.baseURL + "/admin/users"
	body := map[string]any{
		"email":         email,
		"password":      password,
		"email_confirm": true,
		"user_metadata": map[string]any{"full_name": fullName},
	}
	var out userRecord
	if err := c.do(ctx, http.MethodPost, endpoint, body, &out); err != nil {
		return ports.IdentityUser{}, err
	}
	return out.toPort(), nil
}

// do performs one admin API call, mapping HTTP status to AppError codes.
func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("apikey", c.key)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "identity service unreachable")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(out); decodeErr != nil {
			return fmt.Errorf("decode response: %w", decodeErr)
		}
		return nil
	}

	msg := readErrorMessage(resp.Body)
	switch resp.StatusCode {
	case http.StatusBadRequest:
		return apperrors.Validation(msg)
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperrors.Unauthorized(msg)
	case http.StatusNotFound:
		return apperrors.NotFound(msg)
	case http.StatusConflict, http.StatusUnprocessableEntity:
		return apperrors.Conflict(msg)
	default:
		return apperrors.Internalf("identity service returned %d: %s", resp.StatusCode, msg)
	}
}

// readErrorMessage best-effort extracts an error message from a failed response.
func readErrorMessage(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(b) == 0 {
		return "identity service error"
	}
	var e struct {
		Message   string `json:"message"`
		Msg       string `json:"msg"`
		ErrorDesc string `json:"error_description"`
	}
	if json.Unmarshal(b, &e) == nil {
		for _, m := range []string{e.Message, e.Msg, e.ErrorDesc} {
			if m != "" {
				return m
			}
		}
	}
	return strings.TrimSpace(string(b))
}
