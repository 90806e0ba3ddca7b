package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"

	"github.com/thebestitaly/mapyourfriends-emergent/utils/errors"
)

// SessionCookie is the cookie the backend uses to carry the session.
const SessionCookie = "session_token"

// Client talks to the Map Your Friends backend. Every request carries the session cookie held in its jar.
type Client struct {
	baseURL *url.URL
	http    *http.Client

	Auth            *AuthAPI
	Friends         *FriendsAPI
	ImportedFriends *ImportedFriendsAPI
	Users           *UsersAPI
	Groups          *GroupsAPI
	Meetups         *MeetupsAPI
	Messages        *MessagesAPI
	Geocoding       *GeocodingAPI
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. A cookie jar is installed if it has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient builds a client for the backend at baseURL. The URL is required; there is no default.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("backend URL is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse backend URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("backend URL must be http or https, got %q", baseURL)
	}

	c := &Client{baseURL: u, http: &http.Client{}}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("cookie jar: %w", err)
		}
		c.http.Jar = jar
	}

	c.Auth = &AuthAPI{c: c}
	c.Friends = &FriendsAPI{c: c}
	c.ImportedFriends = &ImportedFriendsAPI{c: c}
	c.Users = &UsersAPI{c: c}
	c.Groups = &GroupsAPI{c: c}
	c.Meetups = &MeetupsAPI{c: c}
	c.Messages = &MessagesAPI{c: c}
	c.Geocoding = &GeocodingAPI{c: c}
	return c, nil
}

// BaseURL returns the backend URL the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// SetSessionToken installs a previously issued session token into the cookie jar.
func (c *Client) SetSessionToken(token string) {
	c.http.Jar.SetCookies(c.baseURL, []*http.Cookie{{
		Name:  SessionCookie,
		Value: token,
		Path:  "/",
	}})
}

// SessionToken returns the session token currently held in the jar, or "".
func (c *Client) SessionToken() string {
	for _, ck := range c.http.Jar.Cookies(c.baseURL) {
		if ck.Name == SessionCookie {
			return ck.Value
		}
	}
	return ""
}

// ClearSession drops the session cookie from the jar.
func (c *Client) ClearSession() {
	c.http.Jar.SetCookies(c.baseURL, []*http.Cookie{{
		Name:   SessionCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	}})
}

// Health calls GET /api/health.
func (c *Client) Health(ctx context.Context) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.getJSON(ctx, "/api/health", &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

// expand fills the {placeholders} of route with escaped args, in order.
func expand(route string, args ...string) string {
	if len(args) == 0 {
		return route
	}
	var b strings.Builder
	i := 0
	for {
		open := strings.IndexByte(route, '{')
		if open < 0 || i >= len(args) {
			b.WriteString(route)
			break
		}
		end := strings.IndexByte(route[open:], '}')
		if end < 0 {
			b.WriteString(route)
			break
		}
		b.WriteString(route[:open])
		b.WriteString(url.PathEscape(args[i]))
		i++
		route = route[open+end+1:]
	}
	return b.String()
}

func (c *Client) getJSON(ctx context.Context, route string, out any, args ...string) error {
	return c.doJSON(ctx, http.MethodGet, route, nil, out, args...)
}

func (c *Client) doJSON(ctx context.Context, method, route string, body, out any, args ...string) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, errors.CodeValidation, "could not encode request", 0)
		}
		reader = bytes.NewReader(data)
	}
	return c.send(ctx, method, route, expand(route, args...), reader, "application/json", out)
}

func (c *Client) send(ctx context.Context, method, route, path string, body io.Reader, contentType string, out any) error {
	target := c.baseURL.String() + path
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return errors.Network(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		observeRequest(method, route, "error", start)
		return errors.Network(err)
	}
	defer resp.Body.Close()
	observeRequest(method, route, strconv.Itoa(resp.StatusCode), start)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Network(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Backend(resp.StatusCode, detailOf(data))
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(err, errors.CodeBackend, "invalid response body", resp.StatusCode)
	}
	return nil
}

// detailOf extracts the backend's {"detail": "..."} message. Non-JSON bodies yield "Unknown error".
func detailOf(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "Unknown error"
	}
	var msg string
	if err := json.Unmarshal(payload.Detail, &msg); err == nil {
		return msg
	}
	return ""
}
