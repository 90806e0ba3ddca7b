package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/thebestitaly/mapyourfriends-emergent/utils/errors"
)

// Identity is what the external identity provider knows about a signed-in person.
type Identity struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Provider resolves the one-time session id handed to the client after sign-in.
type Provider interface {
	Resolve(ctx context.Context, sessionID string) (Identity, error)
}

var errInvalidSessionID = errors.NewAPIError("INVALID_SESSION_ID", "Invalid session_id", http.StatusUnauthorized)

// StaticProvider answers from a fixed table. Used for local development and tests.
type StaticProvider map[string]Identity

func (p StaticProvider) Resolve(_ context.Context, sessionID string) (Identity, error) {
	id, ok := p[sessionID]
	if !ok {
		return Identity{}, errInvalidSessionID
	}
	return id, nil
}

// ParseStaticProvider reads entries of the form session_id=email:name separated by commas.
func ParseStaticProvider(entries string) (StaticProvider, error) {
	p := StaticProvider{}
	for _, entry := range strings.Split(entries, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		sid, rest, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("identity %q: missing '='", entry)
		}
		email, name, _ := strings.Cut(rest, ":")
		if strings.TrimSpace(sid) == "" || strings.TrimSpace(email) == "" {
			return nil, fmt.Errorf("identity %q: session id and email are required", entry)
		}
		if name == "" {
			name, _, _ = strings.Cut(email, "@")
		}
		p[strings.TrimSpace(sid)] = Identity{Email: strings.TrimSpace(email), Name: strings.TrimSpace(name)}
	}
	return p, nil
}

// HTTPProvider asks a remote identity service, passing the session id in the X-Session-ID header.
type HTTPProvider struct {
	URL    string
	Client *http.Client
}

func (p *HTTPProvider) Resolve(ctx context.Context, sessionID string) (Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return Identity{}, errors.Wrap(err, "IDENTITY_ERROR", "Identity provider unavailable", http.StatusBadGateway)
	}
	req.Header.Set("X-Session-ID", sessionID)

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Identity{}, errors.Wrap(err, "IDENTITY_ERROR", "Identity provider unavailable", http.StatusBadGateway)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Identity{}, errInvalidSessionID
	}

	var id Identity
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		return Identity{}, errors.Wrap(err, "IDENTITY_ERROR", "Invalid identity response", http.StatusBadGateway)
	}
	if id.Email == "" {
		return Identity{}, errInvalidSessionID
	}
	return id, nil
}
