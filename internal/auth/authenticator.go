// internal/auth/authenticator.go
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"spacebot/pkg/registrations"
)

// ErrUnregisteredTenant is returned when no registration exists for the
// client id an inbound webhook claims to come from.
var ErrUnregisteredTenant = errors.New("unregistered client id")

// Session is an authenticated context for outbound calls to one Space
// organization. Ephemeral: rebuilt on every authentication, never stored.
type Session struct {
	ClientID    string
	ServerURL   string
	AccessToken string
}

// Authenticator exchanges stored client credentials for bearer tokens and
// caches them until expiry.
type Authenticator struct {
	store  registrations.Store
	cache  TokenCache
	client *http.Client
	log    *zap.SugaredLogger
}

func NewAuthenticator(store registrations.Store, cache TokenCache, client *http.Client, log *zap.SugaredLogger) *Authenticator {
	if client == nil {
		client = http.DefaultClient
	}
	return &Authenticator{store: store, cache: cache, client: client, log: log}
}

// AuthenticateByID resolves the registration for clientID and authenticates
// with it. Fails with ErrUnregisteredTenant when the id is unknown.
func (a *Authenticator) AuthenticateByID(ctx context.Context, clientID string) (Session, error) {
	reg, err := a.store.Get(ctx, clientID)
	if err != nil {
		if errors.Is(err, registrations.ErrNotFound) {
			return Session{}, fmt.Errorf("%w: %s", ErrUnregisteredTenant, clientID)
		}
		return Session{}, fmt.Errorf("registration lookup: %w", err)
	}
	return a.AuthenticateRegistration(ctx, reg)
}

// AuthenticateRegistration produces a session for a known registration,
// reusing the cached token when it is still valid and performing a
// client-credentials exchange otherwise.
func (a *Authenticator) AuthenticateRegistration(ctx context.Context, reg registrations.ClientRegistration) (Session, error) {
	tok, err := a.token(ctx, reg)
	if err != nil {
		return Session{}, err
	}
	return Session{ClientID: reg.ClientID, ServerURL: reg.ServerURL, AccessToken: tok}, nil
}

func (a *Authenticator) token(ctx context.Context, reg registrations.ClientRegistration) (string, error) {
	tok, ok, err := a.cache.GetValid(ctx, reg.ClientID)
	if err != nil {
		// A cached token we cannot decode is fatal for this attempt, not
		// an excuse to exchange again.
		return "", fmt.Errorf("cached token: %w", err)
	}
	if ok {
		return tok, nil
	}
	tok, err = a.exchange(ctx, reg)
	if err != nil {
		return "", err
	}
	// Concurrent renewals for one client may race here; the overwrite is
	// idempotent so the loser's token is just as good.
	a.cache.Put(ctx, reg.ClientID, tok)
	return tok, nil
}

// exchange performs the OAuth client-credentials grant against the
// organization's token endpoint.
func (a *Authenticator) exchange(ctx context.Context, reg registrations.ClientRegistration) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("scope", "**")

	endpoint := strings.TrimRight(reg.ServerURL, "/") + "/oauth/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(reg.ClientID, reg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("token exchange: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("token exchange decode: %w", err)
	}
	if out.AccessToken == "" {
		return "", errors.New("token exchange: empty access_token")
	}
	a.log.Debugw("access token renewed", "clientId", reg.ClientID)
	return out.AccessToken, nil
}
