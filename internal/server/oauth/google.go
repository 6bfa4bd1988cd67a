// Package oauth implements the Google authorization-code flow used for
// browser sign-in. It wraps golang.org/x/oauth2 and exposes the two
// operations the HTTP layer needs: building the consent URL and turning a
// callback code into a verified user identity.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// googleUserInfoURL is the OpenID Connect userinfo endpoint.
const googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// UserInfo is the subset of the OIDC userinfo response the application uses.
// Subject is Google's stable account identifier, Name the display name shown
// on first login.
type UserInfo struct {
	Subject string `json:"sub"`
	Name    string `json:"name"`
}

// GoogleProvider performs the authorization-code exchange against Google.
type GoogleProvider struct {
	cfg         *oauth2.Config
	userInfoURL string
}

// NewGoogleProvider returns a provider configured for the standard Google
// endpoints. Only the openid and profile scopes are requested; email is
// collected separately through the profile form.
func NewGoogleProvider(clientID, clientSecret, redirectURL string) *GoogleProvider {
	return &GoogleProvider{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "profile"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
	}
}

// AuthCodeURL builds the consent-screen URL carrying the given anti-forgery
// state value.
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.cfg.AuthCodeURL(state)
}

// Exchange redeems the authorization code and fetches the userinfo document
// with the resulting access token.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*UserInfo, error) {
	token, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}

	client := p.cfg.Client(ctx, token)
	resp, err := client.Get(p.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("fetching userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("userinfo endpoint returned %d: %s", resp.StatusCode, body)
	}

	var info UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decoding userinfo: %w", err)
	}
	if info.Subject == "" {
		return nil, fmt.Errorf("userinfo response has no subject")
	}
	return &info, nil
}
