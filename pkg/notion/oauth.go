package notion

import (
	"context"

	"golang.org/x/oauth2"
)

// OAuthEndpoint is Notion's public OAuth 2.0 endpoint.
var OAuthEndpoint = oauth2.Endpoint{
	AuthURL:   "https://api.notion.com/v1/oauth/authorize",
	TokenURL:  "https://api.notion.com/v1/oauth/token",
	AuthStyle: oauth2.AuthStyleInHeader,
}

// OAuthConfig builds the oauth2 config for a Notion public integration.
func OAuthConfig(clientID, clientSecret, redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Endpoint:     OAuthEndpoint,
	}
}

// ExchangeCode trades an authorization code for an access token. Notion
// integration tokens do not expire, so no refresh handling is needed here.
func ExchangeCode(ctx context.Context, cfg *oauth2.Config, code string) (*oauth2.Token, error) {
	return cfg.Exchange(ctx, code)
}
