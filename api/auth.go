// ABOUTME: Login against the backend's form-encoded token endpoint
// ABOUTME: Uses the oauth2 password grant; refresh is handled by the token source
package api

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

// oauthConfig describes the backend's token endpoint. The login route takes
// a standard form-encoded password grant (username/password fields).
func oauthConfig(baseURL string) *oauth2.Config {
	return &oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  baseURL + apiPrefix + "/auth/login",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// Login exchanges credentials for a token.
func Login(ctx context.Context, baseURL, email, password string) (*oauth2.Token, error) {
	tok, err := oauthConfig(baseURL).PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return tok, nil
}

// TokenSource wraps a stored token so it auto-refreshes against the backend
// when expired. The returned source is safe for concurrent use.
func TokenSource(ctx context.Context, baseURL string, tok *oauth2.Token) oauth2.TokenSource {
	return oauthConfig(baseURL).TokenSource(ctx, tok)
}

// StaticTokenSource returns a source that never refreshes, for callers that
// already manage token lifetime (tests, short-lived commands).
func StaticTokenSource(accessToken string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
}
