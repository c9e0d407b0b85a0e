package mail

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/tyagiprnv/Job-Tracker/internal/config"
)

// XOAuth2Client implements the SASL XOAUTH2 mechanism used by Gmail and
// Outlook IMAP endpoints.
type XOAuth2Client struct {
	Username    string
	AccessToken string
}

// NewXOAuth2Client creates a new XOAUTH2 SASL client.
func NewXOAuth2Client(username, accessToken string) *XOAuth2Client {
	return &XOAuth2Client{
		Username:    username,
		AccessToken: accessToken,
	}
}

// Start begins the XOAUTH2 authentication.
func (c *XOAuth2Client) Start() (mech string, ir []byte, err error) {
	// Initial response format: "user=" + user + "\x01auth=Bearer " + token + "\x01\x01"
	ir = []byte(fmt.Sprintf("user=%s\x01auth=Bearer %s\x01\x01", c.Username, c.AccessToken))
	return "XOAUTH2", ir, nil
}

// Next handles server challenges. XOAUTH2 has none.
func (c *XOAuth2Client) Next(challenge []byte) (response []byte, err error) {
	return nil, nil
}

// AccessToken exchanges the configured refresh token for a live access
// token. The oauth2 token source caches and refreshes transparently.
func AccessToken(ctx context.Context, cfg *config.Config) (string, error) {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.OAuthClientID,
		ClientSecret: cfg.OAuthClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{"https://mail.google.com/"},
	}

	source := oauthConfig.TokenSource(ctx, &oauth2.Token{
		RefreshToken: cfg.OAuthRefreshToken,
	})
	token, err := source.Token()
	if err != nil {
		return "", fmt.Errorf("refreshing OAuth token: %w", err)
	}
	return token.AccessToken, nil
}
