package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"

	"conferencehub/internal/domain"
)

const defaultUserURL = "https://api.github.com/user"

// Config holds the OAuth application credentials.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type oauthClient struct {
	oauth   *oauth2.Config
	client  *http.Client
	userURL string
}

// NewClient returns a GitHubClient for the configured OAuth application.
// httpClient may be nil.
func NewClient(cfg Config, httpClient *http.Client) domain.GitHubClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &oauthClient{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     githuboauth.Endpoint,
		},
		client:  httpClient,
		userURL: defaultUserURL,
	}
}

func (c *oauthClient) ExchangeCode(ctx context.Context, code string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.client)
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange code: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("github returned an empty access token")
	}
	return token.AccessToken, nil
}

func (c *oauthClient) FetchUser(ctx context.Context, accessToken string) (*domain.GitHubUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch github user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github user api returned status: %d", resp.StatusCode)
	}

	var user domain.GitHubUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode github user: %w", err)
	}
	if user.Login == "" && user.Email == "" {
		return nil, fmt.Errorf("github user has no usable identity")
	}
	return &user, nil
}
