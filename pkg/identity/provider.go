package identity

import (
	"context"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// CredentialProvider yields a bearer token for calls to the backend.
// Implementations decide whether the token is static or fetched from the
// hosted identity provider.
type CredentialProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenProvider returns a fixed token, typically one minted out of
// band for development or probing.
type StaticTokenProvider struct {
	AccessToken string
}

func (p *StaticTokenProvider) Token(ctx context.Context) (string, error) {
	return p.AccessToken, nil
}

// ClientCredentialsProvider performs the OAuth2 client-credentials flow
// against the identity provider's token endpoint, caching and refreshing
// the token as needed.
type ClientCredentialsProvider struct {
	source oauth2.TokenSource
}

func NewClientCredentialsProvider(tokenURL, clientID, clientSecret string, scopes []string) *ClientCredentialsProvider {
	cfg := &clientcredentials.Config{
		TokenURL:     tokenURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       scopes,
	}
	return &ClientCredentialsProvider{
		source: cfg.TokenSource(context.Background()),
	}
}

func (p *ClientCredentialsProvider) Token(ctx context.Context) (string, error) {
	tok, err := p.source.Token()
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}
