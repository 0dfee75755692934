package youtube

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

// LoadToken reads an OAuth2 token saved as JSON (access_token,
// refresh_token, expiry, ...).
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parse token file %s: %w", path, err)
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, fmt.Errorf("token file %s holds no access or refresh token", path)
	}
	return &tok, nil
}

// TokenOption returns a client option authenticating with the token in path.
func TokenOption(path string) (option.ClientOption, error) {
	tok, err := LoadToken(path)
	if err != nil {
		return nil, err
	}
	return option.WithTokenSource(oauth2.StaticTokenSource(tok)), nil
}

// HTTPClientOption authenticates with the token in path and sends requests
// through base, which may be nil.
func HTTPClientOption(path string, base http.RoundTripper) (option.ClientOption, error) {
	tok, err := LoadToken(path)
	if err != nil {
		return nil, err
	}
	if base == nil {
		base = http.DefaultTransport
	}
	client := &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(tok),
			Base:   base,
		},
	}
	return option.WithHTTPClient(client), nil
}
