package registry

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/devantler-tech/distreg/pkg/challenge"
	"github.com/devantler-tech/distreg/pkg/scope"
)

// tokenResponse is the token endpoint response body. Registries send
// either field; "token" wins when both are present.
type tokenResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"access_token"`
}

// authorize turns a WWW-Authenticate header into an Authorization
// header value. Bearer challenges are resolved through the token
// endpoint they advertise; a Basic challenge is satisfied directly
// when credentials are available. Tokens are fetched fresh on every
// call and never cached.
func (c *Client) authorize(ctx context.Context, header string) (string, error) {
	challenges, err := challenge.Parse(header)
	if err != nil {
		return "", fmt.Errorf("parse WWW-Authenticate header: %w", err)
	}

	for _, ch := range challenges {
		switch {
		case strings.EqualFold(ch.Scheme, "Bearer"):
			token, err := c.bearerToken(ctx, ch)
			if err != nil {
				return "", err
			}

			return "Bearer " + token, nil
		case strings.EqualFold(ch.Scheme, "Basic") && !c.creds.empty():
			return "Basic " + basicAuth(c.creds), nil
		}
	}

	return "", fmt.Errorf("%w in %q", ErrNoUsableChallenge, header)
}

// bearerToken fetches a token from the realm a Bearer challenge
// advertises, forwarding its service and scope parameters.
func (c *Client) bearerToken(ctx context.Context, ch challenge.Challenge) (string, error) {
	realm, ok := ch.Param("realm")
	if !ok {
		return "", ErrMissingRealm
	}

	tokenURL, err := url.Parse(realm)
	if err != nil {
		return "", fmt.Errorf("parse token realm %q: %w", realm, err)
	}

	query := tokenURL.Query()

	if service, ok := ch.Param("service"); ok {
		query.Set("service", service)
	}

	if scopeValue, ok := ch.Param("scope"); ok {
		granted, err := scope.Parse(scopeValue)
		if err != nil {
			return "", fmt.Errorf("parse advertised scope %q: %w", scopeValue, err)
		}

		// One scope query parameter per resource scope, as the token
		// endpoint expects.
		for _, resourceScope := range granted {
			query.Add("scope", resourceScope.String())
		}
	}

	tokenURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tokenURL.String(), nil)
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}

	if !c.creds.empty() {
		req.SetBasicAuth(c.creds.Username, c.creds.Password)
	}

	c.logger.WithFields(map[string]any{
		"realm": realm,
		"scope": query["scope"],
	}).Debug("fetching bearer token")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request token from %q: %w", realm, err)
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("request token from %q: %w: %s", realm, ErrUnexpectedStatus, resp.Status)
	}

	var token tokenResponse

	err = json.NewDecoder(resp.Body).Decode(&token)
	if err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}

	if token.Token != "" {
		return token.Token, nil
	}

	if token.AccessToken != "" {
		return token.AccessToken, nil
	}

	return "", ErrEmptyToken
}

// basicAuth encodes credentials for a Basic Authorization header.
func basicAuth(creds Credentials) string {
	return base64.StdEncoding.EncodeToString([]byte(creds.Username + ":" + creds.Password))
}
