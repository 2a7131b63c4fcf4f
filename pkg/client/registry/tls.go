package registry

import (
	"net/http"

	"github.com/docker/go-connections/tlsconfig"
)

// WithInsecureTLS skips server certificate verification, for
// registries behind self-signed certificates. It replaces the HTTP
// client, so combine it with WithHTTPClient by configuring the
// transport there instead.
func WithInsecureTLS() Option {
	return func(c *Client) {
		tlsConfig := tlsconfig.ClientDefault()
		tlsConfig.InsecureSkipVerify = true

		c.httpClient = &http.Client{
			Transport: &http.Transport{TLSClientConfig: tlsConfig},
		}
	}
}
