package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/sirupsen/logrus"

	"github.com/devantler-tech/distreg/pkg/client/netretry"
	"github.com/devantler-tech/distreg/pkg/parse"
	"github.com/devantler-tech/distreg/pkg/reference"
)

// Docker schema 2 media types accepted alongside the OCI ones, for
// registries that have not migrated their manifests.
const (
	mediaTypeDockerManifest     = "application/vnd.docker.distribution.manifest.v2+json"
	mediaTypeDockerManifestList = "application/vnd.docker.distribution.manifest.list.v2+json"
)

// Credentials holds a username and password for registry and token
// endpoint authentication. The zero value means anonymous access.
type Credentials struct {
	Username string
	Password string
}

// empty reports whether no credentials were provided.
func (c Credentials) empty() bool {
	return c.Username == "" && c.Password == ""
}

// Client is a distribution API client bound to a single registry host.
// It is safe for concurrent use.
type Client struct {
	scheme     string
	registry   string
	creds      Credentials
	httpClient *http.Client
	logger     logrus.FieldLogger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for all requests,
// including token endpoint requests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger replaces the logger used for request and auth tracing.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for the registry at the given host. The scheme
// must be "http" or "https"; the host must be a valid registry
// hostname with an optional port.
func New(scheme, registry string, creds Credentials, opts ...Option) (*Client, error) {
	if scheme != "http" && scheme != "https" {
		return nil, fmt.Errorf("%w, got %q", ErrUnsupportedScheme, scheme)
	}

	if registry == "" {
		return nil, ErrRegistryRequired
	}

	scanner := parse.NewScanner(registry)

	_, err := parse.ReadHostname(scanner)
	if err == nil {
		err = scanner.RequireEOF()
	}

	if err != nil {
		return nil, fmt.Errorf("parse registry host %q: %w", registry, err)
	}

	client := &Client{
		scheme:     scheme,
		registry:   registry,
		creds:      creds,
		httpClient: http.DefaultClient,
		logger:     logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Registry returns the registry host the client is bound to.
func (c *Client) Registry() string {
	return c.registry
}

// endpoint builds a /v2/ API URL for the given path and query.
func (c *Client) endpoint(path string, query url.Values) string {
	apiURL := url.URL{
		Scheme:   c.scheme,
		Host:     c.registry,
		Path:     "/v2/" + path,
		RawQuery: query.Encode(),
	}

	return apiURL.String()
}

// Ping checks that the registry implements the distribution API by
// requesting the /v2/ base endpoint.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("", nil), nil)
	})
	if err != nil {
		return err
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	return nil
}

// RawCatalog lists repositories on the registry and returns the raw
// response body. The returned Paginate is the cursor for the next
// page, or nil when the listing is complete. Registries that do not
// implement the catalog endpoint yield ErrCatalogUnsupported.
func (c *Client) RawCatalog(ctx context.Context, page *Paginate) ([]byte, *Paginate, error) {
	endpoint := c.endpoint("_catalog", page.query())

	body, next, err := c.getPaginated(ctx, endpoint)
	if err != nil {
		// Catalog support is optional in the distribution API.
		if errors.Is(err, ErrNotFound) {
			return nil, nil, ErrCatalogUnsupported
		}

		return nil, nil, fmt.Errorf("list catalog: %w", err)
	}

	return body, next, nil
}

// RawTags lists tags of a repository and returns the raw response
// body. Pagination works as for RawCatalog.
func (c *Client) RawTags(ctx context.Context, repository string, page *Paginate) ([]byte, *Paginate, error) {
	endpoint := c.endpoint(repository+"/tags/list", page.query())

	body, next, err := c.getPaginated(ctx, endpoint)
	if err != nil {
		return nil, nil, fmt.Errorf("list tags of %q: %w", repository, err)
	}

	return body, next, nil
}

// getPaginated performs an authenticated GET and extracts the next
// page cursor from the Link response header.
func (c *Client) getPaginated(ctx context.Context, endpoint string) ([]byte, *Paginate, error) {
	resp, err := c.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return nil, nil, err
	}

	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, nil, ErrNotFound
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read response body: %w", err)
	}

	return body, nextPage(resp.Header.Get("Link")), nil
}

// Manifest is a raw image manifest as served by the registry.
type Manifest struct {
	// MediaType is the Content-Type the registry served the manifest
	// with.
	MediaType string
	// Digest is the Docker-Content-Digest response header, or "" when
	// the registry did not send one.
	Digest string
	// Body is the verbatim manifest bytes.
	Body []byte
}

// Manifest fetches the manifest the reference points at. A digest in
// the reference takes precedence over a tag; a reference with neither
// resolves the "latest" tag.
func (c *Client) Manifest(ctx context.Context, ref reference.Reference) (Manifest, error) {
	selector := "latest"

	switch {
	case ref.Digest != nil:
		selector = ref.Digest.String()
	case ref.Tag != "":
		selector = ref.Tag
	}

	endpoint := c.endpoint(ref.RemoteName()+"/manifests/"+selector, nil)
	accept := strings.Join([]string{
		ociv1.MediaTypeImageManifest,
		ociv1.MediaTypeImageIndex,
		mediaTypeDockerManifest,
		mediaTypeDockerManifestList,
	}, ", ")

	resp, err := c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}

		req.Header.Set("Accept", accept)

		return req, nil
	})
	if err != nil {
		return Manifest{}, fmt.Errorf("fetch manifest %q: %w", ref.String(), err)
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return Manifest{}, fmt.Errorf("fetch manifest %q: %w", ref.String(), ErrNotFound)
	}

	if resp.StatusCode != http.StatusOK {
		return Manifest{}, fmt.Errorf("fetch manifest %q: %w: %s", ref.String(), ErrUnexpectedStatus, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest body: %w", err)
	}

	return Manifest{
		MediaType: resp.Header.Get("Content-Type"),
		Digest:    resp.Header.Get("Docker-Content-Digest"),
		Body:      body,
	}, nil
}

// Blob opens a blob for reading and returns its content length, or -1
// when the registry did not declare one. The caller owns the returned
// reader and must close it.
func (c *Client) Blob(ctx context.Context, repository string, dgst reference.Digest) (io.ReadCloser, int64, error) {
	return c.blob(ctx, repository, dgst, "")
}

// BlobRange opens a byte range of a blob. A negative end requests
// everything from start onward. Registries answering with the full
// blob instead of the range are passed through unchanged.
func (c *Client) BlobRange(ctx context.Context, repository string, dgst reference.Digest, start, end int64) (io.ReadCloser, int64, error) {
	rangeSpec := fmt.Sprintf("bytes=%d-", start)
	if end >= 0 {
		rangeSpec = fmt.Sprintf("bytes=%d-%d", start, end)
	}

	return c.blob(ctx, repository, dgst, rangeSpec)
}

func (c *Client) blob(ctx context.Context, repository string, dgst reference.Digest, rangeSpec string) (io.ReadCloser, int64, error) {
	endpoint := c.endpoint(repository+"/blobs/"+dgst.String(), nil)

	resp, err := c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}

		if rangeSpec != "" {
			req.Header.Set("Range", rangeSpec)
		}

		return req, nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("fetch blob %q: %w", dgst.String(), err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode == http.StatusNotFound {
			return nil, 0, fmt.Errorf("fetch blob %q: %w", dgst.String(), ErrNotFound)
		}

		return nil, 0, fmt.Errorf("fetch blob %q: %w: %s", dgst.String(), ErrUnexpectedStatus, resp.Status)
	}

	return resp.Body, resp.ContentLength, nil
}

// Retry policy for transient network failures.
const (
	maxSendAttempts = 3
	retryBaseWait   = 500 * time.Millisecond
	retryMaxWait    = 5 * time.Second
)

// do performs a request with the distribution token flow: on a 401
// response the WWW-Authenticate challenges are resolved into an
// Authorization header and the request is rebuilt and retried exactly
// once. The build callback must produce a fresh request each call.
func (c *Client) do(ctx context.Context, build func() (*http.Request, error)) (*http.Response, error) {
	resp, err := c.send(ctx, build, "")
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	header := resp.Header.Get("WWW-Authenticate")

	_ = resp.Body.Close()

	c.logger.Debug("registry requires authentication")

	authorization, err := c.authorize(ctx, header)
	if err != nil {
		return nil, err
	}

	return c.send(ctx, build, authorization)
}

// send issues a freshly built request, retrying transient network
// failures with exponential backoff.
func (c *Client) send(
	ctx context.Context,
	build func() (*http.Request, error),
	authorization string,
) (*http.Response, error) {
	for attempt := 1; ; attempt++ {
		req, err := build()
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}

		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}

		resp, err := c.httpClient.Do(req)
		if err == nil {
			return resp, nil
		}

		if attempt == maxSendAttempts || !netretry.IsRetryable(err) {
			return nil, fmt.Errorf("request %s: %w", req.URL.Redacted(), err)
		}

		delay := netretry.ExponentialDelay(attempt, retryBaseWait, retryMaxWait)

		c.logger.WithFields(map[string]any{
			"url":     req.URL.Redacted(),
			"attempt": attempt,
			"delay":   delay,
		}).Debug("retrying transient request failure")

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("request %s: %w", req.URL.Redacted(), ctx.Err())
		case <-time.After(delay):
		}
	}
}
