package registry

import "errors"

// Client construction and request errors.
var (
	// ErrUnsupportedScheme indicates a transport scheme other than http or https.
	ErrUnsupportedScheme = errors.New("transport scheme must be http or https")
	// ErrRegistryRequired indicates that no registry host was provided.
	ErrRegistryRequired = errors.New("registry host is required")
	// ErrCatalogUnsupported indicates that the registry does not expose the _catalog endpoint.
	ErrCatalogUnsupported = errors.New("registry does not support the _catalog endpoint")
	// ErrNotFound indicates a repository, manifest or blob the registry does not have.
	ErrNotFound = errors.New("not found on registry")
	// ErrUnexpectedStatus indicates a response status the client cannot handle.
	ErrUnexpectedStatus = errors.New("unexpected response status")
	// ErrNoUsableChallenge indicates that no challenge in a 401 response could be satisfied.
	ErrNoUsableChallenge = errors.New("no usable authentication challenge")
	// ErrMissingRealm indicates a bearer challenge without a realm parameter.
	ErrMissingRealm = errors.New("bearer challenge is missing the realm parameter")
	// ErrEmptyToken indicates a token endpoint response without a token.
	ErrEmptyToken = errors.New("token endpoint returned no token")
	// ErrUnsupportedDigest indicates a digest algorithm the client cannot verify.
	ErrUnsupportedDigest = errors.New("unsupported digest algorithm")
	// ErrDigestMismatch indicates blob content that does not match its digest.
	ErrDigestMismatch = errors.New("blob content does not match digest")
	// ErrDefaultDomainRequired indicates a domainless reference with no default to apply.
	ErrDefaultDomainRequired = errors.New("default domain is required for a domainless reference")
)
