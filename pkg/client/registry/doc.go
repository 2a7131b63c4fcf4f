// Package registry provides a minimal OCI distribution client over the
// registry string grammars.
//
// The client is bound to one registry host and speaks the /v2/ HTTP
// API: catalog and tag listing (paginated), manifest retrieval, and
// blob downloads with optional byte ranges. Authentication follows the
// distribution token flow: on a 401 response the WWW-Authenticate
// header is parsed into challenges, the advertised scope is validated,
// and a bearer token is fetched from the realm and attached to a
// single retry. Tokens are never cached between calls and credentials
// are never persisted.
//
// Resolution of implicit default registries is the caller's concern;
// Canonicalize makes that step explicit.
package registry
