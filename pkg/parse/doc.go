// Package parse provides the lexical primitives shared by the registry
// string grammars (image references, authorization scopes, and
// WWW-Authenticate challenges).
//
// The package exposes a positioned scanner over a US-ASCII input string
// together with the character classes and shared rules the grammars are
// built from. Parsers built on top of it are pure functions: each call
// reads its own input, allocates its own output, and keeps no state
// between calls, so they are safe for concurrent use.
//
// All failures are reported as *SyntaxError carrying the byte offset of
// the failure and the grammar construct that was expected there.
package parse
