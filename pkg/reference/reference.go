package reference

import (
	"strings"

	"github.com/devantler-tech/distreg/pkg/parse"
)

// Reference is a parsed image reference. It is immutable once
// constructed: every parse call allocates a fresh value owned solely
// by the caller.
type Reference struct {
	// Domain is the registry host, or nil when the reference carries
	// none. Resolution of implicit default registries is the caller's
	// concern, not the parser's.
	Domain *parse.Hostname
	// Path holds the slash-separated path components of the name.
	Path []string
	// Tag is the optional tag, or "" when absent.
	Tag string
	// Digest is the optional content digest, or nil when absent.
	Digest *Digest
}

// Digest is a content address of the form `algorithm:hex`, pinning an
// image immutably.
type Digest struct {
	// Algorithm is the algorithm part as written, e.g. "sha256" or
	// "sha512+b64".
	Algorithm string
	// Hex is the hex-encoded digest value, at least 32 characters
	// (a 128-bit content address).
	Hex string
}

// digestSeparators are the characters that may join algorithm
// components.
const digestSeparators = "+.-_"

// AlgorithmComponents splits the algorithm into its ordered
// components, e.g. "sha512+b64" yields ["sha512", "b64"].
func (d Digest) AlgorithmComponents() []string {
	return strings.FieldsFunc(d.Algorithm, func(r rune) bool {
		return strings.ContainsRune(digestSeparators, r)
	})
}

// IsIdentifier reports whether the digest qualifies as a strict
// content-address identifier: a sha256-class value of exactly 64
// lowercase hex characters.
func (d Digest) IsIdentifier() bool {
	if len(d.Hex) != identifierLength {
		return false
	}

	for i := range len(d.Hex) {
		if !parse.IsLowerHexDigit(d.Hex[i]) {
			return false
		}
	}

	return true
}

// String reassembles the digest as `algorithm:hex`.
func (d Digest) String() string {
	return d.Algorithm + ":" + d.Hex
}

// Name returns the reference name without tag or digest: the
// slash-joined path, prefixed by the domain when present.
func (r Reference) Name() string {
	path := strings.Join(r.Path, "/")
	if r.Domain == nil {
		return path
	}

	return r.Domain.String() + "/" + path
}

// RemoteName returns the slash-joined path without the domain. This is
// the repository name used in registry API paths.
func (r Reference) RemoteName() string {
	return strings.Join(r.Path, "/")
}

// String reassembles the reference exactly as it was written:
// `name[:tag][@digest]`. For any valid input without superfluous
// characters, Parse followed by String is the identity.
func (r Reference) String() string {
	var builder strings.Builder

	builder.WriteString(r.Name())

	if r.Tag != "" {
		builder.WriteByte(':')
		builder.WriteString(r.Tag)
	}

	if r.Digest != nil {
		builder.WriteByte('@')
		builder.WriteString(r.Digest.String())
	}

	return builder.String()
}
