package registry

import (
	"fmt"

	"github.com/devantler-tech/distreg/pkg/parse"
	"github.com/devantler-tech/distreg/pkg/reference"
)

// Canonicalize resolves a domainless reference against the given
// default domain. References that already carry a domain are returned
// unchanged. With dockerCompat set, a resolved single-component path
// additionally gets the implicit "library/" namespace, matching how
// Docker Hub names official images.
func Canonicalize(ref reference.Reference, defaultDomain string, dockerCompat bool) (reference.Reference, error) {
	if ref.Domain != nil {
		return ref, nil
	}

	if defaultDomain == "" {
		return reference.Reference{}, ErrDefaultDomainRequired
	}

	scanner := parse.NewScanner(defaultDomain)

	hostname, err := parse.ReadHostname(scanner)
	if err == nil {
		err = scanner.RequireEOF()
	}

	if err != nil {
		return reference.Reference{}, fmt.Errorf("parse default domain %q: %w", defaultDomain, err)
	}

	resolved := ref
	resolved.Domain = &hostname

	if dockerCompat && len(ref.Path) == 1 {
		resolved.Path = append([]string{"library"}, ref.Path...)
	}

	return resolved, nil
}
