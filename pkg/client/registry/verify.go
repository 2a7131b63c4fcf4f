package registry

import (
	"fmt"
	"io"
	"strings"

	"github.com/opencontainers/go-digest"

	"github.com/devantler-tech/distreg/pkg/reference"
)

// VerifyBlob streams content through a digest verifier and reports
// whether it matches the expected digest. Algorithms without a
// registered hash implementation yield ErrUnsupportedDigest.
func VerifyBlob(expected reference.Digest, content io.Reader) error {
	algorithm := digest.Algorithm(expected.Algorithm)
	if !algorithm.Available() {
		return fmt.Errorf("%w: %q", ErrUnsupportedDigest, expected.Algorithm)
	}

	// The grammar admits uppercase hex; hash sums compare lowercase.
	verifier := digest.NewDigestFromEncoded(algorithm, strings.ToLower(expected.Hex)).Verifier()

	_, err := io.Copy(verifier, content)
	if err != nil {
		return fmt.Errorf("read blob content: %w", err)
	}

	if !verifier.Verified() {
		return fmt.Errorf("%w: want %s", ErrDigestMismatch, expected.String())
	}

	return nil
}
