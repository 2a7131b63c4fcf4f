package reference_test

import (
	"strings"
	"testing"

	"github.com/devantler-tech/distreg/pkg/parse"
	"github.com/devantler-tech/distreg/pkg/reference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:funlen // Table-driven test with comprehensive cases
func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		input         string
		wantHost      []string
		wantPort      uint16
		wantPath      []string
		wantTag       string
		wantAlgorithm string
		wantHex       string
		wantErr       bool
	}{
		{
			name:     "bare name",
			input:    "ubuntu",
			wantPath: []string{"ubuntu"},
		},
		{
			name:     "two components without domain",
			input:    "library/ubuntu",
			wantPath: []string{"library", "ubuntu"},
		},
		{
			name:     "dotted domain",
			input:    "docker.io/library/ubuntu",
			wantHost: []string{"docker", "io"},
			wantPath: []string{"library", "ubuntu"},
		},
		{
			name:     "domain with port",
			input:    "localhost:5000/my-app",
			wantHost: []string{"localhost"},
			wantPort: 5000,
			wantPath: []string{"my-app"},
		},
		{
			name:     "unqualified prefix is a path",
			input:    "localhost/my-app",
			wantPath: []string{"localhost", "my-app"},
		},
		{
			name:     "name with tag",
			input:    "ubuntu:18.04",
			wantPath: []string{"ubuntu"},
			wantTag:  "18.04",
		},
		{
			name:     "single component with dot is a path",
			input:    "docker.io",
			wantPath: []string{"docker.io"},
		},
		{
			name:     "port-like suffix without slash is a tag",
			input:    "localhost:5000",
			wantPath: []string{"localhost"},
			wantTag:  "5000",
		},
		{
			name:          "name with digest",
			input:         "ubuntu@sha256:" + strings.Repeat("a", 64),
			wantPath:      []string{"ubuntu"},
			wantAlgorithm: "sha256",
			wantHex:       strings.Repeat("a", 64),
		},
		{
			name:          "tag and digest together",
			input:         "ubuntu:18.04@sha256:" + strings.Repeat("a", 64),
			wantPath:      []string{"ubuntu"},
			wantTag:       "18.04",
			wantAlgorithm: "sha256",
			wantHex:       strings.Repeat("a", 64),
		},
		{
			name:          "multi-component digest algorithm",
			input:         "ubuntu@sha512+b64:" + strings.Repeat("0", 86),
			wantPath:      []string{"ubuntu"},
			wantAlgorithm: "sha512+b64",
			wantHex:       strings.Repeat("0", 86),
		},
		{
			name:          "everything at once",
			input:         "registry.example.com:8443/team/my_app:v1.2.3@sha256:" + strings.Repeat("f", 64),
			wantHost:      []string{"registry", "example", "com"},
			wantPort:      8443,
			wantPath:      []string{"team", "my_app"},
			wantTag:       "v1.2.3",
			wantAlgorithm: "sha256",
			wantHex:       strings.Repeat("f", 64),
		},
		{
			name:     "tag at maximum length",
			input:    "ubuntu:" + strings.Repeat("t", 128),
			wantPath: []string{"ubuntu"},
			wantTag:  strings.Repeat("t", 128),
		},
		{name: "empty input", input: "", wantErr: true},
		{name: "uppercase path component", input: "Ubuntu", wantErr: true},
		{name: "digest hex too short", input: "ubuntu@sha256:short", wantErr: true},
		{name: "digest hex below minimum", input: "ubuntu@sha256:" + strings.Repeat("a", 31), wantErr: true},
		{name: "tag too long", input: "ubuntu:" + strings.Repeat("t", 129), wantErr: true},
		{name: "tag starting with period", input: "ubuntu:.tag", wantErr: true},
		{name: "trailing characters", input: "foo:tag extra", wantErr: true},
		{name: "trailing slash", input: "foo/", wantErr: true},
		{name: "digest before tag", input: "ubuntu@sha256:" + strings.Repeat("a", 64) + ":tag", wantErr: true},
		{name: "non-ascii byte", input: "ubuntü", wantErr: true},
		{name: "empty domain component", input: "foo..bar/baz", wantErr: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			ref, err := reference.Parse(testCase.input)

			if testCase.wantErr {
				var syntaxErr *parse.SyntaxError

				require.ErrorAs(t, err, &syntaxErr)
				assert.Equal(t, reference.Reference{}, ref, "failed parses must not return partial references")

				return
			}

			require.NoError(t, err)

			if testCase.wantHost == nil {
				assert.Nil(t, ref.Domain)
			} else {
				require.NotNil(t, ref.Domain)
				assert.Equal(t, testCase.wantHost, ref.Domain.Components)
				assert.Equal(t, testCase.wantPort, ref.Domain.Port)
			}

			assert.Equal(t, testCase.wantPath, ref.Path)
			assert.Equal(t, testCase.wantTag, ref.Tag)

			if testCase.wantAlgorithm == "" {
				assert.Nil(t, ref.Digest)
			} else {
				require.NotNil(t, ref.Digest)
				assert.Equal(t, testCase.wantAlgorithm, ref.Digest.Algorithm)
				assert.Equal(t, testCase.wantHex, ref.Digest.Hex)
			}
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"ubuntu",
		"library/ubuntu",
		"docker.io/library/ubuntu",
		"localhost:5000/my-app:dev",
		"registry.example.com/team/my__app:v1.0.0",
		"ubuntu:18.04@sha256:" + strings.Repeat("a", 64),
		"ubuntu@sha512+b64:" + strings.Repeat("b", 86),
		"xn--bcher-kva.example/shelf/book",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			t.Parallel()

			ref, err := reference.Parse(input)

			require.NoError(t, err)
			assert.Equal(t, input, ref.String())
		})
	}
}

func TestReferenceName(t *testing.T) {
	t.Parallel()

	ref, err := reference.Parse("localhost:5000/team/app:dev")

	require.NoError(t, err)
	assert.Equal(t, "localhost:5000/team/app", ref.Name())
	assert.Equal(t, "team/app", ref.RemoteName())
}

func TestDigestAlgorithmComponents(t *testing.T) {
	t.Parallel()

	digest := reference.Digest{Algorithm: "sha512+b64", Hex: strings.Repeat("0", 86)}
	assert.Equal(t, []string{"sha512", "b64"}, digest.AlgorithmComponents())

	digest = reference.Digest{Algorithm: "sha256", Hex: strings.Repeat("a", 64)}
	assert.Equal(t, []string{"sha256"}, digest.AlgorithmComponents())
}

func TestDigestIsIdentifier(t *testing.T) {
	t.Parallel()

	identifier := reference.Digest{Algorithm: "sha256", Hex: strings.Repeat("a", 64)}
	assert.True(t, identifier.IsIdentifier())

	tooShort := reference.Digest{Algorithm: "sha256", Hex: strings.Repeat("a", 32)}
	assert.False(t, tooShort.IsIdentifier())

	uppercase := reference.Digest{Algorithm: "sha256", Hex: strings.Repeat("A", 64)}
	assert.False(t, uppercase.IsIdentifier())
}

func TestParseIdentifier(t *testing.T) {
	t.Parallel()

	valid := strings.Repeat("ab12", 16)

	got, err := reference.ParseIdentifier(valid)

	require.NoError(t, err)
	assert.Equal(t, valid, got)

	for _, input := range []string{
		strings.Repeat("a", 63),
		strings.Repeat("a", 65),
		strings.Repeat("A", 64),
		strings.Repeat("g", 64),
		"",
	} {
		_, err := reference.ParseIdentifier(input)

		var syntaxErr *parse.SyntaxError

		require.ErrorAs(t, err, &syntaxErr, "input %q", input)
	}
}

func TestParseShortIdentifier(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"abc123", strings.Repeat("0", 64), "deadbeef"} {
		got, err := reference.ParseShortIdentifier(input)

		require.NoError(t, err, "input %q", input)
		assert.Equal(t, input, got)
	}

	for _, input := range []string{"abc12", strings.Repeat("0", 65), "DEADBEEF", ""} {
		_, err := reference.ParseShortIdentifier(input)

		var syntaxErr *parse.SyntaxError

		require.ErrorAs(t, err, &syntaxErr, "input %q", input)
	}
}

func TestParseErrorPositions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		input        string
		wantOffset   int
		wantExpected string
	}{
		{
			name:         "short digest hex",
			input:        "ubuntu@sha256:short",
			wantOffset:   14,
			wantExpected: "digest hex of at least 32 characters",
		},
		{
			name:         "trailing characters",
			input:        "foo:tag extra",
			wantOffset:   7,
			wantExpected: "end of input",
		},
		{
			name:         "uppercase path",
			input:        "Ubuntu",
			wantOffset:   0,
			wantExpected: "path component",
		},
		{
			name:         "missing tag after colon",
			input:        "ubuntu:",
			wantOffset:   7,
			wantExpected: "tag",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			_, err := reference.Parse(testCase.input)

			var syntaxErr *parse.SyntaxError

			require.ErrorAs(t, err, &syntaxErr)
			assert.Equal(t, testCase.wantOffset, syntaxErr.Offset)
			assert.Equal(t, testCase.wantExpected, syntaxErr.Expected)
		})
	}
}
