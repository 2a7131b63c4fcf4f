package parse_test

import (
	"testing"

	"github.com/devantler-tech/distreg/pkg/parse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckASCII(t *testing.T) {
	t.Parallel()

	require.NoError(t, parse.CheckASCII("plain ascii 123 !~"))

	err := parse.CheckASCII("ok\xc3\xa9")

	var syntaxErr *parse.SyntaxError

	require.ErrorAs(t, err, &syntaxErr)
	assert.Equal(t, 2, syntaxErr.Offset)
	assert.Equal(t, "US-ASCII character", syntaxErr.Expected)
}

func TestSyntaxErrorMessage(t *testing.T) {
	t.Parallel()

	err := &parse.SyntaxError{Offset: 7, Expected: "tag"}
	assert.Equal(t, "syntax error at offset 7: expected tag", err.Error())
}

func TestScannerBacktracking(t *testing.T) {
	t.Parallel()

	scanner := parse.NewScanner("abc")

	matched := scanner.Try(func() error {
		if !scanner.Accept('a') {
			return scanner.Errorf("'a'")
		}

		return scanner.Errorf("unreachable alternative")
	})

	assert.False(t, matched)
	assert.Equal(t, 0, scanner.Pos(), "failed alternative must rewind")

	matched = scanner.Try(func() error {
		_, err := scanner.TakeWhile1(parse.IsLowerAlnum, "run")

		return err
	})

	assert.True(t, matched)
	assert.True(t, scanner.EOF())
	require.NoError(t, scanner.RequireEOF())
}

func TestReadHostname(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		input          string
		wantComponents []string
		wantPort       uint16
		wantQualified  bool
		wantRest       string
		wantErr        bool
	}{
		{
			name:           "single component",
			input:          "localhost",
			wantComponents: []string{"localhost"},
			wantQualified:  false,
		},
		{
			name:           "dotted host",
			input:          "registry-1.docker.io",
			wantComponents: []string{"registry-1", "docker", "io"},
			wantQualified:  true,
		},
		{
			name:           "host with port",
			input:          "localhost:5000",
			wantComponents: []string{"localhost"},
			wantPort:       5000,
			wantQualified:  true,
		},
		{
			name:           "mixed case host",
			input:          "Registry.Example.COM",
			wantComponents: []string{"Registry", "Example", "COM"},
			wantQualified:  true,
		},
		{
			name:           "interior hyphen run",
			input:          "xn--bcher-kva.example",
			wantComponents: []string{"xn--bcher-kva", "example"},
			wantQualified:  true,
		},
		{
			name:           "trailing hyphen stays unconsumed",
			input:          "host-/x",
			wantComponents: []string{"host"},
			wantRest:       "-/x",
		},
		{
			name:    "leading hyphen",
			input:   "-host",
			wantErr: true,
		},
		{
			name:    "port zero",
			input:   "example.com:0",
			wantErr: true,
		},
		{
			name:    "port out of range",
			input:   "example.com:70000",
			wantErr: true,
		},
		{
			name:    "non numeric port",
			input:   "example.com:x",
			wantErr: true,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			scanner := parse.NewScanner(testCase.input)

			hostname, err := parse.ReadHostname(scanner)

			if testCase.wantErr {
				var syntaxErr *parse.SyntaxError

				require.ErrorAs(t, err, &syntaxErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, testCase.wantComponents, hostname.Components)
			assert.Equal(t, testCase.wantPort, hostname.Port)
			assert.Equal(t, testCase.wantQualified, hostname.Qualified())
			assert.Equal(t, testCase.wantRest, testCase.input[scanner.Pos():])
		})
	}
}

func TestHostnameString(t *testing.T) {
	t.Parallel()

	withPort := parse.Hostname{Components: []string{"registry", "example", "com"}, Port: 8443}
	assert.Equal(t, "registry.example.com:8443", withPort.String())
	assert.Equal(t, "registry.example.com", withPort.Host())

	withoutPort := parse.Hostname{Components: []string{"localhost"}}
	assert.Equal(t, "localhost", withoutPort.String())
}

func TestReadPathComponent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		want     string
		wantRest string
		wantErr  bool
	}{
		{name: "plain run", input: "ubuntu", want: "ubuntu"},
		{name: "dot separator", input: "docker.io", want: "docker.io"},
		{name: "single underscore", input: "my_app", want: "my_app"},
		{name: "double underscore", input: "my__app", want: "my__app"},
		{name: "hyphen run", input: "a---b", want: "a---b"},
		{name: "triple underscore rejected", input: "a___b", want: "a", wantRest: "___b"},
		{name: "trailing separator unconsumed", input: "app.", want: "app", wantRest: "."},
		{name: "adjacent separators unconsumed", input: "a._b", want: "a", wantRest: "._b"},
		{name: "uppercase rejected", input: "Ubuntu", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			scanner := parse.NewScanner(testCase.input)

			component, err := parse.ReadPathComponent(scanner)

			if testCase.wantErr {
				var syntaxErr *parse.SyntaxError

				require.ErrorAs(t, err, &syntaxErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, testCase.want, component)
			assert.Equal(t, testCase.wantRest, testCase.input[scanner.Pos():])
		})
	}
}

func TestIsTokenChar(t *testing.T) {
	t.Parallel()

	for _, b := range []byte("abcXYZ019!#$%&'*+-.^_`|~") {
		assert.True(t, parse.IsTokenChar(b), "expected token char: %q", b)
	}

	for _, b := range []byte("()<>@,;:\\\"/[]?={} \t\x00\x1f\x7f") {
		assert.False(t, parse.IsTokenChar(b), "expected separator or control: %q", b)
	}
}
