package reference

import "github.com/devantler-tech/distreg/pkg/parse"

// Identifier length bounds. A full identifier is the hex of a
// sha256-class digest; a short identifier is a prefix of one, used to
// match against a list of trusted identifiers.
const (
	identifierLength         = 64
	shortIdentifierMinLength = 6
)

// ParseIdentifier validates a content-address identifier: exactly 64
// lowercase hex characters. It returns the validated identifier or a
// *parse.SyntaxError. Reference parsing never invokes this implicitly;
// callers needing content-address validation call it explicitly.
func ParseIdentifier(input string) (string, error) {
	return parseHex(input, identifierLength, identifierLength, "identifier")
}

// ParseShortIdentifier validates an identifier prefix: 6 to 64
// lowercase hex characters.
func ParseShortIdentifier(input string) (string, error) {
	return parseHex(input, shortIdentifierMinLength, identifierLength, "short identifier")
}

func parseHex(input string, minLen, maxLen int, expected string) (string, error) {
	if err := parse.CheckASCII(input); err != nil {
		return "", err
	}

	scanner := parse.NewScanner(input)

	hex, err := scanner.TakeWhile1(parse.IsLowerHexDigit, expected+" hex digit")
	if err != nil {
		return "", err
	}

	if err := scanner.RequireEOF(); err != nil {
		return "", err
	}

	if len(hex) < minLen || len(hex) > maxLen {
		return "", &parse.SyntaxError{Offset: 0, Expected: expected + " hex string"}
	}

	return hex, nil
}
