package challenge

import "github.com/devantler-tech/distreg/pkg/parse"

// Parse parses a raw WWW-Authenticate header value into its ordered
// challenges. Any grammar violation fails the whole parse with a
// positioned error; no partial challenge list is ever returned.
func Parse(input string) ([]Challenge, error) {
	if err := parse.CheckASCII(input); err != nil {
		return nil, err
	}

	scanner := parse.NewScanner(input)

	skipListDelimiters(scanner)

	if scanner.EOF() {
		return nil, scanner.Errorf("auth scheme")
	}

	var challenges []Challenge

	for !scanner.EOF() {
		parsed, err := readChallenge(scanner)
		if err != nil {
			return nil, err
		}

		challenges = append(challenges, parsed)
	}

	return challenges, nil
}

// readChallenge consumes one challenge: an auth-scheme token followed
// by an optional comma-delimited auth-param list. It stops before the
// scheme of the next challenge, which is recognized by lookahead: a
// token after a comma that is not followed by "=" starts a new
// challenge rather than naming a parameter.
func readChallenge(scanner *parse.Scanner) (Challenge, error) {
	scheme, err := scanner.TakeWhile1(parse.IsTokenChar, "auth scheme")
	if err != nil {
		return Challenge{}, err
	}

	challenge := Challenge{Scheme: scheme}

	for {
		hadSpace := skipLWS(scanner)

		if scanner.EOF() {
			return challenge, nil
		}

		if next, _ := scanner.Peek(); next == ',' {
			skipListDelimiters(scanner)

			if scanner.EOF() {
				return challenge, nil
			}

			mark := scanner.Pos()

			name, err := scanner.TakeWhile1(parse.IsTokenChar, "auth-param or auth scheme")
			if err != nil {
				return Challenge{}, err
			}

			skipLWS(scanner)

			if !scanner.Accept('=') {
				// Not a parameter: the token is the next
				// challenge's scheme.
				scanner.Reset(mark)

				return challenge, nil
			}

			value, err := readParamValue(scanner)
			if err != nil {
				return Challenge{}, err
			}

			challenge.Params = append(challenge.Params, Param{Name: name, Value: value})

			continue
		}

		if !hadSpace {
			return Challenge{}, scanner.Errorf("',' or whitespace")
		}

		name, err := scanner.TakeWhile1(parse.IsTokenChar, "auth-param name")
		if err != nil {
			return Challenge{}, err
		}

		skipLWS(scanner)

		if err := scanner.Expect('=', "'='"); err != nil {
			return Challenge{}, err
		}

		value, err := readParamValue(scanner)
		if err != nil {
			return Challenge{}, err
		}

		challenge.Params = append(challenge.Params, Param{Name: name, Value: value})
	}
}

// readParamValue consumes a token or quoted-string auth-param value,
// tolerating whitespace after the "=".
func readParamValue(scanner *parse.Scanner) (string, error) {
	skipLWS(scanner)

	if next, ok := scanner.Peek(); ok && next == '"' {
		return readQuotedString(scanner)
	}

	return scanner.TakeWhile1(parse.IsTokenChar, "auth-param value")
}

// readQuotedString consumes `"` qdtext `"`, unescaping each
// backslash-escaped pair to its bare character. A missing closing
// quote is a syntax error, not an implicit close at end of input.
func readQuotedString(scanner *parse.Scanner) (string, error) {
	if err := scanner.Expect('"', `'"'`); err != nil {
		return "", err
	}

	var value []byte

	for {
		next, ok := scanner.Next()
		if !ok {
			return "", scanner.Errorf(`closing '"'`)
		}

		switch next {
		case '"':
			return string(value), nil
		case '\\':
			escaped, ok := scanner.Next()
			if !ok {
				return "", scanner.Errorf("escaped character")
			}

			value = append(value, escaped)
		default:
			value = append(value, next)
		}
	}
}

// skipListDelimiters consumes any run of linear whitespace and commas.
// Empty list elements produce nothing, per the RFC #rule convention.
func skipListDelimiters(scanner *parse.Scanner) {
	for {
		skipLWS(scanner)

		if !scanner.Accept(',') {
			return
		}
	}
}

// skipLWS consumes linear whitespace: spaces and tabs, plus line folds
// of the form CRLF-or-bare-LF followed by at least one space or tab.
// A line break not followed by space is not consumed. Reports whether
// anything was consumed.
func skipLWS(scanner *parse.Scanner) bool {
	consumed := false

	for {
		next, ok := scanner.Peek()
		if !ok {
			return consumed
		}

		switch next {
		case ' ', '\t':
			scanner.Next()

			consumed = true
		case '\r', '\n':
			mark := scanner.Pos()

			if next == '\r' {
				scanner.Next()

				if !scanner.Accept('\n') {
					scanner.Reset(mark)

					return consumed
				}
			} else {
				scanner.Next()
			}

			space, ok := scanner.Peek()
			if !ok || (space != ' ' && space != '\t') {
				scanner.Reset(mark)

				return consumed
			}

			consumed = true
		default:
			return consumed
		}
	}
}
