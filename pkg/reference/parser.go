package reference

import (
	"github.com/devantler-tech/distreg/pkg/parse"
)

// Tag length bound from the reference grammar.
const maxTagLength = 128

// minDigestHexLength enforces a content address of at least 128 bits.
const minDigestHexLength = 32

// Parse parses an image reference. It either returns a fully validated
// Reference or a *parse.SyntaxError; no partial result is ever
// produced.
func Parse(input string) (Reference, error) {
	if err := parse.CheckASCII(input); err != nil {
		return Reference{}, err
	}

	scanner := parse.NewScanner(input)

	ref := Reference{}

	// Ordered choice: `domain "/" path` is attempted first and only
	// committed when the prefix fully matches the domain rule, is
	// qualified (dot or port), and is followed by a slash. Otherwise
	// the scanner rewinds and the prefix is read as path.
	var domain parse.Hostname

	committed := scanner.Try(func() error {
		hostname, err := parse.ReadHostname(scanner)
		if err != nil {
			return err
		}

		if !hostname.Qualified() {
			return scanner.Errorf("qualified domain")
		}

		if err := scanner.Expect('/', "'/'"); err != nil {
			return err
		}

		domain = hostname

		return nil
	})
	if committed {
		ref.Domain = &domain
	}

	path, err := readPath(scanner)
	if err != nil {
		return Reference{}, err
	}

	ref.Path = path

	if scanner.Accept(':') {
		tag, err := readTag(scanner)
		if err != nil {
			return Reference{}, err
		}

		ref.Tag = tag
	}

	if scanner.Accept('@') {
		digest, err := readDigest(scanner)
		if err != nil {
			return Reference{}, err
		}

		ref.Digest = &digest
	}

	if err := scanner.RequireEOF(); err != nil {
		return Reference{}, err
	}

	return ref, nil
}

// readPath consumes `path-component ("/" path-component)*`.
func readPath(scanner *parse.Scanner) ([]string, error) {
	component, err := parse.ReadPathComponent(scanner)
	if err != nil {
		return nil, err
	}

	path := []string{component}

	for scanner.Accept('/') {
		component, err := parse.ReadPathComponent(scanner)
		if err != nil {
			return nil, err
		}

		path = append(path, component)
	}

	return path, nil
}

// readTag consumes a tag: `[A-Za-z0-9_][A-Za-z0-9_.-]*`, at most 128
// characters in total.
func readTag(scanner *parse.Scanner) (string, error) {
	start := scanner.Pos()

	first, ok := scanner.Peek()
	if !ok || !isTagStart(first) {
		return "", scanner.Errorf("tag")
	}

	tag := scanner.TakeWhile(isTagChar)
	if len(tag) > maxTagLength {
		return "", &parse.SyntaxError{Offset: start, Expected: "tag of at most 128 characters"}
	}

	return tag, nil
}

func isTagStart(b byte) bool {
	return parse.IsAlnum(b) || b == '_'
}

func isTagChar(b byte) bool {
	return parse.IsAlnum(b) || b == '_' || b == '.' || b == '-'
}

// readDigest consumes `algorithm ":" hex` where the algorithm is one
// or more components joined by "+", ".", "-", or "_", and the hex part
// is at least 32 hex digits.
func readDigest(scanner *parse.Scanner) (Digest, error) {
	algorithmStart := scanner.Pos()

	if err := readAlgorithmComponent(scanner); err != nil {
		return Digest{}, err
	}

	for {
		mark := scanner.Pos()

		if !acceptAlgorithmSeparator(scanner) {
			break
		}

		if err := readAlgorithmComponent(scanner); err != nil {
			scanner.Reset(mark)

			break
		}
	}

	algorithm := scanner.Input()[algorithmStart:scanner.Pos()]

	if err := scanner.Expect(':', "':' before digest hex"); err != nil {
		return Digest{}, err
	}

	hexStart := scanner.Pos()

	hex := scanner.TakeWhile(parse.IsHexDigit)
	if len(hex) < minDigestHexLength {
		return Digest{}, &parse.SyntaxError{
			Offset:   hexStart,
			Expected: "digest hex of at least 32 characters",
		}
	}

	return Digest{Algorithm: algorithm, Hex: hex}, nil
}

// readAlgorithmComponent consumes `[A-Za-z][A-Za-z0-9]*`.
func readAlgorithmComponent(scanner *parse.Scanner) error {
	first, ok := scanner.Peek()
	if !ok || !parse.IsLetter(first) {
		return scanner.Errorf("digest algorithm component")
	}

	scanner.TakeWhile(parse.IsAlnum)

	return nil
}

func acceptAlgorithmSeparator(scanner *parse.Scanner) bool {
	return scanner.Accept('+') || scanner.Accept('.') ||
		scanner.Accept('-') || scanner.Accept('_')
}
