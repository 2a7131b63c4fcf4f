package parse

import "fmt"

// SyntaxError describes a grammar violation at a byte offset in the
// parsed input. Expected names the construct the parser was looking
// for, e.g. "domain component" or "auth-param value".
type SyntaxError struct {
	// Offset is the byte offset at which parsing failed.
	Offset int
	// Expected names the grammar construct expected at Offset.
	Expected string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: expected %s", e.Offset, e.Expected)
}

// CheckASCII verifies that the input contains only US-ASCII bytes.
// The grammars are defined over US-ASCII; the first offending byte is
// reported as a syntax error rather than silently passed through.
func CheckASCII(input string) error {
	for i := range len(input) {
		if input[i] >= 0x80 {
			return &SyntaxError{Offset: i, Expected: "US-ASCII character"}
		}
	}

	return nil
}

// Scanner is a positioned cursor over an input string. It supports the
// bounded backtracking the grammars need: callers mark a position with
// Pos, attempt an alternative, and rewind with Reset if the alternative
// does not fully match.
type Scanner struct {
	input string
	pos   int
}

// NewScanner returns a scanner positioned at the start of input.
func NewScanner(input string) *Scanner {
	return &Scanner{input: input}
}

// Input returns the full input string the scanner reads.
func (s *Scanner) Input() string {
	return s.input
}

// Pos returns the current byte offset.
func (s *Scanner) Pos() int {
	return s.pos
}

// Reset rewinds the scanner to a previously recorded offset.
func (s *Scanner) Reset(pos int) {
	s.pos = pos
}

// EOF reports whether the whole input has been consumed.
func (s *Scanner) EOF() bool {
	return s.pos >= len(s.input)
}

// Peek returns the byte at the current position without consuming it.
// It returns false at end of input.
func (s *Scanner) Peek() (byte, bool) {
	if s.EOF() {
		return 0, false
	}

	return s.input[s.pos], true
}

// Next consumes and returns the byte at the current position. It
// returns false at end of input.
func (s *Scanner) Next() (byte, bool) {
	if s.EOF() {
		return 0, false
	}

	b := s.input[s.pos]
	s.pos++

	return b, true
}

// Accept consumes the given byte if it is next and reports whether it
// did so.
func (s *Scanner) Accept(b byte) bool {
	if s.EOF() || s.input[s.pos] != b {
		return false
	}

	s.pos++

	return true
}

// AcceptRun consumes a run of the given byte and returns its length.
func (s *Scanner) AcceptRun(b byte) int {
	start := s.pos
	for !s.EOF() && s.input[s.pos] == b {
		s.pos++
	}

	return s.pos - start
}

// Expect consumes the given byte or fails with a positioned error
// naming the expected construct.
func (s *Scanner) Expect(b byte, expected string) error {
	if !s.Accept(b) {
		return s.Errorf(expected)
	}

	return nil
}

// TakeWhile consumes bytes matching the class and returns them. The
// returned string is empty when no byte matches.
func (s *Scanner) TakeWhile(class func(byte) bool) string {
	start := s.pos
	for !s.EOF() && class(s.input[s.pos]) {
		s.pos++
	}

	return s.input[start:s.pos]
}

// TakeWhile1 consumes one or more bytes matching the class, failing
// with a positioned error when the first byte does not match.
func (s *Scanner) TakeWhile1(class func(byte) bool, expected string) (string, error) {
	run := s.TakeWhile(class)
	if run == "" {
		return "", s.Errorf(expected)
	}

	return run, nil
}

// RequireEOF fails unless the whole input has been consumed. Grammars
// are anchored start-to-end; trailing characters are never accepted.
func (s *Scanner) RequireEOF() error {
	if !s.EOF() {
		return s.Errorf("end of input")
	}

	return nil
}

// Errorf returns a syntax error at the current position.
func (s *Scanner) Errorf(expected string) error {
	return &SyntaxError{Offset: s.pos, Expected: expected}
}

// Try runs one alternative of an ordered choice. The scanner is
// rewound to its entry position when the alternative fails, so the
// next alternative sees the untouched input.
func (s *Scanner) Try(alt func() error) bool {
	mark := s.pos

	if err := alt(); err != nil {
		s.pos = mark

		return false
	}

	return true
}

// Character classes used across the grammars. The reference path
// grammar is lowercase-only while host and digest contexts accept
// both cases; each rule names the class it is defined over.

// IsLowerAlnum reports whether b is in [a-z0-9].
func IsLowerAlnum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

// IsAlnum reports whether b is in [A-Za-z0-9].
func IsAlnum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// IsLetter reports whether b is in [A-Za-z].
func IsLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// IsDigit reports whether b is in [0-9].
func IsDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// IsHexDigit reports whether b is in [0-9a-fA-F].
func IsHexDigit(b byte) bool {
	return IsDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// IsLowerHexDigit reports whether b is in [0-9a-f].
func IsLowerHexDigit(b byte) bool {
	return IsDigit(b) || (b >= 'a' && b <= 'f')
}

// IsTokenChar reports whether b is an HTTP token character: any
// US-ASCII character excluding controls and the RFC 2616 separator
// set ()<>@,;:\"/[]?={} SP HT.
func IsTokenChar(b byte) bool {
	if b <= 0x1F || b == 0x7F {
		return false
	}

	switch b {
	case '(', ')', '<', '>', '@', ',', ';', ':', '\\', '"', '/', '[', ']', '?', '=', '{', '}', ' ', '\t':
		return false
	}

	return true
}
