// Package challenge parses WWW-Authenticate response header values
// into their ordered list of authentication challenges.
//
// The grammar follows RFC 2617 over the RFC 2616 lexical rules: a
// header value is a comma-separated list of challenges, each an
// auth-scheme token optionally followed by comma-separated
// `name=value` auth-params whose values are tokens or quoted strings.
// Linear whitespace (an optional line break followed by spaces or
// tabs) is permitted between any two tokens, modelling header folding.
//
// The parser is deliberately lenient beyond the RFC in three ways: a
// bare "\n" is accepted as a line fold in addition to "\r\n",
// whitespace is tolerated around "=", and empty list elements between
// commas are skipped per the RFC #rule convention. A solitary "\r" is
// not a fold. Scheme and parameter-name case is preserved as written;
// case-insensitive comparison is the caller's responsibility.
package challenge
