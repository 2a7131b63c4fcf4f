package challenge

import "strings"

// Param is one auth-param of a challenge. Value holds the unescaped
// content when the parameter was written as a quoted string, or the
// raw token otherwise.
type Param struct {
	Name  string
	Value string
}

// Challenge is one scheme-plus-parameters unit from a WWW-Authenticate
// header. A challenge with zero params is valid (scheme only).
type Challenge struct {
	// Scheme is the auth-scheme token with its case preserved.
	Scheme string
	// Params holds the auth-params in declaration order.
	Params []Param
}

// Param returns the value of the named parameter, matching the name
// case-insensitively, and reports whether it was present. When a
// parameter is repeated the first occurrence wins.
func (c Challenge) Param(name string) (string, bool) {
	for _, param := range c.Params {
		if strings.EqualFold(param.Name, name) {
			return param.Value, true
		}
	}

	return "", false
}
