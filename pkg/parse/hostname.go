package parse

import (
	"strconv"
	"strings"
)

// maxPort is the largest valid TCP port number.
const maxPort = 65535

// Hostname is a registry host as it appears in image references and in
// the resource names of authorization scopes: dot-separated domain
// components with an optional decimal port.
//
// A zero Port means no port was present; port 0 itself is rejected by
// the grammar since it cannot address a registry.
type Hostname struct {
	// Components holds the dot-separated domain components in order.
	Components []string
	// Port is the optional port, or 0 when absent.
	Port uint16
}

// Host returns the dot-joined domain components without the port.
func (h Hostname) Host() string {
	return strings.Join(h.Components, ".")
}

// String reassembles the hostname exactly as it was written, including
// the port when present.
func (h Hostname) String() string {
	if h.Port == 0 {
		return h.Host()
	}

	return h.Host() + ":" + strconv.Itoa(int(h.Port))
}

// Qualified reports whether the hostname can be distinguished from a
// path component: it has more than one domain component or carries a
// port. Grammar priority resolves the domain/path ambiguity in favor
// of a path unless the prefix is qualified.
func (h Hostname) Qualified() bool {
	return len(h.Components) > 1 || h.Port != 0
}

// ReadHostname consumes `domain-component ("." domain-component)*
// (":" port)?` from the scanner. Domain components are alphanumeric
// with interior hyphen runs; they must not start or end with a hyphen.
func ReadHostname(s *Scanner) (Hostname, error) {
	var hostname Hostname

	component, err := readDomainComponent(s)
	if err != nil {
		return Hostname{}, err
	}

	hostname.Components = append(hostname.Components, component)

	for {
		mark := s.Pos()
		if !s.Accept('.') {
			break
		}

		component, err := readDomainComponent(s)
		if err != nil {
			s.Reset(mark)

			break
		}

		hostname.Components = append(hostname.Components, component)
	}

	mark := s.Pos()
	if s.Accept(':') {
		port, err := readPort(s)
		if err != nil {
			s.Reset(mark)

			return hostname, err
		}

		hostname.Port = port
	}

	return hostname, nil
}

// readDomainComponent consumes one domain component: an alphanumeric
// run, optionally continued by hyphen runs that must be followed by
// further alphanumeric content.
func readDomainComponent(s *Scanner) (string, error) {
	start := s.Pos()

	if _, err := s.TakeWhile1(IsAlnum, "domain component"); err != nil {
		return "", err
	}

	for {
		mark := s.Pos()
		if s.AcceptRun('-') == 0 {
			break
		}

		if s.TakeWhile(IsAlnum) == "" {
			// Trailing hyphens belong to whatever follows, not to
			// this component.
			s.Reset(mark)

			break
		}
	}

	return s.input[start:s.Pos()], nil
}

// readPort consumes a decimal port in the range 1-65535. The error is
// positioned at the start of the would-be port.
func readPort(s *Scanner) (uint16, error) {
	start := s.Pos()

	digits, err := s.TakeWhile1(IsDigit, "port")
	if err != nil {
		return 0, err
	}

	port, err := strconv.Atoi(digits)
	if err != nil || port == 0 || port > maxPort {
		return 0, &SyntaxError{Offset: start, Expected: "port"}
	}

	return uint16(port), nil
}
