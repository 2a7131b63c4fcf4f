package parse

// ReadPathComponent consumes one name path component: a lowercase
// alphanumeric run, continued by separator+run pairs. A separator is a
// single period, one or two underscores, or a run of hyphens, and is
// only consumed when further alphanumeric content follows, so adjacent
// separators never match.
func ReadPathComponent(s *Scanner) (string, error) {
	start := s.Pos()

	if _, err := s.TakeWhile1(IsLowerAlnum, "path component"); err != nil {
		return "", err
	}

	for {
		mark := s.Pos()

		if !acceptPathSeparator(s) {
			break
		}

		if s.TakeWhile(IsLowerAlnum) == "" {
			s.Reset(mark)

			break
		}
	}

	return s.input[start:s.Pos()], nil
}

// acceptPathSeparator consumes one path separator: ".", "_", "__", or
// a run of one or more "-".
func acceptPathSeparator(s *Scanner) bool {
	if s.Accept('.') {
		return true
	}

	mark := s.Pos()

	if n := s.AcceptRun('_'); n > 0 {
		if n > 2 {
			s.Reset(mark)

			return false
		}

		return true
	}

	return s.AcceptRun('-') > 0
}
