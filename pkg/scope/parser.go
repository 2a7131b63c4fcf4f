package scope

import "github.com/devantler-tech/distreg/pkg/parse"

// Parse parses a space-separated scope string into its ordered
// resource scopes. The whole string is rejected on the first invalid
// unit; no partial scope list is ever returned.
func Parse(input string) (Scope, error) {
	if err := parse.CheckASCII(input); err != nil {
		return nil, err
	}

	scanner := parse.NewScanner(input)

	unit, err := readResourceScope(scanner)
	if err != nil {
		return nil, err
	}

	scopes := Scope{unit}

	for scanner.Accept(' ') {
		unit, err := readResourceScope(scanner)
		if err != nil {
			return nil, err
		}

		scopes = append(scopes, unit)
	}

	if err := scanner.RequireEOF(); err != nil {
		return nil, err
	}

	return scopes, nil
}

// readResourceScope consumes one `type ":" name ":" actions` unit.
func readResourceScope(scanner *parse.Scanner) (ResourceScope, error) {
	resourceType, err := readResourceType(scanner)
	if err != nil {
		return ResourceScope{}, err
	}

	if err := scanner.Expect(':', "':' after resource type"); err != nil {
		return ResourceScope{}, err
	}

	name, err := readResourceName(scanner)
	if err != nil {
		return ResourceScope{}, err
	}

	if err := scanner.Expect(':', "':' after resource name"); err != nil {
		return ResourceScope{}, err
	}

	actions, err := readActions(scanner)
	if err != nil {
		return ResourceScope{}, err
	}

	return ResourceScope{Type: resourceType, Name: name, Actions: actions}, nil
}

// readResourceType consumes `value [ "(" value ")" ]` with no embedded
// spaces.
func readResourceType(scanner *parse.Scanner) (ResourceType, error) {
	value, err := scanner.TakeWhile1(parse.IsLowerAlnum, "resource type")
	if err != nil {
		return ResourceType{}, err
	}

	resourceType := ResourceType{Value: value}

	if scanner.Accept('(') {
		nested, err := scanner.TakeWhile1(parse.IsLowerAlnum, "nested resource type")
		if err != nil {
			return ResourceType{}, err
		}

		if err := scanner.Expect(')', "')'"); err != nil {
			return ResourceType{}, err
		}

		resourceType.Nested = nested
	}

	return resourceType, nil
}

// readResourceName consumes `( hostname "/" )? component ( "/"
// component )*`. The hostname alternative is committed only when it is
// qualified (dot or port) and followed by a slash, mirroring the
// domain/path disambiguation of image references.
func readResourceName(scanner *parse.Scanner) (ResourceName, error) {
	var name ResourceName

	var host parse.Hostname

	committed := scanner.Try(func() error {
		hostname, err := parse.ReadHostname(scanner)
		if err != nil {
			return err
		}

		if !hostname.Qualified() {
			return scanner.Errorf("qualified hostname")
		}

		if err := scanner.Expect('/', "'/'"); err != nil {
			return err
		}

		host = hostname

		return nil
	})
	if committed {
		name.Host = &host
	}

	component, err := parse.ReadPathComponent(scanner)
	if err != nil {
		return ResourceName{}, err
	}

	name.Path = append(name.Path, component)

	for scanner.Accept('/') {
		component, err := parse.ReadPathComponent(scanner)
		if err != nil {
			return ResourceName{}, err
		}

		name.Path = append(name.Path, component)
	}

	return name, nil
}

// readActions consumes `action ( "," action )*`. A unit with zero
// actions is a syntax error.
func readActions(scanner *parse.Scanner) ([]string, error) {
	action, err := scanner.TakeWhile1(isActionChar, "action")
	if err != nil {
		return nil, err
	}

	actions := []string{action}

	for scanner.Accept(',') {
		action, err := scanner.TakeWhile1(isActionChar, "action")
		if err != nil {
			return nil, err
		}

		actions = append(actions, action)
	}

	return actions, nil
}

// isActionChar accepts lowercase letters plus "*" and "_". This is
// wider than the published grammar on purpose: registries emit
// wildcard and vendor-specific action names.
func isActionChar(b byte) bool {
	return (b >= 'a' && b <= 'z') || b == '*' || b == '_'
}
