package scope

import (
	"strings"

	"github.com/devantler-tech/distreg/pkg/parse"
)

// ResourceType is the typed part of a resource scope, e.g.
// "repository" or the qualified form "repository(plugin)".
type ResourceType struct {
	// Value is the resource type itself.
	Value string
	// Nested is the parenthesized qualifier, or "" when absent.
	Nested string
}

// String reassembles the resource type as written.
func (t ResourceType) String() string {
	if t.Nested == "" {
		return t.Value
	}

	return t.Value + "(" + t.Nested + ")"
}

// ResourceName names the resource a scope applies to: an optional
// registry hostname followed by slash-separated path components.
type ResourceName struct {
	// Host is the registry hostname, or nil when the name carries
	// none. It has the same component/port structure as the domain of
	// an image reference.
	Host *parse.Hostname
	// Path holds the slash-separated path components.
	Path []string
}

// String reassembles the resource name as written.
func (n ResourceName) String() string {
	path := strings.Join(n.Path, "/")
	if n.Host == nil {
		return path
	}

	return n.Host.String() + "/" + path
}

// ResourceScope records the requested actions on one named, typed
// resource.
type ResourceScope struct {
	Type ResourceType
	Name ResourceName
	// Actions holds the requested actions in declaration order.
	// Duplicates are preserved to match the wire format.
	Actions []string
}

// String reassembles the resource scope in the registry token API
// format `type:name:action,...`.
func (s ResourceScope) String() string {
	return s.Type.String() + ":" + s.Name.String() + ":" + strings.Join(s.Actions, ",")
}

// Contains reports whether this scope is for the same resource as the
// other scope and grants every action the other requests. Action order
// and duplicates are irrelevant to permission semantics.
func (s ResourceScope) Contains(other ResourceScope) bool {
	if s.Type != other.Type || s.Name.String() != other.Name.String() {
		return false
	}

	granted := make(map[string]bool, len(s.Actions))
	for _, action := range s.Actions {
		granted[action] = true
	}

	for _, action := range other.Actions {
		if !granted[action] {
			return false
		}
	}

	return true
}

// Scope is an ordered list of resource scopes, one per space-delimited
// unit of the scope string.
type Scope []ResourceScope

// String reassembles the full scope string, space-separated.
func (s Scope) String() string {
	units := make([]string, 0, len(s))
	for _, unit := range s {
		units = append(units, unit.String())
	}

	return strings.Join(units, " ")
}
