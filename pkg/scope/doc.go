// Package scope parses the authorization scope strings used when
// requesting bearer tokens from a registry token server.
//
// A scope string is a space-separated list of resource scopes, each of
// the form:
//
//	resourcetype ":" resourcename ":" action [ "," action ]*
//
// where resourcetype is a value optionally qualified as
// `value(value)`, resourcename is an optional registry hostname
// followed by slash-separated path components, and actions are
// lowercase names that may also contain "*" and "_". The wildcard and
// underscore are a deliberate widening over the published grammar,
// since real registries emit such action names.
//
// Parsing preserves declaration order and duplicate actions so the
// original string can be reproduced; permission semantics are
// order-insensitive and exposed via Contains.
package scope
