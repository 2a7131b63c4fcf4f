// Package reference parses container image references of the form
// `name[:tag][@digest]` into their structured parts.
//
// The grammar is the de-facto registry reference grammar:
//
//	reference          := name [ ":" tag ] [ "@" digest ]
//	name               := [ domain "/" ] path-component [ "/" path-component ]*
//	domain             := domain-component [ "." domain-component ]* [ ":" port ]
//	domain-component   := [A-Za-z0-9] with interior hyphen runs
//	path-component     := [a-z0-9]+ joined by "." / "_" / "__" / "-"+
//	tag                := [A-Za-z0-9_][A-Za-z0-9_.-]{0,127}
//	digest             := algorithm ":" hex{32,}
//	algorithm          := component [ ( "+" / "." / "-" / "_" ) component ]*
//
// A prefix is committed as a domain only if it fully matches the domain
// rule, is followed by a slash, and is qualified (contains a dot or a
// port). "library/ubuntu" therefore has no domain, while
// "docker.io/library/ubuntu" does. Parsing is anchored: trailing
// characters fail the whole parse, and no partial Reference is ever
// returned.
package reference
