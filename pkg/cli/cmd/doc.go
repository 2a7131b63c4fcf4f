// Package cmd provides the command-line interface for distreg.
//
// This package contains the root command and its subcommands:
//   - parse: Parse and inspect registry strings (references, scopes, challenges)
//   - raw: Raw distribution API access (catalog, tags, manifest, blob)
//   - download: Download an image manifest and its blobs to a directory
package cmd
