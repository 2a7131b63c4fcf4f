// Package cli holds the command-line layer of distreg. The command tree
// lives in cli/cmd.
package cli
