// Package notify provides styled terminal output: colored, symbol-prefixed
// messages and a progress display for groups of parallel tasks.
package notify
