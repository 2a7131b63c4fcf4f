// Package client groups the network-facing clients.
//
//   - registry: distribution HTTP API client with the token auth flow
//   - netretry: retry utilities for transient network errors
package client
