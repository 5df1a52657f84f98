// Package cli implements the interactive PhishGuard client console: a small
// REPL over the encryption session, the lockout tracker, and the backend
// API client.
package cli
