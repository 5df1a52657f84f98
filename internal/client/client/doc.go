// Package client defines the remote collaborator interface of the PhishGuard
// backend and its HTTP implementation, plus initialization of the local
// SQLite database shared by the client-side repositories.
package client
