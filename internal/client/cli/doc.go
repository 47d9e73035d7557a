// Package cli is the vmgen command-line client.
//
// It wires configuration, the persisted session, the HTTP client and the API
// services into a cobra command tree. Toasts raised by the HTTP layer are
// rendered on stderr. The edit command opens an interactive loop over a
// services.Editor; see runREPL.
package cli
