// Package models holds the payloads exchanged with the backend and the
// client-side file records of an edit session.
//
// Every response type implements Validate, which the HTTP layer calls right
// after decoding so malformed payloads never reach callers.
package models
