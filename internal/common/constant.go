// Package common contains shared constants and small helpers used across
// vmgen components.
package common

const (
	// AuthorizationHeader carries the bearer access token on outbound requests.
	AuthorizationHeader = "Authorization"

	// BearerScheme prefixes the access token in AuthorizationHeader.
	BearerScheme = "Bearer"

	// ContentTypeJSON is the media type of every non-file request body.
	ContentTypeJSON = "application/json"
)
