// Package client is the HTTP transport of the vmgen CLI.
//
// # Overview
//
// HTTPClient sends buffered Request values to the backend REST API and
// enforces the session policy shared by every call:
//  1. The access token from the Session is sent as a bearer token.
//  2. A 2xx JSON body carrying access_token and refresh_token updates the
//     session before Do returns.
//  3. A 401 triggers one single-flight POST /auth/refresh; every waiting
//     request replays with the new token, at most once. A failed refresh
//     clears the session.
//  4. A transport failure against the remote backend probes the local
//     backend once per process and, when it answers, rebinds to it.
//  5. Rejected requests are reported through a notify.Notifier.
//
// # Error Handling
//
// Failures are returned as *NetworkError, *HTTPError, *RefreshError or
// *DecodeError. They match the sentinels ErrUnavailable, ErrUnauthorized,
// ErrNotFound and ErrSessionExpired with errors.Is. MessageFor turns any of
// them into the text shown to the user.
package client
