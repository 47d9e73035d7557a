// Package session holds the client's authentication state: the token pair,
// the signed-in user and the operating mode.
//
// A Store is created once at startup, restored from the local database and
// passed to the HTTP client and services. State only changes through the
// transition methods (Login, SetTokens, UpdateUser, Clear, InitLocal), each of
// which writes through to the metadata repository in a single transaction
// before the in-memory copy is replaced.
package session
