// Package client talks to the inventory HTTP API.
//
// Client is the transport-agnostic contract used by the CLI and HTTPClient
// is its implementation over net/http. Failed calls are mapped to sentinel
// errors (ErrNotFound, ErrBadRequest, ErrUnavailable) that callers match
// with errors.Is; the server's message is kept in *APIError.
package client
