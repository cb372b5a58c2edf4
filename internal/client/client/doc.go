// Package client talks to the Dokan Load Remote API.
//
// # Overview
//
// The package provides:
//  1. The Request Gateway (Gateway): every call goes through Gateway.Do,
//     which attaches the stored bearer token, applies the metadata or
//     transfer timeout, and turns a 401 on a stored-token call into a
//     forced logout via the registered Invalidator.
//  2. The API contract (Client) and its HTTP implementation (HTTPClient).
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite file and applying embedded goose migrations.
//
// # Error Handling
//
// Expected conditions are sentinel errors matched with errors.Is:
// ErrInvalidCredentials, ErrUnauthorized, ErrNetwork, ErrNotFound,
// ErrValidation. *APIError and *ValidationError carry status and server
// message. Nothing is retried automatically.
package client
