// Package cli is the interactive storefront client.
//
// NewApp wires configuration, the local SQLite file, the Request Gateway,
// the Session Manager, the Cart Store and the asset listing, and App.Run
// starts a REPL that blocks until the user exits. Commands that need an
// account (profile, purchase, download, upload) are refused while logged out.
package cli
