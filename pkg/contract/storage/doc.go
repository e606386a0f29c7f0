// Package storage provides the contract store backends: a JSON file beside
// each module source (the default), an in-memory map for tests, and a
// SQLite database for deployments that centralize trust state.
package storage
