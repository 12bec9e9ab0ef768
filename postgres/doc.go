// Package postgres provides the production storage backend for the auth
// package: pgx/v5 connection pooling with startup retry, goose-driven
// embedded schema migrations, and implementations of the AccountStore,
// NoteStore and EventLog interfaces.
//
// CommitRecovery runs inside a single transaction, which is what makes
// the key-rotation recovery flow atomic across the accounts and notes
// tables.
package postgres
