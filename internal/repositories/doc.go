// Package repositories implements SQLite persistence for swatch's local state.
//
// The only durable client-side state is the authenticated session, stored as two rows of a key/value table:
//   - "token" : the bearer credential
//   - "user"  : the JSON-encoded [models.User]
//
// [KeyValueRepository] implements the storage contract the session holder depends on.
// The table is created by the embedded migrations in the shared package.
package repositories
