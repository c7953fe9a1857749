// Package common contains shared constants used across Minbar components.
package common

const (
	// APIKeyHeaderName is the header carrying the backend project API key
	// on every request.
	APIKeyHeaderName = "apikey"

	// EntriesTable is the writable base table for content rows.
	EntriesTable = "entries"

	// EntriesReadView is the joined read view that adds the creator's
	// display name to each row. It is never written to.
	EntriesReadView = "entries_with_users"
)
