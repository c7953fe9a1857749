package models

// Collection is a user-curated named list of entry references. It lives
// only in the local store: referencing an entry does not copy it, and a
// referenced entry may no longer exist on the backend (resolution just
// skips missing ids).
type Collection struct {
	// ID is locally generated (milliseconds since epoch at creation),
	// never backend-assigned.
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	EntryIDs    []string `json:"entryIds"`
}

// AddEntry appends an entry reference, suppressing duplicates. It
// reports whether the id was actually added.
func (c *Collection) AddEntry(id string) bool {
	for _, existing := range c.EntryIDs {
		if existing == id {
			return false
		}
	}
	c.EntryIDs = append(c.EntryIDs, id)
	return true
}

// RemoveEntry deletes an entry reference, preserving order. It reports
// whether the id was present.
func (c *Collection) RemoveEntry(id string) bool {
	for i, existing := range c.EntryIDs {
		if existing == id {
			c.EntryIDs = append(c.EntryIDs[:i], c.EntryIDs[i+1:]...)
			return true
		}
	}
	return false
}
