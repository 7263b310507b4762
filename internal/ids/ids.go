package ids

import "github.com/oklog/ulid/v2"

// New returns a lexicographically sortable identifier. Catalog listings order
// by id ascending, so identifiers must sort by creation time.
func New() string {
	return ulid.Make().String()
}
