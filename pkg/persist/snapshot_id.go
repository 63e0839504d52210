package persist

import "github.com/google/uuid"

// newSnapshotID returns a time-ordered identifier so stored snapshots sort by
// creation.
func newSnapshotID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
