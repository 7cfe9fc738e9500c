package state

// Store holds at most one value per user.
type Store[V any] interface {
	// Get returns the stored value and whether one exists.
	Get(userID int64) (V, bool)
	// Set replaces the value for a user.
	Set(userID int64, v V)
	// Clear drops the value for a user.
	Clear(userID int64)
	// Update runs fn under the user's lock. Returning keep=false clears the entry.
	Update(userID int64, fn func(cur V, ok bool) (next V, keep bool)) V
	// Len reports how many users currently have a value.
	Len() int
}
