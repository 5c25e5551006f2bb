package search

// State is the lifecycle phase of a search.
type State string

// Search states.
const (
	StateIdle       State = "idle"
	StateDebouncing State = "debouncing"
	StateCacheHit   State = "cache_hit"
	StateCacheMiss  State = "cache_miss"
	StateFetching   State = "fetching"
	StateSucceeded  State = "succeeded"
	StateDegraded   State = "degraded"
)

// Terminal reports whether s ends a search.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateDegraded || s == StateCacheHit
}
