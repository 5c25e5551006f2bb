package mode

// Mode is the search strategy.
type Mode string

// Search mode constants.
const (
	// Local scores, filters and sorts the in-memory corpus.
	Local Mode = "local"
	// Remote delegates filtering, sorting and pagination to filtered-grants-search.
	Remote Mode = "remote"
	// AI runs sector classification followed by grant matching.
	AI Mode = "ai"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Local || m == Remote || m == AI
}
