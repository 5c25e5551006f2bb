package sortkey

// Key selects a single-key grant ordering.
type Key string

// Sort keys.
const (
	Default      Key = "default"
	DeadlineAsc  Key = "deadline-asc"
	DeadlineDesc Key = "deadline-desc"
	AmountAsc    Key = "amount-asc"
	AmountDesc   Key = "amount-desc"
	CreatedDesc  Key = "created-desc"
	// Relevance orders by fuzzy text relevance against the active query.
	Relevance Key = "relevance"
	// Matching orders by AI match score, falling back to text relevance.
	Matching Key = "matching"
)

// IsValid checks if the key is one of the supported values.
func (k Key) IsValid() bool {
	switch k {
	case Default, DeadlineAsc, DeadlineDesc, AmountAsc, AmountDesc, CreatedDesc, Relevance, Matching:
		return true
	}
	return false
}

// ByScore reports whether the key orders by a query-dependent score.
func (k Key) ByScore() bool { return k == Relevance || k == Matching }
