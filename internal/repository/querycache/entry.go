package querycache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/kailas-cloud/grantdex/internal/domain"
	"github.com/kailas-cloud/grantdex/internal/domain/grant"
	"github.com/kailas-cloud/grantdex/internal/domain/search/filter"
	"github.com/kailas-cloud/grantdex/internal/domain/search/page"
)

// DefaultTTL is how long a computed result set stays valid.
const DefaultTTL = 5 * time.Minute

// DefaultSweepInterval is the period of expired-entry cleanup.
const DefaultSweepInterval = time.Minute

var keyPrefix = domain.KeyPrefix + "search_cache:"

// Entry is a cached result set. It is never mutated after creation.
type Entry struct {
	IDs []string `json:"ids"`
	// Scores aligns with IDs when the result set is ranked, nil otherwise.
	Scores      []float64 `json:"scores,omitempty"`
	Total       int       `json:"total"`
	Explanation string    `json:"explanation,omitempty"`
	// Sectors are the classified sectors of an AI-mode result set.
	Sectors []string `json:"sectors,omitempty"`
	// Records and Page hold a server-paginated page that may not exist in the local corpus.
	Records   []grant.Record `json:"records,omitempty"`
	Page      *page.Info     `json:"page,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// KeyParts are the inputs that identify a result set.
type KeyParts struct {
	Text    string        `json:"q"`
	Mode    string        `json:"mode"`
	Filters filter.Params `json:"filters"`
	Sort    string        `json:"sort"`
	// Page and Limit are set only where pagination happens upstream (remote mode).
	Page  int `json:"page,omitempty"`
	Limit int `json:"limit,omitempty"`
}

// Key returns a deterministic cache key for parts. Filter values are expected in
// canonical (sorted) form, as produced by filter.New.
func Key(parts KeyParts) string {
	data, err := json.Marshal(parts)
	if err != nil {
		data = []byte(parts.Mode + "\x00" + parts.Text + "\x00" + parts.Sort)
	}
	h := sha256.Sum256(data)
	return keyPrefix + hex.EncodeToString(h[:])
}

func fresh(e Entry, now time.Time, ttl time.Duration) bool {
	return now.Sub(e.CreatedAt) < ttl
}
