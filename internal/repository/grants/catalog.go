package grants

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/grantdex/internal/domain"
	"github.com/kailas-cloud/grantdex/internal/domain/grant"
)

// Loader reads the full grant corpus from a source.
type Loader interface {
	Load(ctx context.Context) ([]grant.Grant, error)
}

// Catalog holds an in-memory snapshot of the grant corpus.
// A failed reload keeps the previous snapshot.
type Catalog struct {
	loader Loader
	logger *zap.Logger

	mu       sync.RWMutex
	grants   []grant.Grant
	index    map[string]int
	loadedAt time.Time
}

// NewCatalog creates an empty catalog backed by loader.
func NewCatalog(loader Loader, logger *zap.Logger) *Catalog {
	return &Catalog{loader: loader, logger: logger, index: map[string]int{}}
}

// Reload replaces the snapshot with a fresh load.
func (c *Catalog) Reload(ctx context.Context) error {
	loaded, err := c.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load grants: %w", err)
	}

	c.mu.Lock()
	c.grants = loaded
	c.index = grant.Index(loaded)
	c.loadedAt = time.Now()
	c.mu.Unlock()

	c.logger.Info("Grant catalog loaded", zap.Int("grants", len(loaded)))
	return nil
}

// All returns the current snapshot. The slice is shared and must not be modified.
func (c *Catalog) All() []grant.Grant {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.grants
}

// Get returns a grant by ID.
func (c *Catalog) Get(id string) (grant.Grant, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.index[id]
	if !ok {
		return grant.Grant{}, domain.ErrNotFound
	}
	return c.grants[i], nil
}

// Lookup resolves IDs in order, skipping unknown ones.
func (c *Catalog) Lookup(ids []string) []grant.Grant {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]grant.Grant, 0, len(ids))
	for _, id := range ids {
		if i, ok := c.index[id]; ok {
			out = append(out, c.grants[i])
		}
	}
	return out
}

// Len returns the number of grants in the snapshot.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.grants)
}

// LoadedAt returns when the snapshot was last replaced.
func (c *Catalog) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}

// Run reloads every interval until ctx is done. Zero interval disables refresh.
func (c *Catalog) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Reload(ctx); err != nil {
				c.logger.Warn("Grant catalog refresh failed, keeping previous snapshot", zap.Error(err))
			}
		}
	}
}
