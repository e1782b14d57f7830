// Package cache stores rendered artifacts keyed by content hash.
//
// Rendering a visible subgraph to SVG through Graphviz is the one expensive
// step in clustergraph, and the same subgraph is rendered over and over as
// users toggle nodes back and forth. Artifacts are therefore cached under a
// key derived from the subgraph's content hash and the render options.
//
// # Backends
//
//   - [NullCache]: never stores anything (--no-cache, tests)
//   - [FileCache]: one JSON file per entry under a directory (CLI)
//   - [RedisCache]: shared cache for several server instances
//
// # Keys
//
// A [Keyer] builds keys from a content hash (see [Hash]) and the render
// options. [DefaultKeyer] keeps the format visible in the key so that
// "render:svg:..." entries can be told apart in a shared Redis.
package cache

import (
	"context"
	"strings"
	"time"
)

// Cache is a byte-oriented key-value store with optional expiry.
type Cache interface {
	// Get returns the stored value and true, or nil and false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// RenderKeyOpts holds the render options that influence an artifact.
type RenderKeyOpts struct {
	Format   string
	Detailed bool
}

// Keyer builds cache keys.
type Keyer interface {
	// RenderKey returns the key for an artifact rendered from a subgraph.
	RenderKey(subgraphHash string, opts RenderKeyOpts) string
}

// DefaultKeyer builds readable keys of the form
// "render:<format>[:detailed]:<hash>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// RenderKey implements [Keyer].
func (DefaultKeyer) RenderKey(subgraphHash string, opts RenderKeyOpts) string {
	parts := []string{"render", opts.Format}
	if opts.Detailed {
		parts = append(parts, "detailed")
	}
	return strings.Join(append(parts, subgraphHash), ":")
}
