package session

import (
	"context"
	"time"
)

// Values is one stored name/value snapshot. Keys are attribute names; values
// are whatever the owning model reported, so they must be serialisable by the
// backing store (JSON for the Redis store, anything for the memory store).
type Values map[string]any

// Meta is storage-owned metadata recorded alongside a snapshot.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store persists name/value snapshots for one user session, keyed by the
// caller's state key. Implementations decide their own durability; the only
// contract is that Get reports ok=false for a key that was never set (or was
// deleted), which is distinct from a present-but-empty Values map.
type Store interface {
	// Get returns the snapshot stored under key. ok is false when no snapshot
	// exists for key. The returned map is owned by the caller and safe to
	// mutate.
	Get(ctx context.Context, key string) (values Values, meta Meta, ok bool, err error)
	// Set stores values under key, replacing any previous snapshot. When
	// meta.SnapshotID or meta.UpdatedAt are zero the store fills them in and
	// returns the meta it recorded.
	Set(ctx context.Context, key string, values Values, meta Meta) (Meta, error)
	// Delete removes the snapshot stored under key. Deleting an absent key is
	// a no-op.
	Delete(ctx context.Context, key string) error
}

// CloneValues returns a shallow copy of values, or nil for a nil input.
func CloneValues(values Values) Values {
	if values == nil {
		return nil
	}
	out := make(Values, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}

func cloneMeta(meta Meta) Meta {
	out := meta
	if meta.Extra == nil {
		return out
	}
	out.Extra = make(map[string]string, len(meta.Extra))
	for k, v := range meta.Extra {
		out.Extra[k] = v
	}
	return out
}
