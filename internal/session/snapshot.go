package session

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"surgetype/internal/narrow"
)

type narrowCacheSnapshot = narrow.CacheSnapshot

// narrowingSnapshotVersion guards against replaying a snapshot produced by
// an incompatible cache layout.
const narrowingSnapshotVersion = 1

type narrowingSnapshotEnvelope struct {
	Version int                `msgpack:"version"`
	Cache   msgpack.RawMessage `msgpack:"cache"`
}

// NarrowingSnapshot serializes the bounded narrowing cache so an enclosing
// IDE process can persist it across restarts. TypeIDs are only meaningful
// against the interner that produced them, so a snapshot is valid for replay
// only into a session rebuilt from identical inputs; Restore on anything
// else merely seeds harmless misses.
func (s *CheckSession) NarrowingSnapshot() ([]byte, error) {
	cache, err := msgpack.Marshal(s.Narrow.Cache().Snapshot())
	if err != nil {
		return nil, fmt.Errorf("encode narrowing cache: %w", err)
	}
	out, err := msgpack.Marshal(narrowingSnapshotEnvelope{
		Version: narrowingSnapshotVersion,
		Cache:   cache,
	})
	if err != nil {
		return nil, fmt.Errorf("encode snapshot envelope: %w", err)
	}
	return out, nil
}

// RestoreNarrowingSnapshot replays a previously captured snapshot into the
// session's narrowing cache. Version mismatches are ignored, not errors: the
// cache is an optimization, never a source of truth.
func (s *CheckSession) RestoreNarrowingSnapshot(data []byte) error {
	var envelope narrowingSnapshotEnvelope
	if err := msgpack.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("decode snapshot envelope: %w", err)
	}
	if envelope.Version != narrowingSnapshotVersion {
		return nil
	}
	var snap narrowCacheSnapshot
	if err := msgpack.Unmarshal(envelope.Cache, &snap); err != nil {
		return fmt.Errorf("decode narrowing cache: %w", err)
	}
	s.Narrow.Cache().Restore(snap)
	return nil
}
