package ledger

import (
	"encoding/json"
	"errors"
	"time"
)

// LegacySource is a key an older release of the app stored its ledger under,
// and the transformation that upgrades its payload.
//
// Transform receives the payload decoded as a generic JSON object so that
// fields unknown to this package are copied verbatim.
type LegacySource struct {
	Key       string
	Transform func(obj map[string]any, now time.Time)
}

// LegacySources are tried in order when a namespace has no document yet.
// Older releases only ever wrote the guest namespace.
var LegacySources = []LegacySource{
	{Key: "cakepop-ledger-v2::" + Guest, Transform: tagMigration("cakepop-ledger-v2")},
	{Key: "cakepop-ledger-v1::" + Guest, Transform: tagMigration("cakepop-ledger-v1")},
}

// tagMigration records the provenance of a migrated payload in its meta.
func tagMigration(base string) func(map[string]any, time.Time) {
	return func(obj map[string]any, now time.Time) {
		meta, ok := obj["meta"].(map[string]any)
		if !ok {
			meta = make(map[string]any)
			obj["meta"] = meta
		}
		meta["migratedFrom"] = base
		meta["migratedAt"] = MillisOf(now)
		meta["brand"] = Brand
		if _, ok := obj["settings"]; !ok {
			obj["settings"] = nil
		}
	}
}

// migrate copies the first readable legacy payload into target.
//
// It is best effort: unreadable payloads are skipped, and a failed write
// leaves target absent so that the caller falls back to a fresh document.
// It returns the legacy key used, or "" when nothing was migrated.
func (s *Store) migrate(target string) string {
	for _, src := range s.legacy {
		raw, err := s.kv.Get(src.Key)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				s.logger().Printf("cannot read legacy ledger %q: %v", src.Key, err)
			}
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
			s.logger().Printf("skipping unreadable legacy ledger %q: %v", src.Key, err)
			continue
		}
		src.Transform(obj, s.now())
		data, err := json.Marshal(obj)
		if err != nil {
			s.logger().Printf("cannot encode legacy ledger %q: %v", src.Key, err)
			continue
		}
		if err := s.kv.Set(target, data); err != nil {
			s.logger().Printf("cannot migrate legacy ledger %q to %q: %v", src.Key, target, err)
			return ""
		}
		s.logger().Printf("migrated legacy ledger %q to %q", src.Key, target)
		return src.Key
	}
	return ""
}
