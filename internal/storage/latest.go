package storage

import (
	"context"
	"fmt"
)

// PickLatest returns the object with the greatest LastModified.
// Objects without a timestamp never outrank one that has it; on equal timestamps
// the earlier entry in objs wins. ok is false when objs is empty.
func PickLatest(objs []ObjectInfo) (latest ObjectInfo, ok bool) {
	for i, o := range objs {
		if i == 0 {
			latest, ok = o, true
			continue
		}
		if o.LastModified.IsZero() {
			continue
		}
		if latest.LastModified.IsZero() || o.LastModified.After(latest.LastModified) {
			latest = o
		}
	}
	return latest, ok
}

// LatestOf lists prefix and returns its most recent object.
// The result may be stale if a write lands between the list and the caller's use of it.
func LatestOf(ctx context.Context, s Storage, prefix string) (ObjectInfo, error) {
	objs, err := s.List(ctx, prefix)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("list %q: %w", prefix, err)
	}
	latest, ok := PickLatest(objs)
	if !ok {
		return ObjectInfo{}, ErrNotFound
	}
	return latest, nil
}
