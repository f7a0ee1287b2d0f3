package timeline

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/entity"
)

// TrackCache memoizes projected track trees. Projection is pure, so the cache
// key is just a digest of all inputs: model, timeline, range and collapse set.
// Re-invoking on every unrelated UI update then costs one hash instead of a
// full O(n·m) re-resolution.
type TrackCache struct {
	cache *lru.Cache[string, []Track]
	log   *zap.Logger
}

// NewTrackCache creates a cache holding up to size resolved projections.
func NewTrackCache(size int, log *zap.Logger) (*TrackCache, error) {
	c, err := lru.New[string, []Track](size)
	if err != nil {
		return nil, fmt.Errorf("create track cache: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &TrackCache{cache: c, log: log}, nil
}

// Resolve returns the projected tracks for the inputs, computing and caching
// on miss.
func (tc *TrackCache) Resolve(m *entity.StructuralModel, tl *entity.Timeline, rng Range, collapsed map[string]bool) []Track {
	key, ok := cacheKey(m, tl, rng, collapsed)
	if !ok {
		// Unhashable inputs are resolved directly, never cached.
		return ProjectTracks(m, tl, rng, collapsed, tc.log)
	}
	if tracks, ok := tc.cache.Get(key); ok {
		return tracks
	}
	tracks := ProjectTracks(m, tl, rng, collapsed, tc.log)
	tc.cache.Add(key, tracks)
	return tracks
}

// cacheKey digests all projection inputs. The model ID prefixes the digest so
// a hash collision can at worst serve a stale projection of the same model,
// never another model's tracks.
func cacheKey(m *entity.StructuralModel, tl *entity.Timeline, rng Range, collapsed map[string]bool) (string, bool) {
	h := fnv.New64a()
	enc := json.NewEncoder(h)
	if err := enc.Encode(m); err != nil {
		return "", false
	}
	if err := enc.Encode(tl); err != nil {
		return "", false
	}
	fmt.Fprintf(h, "%d|%d", rng.Start.UnixNano(), rng.End.UnixNano())
	ids := make([]string, 0, len(collapsed))
	for id, on := range collapsed {
		if on {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(h, "|%s", id)
	}
	return fmt.Sprintf("%s:%x", m.ID, h.Sum64()), true
}
