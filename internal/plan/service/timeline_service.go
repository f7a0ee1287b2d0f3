package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/entity"
	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/timeline"
)

// TimelineService resolves a project's track tree for rendering. Resolution is
// pure and memoized; the service is safe to hit on every viewport change.
type TimelineService struct {
	projects *ProjectService
	cache    *timeline.TrackCache
	log      *zap.Logger
}

func NewTimelineService(projects *ProjectService, cacheSize int, log *zap.Logger) (*TimelineService, error) {
	if cacheSize <= 0 {
		cacheSize = 64
	}
	cache, err := timeline.NewTrackCache(cacheSize, log)
	if err != nil {
		return nil, err
	}
	return &TimelineService{projects: projects, cache: cache, log: log}, nil
}

// ResolveProject loads the project and projects its tracks over the range.
func (s *TimelineService) ResolveProject(ctx context.Context, projectID string, rng timeline.Range, collapsed map[string]bool) ([]timeline.Track, error) {
	m, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return s.cache.Resolve(m, m.Timeline, rng, collapsed), nil
}

// ResolveModel projects tracks for a caller-supplied model, without touching
// persistence. Used for ad hoc what-if resolution.
func (s *TimelineService) ResolveModel(m *entity.StructuralModel, rng timeline.Range, collapsed map[string]bool) []timeline.Track {
	return s.cache.Resolve(m, m.Timeline, rng, collapsed)
}
