package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/entity"
	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/optimizer"
	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/sse"
	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/timeline"
)

const (
	generationLockTTL        = time.Hour
	generationLockPrefix     = "toplan:generation:"
	generationProgressTTL    = time.Hour
	generationProgressPrefix = "toplan:generation:progress:"
)

// GenerationProgress is the last observed state of an in-flight run, kept for
// clients that query or subscribe after the stream started.
type GenerationProgress struct {
	Message   string                       `json:"message,omitempty"`
	Metrics   []optimizer.OptimizationInfo `json:"metrics,omitempty"`
	UpdatedAt time.Time                    `json:"updatedAt"`
}

// generationRun pairs a session with its reap signal. The reaper goroutine
// releases the redis lock and drops the progress cache before closing reaped,
// so anyone waiting on it observes a fully cleaned-up run.
type generationRun struct {
	session *optimizer.Session
	reaped  chan struct{}
}

// GenerationService owns optimization runs: at most one active session per
// project, relayed to UI clients through the SSE hub. Persistence happens on
// completion only: a cancelled or failed run never overwrites the last good
// timeline.
type GenerationService struct {
	projects *ProjectService
	client   *optimizer.Client
	hub      *sse.Hub
	rdb      *redis.Client
	log      *zap.Logger

	mu       sync.Mutex
	active   map[string]*generationRun
	progress map[string]*GenerationProgress
}

func NewGenerationService(projects *ProjectService, client *optimizer.Client, hub *sse.Hub, rdb *redis.Client, log *zap.Logger) *GenerationService {
	return &GenerationService{
		projects: projects,
		client:   client,
		hub:      hub,
		rdb:      rdb,
		log:      log,
		active:   make(map[string]*generationRun),
		progress: make(map[string]*GenerationProgress),
	}
}

// Start launches a run for the project over the planned range. A prior
// in-flight run for the same project is cancelled and reaped first. The redis
// lock keeps the one-active-run invariant across service instances; redis
// being absent degrades to per-instance exclusivity.
func (s *GenerationService) Start(ctx context.Context, projectID string, rng timeline.Range) error {
	m, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	prior := s.active[projectID]
	s.mu.Unlock()
	if prior != nil {
		// Wait for the reap so the prior run's lock release cannot race the
		// acquisition below.
		prior.session.Cancel()
		<-prior.reaped
	}

	if s.rdb != nil {
		ok, err := s.rdb.SetNX(ctx, generationLockPrefix+projectID, "1", generationLockTTL).Result()
		if err != nil {
			s.log.Warn("generation lock unavailable, continuing without it", zap.Error(err))
		} else if !ok {
			return fmt.Errorf("generation already running for project %s", projectID)
		}
	}

	// The run outlives the HTTP request that started it.
	session, err := s.client.Generate(context.Background(), m, rng, s.callbacks(projectID))
	if err != nil {
		s.releaseLock(projectID)
		return err
	}

	r := &generationRun{session: session, reaped: make(chan struct{})}
	s.mu.Lock()
	s.active[projectID] = r
	s.mu.Unlock()

	go func() {
		<-session.Done()
		s.releaseLock(projectID)
		s.clearProgress(projectID)
		s.mu.Lock()
		if s.active[projectID] == r {
			delete(s.active, projectID)
		}
		s.mu.Unlock()
		close(r.reaped)
	}()

	s.log.Info("generation started",
		zap.String("project_id", projectID),
		zap.Time("start", rng.Start),
		zap.Time("end", rng.End))
	return nil
}

// Cancel aborts the project's active run and waits for its reap, so a restart
// issued right after Cancel acquires the lock cleanly. Reports whether a run
// was active.
func (s *GenerationService) Cancel(projectID string) bool {
	s.mu.Lock()
	r, ok := s.active[projectID]
	s.mu.Unlock()
	if !ok {
		return false
	}
	r.session.Cancel()
	<-r.reaped
	s.hub.PublishJSON(projectID, "cancelled", map[string]string{"project_id": projectID})
	s.log.Info("generation cancelled", zap.String("project_id", projectID))
	return true
}

// Running reports whether the project has an active run on this instance.
func (s *GenerationService) Running(projectID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.active[projectID]
	return ok
}

// Progress returns the cached mid-run state, nil when none is cached. Redis
// is consulted first so the answer holds across instances; without redis the
// per-instance cache answers.
func (s *GenerationService) Progress(ctx context.Context, projectID string) *GenerationProgress {
	if s.rdb != nil {
		blob, err := s.rdb.Get(ctx, generationProgressPrefix+projectID).Bytes()
		switch {
		case err == nil:
			var p GenerationProgress
			if jsonErr := json.Unmarshal(blob, &p); jsonErr == nil {
				return &p
			}
		case !errors.Is(err, redis.Nil):
			s.log.Warn("failed to read cached generation progress",
				zap.String("project_id", projectID), zap.Error(err))
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.progress[projectID]; ok {
		snapshot := *p
		return &snapshot
	}
	return nil
}

func (s *GenerationService) callbacks(projectID string) optimizer.Callbacks {
	return optimizer.Callbacks{
		OnProgress: func(text string) {
			s.hub.PublishJSON(projectID, "progress", map[string]string{"message": text})
			s.cacheProgress(projectID, func(p *GenerationProgress) { p.Message = text })
		},
		OnTimelineUpdate: func(tl *entity.Timeline) {
			s.hub.PublishJSON(projectID, "timeline-update", tl)
		},
		OnOptimizationInfo: func(points []optimizer.OptimizationInfo) {
			s.hub.PublishJSON(projectID, "optimization-update", points)
			s.cacheProgress(projectID, func(p *GenerationProgress) { p.Metrics = points })
		},
		OnComplete: func(tl *entity.Timeline) {
			m, err := s.projects.ApplyGenerated(context.Background(), projectID, tl)
			if err != nil {
				s.log.Error("failed to persist generated timeline",
					zap.String("project_id", projectID), zap.Error(err))
				s.hub.PublishJSON(projectID, "error", map[string]string{"message": err.Error()})
				return
			}
			s.hub.PublishJSON(projectID, "complete", m.Timeline)
			s.log.Info("generation completed", zap.String("project_id", projectID))
		},
		OnError: func(err error) {
			s.hub.PublishJSON(projectID, "error", map[string]string{"message": err.Error()})
			s.log.Error("generation failed", zap.String("project_id", projectID), zap.Error(err))
		},
		OnRetry: func(count int) {
			s.hub.PublishJSON(projectID, "progress", map[string]interface{}{
				"message": "reconnecting to optimizer",
				"retry":   count,
			})
		},
	}
}

// cacheProgress records the latest run state in memory and writes it through
// to redis, so clients joining mid-run on any instance can read it from the
// status endpoint instead of waiting for the next event.
func (s *GenerationService) cacheProgress(projectID string, update func(p *GenerationProgress)) {
	s.mu.Lock()
	p := s.progress[projectID]
	if p == nil {
		p = &GenerationProgress{}
		s.progress[projectID] = p
	}
	update(p)
	p.UpdatedAt = time.Now()
	snapshot := *p
	s.mu.Unlock()

	if s.rdb == nil {
		return
	}
	blob, err := json.Marshal(&snapshot)
	if err != nil {
		return
	}
	if err := s.rdb.Set(context.Background(), generationProgressPrefix+projectID, blob, generationProgressTTL).Err(); err != nil {
		s.log.Warn("failed to cache generation progress",
			zap.String("project_id", projectID), zap.Error(err))
	}
}

// clearProgress drops the cached run state once the run terminates; the
// persisted timeline is the source of truth from then on.
func (s *GenerationService) clearProgress(projectID string) {
	s.mu.Lock()
	delete(s.progress, projectID)
	s.mu.Unlock()
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(context.Background(), generationProgressPrefix+projectID).Err(); err != nil {
		s.log.Warn("failed to drop cached generation progress",
			zap.String("project_id", projectID), zap.Error(err))
	}
}

func (s *GenerationService) releaseLock(projectID string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(context.Background(), generationLockPrefix+projectID).Err(); err != nil {
		s.log.Warn("failed to release generation lock",
			zap.String("project_id", projectID), zap.Error(err))
	}
}
