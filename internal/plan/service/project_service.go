package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/entity"
	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/model"
	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/repository"
)

// ProjectService owns the persisted structural-model blobs: load, save,
// snapshot archiving, and the custom-event merge that survives regeneration.
type ProjectService struct {
	repo      *repository.ProjectRepository
	snapshots *repository.SnapshotStore
	log       *zap.Logger
}

func NewProjectService(repo *repository.ProjectRepository, snapshots *repository.SnapshotStore, log *zap.Logger) *ProjectService {
	return &ProjectService{repo: repo, snapshots: snapshots, log: log}
}

// Create makes an empty project.
func (s *ProjectService) Create(ctx context.Context, name string) (*entity.StructuralModel, error) {
	m := &entity.StructuralModel{
		ID:             uuid.New().String(),
		Name:           name,
		AssemblyTypes:  []entity.AssemblyType{},
		ComponentTypes: []entity.ComponentType{},
		PartModels:     []entity.PartModel{},
		Nodes:          []*entity.TreeNode{},
		Timeline:       &entity.Timeline{},
	}
	if err := s.Save(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Get loads and deserializes one project's model.
func (s *ProjectService) Get(ctx context.Context, id string) (*entity.StructuralModel, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	var m entity.StructuralModel
	if err := json.Unmarshal(p.Model, &m); err != nil {
		return nil, fmt.Errorf("deserialize project %s: %w", id, err)
	}
	return &m, nil
}

// List returns project rows without blobs.
func (s *ProjectService) List(ctx context.Context) ([]entity.Project, error) {
	return s.repo.List(ctx)
}

// Save serializes the model, upserts the row and archives a snapshot copy.
// Archive failures are logged, not returned: object storage being down must
// not lose the primary save.
func (s *ProjectService) Save(ctx context.Context, m *entity.StructuralModel) error {
	blob, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("serialize project %s: %w", m.ID, err)
	}
	now := time.Now()
	m.HistoryUpdatedAt = &now
	p := &entity.Project{
		ID:               m.ID,
		Name:             m.Name,
		HistoryUpdatedAt: m.HistoryUpdatedAt,
		Model:            entity.JSONBlob(blob),
		UpdatedAt:        now,
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return fmt.Errorf("save project %s: %w", m.ID, err)
	}
	if s.snapshots.Enabled() {
		if _, err := s.snapshots.Put(ctx, m.ID, blob); err != nil {
			s.log.Warn("snapshot archive failed", zap.String("project_id", m.ID), zap.Error(err))
		}
	}
	return nil
}

// Delete removes a project row.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Snapshots lists the archived copies of a project.
func (s *ProjectService) Snapshots(ctx context.Context, projectID string) ([]repository.Snapshot, error) {
	return s.snapshots.List(ctx, projectID)
}

// RestoreSnapshot replaces the current blob with an archived copy.
func (s *ProjectService) RestoreSnapshot(ctx context.Context, projectID, key string) (*entity.StructuralModel, error) {
	blob, err := s.snapshots.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var m entity.StructuralModel
	if err := json.Unmarshal(blob, &m); err != nil {
		return nil, fmt.Errorf("deserialize snapshot %s: %w", key, err)
	}
	if m.ID != projectID {
		return nil, fmt.Errorf("snapshot %s belongs to project %s, not %s", key, m.ID, projectID)
	}
	if err := s.Save(ctx, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ApplyGenerated replaces the generated portion of a project's timeline with
// the optimizer's result and reattaches the custom events, then persists.
func (s *ProjectService) ApplyGenerated(ctx context.Context, projectID string, generated *entity.Timeline) (*entity.StructuralModel, error) {
	m, err := s.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	m.Timeline = MergeGenerated(m.Timeline, generated)
	if err := s.Save(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// AddCustomMaintenance inserts a manually authored maintenance event. The
// custom flag is forced: only the merge logic distinguishes authorship.
func (s *ProjectService) AddCustomMaintenance(ctx context.Context, projectID string, ev entity.MaintenanceEvent) (*entity.StructuralModel, error) {
	m, err := s.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	idx := model.BuildIndex(m)
	if idx.Unit(ev.UnitID) == nil {
		return nil, fmt.Errorf("%w: unit %s", ErrNotInModel, ev.UnitID)
	}
	if idx.MaintenanceType(ev.MaintenanceTypeID) == nil {
		return nil, fmt.Errorf("%w: maintenance type %s", ErrNotInModel, ev.MaintenanceTypeID)
	}
	ev.Custom = true
	if m.Timeline == nil {
		m.Timeline = &entity.Timeline{}
	}
	m.Timeline.MaintenanceEvents = append(m.Timeline.MaintenanceEvents, ev)
	if err := s.Save(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// AddCustomAssignment inserts a manually authored unit assignment.
func (s *ProjectService) AddCustomAssignment(ctx context.Context, projectID string, ev entity.UnitAssignmentEvent) (*entity.StructuralModel, error) {
	m, err := s.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	idx := model.BuildIndex(m)
	if idx.Unit(ev.UnitID) == nil {
		return nil, fmt.Errorf("%w: unit %s", ErrNotInModel, ev.UnitID)
	}
	if idx.Assemblies[ev.ComponentOfAssembly.AssemblyID] == nil {
		return nil, fmt.Errorf("%w: assembly %s", ErrNotInModel, ev.ComponentOfAssembly.AssemblyID)
	}
	ev.Custom = true
	if m.Timeline == nil {
		m.Timeline = &entity.Timeline{}
	}
	m.Timeline.UnitAssignments = append(m.Timeline.UnitAssignments, ev)
	if err := s.Save(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// DeleteCustomMaintenance removes a manually authored maintenance event,
// matched by unit, type and timestamp. Generated events are not deletable
// through this path: the next regeneration owns them.
func (s *ProjectService) DeleteCustomMaintenance(ctx context.Context, projectID string, ev entity.MaintenanceEvent) (*entity.StructuralModel, error) {
	m, err := s.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if m.Timeline == nil {
		return nil, fmt.Errorf("%w: custom maintenance event", ErrNotInModel)
	}
	evs := m.Timeline.MaintenanceEvents
	at := -1
	for i, cand := range evs {
		if cand.Custom && cand.UnitID == ev.UnitID &&
			cand.MaintenanceTypeID == ev.MaintenanceTypeID &&
			cand.DateTime.Equal(ev.DateTime) {
			at = i
			break
		}
	}
	if at < 0 {
		return nil, fmt.Errorf("%w: custom maintenance event", ErrNotInModel)
	}
	m.Timeline.MaintenanceEvents = append(evs[:at], evs[at+1:]...)
	if err := s.Save(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// DeleteCustomAssignment removes a manually authored unit assignment, matched
// by unit, slot and timestamp.
func (s *ProjectService) DeleteCustomAssignment(ctx context.Context, projectID string, ev entity.UnitAssignmentEvent) (*entity.StructuralModel, error) {
	m, err := s.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if m.Timeline == nil {
		return nil, fmt.Errorf("%w: custom assignment event", ErrNotInModel)
	}
	evs := m.Timeline.UnitAssignments
	at := -1
	for i, cand := range evs {
		if cand.Custom && cand.UnitID == ev.UnitID &&
			sameComponentRef(cand.ComponentOfAssembly, ev.ComponentOfAssembly) &&
			cand.DateTime.Equal(ev.DateTime) {
			at = i
			break
		}
	}
	if at < 0 {
		return nil, fmt.Errorf("%w: custom assignment event", ErrNotInModel)
	}
	m.Timeline.UnitAssignments = append(evs[:at], evs[at+1:]...)
	if err := s.Save(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func sameComponentRef(a, b entity.ComponentRef) bool {
	if a.AssemblyID != b.AssemblyID || len(a.ComponentPath) != len(b.ComponentPath) {
		return false
	}
	for i := range a.ComponentPath {
		if a.ComponentPath[i] != b.ComponentPath[i] {
			return false
		}
	}
	return true
}

// MergeGenerated builds the post-run timeline: the optimizer snapshot is
// authoritative for everything it generated, while custom events from the
// previous timeline are carried over untouched. Custom events are never
// deleted or overwritten by a regeneration. The optimizer receives the full
// timeline as input and may echo custom events back in its snapshot, so
// custom-flagged events in the generated arrays are dropped first: the
// current timeline is the only authority on custom events.
func MergeGenerated(current, generated *entity.Timeline) *entity.Timeline {
	if generated == nil {
		return current
	}
	merged := &entity.Timeline{
		AssemblyStates: generated.AssemblyStates,
		Validations:    generated.Validations,
	}
	for _, ev := range generated.UnitAssignments {
		if !ev.Custom {
			merged.UnitAssignments = append(merged.UnitAssignments, ev)
		}
	}
	for _, ev := range generated.MaintenanceEvents {
		if !ev.Custom {
			merged.MaintenanceEvents = append(merged.MaintenanceEvents, ev)
		}
	}
	if current == nil {
		return merged
	}
	for _, ev := range current.UnitAssignments {
		if ev.Custom {
			merged.UnitAssignments = append(merged.UnitAssignments, ev)
		}
	}
	for _, ev := range current.MaintenanceEvents {
		if ev.Custom {
			merged.MaintenanceEvents = append(merged.MaintenanceEvents, ev)
		}
	}
	return merged
}
