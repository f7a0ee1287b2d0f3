package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/entity"
	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/service"
)

// ProjectHandler serves project CRUD, snapshots and custom timeline events.
type ProjectHandler struct {
	svc *service.ProjectService
}

func NewProjectHandler(svc *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

type createProjectRequest struct {
	Name string `json:"name" binding:"required"`
}

// Create makes an empty project.
// POST /api/v1/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	m, err := h.svc.Create(c.Request.Context(), req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	Created(c, m)
}

// List returns project rows without blobs.
// GET /api/v1/projects
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.svc.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, gin.H{"items": projects})
}

// Get returns the full structural model.
// GET /api/v1/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	m, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, m)
}

// Save replaces the whole structural model.
// PUT /api/v1/projects/:id
func (h *ProjectHandler) Save(c *gin.Context) {
	var m entity.StructuralModel
	if err := c.ShouldBindJSON(&m); err != nil {
		BadRequest(c, "invalid model: "+err.Error())
		return
	}
	m.ID = c.Param("id")
	if err := h.svc.Save(c.Request.Context(), &m); err != nil {
		fail(c, err)
		return
	}
	Success(c, m)
}

// Delete removes a project.
// DELETE /api/v1/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	Success(c, nil)
}

// Snapshots lists the archived copies.
// GET /api/v1/projects/:id/snapshots
func (h *ProjectHandler) Snapshots(c *gin.Context) {
	snapshots, err := h.svc.Snapshots(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, gin.H{"items": snapshots})
}

type restoreSnapshotRequest struct {
	Key string `json:"key" binding:"required"`
}

// RestoreSnapshot replaces the current model with an archived copy.
// POST /api/v1/projects/:id/snapshots/restore
func (h *ProjectHandler) RestoreSnapshot(c *gin.Context) {
	var req restoreSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	m, err := h.svc.RestoreSnapshot(c.Request.Context(), c.Param("id"), req.Key)
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, m)
}

// AddCustomMaintenance inserts a manually authored maintenance event.
// POST /api/v1/projects/:id/timeline/maintenance
func (h *ProjectHandler) AddCustomMaintenance(c *gin.Context) {
	var ev entity.MaintenanceEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		BadRequest(c, "invalid event: "+err.Error())
		return
	}
	m, err := h.svc.AddCustomMaintenance(c.Request.Context(), c.Param("id"), ev)
	if err != nil {
		fail(c, err)
		return
	}
	Created(c, m.Timeline)
}

// AddCustomAssignment inserts a manually authored unit assignment.
// POST /api/v1/projects/:id/timeline/assignments
func (h *ProjectHandler) AddCustomAssignment(c *gin.Context) {
	var ev entity.UnitAssignmentEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		BadRequest(c, "invalid event: "+err.Error())
		return
	}
	m, err := h.svc.AddCustomAssignment(c.Request.Context(), c.Param("id"), ev)
	if err != nil {
		fail(c, err)
		return
	}
	Created(c, m.Timeline)
}

// DeleteCustomMaintenance removes a custom maintenance event. The body
// identifies the event by unit, type and timestamp.
// DELETE /api/v1/projects/:id/timeline/maintenance
func (h *ProjectHandler) DeleteCustomMaintenance(c *gin.Context) {
	var ev entity.MaintenanceEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		BadRequest(c, "invalid event: "+err.Error())
		return
	}
	m, err := h.svc.DeleteCustomMaintenance(c.Request.Context(), c.Param("id"), ev)
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, m.Timeline)
}

// DeleteCustomAssignment removes a custom unit assignment identified by unit,
// slot and timestamp.
// DELETE /api/v1/projects/:id/timeline/assignments
func (h *ProjectHandler) DeleteCustomAssignment(c *gin.Context) {
	var ev entity.UnitAssignmentEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		BadRequest(c, "invalid event: "+err.Error())
		return
	}
	m, err := h.svc.DeleteCustomAssignment(c.Request.Context(), c.Param("id"), ev)
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, m.Timeline)
}
