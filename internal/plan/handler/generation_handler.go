package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/service"
)

// GenerationHandler starts and cancels optimization runs.
type GenerationHandler struct {
	svc *service.GenerationService
}

func NewGenerationHandler(svc *service.GenerationService) *GenerationHandler {
	return &GenerationHandler{svc: svc}
}

// Start launches a run over the planned range. Progress arrives on the
// project's SSE stream, not in this response.
// POST /api/v1/projects/:id/generation?start=...&end=...
func (h *GenerationHandler) Start(c *gin.Context) {
	rng, ok := parseRange(c)
	if !ok {
		return
	}
	if err := h.svc.Start(c.Request.Context(), c.Param("id"), rng); err != nil {
		fail(c, err)
		return
	}
	Success(c, gin.H{"status": "started"})
}

// Cancel aborts the active run. A cancelled run's partial result is never
// persisted.
// DELETE /api/v1/projects/:id/generation
func (h *GenerationHandler) Cancel(c *gin.Context) {
	if !h.svc.Cancel(c.Param("id")) {
		NotFound(c, "no active generation for project")
		return
	}
	Success(c, gin.H{"status": "cancelled"})
}

// Status reports whether a run is active, plus the last cached progress so a
// client joining mid-run sees the current state before the next event.
// GET /api/v1/projects/:id/generation
func (h *GenerationHandler) Status(c *gin.Context) {
	projectID := c.Param("id")
	Success(c, gin.H{
		"running":  h.svc.Running(projectID),
		"progress": h.svc.Progress(c.Request.Context(), projectID),
	})
}
