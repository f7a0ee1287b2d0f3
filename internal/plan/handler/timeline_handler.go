package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/entity"
	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/service"
	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/timeline"
)

// TimelineHandler serves track-tree resolution for the Gantt view.
type TimelineHandler struct {
	svc *service.TimelineService
}

func NewTimelineHandler(svc *service.TimelineService) *TimelineHandler {
	return &TimelineHandler{svc: svc}
}

// Tracks resolves a stored project over a visible range. Collapsed assembly
// ids come as a comma-separated query parameter.
// GET /api/v1/projects/:id/tracks?start=...&end=...&collapsed=a,b
func (h *TimelineHandler) Tracks(c *gin.Context) {
	rng, ok := parseRange(c)
	if !ok {
		return
	}
	tracks, err := h.svc.ResolveProject(c.Request.Context(), c.Param("id"), rng, parseCollapsed(c))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, gin.H{"tracks": tracks})
}

type resolveRequest struct {
	Model     *entity.StructuralModel `json:"model" binding:"required"`
	Collapsed []string                `json:"collapsed"`
}

// Resolve projects tracks for a caller-supplied model without persistence:
// the what-if endpoint used while editing.
// POST /api/v1/tracks/resolve?start=...&end=...
func (h *TimelineHandler) Resolve(c *gin.Context) {
	rng, ok := parseRange(c)
	if !ok {
		return
	}
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid model: "+err.Error())
		return
	}
	collapsed := make(map[string]bool, len(req.Collapsed))
	for _, id := range req.Collapsed {
		collapsed[id] = true
	}
	Success(c, gin.H{"tracks": h.svc.ResolveModel(req.Model, rng, collapsed)})
}

func parseRange(c *gin.Context) (timeline.Range, bool) {
	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		BadRequest(c, "invalid start: "+err.Error())
		return timeline.Range{}, false
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		BadRequest(c, "invalid end: "+err.Error())
		return timeline.Range{}, false
	}
	if !end.After(start) {
		BadRequest(c, "end must be after start")
		return timeline.Range{}, false
	}
	return timeline.Range{Start: start, End: end}, true
}

func parseCollapsed(c *gin.Context) map[string]bool {
	raw := c.Query("collapsed")
	if raw == "" {
		return nil
	}
	collapsed := make(map[string]bool)
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			collapsed[id] = true
		}
	}
	return collapsed
}
