package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/entity"
	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/service"
)

// ModelHandler serves structural-model mutations: component types, assembly
// types, part models and the node tree.
type ModelHandler struct {
	svc *service.ModelService
}

func NewModelHandler(svc *service.ModelService) *ModelHandler {
	return &ModelHandler{svc: svc}
}

// CreateComponentType adds a component type.
// POST /api/v1/projects/:id/component-types
func (h *ModelHandler) CreateComponentType(c *gin.Context) {
	var ct entity.ComponentType
	if err := c.ShouldBindJSON(&ct); err != nil {
		BadRequest(c, "invalid component type: "+err.Error())
		return
	}
	m, err := h.svc.AddComponentType(c.Request.Context(), c.Param("id"), ct)
	if err != nil {
		fail(c, err)
		return
	}
	Created(c, m)
}

// UpdateComponentType replaces a component type.
// PUT /api/v1/projects/:id/component-types/:typeId
func (h *ModelHandler) UpdateComponentType(c *gin.Context) {
	var ct entity.ComponentType
	if err := c.ShouldBindJSON(&ct); err != nil {
		BadRequest(c, "invalid component type: "+err.Error())
		return
	}
	ct.ID = c.Param("typeId")
	m, err := h.svc.UpdateComponentType(c.Request.Context(), c.Param("id"), ct)
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, m)
}

// DeleteComponentType removes a component type unless referenced.
// DELETE /api/v1/projects/:id/component-types/:typeId
func (h *ModelHandler) DeleteComponentType(c *gin.Context) {
	m, err := h.svc.DeleteComponentType(c.Request.Context(), c.Param("id"), c.Param("typeId"))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, m)
}

// CreateAssemblyType adds an assembly type with its component slots.
// POST /api/v1/projects/:id/assembly-types
func (h *ModelHandler) CreateAssemblyType(c *gin.Context) {
	var at entity.AssemblyType
	if err := c.ShouldBindJSON(&at); err != nil {
		BadRequest(c, "invalid assembly type: "+err.Error())
		return
	}
	m, err := h.svc.AddAssemblyType(c.Request.Context(), c.Param("id"), at)
	if err != nil {
		fail(c, err)
		return
	}
	Created(c, m)
}

// UpdateAssemblyType replaces an assembly type.
// PUT /api/v1/projects/:id/assembly-types/:typeId
func (h *ModelHandler) UpdateAssemblyType(c *gin.Context) {
	var at entity.AssemblyType
	if err := c.ShouldBindJSON(&at); err != nil {
		BadRequest(c, "invalid assembly type: "+err.Error())
		return
	}
	at.ID = c.Param("typeId")
	m, err := h.svc.UpdateAssemblyType(c.Request.Context(), c.Param("id"), at)
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, m)
}

// DeleteAssemblyType removes an assembly type unless instantiated.
// DELETE /api/v1/projects/:id/assembly-types/:typeId
func (h *ModelHandler) DeleteAssemblyType(c *gin.Context) {
	m, err := h.svc.DeleteAssemblyType(c.Request.Context(), c.Param("id"), c.Param("typeId"))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, m)
}

// CreatePartModel adds a part model with maintenance types and units.
// POST /api/v1/projects/:id/part-models
func (h *ModelHandler) CreatePartModel(c *gin.Context) {
	var pm entity.PartModel
	if err := c.ShouldBindJSON(&pm); err != nil {
		BadRequest(c, "invalid part model: "+err.Error())
		return
	}
	m, err := h.svc.AddPartModel(c.Request.Context(), c.Param("id"), pm)
	if err != nil {
		fail(c, err)
		return
	}
	Created(c, m)
}

// UpdatePartModel replaces a part model.
// PUT /api/v1/projects/:id/part-models/:modelId
func (h *ModelHandler) UpdatePartModel(c *gin.Context) {
	var pm entity.PartModel
	if err := c.ShouldBindJSON(&pm); err != nil {
		BadRequest(c, "invalid part model: "+err.Error())
		return
	}
	pm.ID = c.Param("modelId")
	m, err := h.svc.UpdatePartModel(c.Request.Context(), c.Param("id"), pm)
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, m)
}

// DeletePartModel removes a part model unless its units appear in the timeline.
// DELETE /api/v1/projects/:id/part-models/:modelId
func (h *ModelHandler) DeletePartModel(c *gin.Context) {
	m, err := h.svc.DeletePartModel(c.Request.Context(), c.Param("id"), c.Param("modelId"))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, m)
}

type addNodeRequest struct {
	ParentID string           `json:"parentId"`
	Node     *entity.TreeNode `json:"node" binding:"required"`
}

// CreateNode inserts a node or assembly into the hierarchy.
// POST /api/v1/projects/:id/nodes
func (h *ModelHandler) CreateNode(c *gin.Context) {
	var req addNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid node: "+err.Error())
		return
	}
	m, err := h.svc.AddNode(c.Request.Context(), c.Param("id"), req.ParentID, req.Node)
	if err != nil {
		fail(c, err)
		return
	}
	Created(c, m)
}

// UpdateNode replaces a node's own fields.
// PUT /api/v1/projects/:id/nodes/:nodeId
func (h *ModelHandler) UpdateNode(c *gin.Context) {
	var n entity.TreeNode
	if err := c.ShouldBindJSON(&n); err != nil {
		BadRequest(c, "invalid node: "+err.Error())
		return
	}
	n.ID = c.Param("nodeId")
	m, err := h.svc.UpdateNode(c.Request.Context(), c.Param("id"), &n)
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, m)
}

// DeleteNode removes a subtree unless its assemblies have timeline events.
// DELETE /api/v1/projects/:id/nodes/:nodeId
func (h *ModelHandler) DeleteNode(c *gin.Context) {
	m, err := h.svc.DeleteNode(c.Request.Context(), c.Param("id"), c.Param("nodeId"))
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, m)
}

type moveNodeRequest struct {
	NewParentID string `json:"newParentId"`
}

// MoveNode reparents a node; moving under a descendant is refused.
// POST /api/v1/projects/:id/nodes/:nodeId/move
func (h *ModelHandler) MoveNode(c *gin.Context) {
	var req moveNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	m, err := h.svc.MoveNode(c.Request.Context(), c.Param("id"), c.Param("nodeId"), req.NewParentID)
	if err != nil {
		fail(c, err)
		return
	}
	Success(c, m)
}
