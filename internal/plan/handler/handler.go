package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/model"
	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/repository"
	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/service"
	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/sse"
)

// Handlers is the collection wired at startup.
type Handlers struct {
	Project    *ProjectHandler
	Model      *ModelHandler
	Timeline   *TimelineHandler
	Generation *GenerationHandler
	SSE        *SSEHandler
}

// NewHandlers creates the handler collection.
func NewHandlers(svc *service.Services, hub *sse.Hub) *Handlers {
	return &Handlers{
		Project:    NewProjectHandler(svc.Project),
		Model:      NewModelHandler(svc.Model),
		Timeline:   NewTimelineHandler(svc.Timeline),
		Generation: NewGenerationHandler(svc.Generation),
		SSE:        NewSSEHandler(hub),
	}
}

// Response is the uniform envelope.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success writes a 200 envelope.
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{Code: 0, Message: "success", Data: data})
}

// Created writes a 201 envelope.
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{Code: 0, Message: "success", Data: data})
}

// Error writes an error envelope. The HTTP status is code/100.
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{Code: code, Message: message})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// fail maps service errors onto the envelope: missing entities are 404,
// blocked deletions are 409, everything else is 500.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrNotInModel),
		errors.Is(err, model.ErrNodeNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, service.ErrReferenced),
		errors.Is(err, model.ErrWouldCycle),
		errors.Is(err, model.ErrDuplicateID):
		Conflict(c, err.Error())
	case errors.Is(err, model.ErrNotANode):
		BadRequest(c, err.Error())
	default:
		InternalError(c, err.Error())
	}
}
