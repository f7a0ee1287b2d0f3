package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/sse"
)

// SSEHandler streams generation events to the browser.
type SSEHandler struct {
	hub *sse.Hub
}

func NewSSEHandler(hub *sse.Hub) *SSEHandler {
	return &SSEHandler{hub: hub}
}

// Stream subscribes the caller to one project's generation events.
// GET /api/v1/projects/:id/events
func (h *SSEHandler) Stream(c *gin.Context) {
	projectID := c.Param("id")
	clientID := fmt.Sprintf("%s_%d", projectID, time.Now().UnixNano())

	client := &sse.Client{
		ID:        clientID,
		ProjectID: projectID,
		Events:    make(chan sse.Event, 64),
	}
	h.hub.Register(client)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	c.Writer.WriteString("event: connected\ndata: {\"client_id\":\"" + clientID + "\"}\n\n")
	c.Writer.Flush()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	clientGone := c.Request.Context().Done()

	for {
		select {
		case <-clientGone:
			h.hub.Unregister(clientID)
			return
		case event, ok := <-client.Events:
			if !ok {
				return
			}
			c.Writer.WriteString(fmt.Sprintf("event: %s\ndata: %s\n\n", event.EventType, event.Data))
			c.Writer.Flush()
		case <-heartbeat.C:
			c.Writer.WriteString(": keepalive\n\n")
			c.Writer.Flush()
		}
	}
}
