package optimizer

import (
	"encoding/json"
	"fmt"

	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/entity"
)

// Message kinds after normalization.
const (
	MessageProgress = "progress"
	MessageUpdate   = "update"
	MessageComplete = "complete"
)

// OptimizationInfo is one snapshot of the annealing metrics.
type OptimizationInfo struct {
	Best               float64 `json:"best"`
	Current            float64 `json:"current"`
	CurrentTemperature float64 `json:"currentTemperature"`
	CurrentIteration   int     `json:"currentIteration"`
}

// Message is the canonical form every inbound payload is normalized to before
// any session logic sees it.
type Message struct {
	Kind     string
	Text     string
	Timeline *entity.Timeline
	Info     *OptimizationInfo
}

// envelope covers every payload shape the optimizer emits: tagged wrappers,
// plan-wrapped timelines, bare timelines and plain progress strings.
type envelope struct {
	Event string `json:"event"`
	Data  string `json:"data"`

	Message string `json:"message"`
	Status  string `json:"status"`

	Plan *struct {
		Timeline *entity.Timeline `json:"timeline"`
	} `json:"plan"`
	OptimizationInformation *OptimizationInfo `json:"optimizationInformation"`

	// Bare-timeline shape: the Timeline fields at top level, no plan wrapper.
	AssemblyStates    []entity.AssemblyStateEvent  `json:"assemblyStates"`
	UnitAssignments   []entity.UnitAssignmentEvent `json:"unitAssignments"`
	MaintenanceEvents []entity.MaintenanceEvent    `json:"maintenanceEvents"`
	Validations       []entity.ValidationResult    `json:"validations"`
}

// DecodeMessage normalizes one stream payload. tag is the SSE event name,
// empty when the frame was untagged. Anything that matches no known shape
// comes back as a best-effort progress message, never an error that would
// abort the stream.
func DecodeMessage(tag string, data []byte) (*Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode stream message: %w", err)
	}

	// A JSON-level {event, data} wrapper: unwrap and decode the inner payload.
	if env.Event != "" && env.Data != "" {
		return DecodeMessage(env.Event, []byte(env.Data))
	}
	if tag == "" {
		tag = env.Event
	}

	switch tag {
	case "progress":
		return &Message{Kind: MessageProgress, Text: env.progressText()}, nil
	case "timeline-update", "optimization-update":
		return env.update(MessageUpdate), nil
	case "complete", "done":
		return env.update(MessageComplete), nil
	}

	// Untagged: infer from payload keys.
	if env.Plan != nil || env.OptimizationInformation != nil || env.hasBareTimeline() {
		return env.update(MessageUpdate), nil
	}
	return &Message{Kind: MessageProgress, Text: env.progressText()}, nil
}

func (env *envelope) update(kind string) *Message {
	msg := &Message{Kind: kind, Info: env.OptimizationInformation}
	if env.Plan != nil && env.Plan.Timeline != nil {
		msg.Timeline = env.Plan.Timeline
	} else if env.hasBareTimeline() {
		msg.Timeline = &entity.Timeline{
			AssemblyStates:    env.AssemblyStates,
			UnitAssignments:   env.UnitAssignments,
			MaintenanceEvents: env.MaintenanceEvents,
			Validations:       env.Validations,
		}
	}
	return msg
}

func (env *envelope) hasBareTimeline() bool {
	return len(env.AssemblyStates) > 0 || len(env.UnitAssignments) > 0 ||
		len(env.MaintenanceEvents) > 0 || len(env.Validations) > 0
}

func (env *envelope) progressText() string {
	if env.Message != "" {
		return env.Message
	}
	return env.Status
}
