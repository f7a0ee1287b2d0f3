package optimizer

import (
	"testing"
)

func TestDecodeMessageTaggedProgress(t *testing.T) {
	msg, err := DecodeMessage("progress", []byte(`{"message":"iteration 40"}`))
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if msg.Kind != MessageProgress || msg.Text != "iteration 40" {
		t.Errorf("got %q/%q", msg.Kind, msg.Text)
	}
}

func TestDecodeMessageStatusFallback(t *testing.T) {
	msg, err := DecodeMessage("progress", []byte(`{"status":"annealing"}`))
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if msg.Text != "annealing" {
		t.Errorf("status field ignored, text = %q", msg.Text)
	}
}

func TestDecodeMessagePlanWrappedUpdate(t *testing.T) {
	data := []byte(`{
		"plan": {"timeline": {"assemblyStates": [{"assemblyId":"asm-1","type":"WORKING","dateTime":"2025-01-01T00:00:00Z"}]}},
		"optimizationInformation": {"best": 12.5, "current": 14.1, "currentTemperature": 0.9, "currentIteration": 40}
	}`)
	msg, err := DecodeMessage("timeline-update", data)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if msg.Kind != MessageUpdate {
		t.Fatalf("kind = %q", msg.Kind)
	}
	if msg.Timeline == nil || len(msg.Timeline.AssemblyStates) != 1 {
		t.Fatal("plan-wrapped timeline not extracted")
	}
	if msg.Info == nil || msg.Info.Best != 12.5 || msg.Info.CurrentIteration != 40 {
		t.Errorf("metrics not extracted: %+v", msg.Info)
	}
}

func TestDecodeMessageBareTimeline(t *testing.T) {
	data := []byte(`{"unitAssignments": [{"unitId":"unit-1","componentOfAssembly":{"assemblyId":"asm-1","componentPath":["slot-a"]},"dateTime":"2025-01-01T00:00:00Z"}]}`)
	msg, err := DecodeMessage("", data)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if msg.Kind != MessageUpdate {
		t.Fatalf("bare timeline should infer an update, got %q", msg.Kind)
	}
	if msg.Timeline == nil || len(msg.Timeline.UnitAssignments) != 1 {
		t.Fatal("bare timeline not captured")
	}
}

func TestDecodeMessageJSONWrapper(t *testing.T) {
	// Some emitters nest the SSE fields inside the JSON payload itself.
	data := []byte(`{"event":"progress","data":"{\"message\":\"wrapped\"}"}`)
	msg, err := DecodeMessage("", data)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if msg.Kind != MessageProgress || msg.Text != "wrapped" {
		t.Errorf("wrapper not unwrapped: %q/%q", msg.Kind, msg.Text)
	}
}

func TestDecodeMessageComplete(t *testing.T) {
	for _, tag := range []string{"complete", "done"} {
		msg, err := DecodeMessage(tag, []byte(`{"plan":{"timeline":{"maintenanceEvents":[{"maintenanceTypeId":"mt-1","unitId":"unit-1","dateTime":"2025-01-01T00:00:00Z"}]}}}`))
		if err != nil {
			t.Fatalf("DecodeMessage(%s): %v", tag, err)
		}
		if msg.Kind != MessageComplete {
			t.Errorf("tag %q: kind = %q", tag, msg.Kind)
		}
		if msg.Timeline == nil {
			t.Errorf("tag %q: final timeline dropped", tag)
		}
	}
}

func TestDecodeMessageCompleteWithoutTimeline(t *testing.T) {
	msg, err := DecodeMessage("complete", []byte(`{}`))
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if msg.Kind != MessageComplete || msg.Timeline != nil {
		t.Errorf("bare completion: %q, timeline %v", msg.Kind, msg.Timeline)
	}
}

func TestDecodeMessageUnknownFallsBackToProgress(t *testing.T) {
	msg, err := DecodeMessage("telemetry", []byte(`{"message":"something new"}`))
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if msg.Kind != MessageProgress {
		t.Errorf("unknown tag should degrade to progress, got %q", msg.Kind)
	}
}

func TestDecodeMessageInvalidJSON(t *testing.T) {
	if _, err := DecodeMessage("progress", []byte("not json")); err == nil {
		t.Fatal("expected an error for malformed payload")
	}
}
