package llm

import (
	"strings"
	"testing"

	"github.com/your-org/sightline/pkg/dto"
)

func sampleDetections() []dto.Detection {
	return []dto.Detection{
		{ClassName: "person", Confidence: 0.954, BoundingBox: dto.BoundingBox{X1: 10.25, Y1: 20.5, X2: 110.75, Y2: 220.0}},
		{ClassName: "dog", Confidence: 0.812, BoundingBox: dto.BoundingBox{X1: 5, Y1: 5, X2: 50, Y2: 60}},
		{ClassName: "person", Confidence: 0.633, BoundingBox: dto.BoundingBox{X1: 200, Y1: 30, X2: 280, Y2: 210}},
	}
}

func TestDetectionContext_Empty(t *testing.T) {
	got := detectionContext(nil)
	if got != "No objects were detected in the image." {
		t.Errorf("unexpected empty context: %q", got)
	}
}

func TestDetectionContext(t *testing.T) {
	got := detectionContext(sampleDetections())

	if !strings.Contains(got, "Total objects detected: 3") {
		t.Errorf("missing total count in context:\n%s", got)
	}
	// Class summary sorted alphabetically: dog before person
	dogIdx := strings.Index(got, "- dog: 1")
	personIdx := strings.Index(got, "- person: 2")
	if dogIdx < 0 || personIdx < 0 {
		t.Fatalf("missing class counts in context:\n%s", got)
	}
	if dogIdx > personIdx {
		t.Error("class summary must be sorted alphabetically")
	}
	if !strings.Contains(got, "1. person (confidence: 0.954, location: x1=10.2, y1=20.5, x2=110.8, y2=220.0)") {
		t.Errorf("unexpected detection listing:\n%s", got)
	}
}

func TestBuildPrompt(t *testing.T) {
	got := buildPrompt("How many dogs?", sampleDetections())

	if !strings.HasPrefix(got, "You are an AI assistant helping users understand object detection results.") {
		t.Errorf("unexpected prompt preamble:\n%s", got)
	}
	if !strings.Contains(got, "User Question: How many dogs?") {
		t.Errorf("missing question:\n%s", got)
	}
}

func TestFallbackAnswer_Empty(t *testing.T) {
	got := fallbackAnswer(nil)
	if got != "No objects detected and AI service unavailable." {
		t.Errorf("unexpected empty fallback: %q", got)
	}
}

func TestFallbackAnswer(t *testing.T) {
	got := fallbackAnswer(sampleDetections())
	want := "AI service temporarily unavailable. Detected 3 objects:\n• dog: 1\n• person: 2"
	if got != want {
		t.Errorf("fallback mismatch\nwant: %q\ngot:  %q", want, got)
	}
}
