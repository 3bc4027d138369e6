package llm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/your-org/sightline/pkg/dto"
)

// buildPrompt assembles the full prompt: role preamble, detection context,
// and the user's question.
func buildPrompt(question string, detections []dto.Detection) string {
	return fmt.Sprintf(
		"You are an AI assistant helping users understand object detection results.\n\n"+
			"%s\n\n"+
			"User Question: %s\n\n"+
			"Please provide a clear, concise, and accurate answer based on the detection data.",
		detectionContext(detections), question)
}

// detectionContext summarizes detections: total count, per-class counts
// sorted by class name, and a numbered listing of every detection.
func detectionContext(detections []dto.Detection) string {
	if len(detections) == 0 {
		return "No objects were detected in the image."
	}

	parts := []string{
		"Detection Results:",
		fmt.Sprintf("Total objects detected: %d\n", len(detections)),
		"Object Summary:",
	}
	for _, cc := range countByClass(detections) {
		parts = append(parts, fmt.Sprintf("- %s: %d", cc.name, cc.count))
	}

	parts = append(parts, "\nDetailed Detection Data:")
	for i, det := range detections {
		bbox := det.BoundingBox
		parts = append(parts, fmt.Sprintf(
			"%d. %s (confidence: %.3f, location: x1=%.1f, y1=%.1f, x2=%.1f, y2=%.1f)",
			i+1, det.ClassName, det.Confidence, bbox.X1, bbox.Y1, bbox.X2, bbox.Y2))
	}

	return strings.Join(parts, "\n")
}

// fallbackAnswer is returned when the language model is unavailable. It is
// deterministic: the caller gets the per-class counts instead of an error.
func fallbackAnswer(detections []dto.Detection) string {
	if len(detections) == 0 {
		return "No objects detected and AI service unavailable."
	}

	lines := make([]string, 0, len(detections))
	for _, cc := range countByClass(detections) {
		lines = append(lines, fmt.Sprintf("• %s: %d", cc.name, cc.count))
	}

	return fmt.Sprintf("AI service temporarily unavailable. Detected %d objects:\n%s",
		len(detections), strings.Join(lines, "\n"))
}

type classCount struct {
	name  string
	count int
}

// countByClass returns per-class detection counts sorted by class name.
func countByClass(detections []dto.Detection) []classCount {
	counts := map[string]int{}
	for _, det := range detections {
		counts[det.ClassName]++
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]classCount, 0, len(names))
	for _, name := range names {
		result = append(result, classCount{name: name, count: counts[name]})
	}
	return result
}
