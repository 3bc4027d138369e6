package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/your-org/sightline/internal/observability"
	"github.com/your-org/sightline/pkg/dto"
)

// Service answers questions about detection results. Failures of the
// underlying model are absorbed into a deterministic fallback answer, never
// surfaced to the caller: Q&A degrades instead of erroring.
type Service struct {
	generator Generator
}

// NewService wraps a generator. generator may be nil (no API key configured),
// in which case every answer is the fallback.
func NewService(generator Generator) *Service {
	return &Service{generator: generator}
}

// Answer returns the model's answer and elapsed seconds.
func (s *Service) Answer(ctx context.Context, question string, detections []dto.Detection, imageBase64 string) (string, float64) {
	start := time.Now()

	if s.generator == nil {
		slog.Warn("no language model configured, returning fallback")
		observability.LLMRequests.WithLabelValues("fallback").Inc()
		return fallbackAnswer(detections), time.Since(start).Seconds()
	}

	answer, err := s.generator.Generate(ctx, buildPrompt(question, detections), imageBase64)
	if err != nil {
		slog.Warn("llm call failed, returning fallback", "error", err)
		observability.LLMRequests.WithLabelValues("fallback").Inc()
		return fallbackAnswer(detections), time.Since(start).Seconds()
	}

	observability.LLMRequests.WithLabelValues("ok").Inc()
	return answer, time.Since(start).Seconds()
}
