package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"math"
	"time"

	"github.com/your-org/sightline/internal/observability"
	"github.com/your-org/sightline/pkg/dto"
)

// Result is the outcome of one detection request.
type Result struct {
	Detections []dto.Detection
	// AnnotatedPNG is the annotated image encoded as PNG.
	AnnotatedPNG []byte
	// DataURI is the same image as a data:image/png;base64 URI.
	DataURI string
	// ElapsedSeconds measures decode, inference and annotation together.
	ElapsedSeconds float64
}

// Service wraps a detector backend with the response contract: confidence
// rounded to 3 decimals, coordinates to 2, and an annotated copy of the input.
type Service struct {
	detector Detector
	backend  string
}

func NewService(detector Detector, backend string) *Service {
	return &Service{detector: detector, backend: backend}
}

func (s *Service) Detect(ctx context.Context, imageData []byte, threshold float64) (*Result, error) {
	start := time.Now()

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	inferStart := time.Now()
	raw, err := s.detector.Detect(ctx, imageData, threshold)
	if err != nil {
		return nil, fmt.Errorf("detect: %w", err)
	}
	observability.InferenceDuration.WithLabelValues(s.backend).Observe(time.Since(inferStart).Seconds())

	detections := make([]dto.Detection, 0, len(raw))
	for _, det := range raw {
		detections = append(detections, dto.Detection{
			ClassName:  det.ClassName,
			Confidence: round(det.Confidence, 3),
			BoundingBox: dto.BoundingBox{
				X1: round(det.Box[0], 2),
				Y1: round(det.Box[1], 2),
				X2: round(det.Box[2], 2),
				Y2: round(det.Box[3], 2),
			},
		})
	}

	annotated := Annotate(img, detections)

	var buf bytes.Buffer
	if err := png.Encode(&buf, annotated); err != nil {
		return nil, fmt.Errorf("encode annotated image: %w", err)
	}
	pngData := buf.Bytes()

	return &Result{
		Detections:     detections,
		AnnotatedPNG:   pngData,
		DataURI:        "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngData),
		ElapsedSeconds: time.Since(start).Seconds(),
	}, nil
}

func (s *Service) Close() {
	s.detector.Close()
}

func round(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
