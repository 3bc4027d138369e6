package vision

import "context"

// RawDetection is one detected object as produced by a detector backend,
// before the response rounding contract is applied.
type RawDetection struct {
	ClassName  string
	Confidence float64
	Box        [4]float64 // x1, y1, x2, y2 in pixel coordinates of the input image
}

// Detector locates objects in an encoded image. Implementations are safe for
// concurrent use and constructed once at process startup.
type Detector interface {
	Detect(ctx context.Context, imageData []byte, threshold float64) ([]RawDetection, error)
	Close()
}
