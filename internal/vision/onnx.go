package vision

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"sort"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

const (
	numClasses   = 80
	iouThreshold = 0.45
)

// ONNXDetector runs a YOLOv8-class object detection model with ONNX Runtime.
// Input and output tensors are allocated once and reused; Run is serialized
// with a mutex since the session shares them across calls.
type ONNXDetector struct {
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
	inputSize    int
	numAnchors   int
	mu           sync.Mutex
}

// NewONNXDetector loads the model at modelPath. inputSize is the square input
// resolution (640 for the standard YOLOv8 exports). opts may be nil.
func NewONNXDetector(modelPath string, inputSize int, opts *ort.SessionOptions) (*ONNXDetector, error) {
	// YOLOv8 anchor-free head: one prediction per cell at strides 8, 16, 32.
	s := inputSize
	numAnchors := (s/8)*(s/8) + (s/16)*(s/16) + (s/32)*(s/32)

	inputShape := ort.NewShape(1, 3, int64(s), int64(s))
	inputTensor, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}

	outputShape := ort.NewShape(1, int64(4+numClasses), int64(numAnchors))
	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{"images"},
		[]string{"output0"},
		[]ort.Value{inputTensor},
		[]ort.Value{outputTensor},
		opts,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("create detector session: %w", err)
	}

	return &ONNXDetector{
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
		inputSize:    inputSize,
		numAnchors:   numAnchors,
	}, nil
}

func (d *ONNXDetector) Detect(ctx context.Context, imageData []byte, threshold float64) ([]RawDetection, error) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	input, lb := preprocess(img, d.inputSize)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	copy(d.inputTensor.GetData(), input)
	if err := d.session.Run(); err != nil {
		d.mu.Unlock()
		return nil, fmt.Errorf("run detection: %w", err)
	}
	output := make([]float32, len(d.outputTensor.GetData()))
	copy(output, d.outputTensor.GetData())
	d.mu.Unlock()

	bounds := img.Bounds()
	detections := d.decode(output, lb, bounds.Dx(), bounds.Dy(), threshold)
	return nonMaxSuppress(detections, iouThreshold), nil
}

// decode parses the [1, 4+numClasses, numAnchors] output: per anchor a
// center-format box followed by per-class scores.
func (d *ONNXDetector) decode(output []float32, lb letterbox, origW, origH int, threshold float64) []RawDetection {
	n := d.numAnchors
	var detections []RawDetection

	for i := 0; i < n; i++ {
		classID := 0
		best := output[4*n+i]
		for c := 1; c < numClasses; c++ {
			if score := output[(4+c)*n+i]; score > best {
				best = score
				classID = c
			}
		}
		if float64(best) < threshold {
			continue
		}

		cx := float64(output[0*n+i])
		cy := float64(output[1*n+i])
		w := float64(output[2*n+i])
		h := float64(output[3*n+i])

		// Undo the letterbox mapping back to original pixel coordinates
		x1 := (cx - w/2 - lb.padX) / lb.scale
		y1 := (cy - h/2 - lb.padY) / lb.scale
		x2 := (cx + w/2 - lb.padX) / lb.scale
		y2 := (cy + h/2 - lb.padY) / lb.scale

		x1 = clamp(x1, 0, float64(origW))
		y1 = clamp(y1, 0, float64(origH))
		x2 = clamp(x2, 0, float64(origW))
		y2 = clamp(y2, 0, float64(origH))

		detections = append(detections, RawDetection{
			ClassName:  cocoNames[classID],
			Confidence: float64(best),
			Box:        [4]float64{x1, y1, x2, y2},
		})
	}

	return detections
}

func (d *ONNXDetector) Close() {
	if d.session != nil {
		d.session.Destroy()
	}
	if d.inputTensor != nil {
		d.inputTensor.Destroy()
	}
	if d.outputTensor != nil {
		d.outputTensor.Destroy()
	}
}

// nonMaxSuppress drops lower-confidence detections of the same class that
// overlap a kept detection beyond the IoU threshold.
func nonMaxSuppress(detections []RawDetection, iouThresh float64) []RawDetection {
	if len(detections) == 0 {
		return detections
	}

	sort.Slice(detections, func(i, j int) bool {
		return detections[i].Confidence > detections[j].Confidence
	})

	keep := make([]bool, len(detections))
	for i := range keep {
		keep[i] = true
	}

	for i := 0; i < len(detections); i++ {
		if !keep[i] {
			continue
		}
		for j := i + 1; j < len(detections); j++ {
			if !keep[j] || detections[i].ClassName != detections[j].ClassName {
				continue
			}
			if iou(detections[i].Box, detections[j].Box) > iouThresh {
				keep[j] = false
			}
		}
	}

	var result []RawDetection
	for i, det := range detections {
		if keep[i] {
			result = append(result, det)
		}
	}
	return result
}

func iou(a, b [4]float64) float64 {
	x1 := math.Max(a[0], b[0])
	y1 := math.Max(a[1], b[1])
	x2 := math.Min(a[2], b[2])
	y2 := math.Min(a[3], b[3])

	intersection := math.Max(0, x2-x1) * math.Max(0, y2-y1)

	areaA := (a[2] - a[0]) * (a[3] - a[1])
	areaB := (b[2] - b[0]) * (b[3] - b[1])
	union := areaA + areaB - intersection
	if union <= 0 {
		return 0
	}
	return intersection / union
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
