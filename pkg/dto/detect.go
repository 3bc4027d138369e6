package dto

type BoundingBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

type Detection struct {
	ClassName   string      `json:"class_name"`
	Confidence  float64     `json:"confidence"`
	BoundingBox BoundingBox `json:"bounding_box"`
}

type DetectionResponse struct {
	// AnnotatedImage is a data:image/png;base64 URI of the input with boxes drawn.
	AnnotatedImage string      `json:"annotated_image"`
	Detections     []Detection `json:"detections"`
	ProcessingTime float64     `json:"processing_time"`
}

// WSDetectionEvent is broadcast to live-feed WebSocket clients after each
// successful detection request.
type WSDetectionEvent struct {
	Type           string         `json:"type"`
	Username       string         `json:"username"`
	Total          int            `json:"total"`
	ClassCounts    map[string]int `json:"class_counts"`
	ProcessingTime float64        `json:"processing_time"`
	SnapshotKey    string         `json:"snapshot_key,omitempty"`
	Timestamp      string         `json:"timestamp"`
}
