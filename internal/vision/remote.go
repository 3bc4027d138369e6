package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
)

// RemoteDetector delegates inference to an external model server over HTTP.
// The server accepts a multipart image upload and returns detections as JSON.
type RemoteDetector struct {
	inferenceURL string
	client       *http.Client
}

func NewRemoteDetector(inferenceURL string) *RemoteDetector {
	return &RemoteDetector{
		inferenceURL: inferenceURL,
		client:       &http.Client{},
	}
}

func (r *RemoteDetector) Detect(ctx context.Context, imageData []byte, threshold float64) ([]RawDetection, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "image.jpg")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(imageData)); err != nil {
		return nil, fmt.Errorf("copy image data: %w", err)
	}
	if err := writer.WriteField("confidence", strconv.FormatFloat(threshold, 'f', -1, 64)); err != nil {
		return nil, fmt.Errorf("write confidence field: %w", err)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.inferenceURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference failed with status: %d", resp.StatusCode)
	}

	var result struct {
		Detections []struct {
			ClassName   string  `json:"class_name"`
			Confidence  float64 `json:"confidence"`
			BoundingBox struct {
				X1 float64 `json:"x1"`
				Y1 float64 `json:"y1"`
				X2 float64 `json:"x2"`
				Y2 float64 `json:"y2"`
			} `json:"bounding_box"`
		} `json:"detections"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	detections := make([]RawDetection, 0, len(result.Detections))
	for _, det := range result.Detections {
		detections = append(detections, RawDetection{
			ClassName:  det.ClassName,
			Confidence: det.Confidence,
			Box:        [4]float64{det.BoundingBox.X1, det.BoundingBox.Y1, det.BoundingBox.X2, det.BoundingBox.Y2},
		})
	}
	return detections, nil
}

func (r *RemoteDetector) Close() {}
