package handlers

import (
	"context"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/sightline/internal/api/ws"
	"github.com/your-org/sightline/internal/auth"
	"github.com/your-org/sightline/internal/observability"
	"github.com/your-org/sightline/internal/queue"
	"github.com/your-org/sightline/internal/storage"
	"github.com/your-org/sightline/internal/vision"
	"github.com/your-org/sightline/pkg/dto"
)

type DetectHandler struct {
	vision    *vision.Service
	threshold float64
	timeout   time.Duration

	// Optional sinks; any of these may be nil.
	snapshots *storage.SnapshotStore
	producer  *queue.Producer
	hub       *ws.Hub
}

func NewDetectHandler(svc *vision.Service, threshold float64, timeout time.Duration) *DetectHandler {
	return &DetectHandler{vision: svc, threshold: threshold, timeout: timeout}
}

func (h *DetectHandler) WithSnapshots(s *storage.SnapshotStore) *DetectHandler {
	h.snapshots = s
	return h
}

func (h *DetectHandler) WithProducer(p *queue.Producer) *DetectHandler {
	h.producer = p
	return h
}

func (h *DetectHandler) WithHub(hub *ws.Hub) *DetectHandler {
	h.hub = hub
	return h
}

// Detect runs object detection on an uploaded image and returns the
// detections plus an annotated copy of the image.
func (h *DetectHandler) Detect(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file required"})
		return
	}
	defer file.Close()

	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file must be an image"})
		return
	}

	imageData, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read image failed"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	result, err := h.vision.Detect(ctx, imageData, h.threshold)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error processing image: " + err.Error()})
		return
	}

	observability.DetectRequests.Inc()
	for _, det := range result.Detections {
		observability.DetectionsTotal.WithLabelValues(det.ClassName).Inc()
	}

	processingTime := round3(result.ElapsedSeconds)
	h.emit(c, result, processingTime)

	c.JSON(http.StatusOK, dto.DetectionResponse{
		AnnotatedImage: result.DataURI,
		Detections:     result.Detections,
		ProcessingTime: processingTime,
	})
}

// emit feeds the optional sinks: snapshot archive, event stream, live feed.
// Failures are logged, never surfaced to the caller.
func (h *DetectHandler) emit(c *gin.Context, result *vision.Result, processingTime float64) {
	if h.snapshots == nil && h.producer == nil && h.hub == nil {
		return
	}

	username := ""
	if user, ok := auth.CurrentUser(c); ok {
		username = user.Username
	}

	snapshotKey := ""
	if h.snapshots != nil {
		snapshotKey = "detections/" + uuid.New().String() + ".png"
		if err := h.snapshots.PutSnapshot(c.Request.Context(), snapshotKey, result.AnnotatedPNG); err != nil {
			slog.Warn("store detection snapshot", "error", err)
			snapshotKey = ""
		}
	}

	counts := map[string]int{}
	for _, det := range result.Detections {
		counts[det.ClassName]++
	}

	event := &dto.WSDetectionEvent{
		Type:           "detection",
		Username:       username,
		Total:          len(result.Detections),
		ClassCounts:    counts,
		ProcessingTime: processingTime,
		SnapshotKey:    snapshotKey,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	}

	if h.producer != nil {
		if err := h.producer.PublishDetection(c.Request.Context(), event); err != nil {
			slog.Warn("publish detection event", "error", err)
		}
	}
	if h.hub != nil {
		h.hub.BroadcastDetection(event)
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
