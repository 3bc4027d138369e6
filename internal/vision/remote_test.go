package vision

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRemoteDetector_Detect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Errorf("expected multipart request, got %s", r.Header.Get("Content-Type"))
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("missing file field: %v", err)
		}
		if got := r.FormValue("confidence"); got != "0.25" {
			t.Errorf("expected confidence 0.25, got %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"detections":[{"class_name":"car","confidence":0.87,"bounding_box":{"x1":1,"y1":2,"x2":30,"y2":40}}]}`))
	}))
	defer server.Close()

	det := NewRemoteDetector(server.URL)
	detections, err := det.Detect(context.Background(), []byte("fake-image"), 0.25)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(detections) != 1 {
		t.Fatalf("expected 1 detection, got %d", len(detections))
	}
	if detections[0].ClassName != "car" || detections[0].Confidence != 0.87 {
		t.Errorf("unexpected detection: %+v", detections[0])
	}
	if detections[0].Box != [4]float64{1, 2, 30, 40} {
		t.Errorf("unexpected box: %v", detections[0].Box)
	}
}

func TestRemoteDetector_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	det := NewRemoteDetector(server.URL)
	if _, err := det.Detect(context.Background(), []byte("fake-image"), 0.25); err == nil {
		t.Error("expected error on upstream failure")
	}
}

func TestRemoteDetector_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	det := NewRemoteDetector(server.URL)
	if _, err := det.Detect(ctx, []byte("fake-image"), 0.25); err == nil {
		t.Error("expected error for cancelled context")
	}
}
