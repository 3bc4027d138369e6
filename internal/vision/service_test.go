package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

type fakeDetector struct {
	detections []RawDetection
	err        error
}

func (f *fakeDetector) Detect(_ context.Context, _ []byte, _ float64) ([]RawDetection, error) {
	return f.detections, f.err
}

func (f *fakeDetector) Close() {}

func testImagePNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 128, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestService_Detect_Rounding(t *testing.T) {
	det := &fakeDetector{detections: []RawDetection{
		{ClassName: "person", Confidence: 0.95456, Box: [4]float64{10.128, 20.555, 110.701, 220.009}},
	}}
	svc := NewService(det, "fake")

	result, err := svc.Detect(context.Background(), testImagePNG(t, 320, 240), 0.25)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(result.Detections) != 1 {
		t.Fatalf("expected 1 detection, got %d", len(result.Detections))
	}

	d := result.Detections[0]
	if d.Confidence != 0.955 {
		t.Errorf("confidence should round to 3 decimals: got %v", d.Confidence)
	}
	box := d.BoundingBox
	if box.X1 != 10.13 || box.Y1 != 20.56 || box.X2 != 110.7 || box.Y2 != 220.01 {
		t.Errorf("coordinates should round to 2 decimals: got %+v", box)
	}
}

func TestService_Detect_DataURI(t *testing.T) {
	svc := NewService(&fakeDetector{}, "fake")

	result, err := svc.Detect(context.Background(), testImagePNG(t, 64, 48), 0.25)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(result.DataURI, prefix) {
		t.Fatalf("annotated image missing data URI prefix: %.40s", result.DataURI)
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(result.DataURI, prefix))
	if err != nil {
		t.Fatalf("annotated image is not valid base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(decoded))
	if err != nil {
		t.Fatalf("annotated image is not valid PNG: %v", err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 48 {
		t.Errorf("annotated image should keep input dimensions, got %v", img.Bounds())
	}

	if result.ElapsedSeconds < 0 {
		t.Errorf("negative processing time: %f", result.ElapsedSeconds)
	}
}

func TestService_Detect_InvalidImage(t *testing.T) {
	svc := NewService(&fakeDetector{}, "fake")

	if _, err := svc.Detect(context.Background(), []byte("not an image"), 0.25); err == nil {
		t.Error("expected error for undecodable input")
	}
}
