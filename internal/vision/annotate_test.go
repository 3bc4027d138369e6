package vision

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/your-org/sightline/pkg/dto"
)

func TestAnnotate_Deterministic(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 150))
	detections := []dto.Detection{
		// Box at the top edge: the label has no room above and flips inside
		{ClassName: "cat", Confidence: 0.91, BoundingBox: dto.BoundingBox{X1: 20, Y1: 2, X2: 120, Y2: 80}},
		{ClassName: "dog", Confidence: 0.42, BoundingBox: dto.BoundingBox{X1: 50, Y1: 60, X2: 180, Y2: 140}},
	}

	first := encodePNG(t, Annotate(img, detections))
	second := encodePNG(t, Annotate(img, detections))

	if !bytes.Equal(first, second) {
		t.Error("annotation must be deterministic for identical input")
	}
}

func TestAnnotate_DrawsBox(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	detections := []dto.Detection{
		{ClassName: "person", Confidence: 0.8, BoundingBox: dto.BoundingBox{X1: 10, Y1: 30, X2: 90, Y2: 90}},
	}

	annotated := Annotate(img, detections)

	// Top edge of the box is painted in the box color
	r, g, b, _ := annotated.At(50, 30).RGBA()
	if r>>8 != 0 || g>>8 != 255 || b>>8 != 0 {
		t.Errorf("expected green box edge at (50,30), got rgb(%d,%d,%d)", r>>8, g>>8, b>>8)
	}

	// Far corner outside any box stays untouched
	if annotated.RGBAAt(99, 5) != img.RGBAAt(99, 5) {
		t.Error("pixels outside boxes and labels must be unchanged")
	}
}

func TestAnnotate_EmptyBatch(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	annotated := Annotate(img, nil)

	if !bytes.Equal(encodePNG(t, annotated), encodePNG(t, img)) {
		t.Error("empty batch must leave the image unchanged")
	}
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
