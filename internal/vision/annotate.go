package vision

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/your-org/sightline/pkg/dto"
)

var (
	boxColor   = color.RGBA{0, 255, 0, 255}
	labelColor = color.RGBA{0, 0, 0, 255}
)

const boxThickness = 2

// Annotate draws each detection as a rectangle with a "class: confidence"
// label on a copy of img. When the label background would run off the top
// edge it is drawn just below the box's top line instead, so the output is
// deterministic for identical input.
func Annotate(img image.Image, detections []dto.Detection) *image.RGBA {
	bounds := img.Bounds()
	annotated := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(annotated, annotated.Bounds(), img, bounds.Min, draw.Src)

	face := basicfont.Face7x13

	for _, det := range detections {
		x1 := int(det.BoundingBox.X1)
		y1 := int(det.BoundingBox.Y1)
		x2 := int(det.BoundingBox.X2)
		y2 := int(det.BoundingBox.Y2)

		drawRect(annotated, x1, y1, x2, y2)

		label := fmt.Sprintf("%s: %.2f", det.ClassName, det.Confidence)
		labelW := font.MeasureString(face, label).Ceil()
		labelH := face.Metrics().Height.Ceil()

		// Label background sits above the box, flipped below the top line
		// when there is no room.
		bgTop := y1 - labelH - 4
		if bgTop < 0 {
			bgTop = y1
		}
		bg := image.Rect(x1, bgTop, x1+labelW+4, bgTop+labelH+4)
		draw.Draw(annotated, bg.Intersect(annotated.Bounds()), &image.Uniform{C: boxColor}, image.Point{}, draw.Src)

		drawer := &font.Drawer{
			Dst:  annotated,
			Src:  &image.Uniform{C: labelColor},
			Face: face,
			Dot:  fixed.P(x1+2, bgTop+face.Metrics().Ascent.Ceil()+2),
		}
		drawer.DrawString(label)
	}

	return annotated
}

// drawRect outlines the box with boxThickness-pixel edges.
func drawRect(img *image.RGBA, x1, y1, x2, y2 int) {
	top := image.Rect(x1, y1, x2, y1+boxThickness)
	bottom := image.Rect(x1, y2-boxThickness, x2, y2)
	left := image.Rect(x1, y1, x1+boxThickness, y2)
	right := image.Rect(x2-boxThickness, y1, x2, y2)

	for _, r := range []image.Rectangle{top, bottom, left, right} {
		draw.Draw(img, r.Intersect(img.Bounds()), &image.Uniform{C: boxColor}, image.Point{}, draw.Src)
	}
}
