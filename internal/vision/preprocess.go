package vision

import (
	"image"
	"image/color"
	"image/draw"
)

// letterbox holds the mapping from model input space back to the original image.
type letterbox struct {
	scale float64
	padX  float64
	padY  float64
}

// preprocess scales img into a size×size square, preserving aspect ratio and
// padding the remainder with gray, then converts to normalized CHW float32.
func preprocess(img image.Image, size int) ([]float32, letterbox) {
	bounds := img.Bounds()
	srcW := bounds.Dx()
	srcH := bounds.Dy()

	scale := float64(size) / float64(srcW)
	if s := float64(size) / float64(srcH); s < scale {
		scale = s
	}
	scaledW := int(float64(srcW) * scale)
	scaledH := int(float64(srcH) * scale)
	padX := (size - scaledW) / 2
	padY := (size - scaledH) / 2

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.RGBA{114, 114, 114, 255}}, image.Point{}, draw.Src)

	for y := 0; y < scaledH; y++ {
		for x := 0; x < scaledW; x++ {
			srcX := bounds.Min.X + int(float64(x)/scale)
			srcY := bounds.Min.Y + int(float64(y)/scale)
			dst.Set(padX+x, padY+y, img.At(srcX, srcY))
		}
	}

	data := make([]float32, 3*size*size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, g, b, _ := dst.At(x, y).RGBA()

			// Convert from 16-bit to 8-bit, normalize to [0,1]
			idx := y*size + x
			data[0*size*size+idx] = float32(r>>8) / 255.0
			data[1*size*size+idx] = float32(g>>8) / 255.0
			data[2*size*size+idx] = float32(b>>8) / 255.0
		}
	}

	return data, letterbox{scale: scale, padX: float64(padX), padY: float64(padY)}
}
