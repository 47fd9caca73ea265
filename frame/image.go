package frame

import (
	"image"
	"image/color"
	"math"
)

// FromImage converts any image.Image into a frame. Colour images become three
// RGB planes unless grayscale is set; *image.Gray and *image.Gray16 always
// produce a single plane.
func FromImage(img image.Image, grayscale bool) *Frame {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	switch src := img.(type) {
	case *image.Gray:
		f := New(w, h, 1)
		for y := 0; y < h; y++ {
			row := src.Pix[y*src.Stride : y*src.Stride+w]
			for x, v := range row {
				f.Planes[0][y*w+x] = float64(v) / 255
			}
		}
		return f
	case *image.Gray16:
		grayscale = true
	}

	channels := 3
	if grayscale {
		channels = 1
	}
	f := New(w, h, channels)
	const maxValue = float64(0xffff)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			i := y*w + x
			if grayscale {
				f.Planes[0][i] = (kr*float64(r) + kg*float64(g) + kb*float64(bl)) / maxValue
				continue
			}
			f.Planes[0][i] = float64(r) / maxValue
			f.Planes[1][i] = float64(g) / maxValue
			f.Planes[2][i] = float64(bl) / maxValue
		}
	}
	return f
}

// ToImage converts the frame to an 8-bit image. Single plane frames produce
// *image.Gray, three plane frames produce *image.RGBA. Samples are clipped to
// [0, 1] first.
func (f *Frame) ToImage() image.Image {
	rect := image.Rect(0, 0, f.Width, f.Height)
	if f.Channels() == 1 {
		img := image.NewGray(rect)
		for y := 0; y < f.Height; y++ {
			for x := 0; x < f.Width; x++ {
				img.SetGray(x, y, color.Gray{Y: to8(f.Planes[0][y*f.Width+x])})
			}
		}
		return img
	}

	img := image.NewRGBA(rect)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			i := y*f.Width + x
			img.SetRGBA(x, y, color.RGBA{
				R: to8(f.Planes[0][i]),
				G: to8(f.Planes[1][i]),
				B: to8(f.Planes[2][i]),
				A: 255,
			})
		}
	}
	return img
}

func to8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(v * 255))
}
