package frame

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Scaler resizes frames with bilinear interpolation.
//
// The magnification pipeline uses it where a residual computed at a reduced
// resolution has to be brought back to the exact input size, for example
// after expanding a Gaussian pyramid top whose levels were rounded down.
type Scaler struct{}

// NewScaler creates a new frame scaler.
func NewScaler() *Scaler {
	return &Scaler{}
}

// Scale resizes src to targetWidth x targetHeight and writes the result into
// dst, which is reallocated when its shape does not fit.
//
// Parameters:
//   - dst: Destination frame, may be nil
//   - src: Source frame to scale
//   - targetWidth, targetHeight: Output size, both must be positive
//
// Returns:
//   - *Frame: The scaled frame
//   - error: Any error that occurred during scaling
func (s *Scaler) Scale(dst, src *Frame, targetWidth, targetHeight int) (*Frame, error) {
	if src == nil {
		return nil, ErrNilFrame
	}
	if targetWidth <= 0 || targetHeight <= 0 {
		return nil, fmt.Errorf("%w: target %dx%d", ErrInvalidDimensions, targetWidth, targetHeight)
	}

	if !s.IsScalingRequired(src.Width, src.Height, targetWidth, targetHeight) {
		return src.CopyInto(dst), nil
	}
	if dst == src {
		dst = nil
	}

	dst = Ensure(dst, targetWidth, targetHeight, src.Channels())
	for c := range src.Planes {
		s.scalePlane(src.Planes[c], src.Width, src.Height, dst.Planes[c], targetWidth, targetHeight)
	}

	logrus.WithFields(logrus.Fields{
		"function":      "Scaler.Scale",
		"source_width":  src.Width,
		"source_height": src.Height,
		"target_width":  targetWidth,
		"target_height": targetHeight,
		"channels":      src.Channels(),
	}).Debug("Frame scaled")

	return dst, nil
}

// scalePlane performs bilinear interpolation of a single plane. Sample
// positions are aligned on pixel centres so that scaling up then down keeps
// the image centred.
func (s *Scaler) scalePlane(src []float64, srcWidth, srcHeight int, dst []float64, dstWidth, dstHeight int) {
	xRatio := float64(srcWidth) / float64(dstWidth)
	yRatio := float64(srcHeight) / float64(dstHeight)

	for y := 0; y < dstHeight; y++ {
		srcY := (float64(y)+0.5)*yRatio - 0.5
		if srcY < 0 {
			srcY = 0
		}
		y1 := int(srcY)
		y2 := y1 + 1
		if y2 >= srcHeight {
			y2 = srcHeight - 1
		}
		if y1 >= srcHeight {
			y1 = srcHeight - 1
		}
		fy := srcY - float64(y1)

		for x := 0; x < dstWidth; x++ {
			srcX := (float64(x)+0.5)*xRatio - 0.5
			if srcX < 0 {
				srcX = 0
			}
			x1 := int(srcX)
			x2 := x1 + 1
			if x2 >= srcWidth {
				x2 = srcWidth - 1
			}
			if x1 >= srcWidth {
				x1 = srcWidth - 1
			}
			fx := srcX - float64(x1)

			p11 := src[y1*srcWidth+x1]
			p12 := src[y1*srcWidth+x2]
			p21 := src[y2*srcWidth+x1]
			p22 := src[y2*srcWidth+x2]

			top := p11*(1-fx) + p12*fx
			bottom := p21*(1-fx) + p22*fx
			dst[y*dstWidth+x] = top*(1-fy) + bottom*fy
		}
	}
}

// IsScalingRequired checks if scaling is needed for given dimensions.
func (s *Scaler) IsScalingRequired(srcWidth, srcHeight, dstWidth, dstHeight int) bool {
	return srcWidth != dstWidth || srcHeight != dstHeight
}
