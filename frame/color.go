package frame

import "fmt"

// Full range BT.601 coefficients. Chroma is centred on zero so that scaling a
// chroma plane toward 0 moves a colour toward gray.
const (
	kr = 0.299
	kg = 0.587
	kb = 0.114
)

// ToYCbCr converts an RGB frame into dst as Y, Cb, Cr planes. dst may alias
// src. Single plane frames are copied unchanged.
func ToYCbCr(dst, src *Frame) (*Frame, error) {
	if src == nil {
		return nil, ErrNilFrame
	}
	if src.Channels() == 1 {
		return src.CopyInto(dst), nil
	}
	if src.Channels() != 3 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChannels, src.Channels())
	}
	dst = EnsureLike(dst, src)
	r, g, b := src.Planes[0], src.Planes[1], src.Planes[2]
	y, cb, cr := dst.Planes[0], dst.Planes[1], dst.Planes[2]
	for i := range r {
		rv, gv, bv := r[i], g[i], b[i]
		yv := kr*rv + kg*gv + kb*bv
		y[i] = yv
		cb[i] = (bv - yv) / (2 * (1 - kb))
		cr[i] = (rv - yv) / (2 * (1 - kr))
	}
	return dst, nil
}

// ToRGB converts a YCbCr frame produced by ToYCbCr back to RGB. dst may
// alias src. Single plane frames are copied unchanged.
func ToRGB(dst, src *Frame) (*Frame, error) {
	if src == nil {
		return nil, ErrNilFrame
	}
	if src.Channels() == 1 {
		return src.CopyInto(dst), nil
	}
	if src.Channels() != 3 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChannels, src.Channels())
	}
	dst = EnsureLike(dst, src)
	y, cb, cr := src.Planes[0], src.Planes[1], src.Planes[2]
	r, g, b := dst.Planes[0], dst.Planes[1], dst.Planes[2]
	for i := range y {
		yv, cbv, crv := y[i], cb[i], cr[i]
		rv := yv + 2*(1-kr)*crv
		bv := yv + 2*(1-kb)*cbv
		r[i] = rv
		g[i] = (yv - kr*rv - kb*bv) / kg
		b[i] = bv
	}
	return dst, nil
}

// Luma returns a single plane frame holding the BT.601 luma of src. A single
// plane src is copied.
func Luma(dst, src *Frame) (*Frame, error) {
	if src == nil {
		return nil, ErrNilFrame
	}
	dst = Ensure(dst, src.Width, src.Height, 1)
	if src.Channels() == 1 {
		copy(dst.Planes[0], src.Planes[0])
		return dst, nil
	}
	if src.Channels() != 3 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChannels, src.Channels())
	}
	r, g, b := src.Planes[0], src.Planes[1], src.Planes[2]
	y := dst.Planes[0]
	for i := range y {
		y[i] = kr*r[i] + kg*g[i] + kb*b[i]
	}
	return dst, nil
}
