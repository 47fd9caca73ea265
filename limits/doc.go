// Package limits provides centralized resource limits and validation functions
// for the magnification pipeline. Every allocation the engine performs per
// frame is derived from the input frame size, the pyramid depth and the
// temporal window, so bounding those three values bounds memory use.
//
// # Limits
//
//   - MaxFrameWidth / MaxFrameHeight / MaxFramePixels: the largest frame the
//     engine accepts. Larger frames are rejected with ErrFrameTooLarge
//     instead of being processed.
//
//   - MaxPyramidLevels: the ceiling on pyramid depth. The effective depth is
//     additionally bounded by the frame size (see pyramid.MaxLevels).
//
//   - MinProcessingBuffer / MaxTemporalWindow: bounds on the height of the
//     colour path's sample matrix.
//
// # Validation Functions
//
//	if err := limits.ValidateFrameSize(w, h); err != nil {
//	    // ErrFrameEmpty or ErrFrameTooLarge
//	}
//
// Configuration values are never rejected; use ClampLevels and
// ClampTemporalWindow to bring them into range.
package limits
