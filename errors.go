package magnify

import "errors"

// Sentinel errors for engine operations.
// These errors enable reliable error classification using errors.Is().

// Construction errors.
var (
	// ErrNilBuffer indicates an engine was created without a processing buffer.
	ErrNilBuffer = errors.New("processing buffer cannot be nil")

	// ErrNilStore indicates an engine was created without a settings store.
	ErrNilStore = errors.New("settings store cannot be nil")

	// ErrInvalidCapacity indicates a buffer capacity outside the supported range.
	ErrInvalidCapacity = errors.New("invalid buffer capacity")
)

// Per-frame errors.
var (
	// ErrEmptyBuffer indicates PushFrame was called before any frame arrived.
	ErrEmptyBuffer = errors.New("processing buffer is empty")

	// ErrInvalidFrame indicates the newest buffered frame is malformed.
	ErrInvalidFrame = errors.New("invalid input frame")

	// ErrEngineFault indicates a recovered internal failure. The engine state
	// has been reset and the next frame starts a fresh session.
	ErrEngineFault = errors.New("engine fault")
)
