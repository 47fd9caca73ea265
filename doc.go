// Package magnify implements a real-time Eulerian video magnification engine.
//
// The engine amplifies subtle temporal variations in a video stream, such as
// the colour change of skin with each heartbeat or the small vibration of a
// structure, so that they become visible. It works frame by frame on a
// rolling history of recent frames and supports three algorithms:
//
//   - [ModeColor]: the top of a Gaussian pyramid is bandpassed in the
//     frequency domain over a window of frames, amplified, and added back.
//   - [ModeLaplace]: every level of a Laplacian pyramid is bandpassed with a
//     pair of IIR low-pass filters and amplified with a gain that depends on
//     the spatial wavelength of the level.
//   - [ModeWavelet]: the same motion scheme on the detail bands of a Haar
//     wavelet decomposition, with optional soft-threshold denoising.
//
// # Getting Started
//
// The caller owns the history of input frames and publishes settings
// through a [SettingsStore]:
//
//	history, err := magnify.NewRingBuffer(magnify.RecommendedBufferCapacity(30))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store := magnify.NewSettingsStore(magnify.Snapshot{
//	    Settings: magnify.Settings{
//	        Amplification:    50,
//	        CutoffLow:        0.83,
//	        CutoffHigh:       1.0,
//	        ChromAttenuation: 1,
//	        Levels:           4,
//	        FrameRate:        30,
//	    },
//	    Flags: magnify.Flags{Mode: magnify.ModeColor},
//	})
//
//	engine, err := magnify.NewEngine(history, store)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for f := range frames {
//	    history.Append(f)
//	    if _, err := engine.PushFrame(); err != nil {
//	        log.Print(err)
//	    }
//	    if out, ok := engine.PopOldest(); ok {
//	        display(out)
//	    }
//	}
//
// # Settings
//
// Settings may be replaced at any time. The engine loads one [Snapshot] per
// frame and clamps every value into its valid range instead of failing. A
// change of frame size, channel count, level count or history capacity
// resets the active strategy; a change of mode replaces it.
//
// # Concurrency
//
// One goroutine calls [Engine.PushFrame]; another may drain the output with
// [Engine.PopOldest] or [Engine.PopNewest] at the same time. Independent
// engines share no state.
package magnify
