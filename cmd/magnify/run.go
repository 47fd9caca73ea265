package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/opd-ai/magnify"
	"github.com/opd-ai/magnify/config"
	"github.com/opd-ai/magnify/frame"
	"github.com/opd-ai/magnify/internal/imageio"
)

type runOptions struct {
	input     string
	output    string
	preset    string
	mode      string
	fps       float64
	width     int
	grayscale bool
}

func newRunCommand() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Magnify an image sequence",
		RunE: func(cmd *cobra.Command, args []string) error {
			preset, err := opts.resolvePreset(cmd.Flags().Changed("mode"), cmd.Flags().Changed("fps"), cmd.Flags().Changed("grayscale"))
			if err != nil {
				return err
			}
			stats, err := process(cmd.Context(), opts, preset)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "processed=%d passed=%d dropped=%d resets=%d avg=%s peak=%s\n",
				stats.FramesProcessed, stats.FramesPassed, stats.FramesDropped, stats.Resets,
				stats.AvgFrameTime, stats.PeakFrameTime)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.input, "input", "", "Directory of input frames")
	cmd.Flags().StringVar(&opts.output, "output", "", "Directory for magnified frames")
	cmd.Flags().StringVar(&opts.preset, "preset", "", "YAML preset file")
	cmd.Flags().StringVar(&opts.mode, "mode", "color", "Magnification mode (off, color, laplace, wavelet)")
	cmd.Flags().Float64Var(&opts.fps, "fps", magnify.DefaultFrameRate, "Frame rate of the sequence")
	cmd.Flags().IntVar(&opts.width, "width", 0, "Working width in pixels (0 keeps the input size)")
	cmd.Flags().BoolVar(&opts.grayscale, "grayscale", false, "Process luma only")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

// resolvePreset loads the preset file, if any, and lets explicit flags
// override it. Without a preset the defaults of the selected mode apply.
func (o *runOptions) resolvePreset(modeSet, fpsSet, graySet bool) (*config.File, error) {
	mode, err := config.ParseMode(o.mode)
	if err != nil {
		return nil, err
	}
	if o.preset == "" {
		f := config.Default(mode, o.fps)
		f.Grayscale = o.grayscale
		return f, nil
	}

	f, err := config.Load(o.preset)
	if err != nil {
		return nil, err
	}
	if modeSet && f.Mode != mode.String() {
		f.Mode = mode.String()
		f.Controls = config.Defaults(mode)
	}
	if fpsSet || f.FrameRate == 0 {
		f.FrameRate = o.fps
	}
	if graySet {
		f.Grayscale = o.grayscale
	}
	return f, nil
}

// process streams the input sequence through one engine. Reading, magnifying
// and writing run in separate goroutines connected by channels; the first
// error cancels the others.
func process(ctx context.Context, opts *runOptions, preset *config.File) (magnify.Stats, error) {
	files, err := imageio.List(opts.input)
	if err != nil {
		return magnify.Stats{}, err
	}
	if err := os.MkdirAll(opts.output, 0o755); err != nil {
		return magnify.Stats{}, fmt.Errorf("create output dir: %w", err)
	}

	snap, err := preset.Snapshot()
	if err != nil {
		return magnify.Stats{}, err
	}
	history, err := magnify.NewRingBuffer(magnify.RecommendedBufferCapacity(preset.FrameRate))
	if err != nil {
		return magnify.Stats{}, err
	}
	engine, err := magnify.NewEngine(history, magnify.NewSettingsStore(snap))
	if err != nil {
		return magnify.Stats{}, err
	}

	logrus.WithFields(logrus.Fields{
		"function": "process",
		"engine":   engine.ID(),
		"frames":   len(files),
		"mode":     snap.Flags.Mode.String(),
		"buffer":   history.Cap(),
	}).Info("Starting magnification")

	g, ctx := errgroup.WithContext(ctx)
	inputs := make(chan *frame.Frame, 4)
	outputs := make(chan *frame.Frame, 4)

	g.Go(func() error {
		defer close(inputs)
		for _, path := range files {
			f, err := imageio.ReadFrame(path, opts.width, preset.Grayscale)
			if err != nil {
				return err
			}
			select {
			case inputs <- f:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	g.Go(func() error {
		defer close(outputs)
		for f := range inputs {
			if err := history.Append(f); err != nil {
				return err
			}
			if _, err := engine.PushFrame(); err != nil {
				return err
			}
			for {
				out, ok := engine.PopOldest()
				if !ok {
					break
				}
				select {
				case outputs <- out:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
		return nil
	})

	g.Go(func() error {
		index := 0
		for f := range outputs {
			path := filepath.Join(opts.output, imageio.OutputName(index))
			if err := imageio.WriteFrame(path, f); err != nil {
				return err
			}
			index++
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return engine.Stats(), err
	}
	stats := engine.Stats()
	logrus.WithFields(logrus.Fields{
		"function":  "process",
		"engine":    engine.ID(),
		"processed": stats.FramesProcessed,
		"passed":    stats.FramesPassed,
		"avg":       stats.AvgFrameTime,
	}).Info("Magnification finished")
	return stats, nil
}
