package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opd-ai/magnify"
	"github.com/opd-ai/magnify/config"
	"github.com/opd-ai/magnify/limits"
)

var errBadSize = errors.New("size must look like WIDTHxHEIGHT")

func parseSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", errBadSize, s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", errBadSize, s)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", errBadSize, s)
	}
	if err := limits.ValidateFrameSize(w, h); err != nil {
		return 0, 0, err
	}
	return w, h, nil
}

func newLevelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "levels WIDTHxHEIGHT",
		Short: "Print the deepest pyramid a frame size supports",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, h, err := parseSize(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), magnify.MaxSupportedLevels(w, h))
			return nil
		},
	}
}

func newBufferSizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "buffer-size FPS",
		Short: "Print the recommended processing buffer capacity for a frame rate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fps, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid frame rate %q: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), magnify.RecommendedBufferCapacity(fps))
			return nil
		},
	}
}

func newPresetCommand() *cobra.Command {
	var (
		mode string
		fps  float64
		out  string
	)
	cmd := &cobra.Command{
		Use:   "preset",
		Short: "Write the default preset for a mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := config.ParseMode(mode)
			if err != nil {
				return err
			}
			f := config.Default(m, fps)
			if out == "" {
				data, err := f.Marshal()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return f.Save(out)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "color", "Magnification mode (off, color, laplace, wavelet)")
	cmd.Flags().Float64Var(&fps, "fps", magnify.DefaultFrameRate, "Frame rate of the video")
	cmd.Flags().StringVar(&out, "out", "", "Preset file to write (default: stdout)")
	return cmd
}
