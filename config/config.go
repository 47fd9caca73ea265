// Package config loads magnification presets from YAML and converts the raw
// control values a user interface works with into engine settings.
//
// A preset stores controls in the units of the sliders and spin boxes that
// edit them. Convert is the single place where those units become physical
// values:
//
//	control            colour mode          motion modes
//	cutoff_low/high    raw / 100 -> Hz      raw / 100 -> IIR weight
//	wavelength         raw * 10             raw * 10
//	chrom_attenuation  raw / 100            raw / 100
//	threshold          as is                as is
//	amplification      as is                as is
//	levels             as is                as is
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/opd-ai/magnify"
)

var (
	// ErrUnknownMode indicates a mode name that is not one of off, color,
	// laplace or wavelet.
	ErrUnknownMode = errors.New("unknown magnification mode")

	// ErrInvalidPreset indicates a preset that decoded but holds values no
	// control can produce.
	ErrInvalidPreset = errors.New("invalid preset")
)

// Controls are raw control values in user interface units.
type Controls struct {
	Amplification    float64 `yaml:"amplification"`
	CutoffLow        float64 `yaml:"cutoff_low"`
	CutoffHigh       float64 `yaml:"cutoff_high"`
	Wavelength       float64 `yaml:"wavelength"`
	ChromAttenuation float64 `yaml:"chrom_attenuation"`
	Levels           int     `yaml:"levels"`
	Threshold        float64 `yaml:"threshold"`
}

// File is a preset as stored on disk.
type File struct {
	Mode      string   `yaml:"mode"`
	Grayscale bool     `yaml:"grayscale"`
	FrameRate float64  `yaml:"frame_rate"`
	Controls  Controls `yaml:"controls"`
}

// ParseMode maps a mode name to its engine mode. Matching ignores case and
// surrounding space; "colour" is accepted for "color".
func ParseMode(name string) (magnify.Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "off", "none", "":
		return magnify.ModeOff, nil
	case "color", "colour":
		return magnify.ModeColor, nil
	case "laplace", "laplacian":
		return magnify.ModeLaplace, nil
	case "wavelet", "dwt":
		return magnify.ModeWavelet, nil
	default:
		return magnify.ModeOff, fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}
}

// Defaults returns the controls a fresh session starts with in mode.
func Defaults(mode magnify.Mode) Controls {
	switch mode {
	case magnify.ModeColor:
		return Controls{
			Amplification:    50,
			CutoffLow:        83,
			CutoffHigh:       100,
			Wavelength:       8,
			ChromAttenuation: 100,
			Levels:           4,
		}
	case magnify.ModeLaplace:
		return Controls{
			Amplification:    20,
			CutoffLow:        5,
			CutoffHigh:       40,
			Wavelength:       8,
			ChromAttenuation: 10,
			Levels:           4,
		}
	case magnify.ModeWavelet:
		return Controls{
			Amplification:    20,
			CutoffLow:        5,
			CutoffHigh:       40,
			Wavelength:       8,
			ChromAttenuation: 10,
			Levels:           3,
		}
	default:
		return Controls{}
	}
}

// Default returns the preset for mode at frameRate.
func Default(mode magnify.Mode, frameRate float64) *File {
	return &File{
		Mode:      mode.String(),
		FrameRate: frameRate,
		Controls:  Defaults(mode),
	}
}

// controlUnits holds the factors that turn raw controls into settings.
type controlUnits struct {
	cutoff     float64
	wavelength float64
	chrom      float64
}

// motionUnits also serves Off so a preset keeps its values when the mode
// is switched back on.
var motionUnits = controlUnits{cutoff: 0.01, wavelength: 10, chrom: 0.01}

var unitTable = map[magnify.Mode]controlUnits{
	magnify.ModeOff:     motionUnits,
	magnify.ModeColor:   {cutoff: 0.01, wavelength: 10, chrom: 0.01},
	magnify.ModeLaplace: motionUnits,
	magnify.ModeWavelet: motionUnits,
}

func unitsFor(mode magnify.Mode) controlUnits {
	if u, ok := unitTable[mode]; ok {
		return u
	}
	logrus.WithFields(logrus.Fields{
		"function": "unitsFor",
		"mode":     int(mode),
	}).Warn("No control units for mode, using motion units")
	return motionUnits
}

// Convert turns raw controls into engine settings for mode. The result is
// not clamped; the engine sanitises every snapshot it loads.
func Convert(mode magnify.Mode, c Controls, frameRate float64) magnify.Settings {
	u := unitsFor(mode)
	return magnify.Settings{
		Amplification:    c.Amplification,
		CutoffLow:        c.CutoffLow * u.cutoff,
		CutoffHigh:       c.CutoffHigh * u.cutoff,
		ChromAttenuation: c.ChromAttenuation * u.chrom,
		Levels:           c.Levels,
		Wavelength:       c.Wavelength * u.wavelength,
		Threshold:        c.Threshold,
		FrameRate:        frameRate,
	}
}

// CutoffToBPM converts a colour mode cutoff in Hz to beats per minute.
func CutoffToBPM(hz float64) float64 {
	return hz * 60
}

// Parse decodes a preset. Controls missing from data take the defaults of
// the preset's mode.
func Parse(data []byte) (*File, error) {
	var head struct {
		Mode string `yaml:"mode"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode preset: %w", err)
	}
	mode, err := ParseMode(head.Mode)
	if err != nil {
		return nil, err
	}

	f := Default(mode, magnify.DefaultFrameRate)
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode preset: %w", err)
	}
	f.Mode = mode.String()
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Load reads and parses the preset at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preset: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	logrus.WithFields(logrus.Fields{
		"function":   "config.Load",
		"path":       path,
		"mode":       f.Mode,
		"frame_rate": f.FrameRate,
	}).Info("Loaded preset")
	return f, nil
}

// Marshal encodes the preset as YAML.
func (f *File) Marshal() ([]byte, error) {
	return yaml.Marshal(f)
}

// Save writes the preset to path.
func (f *File) Save(path string) error {
	data, err := f.Marshal()
	if err != nil {
		return fmt.Errorf("encode preset: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write preset: %w", err)
	}
	return nil
}

// Validate rejects values that no control can produce. Everything else is
// left for the engine to clamp.
func (f *File) Validate() error {
	if _, err := ParseMode(f.Mode); err != nil {
		return err
	}
	c := f.Controls
	switch {
	case f.FrameRate < 0:
		return fmt.Errorf("%w: frame_rate %v is negative", ErrInvalidPreset, f.FrameRate)
	case c.Amplification < 0:
		return fmt.Errorf("%w: amplification %v is negative", ErrInvalidPreset, c.Amplification)
	case c.CutoffLow < 0 || c.CutoffHigh < 0:
		return fmt.Errorf("%w: cutoffs %v..%v must not be negative", ErrInvalidPreset, c.CutoffLow, c.CutoffHigh)
	case c.CutoffLow > c.CutoffHigh:
		return fmt.Errorf("%w: cutoff_low %v above cutoff_high %v", ErrInvalidPreset, c.CutoffLow, c.CutoffHigh)
	case c.ChromAttenuation < 0 || c.ChromAttenuation > 100:
		return fmt.Errorf("%w: chrom_attenuation %v outside 0..100", ErrInvalidPreset, c.ChromAttenuation)
	case c.Levels < 0:
		return fmt.Errorf("%w: levels %d is negative", ErrInvalidPreset, c.Levels)
	case c.Wavelength < 0 || c.Threshold < 0:
		return fmt.Errorf("%w: wavelength and threshold must not be negative", ErrInvalidPreset)
	}
	return nil
}

// Snapshot converts the preset into the snapshot an engine loads.
func (f *File) Snapshot() (magnify.Snapshot, error) {
	mode, err := ParseMode(f.Mode)
	if err != nil {
		return magnify.Snapshot{}, err
	}
	return magnify.Snapshot{
		Settings: Convert(mode, f.Controls, f.FrameRate),
		Flags: magnify.Flags{
			Grayscale: f.Grayscale,
			Mode:      mode,
		},
	}, nil
}
