// Package display models the configured capture regions of a frame: where
// each seven-segment readout sits and how its decoded text is interpreted.
package display

import (
	"fmt"
	"math"
	"strconv"

	"github.com/asada-m/read-digits/pkg/geometry"
)

// MaxRegions is the number of independently configured capture regions a
// frame may carry.
const MaxRegions = 3

// Mode selects how a region's decoded string is interpreted.
type Mode string

const (
	ModeUnused   Mode = "unused"
	ModeNumeric  Mode = "numeric"
	ModeExponent Mode = "exponent"
	ModeString   Mode = "string"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeUnused, ModeNumeric, ModeExponent, ModeString:
		return true
	}
	return false
}

// Region binds a display quadrilateral to a value interpretation. The quad
// may be stored in ratio form (captured once against a reference frame and
// re-derived per frame) or as absolute pixels.
type Region struct {
	Name string        `json:"name,omitempty"`
	Mode Mode          `json:"mode"`
	Quad geometry.Quad `json:"quad"`

	// Optional clamp bounds; decoded numeric values outside become NaN.
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// QuadFor returns the absolute-pixel quad for a frame of the given size,
// converting from ratio form when necessary.
func (r Region) QuadFor(frameW, frameH int) geometry.Quad {
	if r.Quad.IsRatio() {
		return r.Quad.Absolute(frameW, frameH)
	}
	return r.Quad
}

// Validate checks the region configuration.
func (r Region) Validate() error {
	if !r.Mode.Valid() {
		return fmt.Errorf("region %q: unknown mode %q", r.Name, r.Mode)
	}
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		return fmt.Errorf("region %q: min %g above max %g", r.Name, *r.Min, *r.Max)
	}
	return nil
}

// Validate checks a full region configuration, including the region count
// limit.
func Validate(regions []Region) error {
	if len(regions) > MaxRegions {
		return fmt.Errorf("at most %d regions, got %d", MaxRegions, len(regions))
	}
	for _, r := range regions {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Value is one interpreted reading.
type Value struct {
	Text string
	// Num is the parsed numeric value; NaN when the text does not parse,
	// falls outside the clamp bounds, or the region is in string mode.
	Num float64
}

// Interpret converts a decoded string according to the region's mode.
// Parse failures and out-of-range values become NaN and never abort the
// batch.
func (r Region) Interpret(text string) Value {
	v := Value{Text: text, Num: math.NaN()}
	if r.Mode == ModeString || r.Mode == ModeUnused {
		return v
	}

	num, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return v
	}
	if r.Min != nil && num < *r.Min {
		return v
	}
	if r.Max != nil && num > *r.Max {
		return v
	}
	v.Num = num
	return v
}
