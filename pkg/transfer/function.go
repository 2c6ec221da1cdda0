// Package transfer classifies density samples into color and opacity for
// volume rendering.
package transfer

import (
	"fmt"

	"skullrender/internal/models"
	"skullrender/pkg/config"
)

// Class is the color and opacity assigned to a sample
type Class struct {
	Color   models.RGB
	Opacity float64
}

// Bin matches samples strictly between Low and High
type Bin struct {
	Low, High int

	// Transparent bins match but contribute nothing
	Transparent bool
	Class       Class
}

// Contains reports whether v lies in the open interval (Low, High)
func (b Bin) Contains(v int) bool {
	return v > b.Low && v < b.High
}

// Function is an ordered classification table. Bins are tested in
// declaration order and the first one containing the sample wins, so
// overlapping ranges are resolved by position.
type Function struct {
	bins []Bin
}

// New builds a function from bins in evaluation order
func New(bins ...Bin) *Function {
	b := make([]Bin, len(bins))
	copy(b, bins)
	return &Function{bins: b}
}

// Default returns the skull table: soft tissue in a skin tone at
// skinOpacity and bone in white at 0.8, with the ranges between them
// transparent
func Default(skinOpacity float64) *Function {
	return FromConfig(config.DefaultBins(), skinOpacity)
}

// FromConfig builds a function from configured bins. Bins marked as skin
// take skinOpacity instead of their own opacity.
func FromConfig(bins []config.BinConfig, skinOpacity float64) *Function {
	out := make([]Bin, 0, len(bins))
	for _, b := range bins {
		opacity := b.Opacity
		if b.Skin {
			opacity = skinOpacity
		}
		out = append(out, Bin{
			Low:         b.Low,
			High:        b.High,
			Transparent: b.Transparent,
			Class:       Class{Color: b.Color, Opacity: opacity},
		})
	}
	return &Function{bins: out}
}

// Classify returns the class of v. ok is false when v falls into a
// transparent bin or into a gap that no bin covers.
func (f *Function) Classify(v int) (class Class, ok bool) {
	for _, b := range f.bins {
		if !b.Contains(v) {
			continue
		}
		if b.Transparent {
			return Class{}, false
		}
		return b.Class, true
	}
	return Class{}, false
}

// Bins returns a copy of the table in evaluation order
func (f *Function) Bins() []Bin {
	b := make([]Bin, len(f.bins))
	copy(b, f.bins)
	return b
}

func (f *Function) String() string {
	s := "transfer function:"
	for _, b := range f.bins {
		if b.Transparent {
			s += fmt.Sprintf(" (%d,%d)->none", b.Low, b.High)
			continue
		}
		s += fmt.Sprintf(" (%d,%d)->%.2f", b.Low, b.High, b.Class.Opacity)
	}
	return s
}
