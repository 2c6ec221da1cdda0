package transfer

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"skullrender/internal/models"
	"skullrender/pkg/config"
)

// TestDefaultClassification walks the boundaries of the skull table
func TestDefaultClassification(t *testing.T) {
	tf := Default(0.3)

	testCases := []struct {
		value   int
		ok      bool
		opacity float64
	}{
		{math.MinInt16, false, 0},
		{-301, false, 0},
		{-300, true, 0.3}, // first value of the skin range
		{0, true, 0.3},
		{49, true, 0.3},
		{50, false, 0}, // soft tissue gap
		{299, false, 0},
		{300, true, 0.8}, // bone
		{4096, true, 0.8},
		{4097, false, 0}, // uncovered
		{math.MaxInt16, false, 0},
	}

	for _, tc := range testCases {
		class, ok := tf.Classify(tc.value)
		if ok != tc.ok {
			t.Errorf("Classify(%d): expected ok=%v, got %v", tc.value, tc.ok, ok)
			continue
		}
		if ok && class.Opacity != tc.opacity {
			t.Errorf("Classify(%d): expected opacity %g, got %g", tc.value, tc.opacity, class.Opacity)
		}
	}
}

// TestFirstMatchWins checks that an earlier bin shadows a later overlapping one
func TestFirstMatchWins(t *testing.T) {
	red := Class{Color: models.RGB{R: 1}, Opacity: 0.5}
	blue := Class{Color: models.RGB{B: 1}, Opacity: 0.9}

	tf := New(
		Bin{Low: 0, High: 100, Class: red},
		Bin{Low: 50, High: 200, Class: blue},
	)

	class, ok := tf.Classify(75)
	if !ok {
		t.Fatal("Expected 75 to be classified")
	}
	if diff := cmp.Diff(red, class); diff != "" {
		t.Errorf("Expected first bin to win (-want +got):\n%s", diff)
	}

	class, _ = tf.Classify(150)
	if diff := cmp.Diff(blue, class); diff != "" {
		t.Errorf("Expected second bin for 150 (-want +got):\n%s", diff)
	}

	// reversed order flips the overlap
	tf = New(
		Bin{Low: 50, High: 200, Class: blue},
		Bin{Low: 0, High: 100, Class: red},
	)
	class, _ = tf.Classify(75)
	if diff := cmp.Diff(blue, class); diff != "" {
		t.Errorf("Expected reordered first bin to win (-want +got):\n%s", diff)
	}
}

func TestTransparentBinShadows(t *testing.T) {
	tf := New(
		Bin{Low: 0, High: 10, Transparent: true},
		Bin{Low: 0, High: 100, Class: Class{Opacity: 1}},
	)
	if _, ok := tf.Classify(5); ok {
		t.Error("Expected transparent bin to shadow the opaque one")
	}
	if _, ok := tf.Classify(50); !ok {
		t.Error("Expected 50 to reach the opaque bin")
	}
}

func TestFromConfigSkinOpacity(t *testing.T) {
	bins := []config.BinConfig{
		{Low: 0, High: 10, Opacity: 0.9, Skin: true},
		{Low: 10, High: 20, Opacity: 0.4},
	}
	tf := FromConfig(bins, 0.05)

	got := tf.Bins()
	if got[0].Class.Opacity != 0.05 {
		t.Errorf("Expected skin opacity 0.05, got %g", got[0].Class.Opacity)
	}
	if got[1].Class.Opacity != 0.4 {
		t.Errorf("Expected opacity 0.4, got %g", got[1].Class.Opacity)
	}
}

func TestBinsReturnsCopy(t *testing.T) {
	tf := Default(0)
	b := tf.Bins()
	b[0].Transparent = false
	if !tf.Bins()[0].Transparent {
		t.Error("Mutating the returned bins must not change the function")
	}
}
