// Package volume reads raw CT scans into memory.
//
// The on-disk format is a headerless stream of Width*Height*Depth samples.
// Each sample is two bytes, low byte first, holding an unsigned magnitude
// that is reinterpreted as a signed 16-bit density. Samples are stored slice
// by slice: for every Z, every Y, every X.
package volume

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gonum.org/v1/gonum/stat"

	"skullrender/internal/models"
)

// BytesPerSample is the size of one encoded sample
const BytesPerSample = 2

// ErrSizeMismatch is returned when the file length does not match the
// requested dimensions
var ErrSizeMismatch = errors.New("file size does not match volume dimensions")

// LoadError describes a failure to read a volume. A LoadError is fatal:
// no volume is returned alongside it.
type LoadError struct {
	Path string
	Op   string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("volume %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("volume %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load reads a width×height×depth volume from path. The file must be
// exactly width*height*depth*2 bytes long.
func Load(path string, width, height, depth int) (*models.Volume, error) {
	if width <= 0 || height <= 0 || depth <= 0 {
		return nil, &LoadError{Path: path, Op: "load",
			Err: fmt.Errorf("invalid dimensions %dx%dx%d", width, height, depth)}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Op: "open", Err: err}
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, &LoadError{Path: path, Op: "stat", Err: err}
	}

	want := int64(width) * int64(height) * int64(depth) * BytesPerSample
	if info.Size() != want {
		return nil, &LoadError{Path: path, Op: "load",
			Err: fmt.Errorf("%w: expected %d bytes, got %d", ErrSizeMismatch, want, info.Size())}
	}

	vol, err := Decode(bufio.NewReader(file), width, height, depth)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return nil, err
	}
	return vol, nil
}

// Decode reads exactly width*height*depth samples from r, tracking the
// sample range in the same pass. A short stream is reported as a
// LoadError wrapping io.ErrUnexpectedEOF.
func Decode(r io.Reader, width, height, depth int) (*models.Volume, error) {
	n := width * height * depth
	raw := make([]byte, n*BytesPerSample)

	if _, err := io.ReadFull(r, raw); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, &LoadError{Op: "decode", Err: err}
	}

	data := make([]int16, n)
	min, max := int16(math.MaxInt16), int16(math.MinInt16)

	// File order matches the Volume layout (X fastest), so samples are
	// written sequentially.
	for i := range data {
		lo := uint16(raw[2*i])
		hi := uint16(raw[2*i+1])
		s := int16(hi<<8 | lo)

		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
		data[i] = s
	}

	return models.NewVolume(data, width, height, depth, min, max), nil
}

// Encode writes v in the on-disk format. It is the inverse of Decode.
func Encode(w io.Writer, v *models.Volume) error {
	bw := bufio.NewWriter(w)
	for _, s := range v.Data {
		u := uint16(s)
		if err := bw.WriteByte(byte(u)); err != nil {
			return err
		}
		if err := bw.WriteByte(byte(u >> 8)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Summary holds basic statistics of a loaded volume
type Summary struct {
	Width, Height, Depth int
	Min, Max             int16
	Mean                 float64
	StdDev               float64
}

// Summarize computes the statistics logged after a volume is loaded
func Summarize(v *models.Volume) Summary {
	values := make([]float64, len(v.Data))
	for i, s := range v.Data {
		values[i] = float64(s)
	}
	mean, std := stat.MeanStdDev(values, nil)

	return Summary{
		Width:  v.Width,
		Height: v.Height,
		Depth:  v.Depth,
		Min:    v.Min(),
		Max:    v.Max(),
		Mean:   mean,
		StdDev: std,
	}
}

func (s Summary) String() string {
	return fmt.Sprintf("%dx%dx%d samples, range [%d, %d], mean %.2f, stddev %.2f",
		s.Width, s.Height, s.Depth, s.Min, s.Max, s.Mean, s.StdDev)
}
