// Package videoio extracts frames from a video source into the
// array2.Array2[float64] representation the rest of the pipeline
// operates on, selecting a single color channel per the original's
// color_channel_t bitflag (blue=1, green=2, red=4, their OR = white).
package videoio

import (
	"errors"

	"github.com/hzaunick/smip/internal/array2"
)

// Channel selects which color plane Source.NextFrame extracts into the
// returned Array2. It mirrors the original's color_channel_t: a
// three-bit mask over blue, green, red. Black returns an all-zero
// frame; white (all three bits set) selects channel 0, same as blue,
// rather than averaging the planes.
type Channel uint8

const (
	ChannelBlack Channel = 0
	ChannelBlue  Channel = 1 << 0
	ChannelGreen Channel = 1 << 1
	ChannelRed   Channel = 1 << 2
	ChannelWhite Channel = ChannelBlue | ChannelGreen | ChannelRed
)

// Frame is one extracted video frame: a single-channel intensity grid
// plus the frame index it came from.
type Frame struct {
	Index int
	Image *array2.Array2[float64]
}

// Source is a forward-only sequence of video frames. The gocv-backed
// implementation wraps an OpenCV VideoCapture; MemorySource is a pure
// Go fake for tests.
type Source interface {
	// NFrames returns the total number of frames the source reports,
	// or 0 if unknown (e.g. a live or unseekable stream).
	NFrames() int
	// NextFrame extracts the next frame on the given channel. It
	// returns smerr.IoError wrapping io.EOF-like exhaustion once the
	// source is spent.
	NextFrame(channel Channel) (Frame, error)
	// Close releases any underlying OS resources.
	Close() error
}

// ErrExhausted is the sentinel error (wrapped in a smerr.IoError by
// each Source implementation) NextFrame returns once a source has no
// more frames.
var ErrExhausted = errors.New("video source exhausted")
