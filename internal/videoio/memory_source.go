package videoio

import (
	"github.com/hzaunick/smip/internal/array2"
	"github.com/hzaunick/smip/internal/smerr"
)

// MemorySource is a pure-Go Source backed by a preloaded slice of
// frames, used by tests and by callers assembling synthetic frame
// sequences (e.g. from previously extracted Array2 data) without
// needing a gocv/OpenCV runtime.
type MemorySource struct {
	frames []*array2.Array2[float64]
	pos    int
}

// NewMemorySource builds a Source over frames, returned in order.
func NewMemorySource(frames []*array2.Array2[float64]) *MemorySource {
	return &MemorySource{frames: frames}
}

// NFrames returns the number of preloaded frames.
func (s *MemorySource) NFrames() int { return len(s.frames) }

// NextFrame returns the next preloaded frame, ignoring channel (the
// frames are already single-channel intensity grids).
func (s *MemorySource) NextFrame(_ Channel) (Frame, error) {
	if s.pos >= len(s.frames) {
		return Frame{}, smerr.NewIO("videoio.NextFrame", "", ErrExhausted)
	}
	f := Frame{Index: s.pos, Image: s.frames[s.pos]}
	s.pos++
	return f, nil
}

// Close is a no-op; MemorySource owns no OS resources.
func (s *MemorySource) Close() error { return nil }
