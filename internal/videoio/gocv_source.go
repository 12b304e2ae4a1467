package videoio

import (
	"math"

	"gocv.io/x/gocv"

	"github.com/hzaunick/smip/internal/array2"
	"github.com/hzaunick/smip/internal/smerr"
)

// GocvSource reads frames from any source gocv.VideoCapture accepts: a
// video file, an image sequence pattern, or a camera index encoded in
// the filename by the caller's convention.
type GocvSource struct {
	filename string
	cap      *gocv.VideoCapture
	mat      gocv.Mat
	index    int
}

// Open starts reading frames from filename.
func Open(filename string) (*GocvSource, error) {
	cap, err := gocv.VideoCaptureFile(filename)
	if err != nil {
		return nil, smerr.NewIO("videoio.Open", filename, err)
	}
	if !cap.IsOpened() {
		cap.Close()
		return nil, smerr.NewIO("videoio.Open", filename, errNotOpened)
	}
	return &GocvSource{filename: filename, cap: cap, mat: gocv.NewMat()}, nil
}

var errNotOpened = errorString("video capture failed to open")

type errorString string

func (e errorString) Error() string { return string(e) }

// NFrames returns gocv's frame-count property, which may be 0 for
// unseekable streams.
func (s *GocvSource) NFrames() int {
	return int(s.cap.Get(gocv.VideoCaptureFrameCount))
}

// NextFrame reads and decodes the next frame, extracting channel.
func (s *GocvSource) NextFrame(channel Channel) (Frame, error) {
	if ok := s.cap.Read(&s.mat); !ok || s.mat.Empty() {
		return Frame{}, smerr.NewIO("videoio.NextFrame", s.filename, ErrExhausted)
	}
	img, err := matToArray(s.mat, channel)
	if err != nil {
		return Frame{}, err
	}
	frame := Frame{Index: s.index, Image: img}
	s.index++
	return frame, nil
}

// Close releases the underlying VideoCapture and decode buffer.
func (s *GocvSource) Close() error {
	err1 := s.mat.Close()
	err2 := s.cap.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// matToArray extracts a single color plane from an 8-bit BGR (or
// grayscale) gocv.Mat: red/green/blue select their native byte offset,
// white selects channel 0, black returns all zeros without touching
// the Mat.
func matToArray(mat gocv.Mat, channel Channel) (*array2.Array2[float64], error) {
	cols, rows := mat.Cols(), mat.Rows()
	out := array2.New[float64](cols, rows)
	if channel == ChannelBlack {
		return out, nil
	}
	channels := mat.Channels()
	idx := channelIndex(channel, channels)

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := float64(mat.GetUCharAt(y, x*channels+idx))
			if err := out.Set(x, y, v); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// channelIndex maps a Channel onto a BGR byte offset (gocv decodes to
// OpenCV's native blue-green-red layout): blue/green/red select their
// own plane, white and any other combination select channel 0,
// clamped to the Mat's actual channel count.
func channelIndex(channel Channel, channels int) int {
	var idx int
	switch channel {
	case ChannelBlue:
		idx = 0
	case ChannelGreen:
		idx = 1
	case ChannelRed:
		idx = 2
	default:
		idx = 0
	}
	if channels == 0 {
		return 0
	}
	return int(math.Min(float64(idx), float64(channels-1)))
}
