package frame

import (
	"fmt"
	"math"
	"os"
	"time"

	"gocv.io/x/gocv"
)

// VideoSequence reads frames from a list of video files treated as one
// continuous recording (cameras that split long recordings into segments).
// A time offset is resolved by walking the segments in order.
type VideoSequence struct {
	caps  []*gocv.VideoCapture
	paths []string
}

// OpenVideos opens every video file in order. Files that fail to open make
// the whole sequence fail; a partially opened sequence is released.
func OpenVideos(paths []string) (*VideoSequence, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("open videos: no files given")
	}
	v := &VideoSequence{}
	for _, p := range paths {
		c, err := gocv.VideoCaptureFile(p)
		if err != nil || !c.IsOpened() {
			v.Close()
			return nil, fmt.Errorf("open video %s: %v", p, err)
		}
		v.caps = append(v.caps, c)
		v.paths = append(v.paths, p)
	}
	return v, nil
}

// Close releases all captures.
func (v *VideoSequence) Close() {
	for _, c := range v.caps {
		c.Close()
	}
	v.caps = nil
}

// Duration returns the total playing time of the sequence in seconds.
func (v *VideoSequence) Duration() float64 {
	var total float64
	for _, c := range v.caps {
		fps := c.Get(gocv.VideoCaptureFPS)
		if fps > 0 {
			total += c.Get(gocv.VideoCaptureFrameCount) / fps
		}
	}
	return total
}

// FrameAt extracts the grayscale frame at the given playing-time offset in
// seconds. Individual frames are occasionally unreadable even in intact
// files; one retry at the previous frame offset is made before giving up.
// Returns an empty Mat (ok=false) when the offset is past the end or the
// frame cannot be read. The caller owns the returned Mat.
func (v *VideoSequence) FrameAt(sec float64) (gocv.Mat, bool) {
	s := sec
	for _, c := range v.caps {
		fps := c.Get(gocv.VideoCaptureFPS)
		if fps <= 0 {
			continue
		}
		maxFrame := c.Get(gocv.VideoCaptureFrameCount)
		fr := math.Round(fps * s)
		if fr >= maxFrame {
			s -= maxFrame / fps
			if s < 0 {
				break
			}
			continue
		}

		img := gocv.NewMat()
		c.Set(gocv.VideoCapturePosFrames, fr)
		if !c.Read(&img) {
			c.Set(gocv.VideoCapturePosFrames, fr-1)
			if !c.Read(&img) {
				img.Close()
				return gocv.Mat{}, false
			}
		}

		gray := gocv.NewMat()
		gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)
		img.Close()
		return gray, true
	}
	return gocv.Mat{}, false
}

// TimestampAt reconstructs the wall-clock time of the frame at the given
// offset, counting backwards from the containing file's modification time
// (the recording end). Returns false when the offset is past the end.
func (v *VideoSequence) TimestampAt(sec float64) (time.Time, bool) {
	s := sec
	for i, c := range v.caps {
		fps := c.Get(gocv.VideoCaptureFPS)
		if fps <= 0 {
			continue
		}
		maxFrame := c.Get(gocv.VideoCaptureFrameCount)
		fr := math.Round(fps * s)
		if fr >= maxFrame {
			s -= maxFrame / fps
			continue
		}

		info, err := os.Stat(v.paths[i])
		if err != nil {
			return time.Time{}, false
		}
		back := (maxFrame - fr) / fps
		return info.ModTime().Add(-time.Duration(back * float64(time.Second))).Round(time.Second), true
	}
	return time.Time{}, false
}
