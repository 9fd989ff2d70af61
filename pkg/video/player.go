package video

import (
	"fmt"

	"github.com/chenBenjamin97/action-segmentation-explorer/pkg/frames"
	"gocv.io/x/gocv"
)

//Player grabs single frames out of a video file. Each call opens its own capture
//and releases it before returning, so a Player is safe to share between requests.
type Player struct {
	path string
}

func NewPlayer(path string) *Player {
	return &Player{path: path}
}

//Frame seeks to frame index and returns it JPEG encoded. name is ignored, a video is addressed by index only.
func (p *Player) Frame(index int, name string) (string, []byte, error) {
	return p.grab(index, "")
}

//CaptionedFrame is Frame with caption drawn over the top left corner
func (p *Player) CaptionedFrame(index int, name, caption string) (string, []byte, error) {
	return p.grab(index, caption)
}

func (p *Player) grab(index int, caption string) (string, []byte, error) {
	if index < 0 {
		return "", nil, fmt.Errorf("Player.Frame: %w: frame %d", frames.ErrNotFound, index)
	}

	capture, err := gocv.VideoCaptureFile(p.path)
	if err != nil {
		return "", nil, fmt.Errorf("Player.Frame: Could not open '%s', got '%v'", p.path, err)
	}
	defer capture.Close()

	if total := int(capture.Get(gocv.VideoCaptureFrameCount)); total > 0 && index >= total {
		return "", nil, fmt.Errorf("Player.Frame: %w: frame %d, '%s' has %d frames", frames.ErrNotFound, index, p.path, total)
	}
	capture.Set(gocv.VideoCapturePosFrames, float64(index))

	frameMat := gocv.NewMat()
	defer frameMat.Close()

	if ok := capture.Read(&frameMat); !ok || frameMat.Empty() {
		return "", nil, fmt.Errorf("Player.Frame: %w: could not read frame %d of '%s'", frames.ErrNotFound, index, p.path)
	}

	plotCaption(&frameMat, caption, captionColor)

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, frameMat)
	if err != nil {
		return "", nil, fmt.Errorf("Player.Frame: Could not encode frame %d, got '%v'", index, err)
	}
	defer buf.Close()

	//buf's memory is owned by OpenCV and freed on Close
	data := append([]byte(nil), buf.GetBytes()...)
	return "image/jpeg", data, nil
}

//FrameRate reads the frame rate stored in the video container
func (p *Player) FrameRate() (float64, error) {
	capture, err := gocv.VideoCaptureFile(p.path)
	if err != nil {
		return 0, fmt.Errorf("Player.FrameRate: Could not open '%s', got '%v'", p.path, err)
	}
	defer capture.Close()

	return capture.Get(gocv.VideoCaptureFPS), nil
}
