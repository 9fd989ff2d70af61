package frames

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/chenBenjamin97/action-segmentation-explorer/pkg/utils"
)

//ErrNotFound is returned when a frame has no image
var ErrNotFound = errors.New("frame image not found")

//Source turns a frame index, and the row's image filename when the dataset has one, into image bytes
type Source interface {
	Frame(index int, name string) (contentType string, data []byte, err error)
}

//Captioner is a Source that can draw a caption over the frame it returns
type Captioner interface {
	Source
	CaptionedFrame(index int, name, caption string) (contentType string, data []byte, err error)
}

//ImageDir serves frames from a directory of extracted images
type ImageDir struct {
	root string
}

func NewImageDir(root string) *ImageDir {
	return &ImageDir{root: root}
}

//Frame reads <root>/<name>. Without a name it falls back to the index-th file of the sorted directory listing.
func (d *ImageDir) Frame(index int, name string) (string, []byte, error) {
	if name == "" {
		names, err := utils.ListDir(d.root)
		if err != nil {
			return "", nil, fmt.Errorf("ImageDir.Frame: %w: %v", ErrNotFound, err)
		}
		if index < 0 || index >= len(names) {
			return "", nil, fmt.Errorf("ImageDir.Frame: %w: frame %d, '%s' holds %d images", ErrNotFound, index, d.root, len(names))
		}
		name = names[index]
	}

	//rooting the name before joining keeps it inside the directory
	imagePath := filepath.Join(d.root, filepath.Clean(string(filepath.Separator)+name))

	data, err := os.ReadFile(imagePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("ImageDir.Frame: %w: '%s'", ErrNotFound, imagePath)
		}
		return "", nil, fmt.Errorf("ImageDir.Frame: Could not read '%s', got '%v'", imagePath, err)
	}

	return http.DetectContentType(data), data, nil
}
