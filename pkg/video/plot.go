package video

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

//captionColor is the banner behind the caption, the prediction accent #f71111
var captionColor = color.RGBA{247, 17, 17, 0}

//plotCaption writes caption on a filled banner in the top left corner of frame
func plotCaption(frame *gocv.Mat, caption string, plotColor color.RGBA) {
	if caption == "" {
		return
	}

	whiteRGB := color.RGBA{255, 255, 255, 0}
	size := gocv.GetTextSize(caption, gocv.FontHersheyPlain, 1.5, 2)

	startPoint := image.Pt(10, 10+size.Y+5)
	textBackgroundRect := image.Rect(0, 0, startPoint.X+size.X+10, startPoint.Y+10)

	gocv.Rectangle(frame, textBackgroundRect, plotColor, -1) //thickness -1 == filled rectangle
	gocv.PutText(frame, caption, startPoint, gocv.FontHersheyPlain, 1.5, whiteRGB, 2)
}
