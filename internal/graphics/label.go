package graphics

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const labelPadding = 2

// RenderLabel rasterizes a single line of text with the 7x13 bitmap face on
// a transparent background, padded by two pixels on every side.
func RenderLabel(text string, fg color.Color) *image.RGBA {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	metrics := face.Metrics()
	height := (metrics.Ascent + metrics.Descent).Ceil()

	img := image.NewRGBA(image.Rect(0, 0, width+2*labelPadding, height+2*labelPadding))
	draw.Draw(img, img.Bounds(), image.Transparent, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.P(labelPadding, labelPadding+metrics.Ascent.Ceil()),
	}
	d.DrawString(text)
	return img
}
