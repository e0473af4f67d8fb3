package ui

import (
	"image"
	"image/color"
	"strings"

	"github.com/muesli/termenv"
	"github.com/nfnt/resize"
)

// upperHalfBlock paints the top pixel with the foreground and the bottom
// pixel with the background, two image rows per terminal row
const upperHalfBlock = "▀"

// asciiRamp is used when the terminal has no color support, darkest first
const asciiRamp = " .:-=+*#%@"

// FrameRenderer draws images as colored half-block characters
type FrameRenderer struct {
	Profile termenv.Profile
	Interp  resize.InterpolationFunction
}

// NewFrameRenderer creates a renderer for the color profile of the current terminal
func NewFrameRenderer() *FrameRenderer {
	return &FrameRenderer{
		Profile: termenv.EnvColorProfile(),
		Interp:  resize.Bilinear,
	}
}

// Render fits img into cols x rows terminal cells keeping its aspect ratio
func (r *FrameRenderer) Render(img image.Image, cols, rows int) string {
	if img == nil || cols <= 0 || rows <= 0 {
		return ""
	}

	scaled := resize.Thumbnail(uint(cols), uint(rows*2), img, r.Interp)
	b := scaled.Bounds()

	var sb strings.Builder
	sb.Grow(b.Dx() * (b.Dy()/2 + 1) * 24)

	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			top := scaled.At(x, y)
			bottom := top
			if y+1 < b.Max.Y {
				bottom = scaled.At(x, y+1)
			}
			r.writeCell(&sb, top, bottom)
		}
		if r.Profile != termenv.Ascii {
			sb.WriteString(termenv.CSI + termenv.ResetSeq + "m")
		}
		if y+2 < b.Max.Y {
			sb.WriteByte('\n')
		}
	}

	return sb.String()
}

func (r *FrameRenderer) writeCell(sb *strings.Builder, top, bottom color.Color) {
	if r.Profile == termenv.Ascii {
		sb.WriteByte(asciiRamp[(luma(top)+luma(bottom))/2*(len(asciiRamp)-1)/255])
		return
	}

	sb.WriteString(termenv.CSI)
	sb.WriteString(r.Profile.FromColor(top).Sequence(false))
	sb.WriteByte(';')
	sb.WriteString(r.Profile.FromColor(bottom).Sequence(true))
	sb.WriteByte('m')
	sb.WriteString(upperHalfBlock)
}

// luma returns the perceived brightness of c in 0..255
func luma(c color.Color) int {
	gray := color.GrayModel.Convert(c).(color.Gray)
	return int(gray.Y)
}
