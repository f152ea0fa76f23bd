package marker

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Sticker sheet proportions, in multiples of the base unit. The long white
// field carries the position label; the marker itself keeps a narrow quiet
// zone that must be cut off with scissors after printing, so the sheet gets
// a black trim border marking the cut line.
const (
	markerUnits = 6
	labelUnits  = 6
)

var stickerPositions = [4]struct {
	name   [2]string
	onLeft bool // label field on the left?
}{
	{[2]string{"Top", "Left"}, true},
	{[2]string{"Top", "Right"}, false},
	{[2]string{"Bottom", "Right"}, false},
	{[2]string{"Bottom", "Left"}, true},
}

// WriteStickers renders the four corner stickers for the given marker ids
// into dir as marker_<Position>.png files and returns the written paths.
// base scales the sheet (around 20 for label-printer output).
func WriteStickers(dir string, ids IDs, base int) ([]string, error) {
	if !ids.Valid() {
		return nil, fmt.Errorf("write stickers: ids %v not distinct", ids)
	}
	if base < 4 {
		base = 4
	}

	var written []string
	for i, pos := range stickerPositions {
		img, err := renderSticker(ids[i], pos.name, pos.onLeft, base)
		if err != nil {
			return written, err
		}
		path := filepath.Join(dir, fmt.Sprintf("marker_%s%s.png", pos.name[0], pos.name[1]))
		if err := imaging.Save(img, path); err != nil {
			return written, fmt.Errorf("write sticker %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func renderSticker(id int, name [2]string, onLeft bool, base int) (image.Image, error) {
	markerPx, err := markerImage(id, markerUnits*base)
	if err != nil {
		return nil, err
	}

	margin := base / 2
	fillL := labelUnits * base
	fillS := margin
	side := markerUnits * base
	width := fillL + fillS + side + 2*margin
	height := side + 2*(fillS+margin)

	sheet := imaging.New(width, height, color.White)

	markerX := fillL + margin
	textX := margin + base/2
	if !onLeft {
		markerX = fillS + margin
		textX = fillS + margin + side + base/2
	}
	sheet = imaging.Paste(sheet, markerPx, image.Pt(markerX, fillS+margin))

	drawLabel(sheet, name[0], textX, base*3/2)
	drawLabel(sheet, name[1], textX, base*7/2)
	drawLabel(sheet, fmt.Sprintf("ID:%d", id), textX, base*11/2)

	// Cut-line trim: a solid black border as thick as the margin.
	for n := 0; n < margin; n++ {
		drawRectOutline(sheet, n, n, width-1-n, height-1-n)
	}
	return sheet, nil
}

// markerImage renders one dictionary marker at the given side length.
func markerImage(id, sidePx int) (image.Image, error) {
	m := gocv.NewMat()
	defer m.Close()
	gocv.ArucoGenerateImageMarker(gocv.ArucoDict4x4_50, id, sidePx, m, 1)
	if m.Empty() {
		return nil, fmt.Errorf("generate marker id %d failed", id)
	}
	img, err := m.ToImage()
	if err != nil {
		return nil, fmt.Errorf("generate marker id %d: %w", id, err)
	}
	return img, nil
}

func drawLabel(dst *image.NRGBA, text string, x, baselineY int) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, baselineY),
	}
	d.DrawString(text)
}

func drawRectOutline(dst *image.NRGBA, x0, y0, x1, y1 int) {
	black := color.NRGBA{A: 255}
	for x := x0; x <= x1; x++ {
		dst.SetNRGBA(x, y0, black)
		dst.SetNRGBA(x, y1, black)
	}
	for y := y0; y <= y1; y++ {
		dst.SetNRGBA(x0, y, black)
		dst.SetNRGBA(x1, y, black)
	}
}
