package challenge

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	glyphScale   = 4
	glyphSpacing = 4
	padding      = 16
	noisePoints  = 900
	noiseLines   = 9
)

var face = basicfont.Face7x13

// Render draws code into a PNG surrounded by scattered points and line
// strokes. Each glyph gets its own color and vertical jitter.
func Render(code string) ([]byte, error) {
	if code == "" {
		return nil, fmt.Errorf("challenge: empty code")
	}
	glyphW := face.Advance * glyphScale
	glyphH := face.Height * glyphScale
	width := padding*2 + len(code)*(glyphW+glyphSpacing)
	height := padding*2 + glyphH

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	bg := color.RGBA{uint8(215 + rand.Intn(40)), uint8(215 + rand.Intn(40)), uint8(215 + rand.Intn(40)), 255}
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	for i := 0; i < noiseLines/2; i++ {
		strokeLine(img, randomPoint(width, height), randomPoint(width, height), randomDark())
	}

	x := padding
	for _, r := range code {
		glyph := image.NewRGBA(image.Rect(0, 0, face.Advance, face.Height))
		d := font.Drawer{
			Dst:  glyph,
			Src:  image.NewUniform(randomDark()),
			Face: face,
			Dot:  fixed.P(0, face.Ascent),
		}
		d.DrawString(string(r))

		jitter := rand.Intn(padding) - padding/2
		dst := image.Rect(x, padding+jitter, x+glyphW, padding+jitter+glyphH)
		draw.NearestNeighbor.Scale(img, dst, glyph, glyph.Bounds(), draw.Over, nil)
		x += glyphW + glyphSpacing
	}

	for i := 0; i < noiseLines-noiseLines/2; i++ {
		strokeLine(img, randomPoint(width, height), randomPoint(width, height), randomDark())
	}
	for i := 0; i < noisePoints; i++ {
		p := randomPoint(width, height)
		img.Set(p.X, p.Y, randomDark())
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("challenge: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func randomPoint(w, h int) image.Point {
	return image.Pt(rand.Intn(w), rand.Intn(h))
}

func randomDark() color.RGBA {
	return color.RGBA{uint8(rand.Intn(150)), uint8(rand.Intn(150)), uint8(rand.Intn(150)), 255}
}

// strokeLine draws a 2px Bresenham line.
func strokeLine(img *image.RGBA, a, b image.Point, c color.Color) {
	dx, dy := abs(b.X-a.X), -abs(b.Y-a.Y)
	sx, sy := sign(b.X-a.X), sign(b.Y-a.Y)
	e := dx + dy
	for {
		img.Set(a.X, a.Y, c)
		img.Set(a.X+1, a.Y, c)
		if a == b {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			a.X += sx
		}
		if e2 <= dx {
			e += dx
			a.Y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
