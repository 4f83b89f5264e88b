// Package raster provides the RGBA frame buffers fed to the converter and
// the sources that produce them: image files, animated GIFs, glob-selected
// frame directories and synthetic test patterns.
package raster

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/san-kum/asciimate/internal/anim"
)

// Raster is a non-premultiplied RGBA pixel buffer, four bytes per pixel,
// rows packed without padding.
type Raster struct {
	Pix    []byte
	Width  int
	Height int
}

func New(width, height int) Raster {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return Raster{Pix: make([]byte, width*height*4), Width: width, Height: height}
}

// FromImage copies img into a packed RGBA buffer.
func FromImage(img image.Image) Raster {
	return fromNRGBA(imaging.Clone(img))
}

func fromNRGBA(n *image.NRGBA) Raster {
	b := n.Bounds()
	if n.Stride == b.Dx()*4 && b.Min == (image.Point{}) {
		return Raster{Pix: n.Pix[:b.Dx()*b.Dy()*4], Width: b.Dx(), Height: b.Dy()}
	}
	return fromNRGBA(imaging.Clone(n))
}

// Image wraps the buffer as an *image.NRGBA without copying.
func (r Raster) Image() *image.NRGBA {
	return &image.NRGBA{Pix: r.Pix, Stride: r.Width * 4, Rect: image.Rect(0, 0, r.Width, r.Height)}
}

// Validate reports ErrInvalidDimensions for empty or short buffers.
func (r Raster) Validate() error {
	if r.Width < 1 || r.Height < 1 {
		return fmt.Errorf("%w: raster %dx%d", anim.ErrInvalidDimensions, r.Width, r.Height)
	}
	if len(r.Pix) < r.Width*r.Height*4 {
		return fmt.Errorf("%w: %d bytes for %dx%d raster", anim.ErrInvalidDimensions, len(r.Pix), r.Width, r.Height)
	}
	return nil
}

// Fill paints every pixel with the given color.
func (r Raster) Fill(c anim.RGB) {
	for i := 0; i+3 < len(r.Pix); i += 4 {
		r.Pix[i] = c.R
		r.Pix[i+1] = c.G
		r.Pix[i+2] = c.B
		r.Pix[i+3] = 0xff
	}
}

// Set writes one pixel; out of bounds writes are ignored.
func (r Raster) Set(x, y int, c anim.RGB) {
	if x < 0 || y < 0 || x >= r.Width || y >= r.Height {
		return
	}
	o := (y*r.Width + x) * 4
	r.Pix[o] = c.R
	r.Pix[o+1] = c.G
	r.Pix[o+2] = c.B
	r.Pix[o+3] = 0xff
}
