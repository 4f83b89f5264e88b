package raster

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// LoadOptions controls the preprocessing applied to decoded images.
type LoadOptions struct {
	// FitWidth and FitHeight bound the decoded image; zero disables fitting.
	FitWidth, FitHeight int
	Grayscale           bool
	Filter              imaging.ResampleFilter
}

var DefaultLoadOptions = LoadOptions{
	Filter: imaging.Lanczos,
}

// Load decodes an image file into a Raster, honouring EXIF orientation.
func Load(path string, opts LoadOptions) (Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return Raster{}, err
	}
	defer f.Close()

	return Decode(f, opts)
}

// Decode reads an image from rs. Supported formats are png, jpeg, gif, bmp and webp.
func Decode(rs io.ReadSeeker, opts LoadOptions) (Raster, error) {
	orient := exifOrient(rs)

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return Raster{}, err
	}
	img, _, err := image.Decode(rs)
	if err != nil {
		return Raster{}, fmt.Errorf("decode image: %w", err)
	}
	return fromNRGBA(prepare(img, orient, opts)), nil
}

func prepare(img image.Image, orient int, opts LoadOptions) *image.NRGBA {
	n := imaging.Clone(img)
	n = orientImage(orient, n)

	if opts.FitWidth > 0 || opts.FitHeight > 0 {
		w, h := opts.FitWidth, opts.FitHeight
		if w <= 0 {
			w = n.Bounds().Dx()
		}
		if h <= 0 {
			h = n.Bounds().Dy()
		}
		filter := opts.Filter
		if filter.Kernel == nil && filter.Support == 0 {
			filter = imaging.Lanczos
		}
		n = imaging.Fit(n, w, h, filter)
	}
	if opts.Grayscale {
		n = imaging.Grayscale(n)
	}
	return n
}

func exifOrient(r io.Reader) int {
	x, err := exif.Decode(r)
	if err == nil && x != nil {
		orient, err := x.Get(exif.Orientation)
		if err == nil && orient != nil && orient.Count != 0 {
			if i, err := orient.Int(0); err == nil {
				return i
			}
		}
	}
	return 1
}

func orientImage(orient int, img *image.NRGBA) *image.NRGBA {
	switch orient {
	case 2:
		img = imaging.FlipH(img)
	case 3:
		img = imaging.Rotate180(img)
	case 4:
		img = imaging.FlipV(img)
	case 5:
		img = imaging.Transpose(img)
	case 6:
		img = imaging.Rotate270(img)
	case 7:
		img = imaging.Transverse(img)
	case 8:
		img = imaging.Rotate90(img)
	}
	return img
}
