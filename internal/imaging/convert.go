package imaging

import (
	"fmt"
	"image"
	"strings"

	"github.com/anthonynsimon/bild/clone"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/attention-mcp/internal/attention"
)

// ColorSpace selects the channel layout of a converted attention image.
type ColorSpace string

const (
	// ColorSpaceGray produces a 2-axis (h, w) image of BT.601 luminance in
	// [0, 1].
	ColorSpaceGray ColorSpace = "gray"

	// ColorSpaceRGB produces an (h, w, 3) image of R, G, B in [0, 1].
	ColorSpaceRGB ColorSpace = "rgb"

	// ColorSpaceLab produces an (h, w, 3) image of CIE L*a*b* (D65) values.
	// L lies in [0, 1]; a and b are roughly in [-1, 1].
	ColorSpaceLab ColorSpace = "lab"
)

// ParseColorSpace maps a user-supplied name to a ColorSpace. The empty
// string selects ColorSpaceRGB.
func ParseColorSpace(s string) (ColorSpace, error) {
	switch cs := ColorSpace(strings.ToLower(strings.TrimSpace(s))); cs {
	case "":
		return ColorSpaceRGB, nil
	case ColorSpaceGray, ColorSpaceRGB, ColorSpaceLab:
		return cs, nil
	default:
		return "", fmt.Errorf("unknown color space %q (want gray, rgb or lab)", s)
	}
}

// Options controls how a decoded image becomes an attention image.
//
// Steps run in this order: crop to Region (unless it is the zero Region),
// downscale so neither side exceeds MaxDimension (if > 0), then extract
// channels for ColorSpace. Options is comparable and used as a cache key.
type Options struct {
	ColorSpace   ColorSpace
	MaxDimension int
	Region       Region
}

// Convert turns a decoded image into an attention.Image according to opts.
func Convert(img image.Image, opts Options) (*attention.Image, error) {
	cs := opts.ColorSpace
	if cs == "" {
		cs = ColorSpaceRGB
	}

	if opts.Region != (Region{}) {
		cropped, err := Crop(img, opts.Region)
		if err != nil {
			return nil, err
		}
		img = cropped
	}
	img = Downscale(img, opts.MaxDimension)

	return ToAttentionImage(img, cs)
}

// ToAttentionImage extracts pixel values from img in the given color space.
//
// Pixels are read through an RGBA copy of img, so color values are alpha
// premultiplied: fully transparent pixels read as black.
func ToAttentionImage(img image.Image, cs ColorSpace) (*attention.Image, error) {
	rgba := clone.AsRGBA(img)
	b := rgba.Bounds()
	w, h := b.Dx(), b.Dy()

	switch cs {
	case ColorSpaceGray:
		data := make([]float64, w*h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				off := rgba.PixOffset(b.Min.X+x, b.Min.Y+y)
				p := rgba.Pix[off : off+3 : off+3]
				data[y*w+x] = 0.299*unit(p[0]) + 0.587*unit(p[1]) + 0.114*unit(p[2])
			}
		}
		return attention.NewGray(h, w, data), nil

	case ColorSpaceRGB:
		data := make([]float64, w*h*3)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				off := rgba.PixOffset(b.Min.X+x, b.Min.Y+y)
				i := (y*w + x) * 3
				data[i] = unit(rgba.Pix[off])
				data[i+1] = unit(rgba.Pix[off+1])
				data[i+2] = unit(rgba.Pix[off+2])
			}
		}
		return attention.NewImage([]int{h, w, 3}, data), nil

	case ColorSpaceLab:
		data := make([]float64, w*h*3)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				off := rgba.PixOffset(b.Min.X+x, b.Min.Y+y)
				c := colorful.Color{R: unit(rgba.Pix[off]), G: unit(rgba.Pix[off+1]), B: unit(rgba.Pix[off+2])}
				l, a, bb := c.Lab()
				i := (y*w + x) * 3
				data[i], data[i+1], data[i+2] = l, a, bb
			}
		}
		return attention.NewImage([]int{h, w, 3}, data), nil

	default:
		return nil, fmt.Errorf("unknown color space %q", cs)
	}
}

func unit(v uint8) float64 { return float64(v) / 255.0 }
