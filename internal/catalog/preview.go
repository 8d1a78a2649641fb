package catalog

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/go-faster/errors"
	"golang.org/x/image/draw"
)

const (
	maxPreviewSide     = 2000
	defaultJPEGQuality = 85

	// MaxImagePixels bounds decoded images; a small file can still declare
	// enormous dimensions.
	MaxImagePixels = 25_000_000
)

var ErrImageTooLarge = errors.New("image dimensions too large")

// CheckImage reads only the image header and rejects undecodable data and
// images above MaxImagePixels.
func CheckImage(data []byte) (image.Config, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Config{}, errors.Wrap(err, "decode image header")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return image.Config{}, errors.New("empty image")
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return cfg, errors.Wrapf(ErrImageTooLarge, "%dx%d", cfg.Width, cfg.Height)
	}
	return cfg, nil
}

// PreviewOptions bound the rendered preview. A zero side is derived from the
// other one so the aspect ratio is kept; both zero keeps the original size.
type PreviewOptions struct {
	Width   int
	Height  int
	Quality int
}

func (o PreviewOptions) validate() error {
	if o.Width < 0 || o.Width > maxPreviewSide || o.Height < 0 || o.Height > maxPreviewSide {
		return errors.Errorf("preview side must be within 0..%d", maxPreviewSide)
	}
	if o.Quality < 0 || o.Quality > 100 {
		return errors.New("quality must be within 1..100")
	}
	return nil
}

// fit scales (w, h) to fit inside the requested box. Previews never upscale.
func (o PreviewOptions) fit(w, h int) (int, int) {
	bw, bh := o.Width, o.Height
	switch {
	case bw == 0 && bh == 0:
		return w, h
	case bw == 0:
		bw = w * bh / h
	case bh == 0:
		bh = h * bw / w
	}

	scale := min(float64(bw)/float64(w), float64(bh)/float64(h), 1)
	return max(1, int(float64(w)*scale)), max(1, int(float64(h)*scale))
}

// RenderPreview decodes an uploaded image and re-encodes it as a JPEG that
// fits opts.
func RenderPreview(data []byte, opts PreviewOptions) ([]byte, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	if _, err := CheckImage(data); err != nil {
		return nil, err
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "decode image")
	}

	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, errors.New("empty image")
	}
	w, h := opts.fit(b.Dx(), b.Dy())

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)

	q := opts.Quality
	if q == 0 {
		q = defaultJPEGQuality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: q}); err != nil {
		return nil, errors.Wrap(err, "encode preview")
	}
	return buf.Bytes(), nil
}
