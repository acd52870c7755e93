// Package poster turns user-selected image files into inline data URLs that
// can be embedded directly in a book record.
package poster

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"sync"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/time/rate"
)

// Sentinel errors returned by Decode.
var (
	ErrEmpty       = errors.New("poster: no image data")
	ErrTooLarge    = errors.New("poster: image exceeds size limit")
	ErrUnsupported = errors.New("poster: unsupported image format")
)

const jpegQuality = 85

var mimeTypes = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
	"webp": "image/webp",
}

// Limits bounds the work a single decode may do.
type Limits struct {
	MaxBytes     int64   // reject payloads larger than this; 0 disables
	MaxDimension int     // downscale when the longest side exceeds this; 0 disables
	MaxPixels    int64   // reject images with more pixels than this; 0 disables
	PerSecond    float64 // decode rate; 0 means unlimited
	Burst        int
}

// DefaultLimits are used when no settings are provided.
func DefaultLimits() Limits {
	return Limits{
		MaxBytes:     5 << 20,
		MaxDimension: 512,
		MaxPixels:    25_000_000,
		PerSecond:    4,
		Burst:        4,
	}
}

// Decoder validates, optionally downscales and encodes poster images.
// It is safe for concurrent use.
type Decoder struct {
	mu      sync.RWMutex
	limits  Limits
	limiter *rate.Limiter
}

// NewDecoder creates a decoder with the given limits.
func NewDecoder(l Limits) *Decoder {
	d := &Decoder{limiter: rate.NewLimiter(rate.Inf, 1)}
	d.SetLimits(l)
	return d
}

// SetLimits replaces the decoder limits. In-flight decodes keep the limits
// they started with.
func (d *Decoder) SetLimits(l Limits) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.limits = l
	if l.PerSecond <= 0 {
		d.limiter.SetLimit(rate.Inf)
		return
	}
	burst := l.Burst
	if burst < 1 {
		burst = 1
	}
	d.limiter.SetLimit(rate.Limit(l.PerSecond))
	d.limiter.SetBurst(burst)
}

// Limits returns the current limits.
func (d *Decoder) Limits() Limits {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.limits
}

// Decode returns data as a data URL. Images larger than MaxDimension are
// scaled down and re-encoded; others keep their original bytes.
func (d *Decoder) Decode(ctx context.Context, data []byte) (string, error) {
	l := d.Limits()
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if l.MaxBytes > 0 && int64(len(data)) > l.MaxBytes {
		return "", fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, len(data), l.MaxBytes)
	}
	if err := d.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("poster: wait for decode slot: %w", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	mime, ok := mimeTypes[format]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, format)
	}
	// Checked before any pixel buffer is allocated.
	if px := int64(cfg.Width) * int64(cfg.Height); l.MaxPixels > 0 && px > l.MaxPixels {
		return "", fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooLarge, cfg.Width, cfg.Height, l.MaxPixels)
	}

	if l.MaxDimension <= 0 || max(cfg.Width, cfg.Height) <= l.MaxDimension {
		return DataURL(mime, data), nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	scaled := scale(img, l.MaxDimension)
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if format == "jpeg" {
		err = jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: jpegQuality})
	} else {
		mime = "image/png"
		err = png.Encode(&buf, scaled)
	}
	if err != nil {
		return "", fmt.Errorf("poster: encode %s: %w", mime, err)
	}
	return DataURL(mime, buf.Bytes()), nil
}

// DecodeFile reads path and decodes it. The size limit is checked before the
// file is read.
func (d *Decoder) DecodeFile(ctx context.Context, path string) (string, error) {
	data, err := d.ReadFile(path)
	if err != nil {
		return "", err
	}
	return d.Decode(ctx, data)
}

// ReadFile reads a poster file from disk, honouring MaxBytes.
func (d *Decoder) ReadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("poster: open %s: %w", path, err)
	}
	defer f.Close()
	return d.Read(f)
}

// Read reads at most MaxBytes+1 bytes from r so oversized uploads are
// detected without buffering them whole.
func (d *Decoder) Read(r io.Reader) ([]byte, error) {
	l := d.Limits()
	if l.MaxBytes > 0 {
		r = io.LimitReader(r, l.MaxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("poster: read: %w", err)
	}
	if l.MaxBytes > 0 && int64(len(data)) > l.MaxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, l.MaxBytes)
	}
	return data, nil
}

// DataURL encodes data as a base64 data URL.
func DataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// scale fits img into a maxDim x maxDim box keeping its aspect ratio.
func scale(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w >= h {
		h = max(1, h*maxDim/w)
		w = maxDim
	} else {
		w = max(1, w*maxDim/h)
		h = maxDim
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
