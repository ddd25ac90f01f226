package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/url"
	"strings"
)

const (
	MimePNG  = "image/png"
	MimeJPEG = "image/jpeg"

	defaultJPEGQuality = 0.92
)

// EncodeDataURL serialises img as a base64 data URL. Unknown types fall
// back to PNG. quality applies to JPEG only and is in [0, 1]; values
// outside that range use the default.
func EncodeDataURL(img image.Image, mime string, quality float64) (string, error) {
	var buf bytes.Buffer
	mime, err := EncodeImage(&buf, img, mime, quality)
	if err != nil {
		return "", err
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// EncodeImage writes img to w as PNG or JPEG and returns the media type
// actually used.
func EncodeImage(w io.Writer, img image.Image, mime string, quality float64) (string, error) {
	switch strings.ToLower(mime) {
	case MimeJPEG, "image/jpg":
		if quality < 0 || quality > 1 {
			quality = defaultJPEGQuality
		}
		q := max(int(quality*100+0.5), 1)
		if err := jpeg.Encode(w, flatten(img), &jpeg.Options{Quality: q}); err != nil {
			return "", fmt.Errorf("encode jpeg: %w", err)
		}
		return MimeJPEG, nil
	default:
		if err := png.Encode(w, img); err != nil {
			return "", fmt.Errorf("encode png: %w", err)
		}
		return MimePNG, nil
	}
}

// flatten composites img over opaque black, matching how browsers encode
// canvases into formats without alpha.
func flatten(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			i := out.PixOffset(x-b.Min.X, y-b.Min.Y)
			out.Pix[i] = uint8(r >> 8)
			out.Pix[i+1] = uint8(g >> 8)
			out.Pix[i+2] = uint8(bl >> 8)
			out.Pix[i+3] = 0xff
		}
	}
	return out
}

// DecodeDataURL returns the payload and media type of a data URL.
func DecodeDataURL(s string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return nil, "", ErrInvalidDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", ErrInvalidDataURL
	}
	isBase64 := false
	if m, found := strings.CutSuffix(meta, ";base64"); found {
		meta, isBase64 = m, true
	}
	mime := meta
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	if mime == "" {
		mime = "text/plain"
	}

	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
		if err != nil {
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
		}
		return data, mime, nil
	}
	text, err := url.PathUnescape(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	return []byte(text), mime, nil
}
