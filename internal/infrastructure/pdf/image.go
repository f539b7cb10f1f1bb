package pdf

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strings"

	"golang.org/x/image/webp"
)

type ImageFormat string

const (
	FormatPNG  ImageFormat = "png"
	FormatJPEG ImageFormat = "jpeg"
	FormatWebP ImageFormat = "webp"
)

var ErrMalformedImagePayload = errors.New("pdf: malformed image payload")

// FormatFromMIME maps an image MIME type to a supported format
func FormatFromMIME(mime string) (ImageFormat, error) {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/png":
		return FormatPNG, nil
	case "image/jpeg", "image/jpg":
		return FormatJPEG, nil
	case "image/webp":
		return FormatWebP, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedImageFormat, mime)
	}
}

// DecodeDataURI decodes a "data:<mime>;base64,<payload>" string. A bare base64 payload
// without a data URI header is treated as PNG.
func DecodeDataURI(uri string) ([]byte, ImageFormat, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, "", fmt.Errorf("%w: empty payload", ErrMalformedImagePayload)
	}

	format := FormatPNG
	payload := uri

	if idx := strings.IndexByte(uri, ','); idx >= 0 {
		header := uri[:idx]
		payload = uri[idx+1:]

		if !strings.HasPrefix(header, "data:") {
			return nil, "", fmt.Errorf("%w: expected data URI header, got %q", ErrMalformedImagePayload, header)
		}
		mime := strings.TrimPrefix(header, "data:")
		if semi := strings.IndexByte(mime, ';'); semi >= 0 {
			if !strings.EqualFold(mime[semi+1:], "base64") {
				return nil, "", fmt.Errorf("%w: only base64 data URIs are supported", ErrMalformedImagePayload)
			}
			mime = mime[:semi]
		}
		if !strings.HasPrefix(strings.ToLower(mime), "image/") {
			return nil, "", fmt.Errorf("%w: %q is not an image type", ErrUnsupportedImageFormat, mime)
		}

		var err error
		if format, err = FormatFromMIME(mime); err != nil {
			return nil, "", err
		}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(payload)
	}
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrMalformedImagePayload, err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: empty image data", ErrMalformedImagePayload)
	}

	return data, format, nil
}

// EncodeDataURI is the inverse of DecodeDataURI
func EncodeDataURI(data []byte, format ImageFormat) string {
	return "data:image/" + string(format) + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func decodeImage(data []byte, format ImageFormat) (image.Image, error) {
	var (
		img image.Image
		err error
	)

	switch format {
	case FormatPNG:
		img, err = png.Decode(bytes.NewReader(data))
	case FormatJPEG:
		img, err = jpeg.Decode(bytes.NewReader(data))
	case FormatWebP:
		img, err = webp.Decode(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImageFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: payload is not a valid %s image: %v", ErrUnsupportedImageFormat, format, err)
	}
	return img, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// ToPNG returns data as PNG, transcoding JPEG and WebP input
func ToPNG(data []byte, format ImageFormat) ([]byte, error) {
	img, err := decodeImage(data, format)
	if err != nil {
		return nil, err
	}
	if format == FormatPNG {
		return data, nil
	}
	return encodePNG(img)
}
