package pdf

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image/color"
	"testing"

	"easysign/internal/infrastructure/pdf/pdftest"
)

func TestDecodeDataURI(t *testing.T) {
	raw := pdftest.PNG(2, 2, color.Black)
	encoded := base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name       string
		in         string
		wantFormat ImageFormat
		wantErr    error
	}{
		{"png data uri", "data:image/png;base64," + encoded, FormatPNG, nil},
		{"jpeg data uri", "data:image/jpeg;base64," + encoded, FormatJPEG, nil},
		{"webp data uri", "data:image/webp;base64," + encoded, FormatWebP, nil},
		{"bare base64", encoded, FormatPNG, nil},
		{"non image mime", "data:application/pdf;base64," + encoded, "", ErrUnsupportedImageFormat},
		{"gif", "data:image/gif;base64," + encoded, "", ErrUnsupportedImageFormat},
		{"not base64", "data:image/png;base64,@@@", "", ErrMalformedImagePayload},
		{"plain text uri", "data:image/png;utf8,abc", "", ErrMalformedImagePayload},
		{"empty", "   ", "", ErrMalformedImagePayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, format, err := DecodeDataURI(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if format != tt.wantFormat {
				t.Errorf("format = %q, want %q", format, tt.wantFormat)
			}
			if !bytes.Equal(data, raw) {
				t.Error("decoded bytes differ from input")
			}
		})
	}
}

func TestEncodeDataURIRoundTrip(t *testing.T) {
	raw := pdftest.PNG(3, 3, color.White)

	data, format, err := DecodeDataURI(EncodeDataURI(raw, FormatPNG))
	if err != nil {
		t.Fatal(err)
	}
	if format != FormatPNG || !bytes.Equal(data, raw) {
		t.Errorf("round trip mismatch: format %q", format)
	}
}
