// Package pdftest builds small PDF and image fixtures for tests.
package pdftest

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"regexp"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Build returns a minimal valid PDF with the given number of US Letter pages.
// Each page carries a filled rectangle so it has real content.
func Build(pages int) []byte {
	return build(pages, "")
}

// BuildWithCropBox is Build with every page cropped to [llx lly urx ury]
func BuildWithCropBox(pages int, llx, lly, urx, ury float64) []byte {
	return build(pages, fmt.Sprintf(" /CropBox [%g %g %g %g]", llx, lly, urx, ury))
}

func build(pages int, pageExtra string) []byte {
	var buf bytes.Buffer
	offsets := make([]int, 0, 2+2*pages)

	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	writeObj := func(num int, body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	kids := ""
	for i := 0; i < pages; i++ {
		kids += fmt.Sprintf("%d 0 R ", 3+2*i)
	}

	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, pages))

	for i := 0; i < pages; i++ {
		pageNum := 3 + 2*i
		contentNum := pageNum + 1
		writeObj(pageNum, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792]%s /Resources << >> /Contents %d 0 R >>",
			pageExtra, contentNum))

		content := fmt.Sprintf("0.2 0.2 0.8 rg %d 700 100 50 re f", 72+i*10)
		writeObj(contentNum, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)

	return buf.Bytes()
}

// PNG returns an opaque w x h PNG filled with c
func PNG(w, h int, c color.Color) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// PNGDataURI wraps a PNG fixture as a canvas-style data URI
func PNGDataURI(w, h int, c color.Color) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(PNG(w, h, c))
}

// PageContent returns the consolidated content stream of page (1-based)
func PageContent(data []byte, page int) (string, error) {
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return "", err
	}
	r, err := pdfcpu.ExtractPageContent(ctx, page)
	if err != nil {
		return "", err
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// Point is a translation found in a content stream
type Point struct {
	X, Y float64
}

var stampPlacement = regexp.MustCompile(`(-?[\d.]+) (-?[\d.]+) cm /\w+ gs /\w+ Do`)

// StampOffsets returns the translation of every stamped form XObject in content, in order
func StampOffsets(content string) []Point {
	var points []Point
	for _, m := range stampPlacement.FindAllStringSubmatch(content, -1) {
		x, errX := strconv.ParseFloat(m[1], 64)
		y, errY := strconv.ParseFloat(m[2], 64)
		if errX != nil || errY != nil {
			continue
		}
		points = append(points, Point{X: x, Y: y})
	}
	return points
}
