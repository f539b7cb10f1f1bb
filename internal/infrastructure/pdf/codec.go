package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"go.uber.org/zap"

	"easysign/internal/config"
)

// DefaultSignatureScale reproduces the legacy placement size: 0.2x the natural pixel size
const DefaultSignatureScale = 0.2

var (
	ErrCorruptFormat          = errors.New("pdf: not a well-formed PDF")
	ErrUnsupportedImageFormat = errors.New("pdf: unsupported image format")
	ErrPageIndexOutOfRange    = errors.New("pdf: page index out of range")
)

// PageRangeError reports a page index outside [0, Count)
type PageRangeError struct {
	Index int
	Count int
}

func (e *PageRangeError) Error() string {
	return fmt.Sprintf("pdf: page index %d out of range [0, %d)", e.Index, e.Count)
}

func (e *PageRangeError) Unwrap() error {
	return ErrPageIndexOutOfRange
}

// Document is a loaded PDF. Drawing mutates it in place.
type Document struct {
	data      []byte
	pageCount int
	// origins holds the lower-left corner of each page's crop box
	origins []types.Point
}

// Image is a raster image ready to be placed on a page
type Image struct {
	data   []byte
	format ImageFormat
	Width  int
	Height int
}

// Rect is a placement box in PDF user space; (X, Y) is the bottom-left corner
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Codec loads PDFs, composites raster images onto their pages and serializes them again
type Codec interface {
	Load(data []byte) (*Document, error)
	PageCount(doc *Document) int
	EmbedRasterImage(doc *Document, data []byte, format ImageFormat) (*Image, error)
	DrawImage(doc *Document, pageIndex int, img *Image, rect Rect) error
	Serialize(doc *Document) ([]byte, error)
	// Scale is the factor applied to an image's natural size when it is placed
	Scale() float64
}

type codec struct {
	scale   float64
	relaxed bool
	logger  *zap.Logger
}

func NewCodec(cfg *config.Config, logger *zap.Logger) Codec {
	// pdfcpu would otherwise create a config directory under the user's home
	api.DisableConfigDir()

	scale := cfg.PDF.SignatureScale
	if scale <= 0 {
		scale = DefaultSignatureScale
	}

	logger.Info("PDF codec initialized",
		zap.Float64("signature_scale", scale),
		zap.Bool("relaxed_mode", cfg.PDF.RelaxedMode),
	)

	return &codec{
		scale:   scale,
		relaxed: cfg.PDF.RelaxedMode,
		logger:  logger,
	}
}

func (c *codec) newConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	if c.relaxed {
		conf.ValidationMode = model.ValidationRelaxed
	} else {
		conf.ValidationMode = model.ValidationStrict
	}
	return conf
}

func (c *codec) Scale() float64 {
	return c.scale
}

func (c *codec) Load(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrCorruptFormat)
	}

	ctx, err := api.ReadContext(bytes.NewReader(data), c.newConfiguration())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFormat, err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFormat, err)
	}
	if ctx.PageCount < 1 {
		return nil, fmt.Errorf("%w: document has no pages", ErrCorruptFormat)
	}

	boundaries, err := ctx.PageBoundaries(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read page boundaries: %v", ErrCorruptFormat, err)
	}
	origins := make([]types.Point, ctx.PageCount)
	for i := 0; i < len(boundaries) && i < len(origins); i++ {
		origins[i] = pageOrigin(boundaries[i])
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	return &Document{data: buf, pageCount: ctx.PageCount, origins: origins}, nil
}

func (c *codec) PageCount(doc *Document) int {
	return doc.pageCount
}

// EmbedRasterImage checks that data decodes as the declared format. WebP images are
// transcoded to PNG since PDF has no native WebP support.
func (c *codec) EmbedRasterImage(doc *Document, data []byte, format ImageFormat) (*Image, error) {
	img, err := decodeImage(data, format)
	if err != nil {
		return nil, err
	}
	if format == FormatWebP {
		if data, err = encodePNG(img); err != nil {
			return nil, err
		}
		format = FormatPNG
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("%w: image has no pixels", ErrUnsupportedImageFormat)
	}

	return &Image{
		data:   data,
		format: format,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

// ScaledSize returns the image's natural size multiplied by the codec scale
func ScaledSize(img *Image, scale float64) (float64, float64) {
	return float64(img.Width) * scale, float64(img.Height) * scale
}

// DrawImage stamps img on top of the page content with its bottom-left corner at
// (rect.X, rect.Y) in user space. The aspect ratio is kept; rect.Width sets the scale.
func (c *codec) DrawImage(doc *Document, pageIndex int, img *Image, rect Rect) error {
	if pageIndex < 0 || pageIndex >= doc.pageCount {
		return &PageRangeError{Index: pageIndex, Count: doc.pageCount}
	}
	if rect.Width <= 0 {
		return fmt.Errorf("pdf: placement width must be positive, got %v", rect.Width)
	}

	// pdfcpu offsets are relative to the crop box corner, not the user space origin
	origin := doc.origins[pageIndex]
	factor := rect.Width / float64(img.Width)
	desc := fmt.Sprintf("position:bl, offset:%s %s, scalefactor:%s abs, rotation:0, opacity:1",
		formatFloat(rect.X-origin.X), formatFloat(rect.Y-origin.Y), formatFloat(factor))

	wm, err := api.ImageWatermarkForReader(bytes.NewReader(img.data), desc, true, false, types.POINTS)
	if err != nil {
		return fmt.Errorf("failed to prepare image stamp: %w", err)
	}

	var out bytes.Buffer
	pages := []string{strconv.Itoa(pageIndex + 1)}
	if err := api.AddWatermarks(bytes.NewReader(doc.data), &out, pages, wm, c.newConfiguration()); err != nil {
		return fmt.Errorf("failed to stamp image on page %d: %w", pageIndex+1, err)
	}

	c.logger.Debug("Image stamped on page",
		zap.Int("page", pageIndex+1),
		zap.Float64("x", rect.X),
		zap.Float64("y", rect.Y),
		zap.Float64("width", rect.Width),
		zap.Float64("height", rect.Height),
		zap.Int("size_bytes", out.Len()),
	)

	doc.data = out.Bytes()
	return nil
}

func (c *codec) Serialize(doc *Document) ([]byte, error) {
	if len(doc.data) == 0 {
		return nil, fmt.Errorf("%w: document is empty", ErrCorruptFormat)
	}
	buf := make([]byte, len(doc.data))
	copy(buf, doc.data)
	return buf, nil
}

// pageOrigin is the lower-left corner of the crop box, falling back to the media box.
// Pages without an explicit crop box may report an empty inherited one.
func pageOrigin(pb model.PageBoundaries) types.Point {
	box := pb.CropBox()
	if box == nil || box.Width() == 0 || box.Height() == 0 {
		box = pb.MediaBox()
	}
	if box == nil {
		return types.Point{}
	}
	return box.LL
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}
