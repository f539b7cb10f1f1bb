// Package coords maps clicks on a rendered page preview to PDF user-space coordinates.
package coords

import (
	"errors"
	"fmt"

	"go.uber.org/fx"

	"easysign/internal/config"
)

var Module = fx.Module("coords",
	fx.Provide(NewMapperFromConfig),
)

// Click is a pointer position on the preview canvas, in canvas pixels, together with
// the canvas origin and height at the time of the click.
type Click struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	OriginX      float64 `json:"originX"`
	OriginY      float64 `json:"originY"`
	CanvasHeight float64 `json:"canvasHeight"`
}

// Point is a position in PDF user space (origin bottom-left, y up, points)
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Calibration relates the preview render resolution to PDF points
type Calibration struct {
	ScaleX float64
	ScaleY float64
}

var ErrInvalidCalibration = errors.New("calibration scales must be positive")

type Mapper struct {
	calibration Calibration
}

func NewMapper(c Calibration) (*Mapper, error) {
	if c.ScaleX <= 0 || c.ScaleY <= 0 {
		return nil, fmt.Errorf("%w: scale_x=%v scale_y=%v", ErrInvalidCalibration, c.ScaleX, c.ScaleY)
	}
	return &Mapper{calibration: c}, nil
}

func NewMapperFromConfig(cfg *config.Config) (*Mapper, error) {
	return NewMapper(Calibration{
		ScaleX: cfg.Coords.ScaleX,
		ScaleY: cfg.Coords.ScaleY,
	})
}

// ToPDF flips the y axis: the canvas grows downward from its top-left corner, PDF user
// space grows upward from the page's bottom-left corner.
func (m *Mapper) ToPDF(c Click) Point {
	return Point{
		X: (c.X - c.OriginX) / m.calibration.ScaleX,
		Y: (c.CanvasHeight - (c.Y - c.OriginY)) / m.calibration.ScaleY,
	}
}
