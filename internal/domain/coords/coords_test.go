package coords

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestToPDF(t *testing.T) {
	m, err := NewMapper(Calibration{ScaleX: 1.65, ScaleY: 4})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		click Click
		want  Point
	}{
		{
			name:  "top-left corner maps to top of page",
			click: Click{X: 0, Y: 0, CanvasHeight: 1188},
			want:  Point{X: 0, Y: 297},
		},
		{
			name:  "bottom-left corner maps to origin",
			click: Click{X: 0, Y: 1188, CanvasHeight: 1188},
			want:  Point{X: 0, Y: 0},
		},
		{
			name:  "canvas offset is removed",
			click: Click{X: 265, Y: 140, OriginX: 100, OriginY: 40, CanvasHeight: 800},
			want:  Point{X: 100, Y: 175},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.ToPDF(tt.click)
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Errorf("ToPDF mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestToPDFLowerClickGivesLowerY(t *testing.T) {
	m, _ := NewMapper(Calibration{ScaleX: 1.5, ScaleY: 1.5})

	upper := m.ToPDF(Click{X: 10, Y: 100, CanvasHeight: 600})
	lower := m.ToPDF(Click{X: 10, Y: 500, CanvasHeight: 600})

	if !(lower.Y < upper.Y) {
		t.Errorf("expected lower click to map to smaller y: upper=%v lower=%v", upper, lower)
	}
}

func TestNewMapperRejectsNonPositiveScale(t *testing.T) {
	for _, c := range []Calibration{{0, 1}, {1, 0}, {-1, 2}} {
		if _, err := NewMapper(c); !errors.Is(err, ErrInvalidCalibration) {
			t.Errorf("NewMapper(%+v) error = %v, want ErrInvalidCalibration", c, err)
		}
	}
}
