package charts

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestRenderBar(t *testing.T) {
	r := NewPNGRenderer()

	t.Run("values", func(t *testing.T) {
		img, err := r.RenderBar("Расходы", []string{"Еда", "Транспорт"}, []float64{150.5, 40})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !bytes.HasPrefix(img, pngMagic) {
			t.Error("expected PNG output")
		}
	})

	t.Run("all_zero", func(t *testing.T) {
		if _, err := r.RenderBar("Расходы", []string{"Еда"}, []float64{0}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("empty", func(t *testing.T) {
		_, err := r.RenderBar("Расходы", nil, nil)
		if !errors.Is(err, ErrNoData) {
			t.Errorf("expected ErrNoData, got %v", err)
		}
	})
}

func TestRenderLine(t *testing.T) {
	r := NewPNGRenderer()
	start := time.Date(2026, 10, 9, 0, 0, 0, 0, time.UTC)

	t.Run("trend", func(t *testing.T) {
		points := make([]Point, 7)
		for i := range points {
			points[i] = Point{Date: start.AddDate(0, 0, i), Value: float64(i * 10)}
		}
		img, err := r.RenderLine("Баланс", points)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !bytes.HasPrefix(img, pngMagic) {
			t.Error("expected PNG output")
		}
	})

	t.Run("flat", func(t *testing.T) {
		points := []Point{{Date: start, Value: 0}, {Date: start.AddDate(0, 0, 1), Value: 0}}
		if _, err := r.RenderLine("Баланс", points); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("single_point", func(t *testing.T) {
		if _, err := r.RenderLine("Баланс", []Point{{Date: start, Value: 5}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
