package geo

import (
	"math"
	"testing"
)

func TestDistanceMetersZero(t *testing.T) {
	if d := DistanceMeters(Point{0, 0}, Point{0, 0}); d != 0 {
		t.Fatalf("expected 0, got %d", d)
	}
}

func TestDistanceMetersOneDegreeLongitudeAtEquator(t *testing.T) {
	d := DistanceMeters(Point{0, 0}, Point{0, 1})
	want := 111195.0
	if math.Abs(float64(d)-want)/want > 0.01 {
		t.Fatalf("expected ~%.0f m, got %d", want, d)
	}
}

func TestDistanceMetersSymmetric(t *testing.T) {
	pairs := [][2]Point{
		{{-23.5505, -46.6333}, {-22.9068, -43.1729}},
		{{-15.7939, -47.8828}, {40.7128, -74.0060}},
		{{89.9, 0}, {-89.9, 180}},
	}
	for _, p := range pairs {
		if a, b := DistanceMeters(p[0], p[1]), DistanceMeters(p[1], p[0]); a != b {
			t.Fatalf("distance not symmetric for %v: %d vs %d", p, a, b)
		}
	}
}

func TestDistanceMetersAntipodal(t *testing.T) {
	d := DistanceMeters(Point{0, 0}, Point{0, 180})
	want := int(math.Round(math.Pi * EarthRadiusMeters))
	if d != want {
		t.Fatalf("expected half circumference %d, got %d", want, d)
	}
}

func TestDistanceMetersShortRange(t *testing.T) {
	// roughly 50 m north of a reference point in São Paulo
	origin := Point{-23.561414, -46.655881}
	agent := Point{-23.561414 + 50.0/111195.0, -46.655881}
	d := DistanceMeters(origin, agent)
	if d < 49 || d > 51 {
		t.Fatalf("expected ~50 m, got %d", d)
	}
}

func TestPointValid(t *testing.T) {
	tests := []struct {
		p    Point
		want bool
	}{
		{Point{0, 0}, true},
		{Point{90, 180}, true},
		{Point{-90.0001, 0}, false},
		{Point{0, 180.5}, false},
		{Point{math.NaN(), 0}, false},
	}
	for _, tc := range tests {
		if got := tc.p.Valid(); got != tc.want {
			t.Errorf("Valid(%v) = %v, want %v", tc.p, got, tc.want)
		}
	}
}

func TestNearest(t *testing.T) {
	idx, _ := Nearest(Point{0, 0}, nil)
	if idx != -1 {
		t.Fatalf("expected -1 for empty candidates, got %d", idx)
	}

	idx, d := Nearest(Point{0, 0}, []Point{{0, 2}, {0, 1}, {0, 3}})
	if idx != 1 {
		t.Fatalf("expected index 1, got %d", idx)
	}
	if d != DistanceMeters(Point{0, 0}, Point{0, 1}) {
		t.Fatalf("unexpected nearest distance %d", d)
	}
}
