package geo

import (
	"math"
	"testing"
)

func TestDistance_Symmetric(t *testing.T) {
	pairs := [][2]Point{
		{{Lat: 14.5995, Lng: 120.9842}, {Lat: 14.7000, Lng: 121.0500}},
		{{Lat: -33.8688, Lng: 151.2093}, {Lat: 51.5074, Lng: -0.1278}},
		{{Lat: 0, Lng: 179.9}, {Lat: 0, Lng: -179.9}},
		{{Lat: 89.9, Lng: 0}, {Lat: -89.9, Lng: 180}},
	}
	for _, p := range pairs {
		ab := Distance(p[0], p[1])
		ba := Distance(p[1], p[0])
		if math.Abs(ab-ba) > 1e-9 {
			t.Errorf("distance not symmetric for %v: %v != %v", p, ab, ba)
		}
	}
}

func TestDistance_SamePointIsZero(t *testing.T) {
	points := []Point{
		{Lat: 14.5995, Lng: 120.9842},
		{Lat: 0, Lng: 0},
		{Lat: -90, Lng: 45},
		{Lat: 10.3157, Lng: 123.8854},
	}
	for _, p := range points {
		if d := Distance(p, p); d != 0 {
			t.Errorf("expected 0 for %v, got %v", p, d)
		}
	}
}

func TestDistance_KnownValues(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Point
		min, max float64
	}{
		{"manila to quezon city north", Point{14.5995, 120.9842}, Point{14.7000, 121.0500}, 13000, 13700},
		{"one degree of latitude", Point{0, 0}, Point{1, 0}, 111190, 111200},
		{"a few hundred meters", Point{14.5995, 120.9842}, Point{14.6020, 120.9842}, 270, 290},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Distance(tt.a, tt.b)
			if d < tt.min || d > tt.max {
				t.Errorf("distance %v outside [%v, %v]", d, tt.min, tt.max)
			}
		})
	}
}

func TestDistance_NaNPropagates(t *testing.T) {
	d := Distance(Point{Lat: math.NaN(), Lng: 120}, Point{Lat: 14, Lng: 120})
	if !math.IsNaN(d) {
		t.Fatalf("expected NaN, got %v", d)
	}
}

func TestValid(t *testing.T) {
	cases := map[Point]bool{
		{Lat: 14.5, Lng: 121}:       true,
		{Lat: 90, Lng: 180}:         true,
		{Lat: 91, Lng: 0}:           false,
		{Lat: 0, Lng: -181}:         false,
		{Lat: math.Inf(1), Lng: 0}:  false,
		{Lat: 0, Lng: math.Inf(-1)}: false,
	}
	for p, want := range cases {
		if got := Valid(p); got != want {
			t.Errorf("Valid(%v) = %v, want %v", p, got, want)
		}
	}
	if Valid(Point{Lat: math.NaN(), Lng: 0}) {
		t.Error("expected NaN point to be invalid")
	}
}
