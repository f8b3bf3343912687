package game

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		duration int
		moves    int
		want     float64
	}{
		{
			name:     "at error ceiling scores zero",
			distance: 2000,
			duration: 10,
			moves:    0,
			want:     0,
		},
		{
			name:     "beyond error ceiling scores zero",
			distance: 3500.5,
			duration: 10,
			moves:    0,
			want:     0,
		},
		{
			name:     "just under ceiling keeps move bonus",
			distance: 1999.9,
			duration: 60,
			moves:    0,
			want:     100.01,
		},
		{
			name:     "zero moves bonus",
			distance: 1000,
			duration: 60,
			moves:    0,
			want:     200, // 100 bonus + (2000-1000)/10
		},
		{
			name:     "one move bonus",
			distance: 1000,
			duration: 60,
			moves:    1,
			want:     150,
		},
		{
			name:     "three moves bonus",
			distance: 1000,
			duration: 60,
			moves:    3,
			want:     130,
		},
		{
			name:     "moves at ceiling earn no bonus",
			distance: 1000,
			duration: 60,
			moves:    5,
			want:     100,
		},
		{
			name:     "fast guess earns time points",
			distance: 1000,
			duration: 30,
			moves:    0,
			want:     215, // 100 + (30*5 + 1000)/10
		},
		{
			name:     "beyond a minute only accuracy counts",
			distance: 500,
			duration: 120,
			moves:    2,
			want:     170, // 20 + 1500/10
		},
		{
			name:     "exact hit",
			distance: 0,
			duration: 60,
			moves:    0,
			want:     300, // 100 + 2000/10
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.distance, tt.duration, tt.moves)
			if !almostEqual(got, tt.want, 1e-9) {
				t.Errorf("Score(%v, %v, %v) = %v, want %v", tt.distance, tt.duration, tt.moves, got, tt.want)
			}
		})
	}
}

func TestScoreDeterministic(t *testing.T) {
	first := Score(1234.5, 42, 2)
	for i := 0; i < 10; i++ {
		if got := Score(1234.5, 42, 2); got != first {
			t.Fatalf("Score is not deterministic: got %v, want %v", got, first)
		}
	}
}

func TestDistance(t *testing.T) {
	paris := Point{Lat: 48.8566, Lng: 2.3522}
	london := Point{Lat: 51.5074, Lng: -0.1278}

	if got := Distance(paris, paris); got != 0 {
		t.Errorf("Distance to self = %v, want 0", got)
	}

	got := Distance(paris, london)
	if !almostEqual(got, 343.5, 5) {
		t.Errorf("Distance(paris, london) = %v km, want about 343.5", got)
	}

	if back := Distance(london, paris); !almostEqual(got, back, 1e-9) {
		t.Errorf("Distance is not symmetric: %v vs %v", got, back)
	}
}
