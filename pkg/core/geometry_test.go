package core

import "testing"

func TestBounds_Center(t *testing.T) {
	tests := []struct {
		bounds    Bounds
		expectedX int
		expectedY int
	}{
		{Bounds{X: 0, Y: 0, Width: 100, Height: 100}, 50, 50},
		{Bounds{X: 10, Y: 20, Width: 100, Height: 200}, 60, 120},
		{Bounds{X: 0, Y: 0, Width: 0, Height: 0}, 0, 0},
	}

	for _, tt := range tests {
		x, y := tt.bounds.Center()
		if x != tt.expectedX || y != tt.expectedY {
			t.Errorf("Bounds%+v.Center() = (%d, %d), want (%d, %d)",
				tt.bounds, x, y, tt.expectedX, tt.expectedY)
		}
	}
}

func TestBounds_Contains(t *testing.T) {
	bounds := Bounds{X: 10, Y: 10, Width: 100, Height: 100}

	tests := []struct {
		x, y     int
		expected bool
	}{
		{50, 50, true},    // Center
		{10, 10, true},    // Top-left corner
		{110, 110, true},  // Bottom-right corner (inclusive)
		{111, 110, false}, // Just outside right edge
		{0, 0, false},     // Outside
		{200, 200, false}, // Far outside
	}

	for _, tt := range tests {
		if got := bounds.Contains(Point{X: tt.x, Y: tt.y}); got != tt.expected {
			t.Errorf("Bounds.Contains(%d, %d) = %v, want %v", tt.x, tt.y, got, tt.expected)
		}
	}
}

func TestBounds_HasArea(t *testing.T) {
	tests := []struct {
		bounds Bounds
		want   bool
	}{
		{Bounds{Width: 10, Height: 10}, true},
		{Bounds{Width: 0, Height: 10}, false},
		{Bounds{Width: 10, Height: 0}, false},
		{Bounds{Width: -5, Height: 10}, false},
	}

	for _, tt := range tests {
		if got := tt.bounds.HasArea(); got != tt.want {
			t.Errorf("Bounds%+v.HasArea() = %v, want %v", tt.bounds, got, tt.want)
		}
	}
}

func TestBounds_Union(t *testing.T) {
	a := Bounds{X: 0, Y: 0, Width: 100, Height: 50}
	b := Bounds{X: 50, Y: 40, Width: 100, Height: 100}

	got := a.Union(b)
	want := Bounds{X: 0, Y: 0, Width: 150, Height: 140}
	if got != want {
		t.Errorf("Union() = %+v, want %+v", got, want)
	}

	if got := a.Union(Bounds{}); got != a {
		t.Errorf("Union with empty bounds = %+v, want %+v", got, a)
	}
	if got := (Bounds{}).Union(b); got != b {
		t.Errorf("empty Union(b) = %+v, want %+v", got, b)
	}
}
