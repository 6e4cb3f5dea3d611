package core

// Bounds represents element position and size.
// Width or Height of 0 marks a logically hidden node.
type Bounds struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Right returns the right edge of the bounds
func (b Bounds) Right() int {
	return b.X + b.Width
}

// Bottom returns the bottom edge of the bounds
func (b Bounds) Bottom() int {
	return b.Y + b.Height
}

// Center returns the center point of the bounds
func (b Bounds) Center() (int, int) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// HasArea reports whether both width and height are strictly positive.
func (b Bounds) HasArea() bool {
	return b.Width > 0 && b.Height > 0
}

// Area returns width*height, or 0 for degenerate bounds.
func (b Bounds) Area() int {
	if !b.HasArea() {
		return 0
	}
	return b.Width * b.Height
}

// Contains checks if a point is within the bounds, edges included.
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.X && p.X <= b.Right() && p.Y >= b.Y && p.Y <= b.Bottom()
}

// Union returns the smallest bounds containing both b and o.
// Degenerate bounds are ignored.
func (b Bounds) Union(o Bounds) Bounds {
	if !o.HasArea() {
		return b
	}
	if !b.HasArea() {
		return o
	}
	left, top := min(b.X, o.X), min(b.Y, o.Y)
	right, bottom := max(b.Right(), o.Right()), max(b.Bottom(), o.Bottom())
	return Bounds{X: left, Y: top, Width: right - left, Height: bottom - top}
}

// Point is a screen coordinate in pixels.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ScreenSize is the logical size of the captured screen.
type ScreenSize struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// DefaultScreenSize is used when a snapshot carries no usable geometry.
var DefaultScreenSize = ScreenSize{Width: 1080, Height: 1920}
