package math

// Vec2 is an in-plane pair: cell sizes and grid extents.
type Vec2 struct {
	X, Y float32
}

// Add returns v + other.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Scale returns v * scalar.
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Axis returns X for 0 and Y otherwise.
func (v Vec2) Axis(i int) float32 {
	if i == 0 {
		return v.X
	}
	return v.Y
}

// WithAxis returns a copy of v with one component replaced.
func (v Vec2) WithAxis(i int, value float32) Vec2 {
	if i == 0 {
		v.X = value
	} else {
		v.Y = value
	}
	return v
}
