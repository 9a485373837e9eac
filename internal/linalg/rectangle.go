package linalg

// Rectangle is an integer pixel rectangle with a top-left origin.
type Rectangle struct {
	X, Y, W, H int
}

// Size is a pixel extent.
type Size struct {
	W, H int
}

func Rect(x, y, w, h int) Rectangle { return Rectangle{X: x, Y: y, W: w, H: h} }

// Vec4 packs the rectangle as (x, y, w, h).
func (r Rectangle) Vec4() Vector4 {
	return Vector4{float32(r.X), float32(r.Y), float32(r.W), float32(r.H)}
}

func (r Rectangle) Size() Size {
	return Size{W: r.W, H: r.H}
}

// Rect returns the rectangle at the origin covering s.
func (s Size) Rect() Rectangle {
	return Rectangle{W: s.W, H: s.H}
}

// AspectRatio returns width / height.
func (s Size) AspectRatio() float32 {
	return float32(s.W) / float32(s.H)
}

// Empty reports whether s covers no pixels.
func (s Size) Empty() bool {
	return s.W <= 0 || s.H <= 0
}
