package linalg

import (
	"image/color"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Vector2 is a 2-component single precision vector.
type Vector2 struct {
	X, Y float32
}

// Vector3 is a 3-component single precision vector.
type Vector3 struct {
	X, Y, Z float32
}

// Vector4 is a 4-component single precision vector.
type Vector4 struct {
	X, Y, Z, W float32
}

func Vec2(x, y float32) Vector2       { return Vector2{X: x, Y: y} }
func Vec3(x, y, z float32) Vector3    { return Vector3{X: x, Y: y, Z: z} }
func Vec4(x, y, z, w float32) Vector4 { return Vector4{X: x, Y: y, Z: z, W: w} }

// Vec3 extends v with z = 0.
func (v Vector2) Vec3() Vector3 {
	return Vector3{X: v.X, Y: v.Y}
}

// Vec4 lifts v to a homogeneous point (w = 1).
func (v Vector3) Vec4() Vector4 {
	return Vector4{X: v.X, Y: v.Y, Z: v.Z, W: 1}
}

func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vector3) Sub(o Vector3) Vector3 {
	return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale multiplies every component by s.
func (v Vector3) Scale(s float32) Vector3 {
	return Vector3{v.X * s, v.Y * s, v.Z * s}
}

// Div divides every component by s.
func (v Vector3) Div(s float32) Vector3 {
	return Vector3{v.X / s, v.Y / s, v.Z / s}
}

func (v Vector3) Negate() Vector3 {
	return Vector3{-v.X, -v.Y, -v.Z}
}

func (v Vector3) Dot(o Vector3) float32 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vector3) Cross(o Vector3) Vector3 {
	return Vector3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// Norm returns the euclidean length of v.
func (v Vector3) Norm() float32 {
	return math32.Sqrt(v.Dot(v))
}

// Normalize returns v scaled to unit length. A zero vector produces
// non-finite components; use NormalizeSafe when that can happen.
func (v Vector3) Normalize() Vector3 {
	return v.Div(v.Norm())
}

// NormalizeSafe is Normalize that reports false instead of returning
// non-finite components for zero or non-finite input.
func (v Vector3) NormalizeSafe() (Vector3, bool) {
	n := v.Norm()
	if n == 0 || math32.IsInf(n, 0) || math32.IsNaN(n) {
		return Vector3{}, false
	}
	return v.Div(n), true
}

// IsFinite reports whether no component is NaN or infinite.
func (v Vector3) IsFinite() bool {
	for _, c := range [3]float32{v.X, v.Y, v.Z} {
		if math32.IsNaN(c) || math32.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Vec returns v as an mgl32 vector.
func (v Vector3) Vec() mgl32.Vec3 {
	return mgl32.Vec3{v.X, v.Y, v.Z}
}

// Vec returns v as an mgl32 vector.
func (v Vector4) Vec() mgl32.Vec4 {
	return mgl32.Vec4{v.X, v.Y, v.Z, v.W}
}

// XYZ drops the w component.
func (v Vector4) XYZ() Vector3 {
	return Vector3{v.X, v.Y, v.Z}
}

// ColorVec4 converts c to straight RGBA components in [0, 1].
func ColorVec4(c color.Color) Vector4 {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Vector4{
		X: float32(n.R) / 0xff,
		Y: float32(n.G) / 0xff,
		Z: float32(n.B) / 0xff,
		W: float32(n.A) / 0xff,
	}
}
