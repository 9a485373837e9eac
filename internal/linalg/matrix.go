package linalg

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Matrix4 is a 4x4 single precision matrix stored row-major:
// element (row, col) lives at index row*4+col.
//
// Composition follows the usual convention, A.Mul(B) applies B first, so a
// frame is typically built as projection.Mul(view).Mul(world).
// Two matrices are equal only if every element is bit-for-bit equal (==).
type Matrix4 [16]float32

// NewMatrix4 builds a matrix from its elements in row order.
func NewMatrix4(
	m11, m12, m13, m14,
	m21, m22, m23, m24,
	m31, m32, m33, m34,
	m41, m42, m43, m44 float32,
) Matrix4 {
	return Matrix4{
		m11, m12, m13, m14,
		m21, m22, m23, m24,
		m31, m32, m33, m34,
		m41, m42, m43, m44,
	}
}

// At returns the element at row, col (zero based).
func (m Matrix4) At(row, col int) float32 {
	return m[row*4+col]
}

// Mul returns m * o.
func (m Matrix4) Mul(o Matrix4) Matrix4 {
	var r Matrix4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			r[row*4+col] = m[row*4+0]*o[0*4+col] +
				m[row*4+1]*o[1*4+col] +
				m[row*4+2]*o[2*4+col] +
				m[row*4+3]*o[3*4+col]
		}
	}
	return r
}

// MulVec3 transforms v as a homogeneous point and divides by the resulting w,
// so perspective projections need no separate divide at call sites.
func (m Matrix4) MulVec3(v Vector3) Vector3 {
	w := 1 / (m[12]*v.X + m[13]*v.Y + m[14]*v.Z + m[15])
	return Vector3{
		X: (m[0]*v.X + m[1]*v.Y + m[2]*v.Z + m[3]) * w,
		Y: (m[4]*v.X + m[5]*v.Y + m[6]*v.Z + m[7]) * w,
		Z: (m[8]*v.X + m[9]*v.Y + m[10]*v.Z + m[11]) * w,
	}
}

func (m Matrix4) Transpose() Matrix4 {
	return Matrix4{
		m[0], m[4], m[8], m[12],
		m[1], m[5], m[9], m[13],
		m[2], m[6], m[10], m[14],
		m[3], m[7], m[11], m[15],
	}
}

// Mat4 converts m to mathgl's column-major layout.
func (m Matrix4) Mat4() mgl32.Mat4 {
	return mgl32.Mat4(m.Transpose())
}

// FromMat4 converts a column-major mathgl matrix.
func FromMat4(m mgl32.Mat4) Matrix4 {
	return Matrix4(m).Transpose()
}

func Identity() Matrix4 {
	return Matrix4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

func Scaling(x, y, z float32) Matrix4 {
	return Matrix4{
		x, 0, 0, 0,
		0, y, 0, 0,
		0, 0, z, 0,
		0, 0, 0, 1,
	}
}

func Translation(x, y, z float32) Matrix4 {
	return Matrix4{
		1, 0, 0, x,
		0, 1, 0, y,
		0, 0, 1, z,
		0, 0, 0, 1,
	}
}

// PitchRotation rotates r radians about the X axis.
func PitchRotation(r float32) Matrix4 {
	s, c := math32.Sin(r), math32.Cos(r)
	return Matrix4{
		1, 0, 0, 0,
		0, c, -s, 0,
		0, s, c, 0,
		0, 0, 0, 1,
	}
}

// YawRotation rotates r radians about the Y axis.
func YawRotation(r float32) Matrix4 {
	s, c := math32.Sin(r), math32.Cos(r)
	return Matrix4{
		c, 0, s, 0,
		0, 1, 0, 0,
		-s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// RollRotation rotates r radians about the Z axis.
func RollRotation(r float32) Matrix4 {
	s, c := math32.Sin(r), math32.Cos(r)
	return Matrix4{
		c, -s, 0, 0,
		s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Rotation applies pitch, then yaw, then roll.
func Rotation(pitch, yaw, roll float32) Matrix4 {
	return RollRotation(roll).Mul(YawRotation(yaw)).Mul(PitchRotation(pitch))
}

// LookAt builds a right-handed view matrix. eye and target must differ and
// up must not be parallel to the viewing direction.
func LookAt(eye, target, up Vector3) Matrix4 {
	z := eye.Sub(target).Normalize()
	x := up.Cross(z).Normalize()
	y := z.Cross(x).Normalize()

	basis := Matrix4{
		x.X, x.Y, x.Z, 0,
		y.X, y.Y, y.Z, 0,
		z.X, z.Y, z.Z, 0,
		0, 0, 0, 1,
	}
	return basis.Mul(Translation(-eye.X, -eye.Y, -eye.Z))
}

// PerspectiveFov builds a right-handed perspective projection from a
// vertical field of view in radians.
func PerspectiveFov(fovY, aspect, near, far float32) Matrix4 {
	sy := 1 / math32.Tan(fovY/2)
	sx := sy / aspect
	return Matrix4{
		sx, 0, 0, 0,
		0, sy, 0, 0,
		0, 0, -(far + near) / (far - near), -2 * near * far / (far - near),
		0, 0, -1, 0,
	}
}
