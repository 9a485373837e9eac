package renderer

import (
	"github.com/chewxy/math32"

	"spritegl/internal/linalg"
)

// Camera handles the view and projection matrices
type Camera struct {
	FOV    float32 // vertical, degrees
	Near   float32
	Far    float32
	Eye    linalg.Vector3
	Target linalg.Vector3
	Up     linalg.Vector3
}

func NewCamera() *Camera {
	return &Camera{
		FOV:    45,
		Near:   0.1,
		Far:    5000,
		Eye:    linalg.Vec3(0, 0, 10),
		Target: linalg.Vec3(0, 0, 0),
		Up:     linalg.Vec3(0, 1, 0),
	}
}

func (c *Camera) ViewMatrix() linalg.Matrix4 {
	return linalg.LookAt(c.Eye, c.Target, c.Up)
}

func (c *Camera) ProjectionMatrix(aspect float32) linalg.Matrix4 {
	return linalg.PerspectiveFov(c.FOV/180*math32.Pi, aspect, c.Near, c.Far)
}
