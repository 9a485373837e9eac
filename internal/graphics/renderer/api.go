package renderer

import (
	"spritegl/internal/graphics"
	"spritegl/internal/linalg"
)

// RenderContext provides shared context for all renderables
type RenderContext struct {
	GL     *graphics.GL
	Camera *Camera
	View   linalg.Matrix4
	Proj   linalg.Matrix4
	DT     float64
	Frame  int
}

// ViewProjection returns Proj * View.
func (c RenderContext) ViewProjection() linalg.Matrix4 {
	return c.Proj.Mul(c.View)
}

// Renderable interface defines the lifecycle for renderable features
type Renderable interface {
	Init() error
	Render(ctx RenderContext)
	Dispose()
	SetViewport(width, height int)
}
