package renderer

import (
	"fmt"

	"spritegl/internal/graphics"
	"spritegl/internal/linalg"
	"spritegl/internal/profiling"
)

// Renderer orchestrates rendering via renderable features
type Renderer struct {
	gl          *graphics.GL
	renderables []Renderable
	camera      *Camera
	frame       int

	// ClearColor is applied to the screen at the start of every frame.
	ClearColor linalg.Vector4
}

// NewRenderer initializes rs in order. If one fails, the ones already
// initialized are disposed in reverse order.
func NewRenderer(g *graphics.GL, camera *Camera, rs ...Renderable) (*Renderer, error) {
	for i, r := range rs {
		if err := r.Init(); err != nil {
			for j := i - 1; j >= 0; j-- {
				rs[j].Dispose()
			}
			return nil, fmt.Errorf("init renderable %d: %w", i, err)
		}
	}

	return &Renderer{
		gl:          g,
		renderables: rs,
		camera:      camera,
		ClearColor:  linalg.Vec4(0, 0, 0, 1),
	}, nil
}

// Render clears the screen and renders every feature in order.
func (r *Renderer) Render(dt float64) {
	defer profiling.Track("renderer.Render")()

	r.gl.Bind(r.gl.Screen())
	r.gl.ClearAll(r.ClearColor, 1, 0)

	ctx := RenderContext{
		GL:     r.gl,
		Camera: r.camera,
		View:   r.camera.ViewMatrix(),
		Proj:   r.camera.ProjectionMatrix(r.gl.AspectRatio()),
		DT:     dt,
		Frame:  r.frame,
	}
	for _, renderable := range r.renderables {
		renderable.Render(ctx)
	}
	r.frame++
}

// Dispose cleans up all renderables in reverse order
func (r *Renderer) Dispose() {
	for i := len(r.renderables) - 1; i >= 0; i-- {
		r.renderables[i].Dispose()
	}
}

func (r *Renderer) Camera() *Camera { return r.camera }

func (r *Renderer) Frame() int { return r.frame }

// SetViewport forwards a surface resize to every renderable.
func (r *Renderer) SetViewport(width, height int) {
	for _, renderable := range r.renderables {
		renderable.SetViewport(width, height)
	}
}
