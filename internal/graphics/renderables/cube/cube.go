package cube

import (
	"fmt"
	"log/slog"

	"github.com/chewxy/math32"

	"spritegl/internal/gpu"
	"spritegl/internal/graphics"
	renderer "spritegl/internal/graphics/renderer"
	"spritegl/internal/linalg"
	"spritegl/internal/profiling"
)

const (
	vertexSource = `#version 410 core
in vec4 position;
in vec4 color;
uniform mat4 mvp;
out vec4 vColor;
void main() {
	gl_Position = mvp * position;
	vColor = color;
}
`
	fragmentSource = `#version 410 core
in vec4 vColor;
out vec4 outColor;
void main() {
	outColor = vColor;
}
`
)

var (
	red   = linalg.Vec4(1, 0, 0, 1)
	green = linalg.Vec4(0, 1, 0, 1)
	blue  = linalg.Vec4(0, 0, 1, 1)
)

// Vertices is a unit cube as one 14-vertex triangle strip.
//
//	   1---------2
//	  /|        /|
//	 / |       / |
//	3---------4  |
//	|  5- - - |- 6
//	| /       | /
//	|/        |/
//	8---------7
//
// Strip order: 4 3 7 8 5 3 1 4 2 7 6 5 2 1
var Vertices = graphics.ColoredStrip{
	{Position: linalg.Vec3(0.5, 0.5, 0.5), Color: green},   // 4
	{Position: linalg.Vec3(-0.5, 0.5, 0.5), Color: blue},   // 3
	{Position: linalg.Vec3(0.5, -0.5, 0.5), Color: red},    // 7
	{Position: linalg.Vec3(-0.5, -0.5, 0.5), Color: green}, // 8
	{Position: linalg.Vec3(-0.5, -0.5, -0.5), Color: blue}, // 5
	{Position: linalg.Vec3(-0.5, 0.5, 0.5), Color: red},    // 3
	{Position: linalg.Vec3(-0.5, 0.5, -0.5), Color: green}, // 1
	{Position: linalg.Vec3(0.5, 0.5, 0.5), Color: blue},    // 4
	{Position: linalg.Vec3(0.5, 0.5, -0.5), Color: red},    // 2
	{Position: linalg.Vec3(0.5, -0.5, 0.5), Color: green},  // 7
	{Position: linalg.Vec3(0.5, -0.5, -0.5), Color: blue},  // 6
	{Position: linalg.Vec3(-0.5, -0.5, -0.5), Color: red},  // 5
	{Position: linalg.Vec3(0.5, 0.5, -0.5), Color: green},  // 2
	{Position: linalg.Vec3(-0.5, 0.5, -0.5), Color: blue},  // 1
}

// Cube renders a spinning cube twice: into its own off-screen target and
// onto the bound target. The off-screen color texture is exposed for
// compositing.
type Cube struct {
	gl        *graphics.GL
	shader    *graphics.Shader
	mesh      *graphics.Primitive
	offscreen *graphics.FrameBuffer

	// Speed is the spin rate in radians per second.
	Speed float32
	// Scale is the uniform scale applied before rotating.
	Scale float32
	// OffscreenClear is the background of the off-screen target.
	OffscreenClear linalg.Vector4

	angle float32
}

func NewCube(g *graphics.GL) *Cube {
	return &Cube{
		gl:             g,
		Speed:          2 * math32.Pi / 3,
		Scale:          4,
		OffscreenClear: linalg.Vec4(1, 0, 1, 0),
	}
}

// Init allocates the program, mesh and off-screen target. On failure
// everything allocated so far is released.
func (c *Cube) Init() (err error) {
	defer func() {
		if err != nil {
			c.Dispose()
		}
	}()

	c.shader, err = graphics.NewShader(c.gl, vertexSource, fragmentSource)
	if err != nil {
		return fmt.Errorf("cube shader: %w", err)
	}
	c.mesh, err = graphics.NewPrimitive(c.gl, Vertices)
	if err != nil {
		return fmt.Errorf("cube mesh: %w", err)
	}
	if err = c.shader.EnableVertexAttribute(c.mesh); err != nil {
		return err
	}
	c.offscreen, err = graphics.NewFrameBuffer(c.gl, c.gl.ScreenSize())
	if err != nil {
		return fmt.Errorf("cube target: %w", err)
	}
	return nil
}

// World returns the model transform for the current angle.
func (c *Cube) World() linalg.Matrix4 {
	return linalg.YawRotation(c.angle).
		Mul(linalg.PitchRotation(c.angle)).
		Mul(linalg.Scaling(c.Scale, c.Scale, c.Scale))
}

func (c *Cube) Render(ctx renderer.RenderContext) {
	defer profiling.Track("cube.Render")()

	c.angle = math32.Mod(c.angle+float32(ctx.DT)*c.Speed, 2*math32.Pi)
	mvp := ctx.ViewProjection().Mul(c.World())

	_ = c.gl.WithTarget(c.offscreen, func() error {
		c.gl.ClearAll(c.OffscreenClear, 1, 0)
		c.draw(mvp)
		// the overlay samples this texture later in the frame
		c.gl.Context().Finish()
		return nil
	})
	c.draw(mvp)
}

func (c *Cube) draw(mvp linalg.Matrix4) {
	gctx := c.gl.Context()
	gctx.Enable(gpu.DepthTest)
	gctx.Enable(gpu.CullFace)
	c.shader.Use(func() {
		c.shader.SetUniformModelViewPerspective(mvp)
		c.shader.Draw(c.mesh)
	})
}

// Texture returns the off-screen color attachment.
func (c *Cube) Texture() gpu.Texture {
	if c.offscreen == nil {
		return 0
	}
	return c.offscreen.Texture()
}

// SetViewport reallocates the off-screen target at the new size.
func (c *Cube) SetViewport(width, height int) {
	size := linalg.Size{W: width, H: height}
	if size.Empty() || c.offscreen == nil || c.offscreen.Size() == size {
		return
	}
	fb, err := graphics.NewFrameBuffer(c.gl, size)
	if err != nil {
		slog.Warn("keeping previous cube target", "width", width, "height", height, "err", err)
		return
	}
	c.offscreen.Release()
	c.offscreen = fb
}

func (c *Cube) Dispose() {
	if c.offscreen != nil {
		c.offscreen.Release()
	}
	if c.mesh != nil {
		c.mesh.Release()
	}
	if c.shader != nil {
		c.shader.Release()
	}
}
