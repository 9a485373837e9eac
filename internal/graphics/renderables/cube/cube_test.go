package cube

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spritegl/internal/gpu"
	"spritegl/internal/gpu/gputest"
	"spritegl/internal/graphics"
	renderer "spritegl/internal/graphics/renderer"
	"spritegl/internal/linalg"
)

func newTestGL(t *testing.T) (*graphics.GL, *gputest.Context) {
	t.Helper()
	ctx := gputest.New()
	g, err := graphics.New(ctx, gpu.SurfaceFunc(func() (int, int) { return 64, 64 }))
	require.NoError(t, err)
	return g, ctx
}

func TestVerticesLayout(t *testing.T) {
	assert.Equal(t, 14, Vertices.VertexCount())
	assert.NoError(t, graphics.CheckVertexSource(Vertices))
}

func TestRenderDrawsOffscreenThenScreen(t *testing.T) {
	g, ctx := newTestGL(t)
	c := NewCube(g)
	require.NoError(t, c.Init())

	cam := renderer.NewCamera()
	c.Render(renderer.RenderContext{
		GL:     g,
		Camera: cam,
		View:   cam.ViewMatrix(),
		Proj:   cam.ProjectionMatrix(1),
		DT:     0.25,
	})

	require.Len(t, ctx.Draws, 2)
	off, on := ctx.Draws[0], ctx.Draws[1]
	assert.NotEqual(t, gpu.Framebuffer(0), off.Framebuffer)
	assert.Equal(t, gpu.Framebuffer(0), on.Framebuffer)
	for _, d := range ctx.Draws {
		assert.Equal(t, gpu.TriangleStrip, d.Mode)
		assert.Equal(t, 14, d.Count)
		assert.True(t, d.Enabled[gpu.DepthTest])
		assert.True(t, d.Enabled[gpu.CullFace])
		assert.Contains(t, d.Attribs, "position")
		assert.Contains(t, d.Attribs, "color")
	}
	assert.Equal(t, off.Uniforms["mvp"], on.Uniforms["mvp"])
	assert.Equal(t, gpu.Framebuffer(0), ctx.Framebuffer)

	// the off-screen pass is finished before the screen is rebound
	finish := slices.Index(ctx.Calls, "Finish")
	require.GreaterOrEqual(t, finish, 0)
	draws := []int{}
	for i, call := range ctx.Calls {
		if strings.HasPrefix(call, "DrawArrays") {
			draws = append(draws, i)
		}
	}
	require.Len(t, draws, 2)
	assert.Less(t, draws[0], finish)
	assert.Less(t, finish, draws[1])
	assert.Equal(t, "BindFramebuffer 0", ctx.Calls[finish+1])

	c.Dispose()
	assert.Empty(t, ctx.Leaks())
	assert.Empty(t, ctx.Misuse)
}

func TestWorldAtRest(t *testing.T) {
	g, _ := newTestGL(t)
	c := NewCube(g)
	assert.Equal(t, linalg.Scaling(4, 4, 4), c.World())
}

func TestInitFailureReleasesEverything(t *testing.T) {
	g, ctx := newTestGL(t)
	ctx.Refuse[gputest.Framebuffer] = true

	c := NewCube(g)
	var rce *graphics.ResourceCreationError
	require.ErrorAs(t, c.Init(), &rce)
	assert.Empty(t, ctx.Leaks())
}

func TestSetViewportReallocatesTarget(t *testing.T) {
	g, ctx := newTestGL(t)
	c := NewCube(g)
	require.NoError(t, c.Init())
	before := c.Texture()

	c.SetViewport(64, 64)
	assert.Equal(t, before, c.Texture())

	c.SetViewport(128, 32)
	assert.NotEqual(t, before, c.Texture())
	w, h := ctx.TextureSize(c.Texture())
	assert.Equal(t, 128, w)
	assert.Equal(t, 32, h)
	assert.Equal(t, 1, ctx.Live(gputest.Framebuffer))

	c.Dispose()
	assert.Empty(t, ctx.Leaks())
}
