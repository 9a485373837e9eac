package graphics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spritegl/internal/gpu"
	"spritegl/internal/gpu/gputest"
	"spritegl/internal/linalg"
)

func newTestGL(t *testing.T) (*GL, *gputest.Context) {
	t.Helper()
	ctx := gputest.New()
	g, err := New(ctx, gpu.SurfaceFunc(func() (int, int) { return 200, 100 }))
	require.NoError(t, err)
	return g, ctx
}

func TestNewRequiresColorBufferFloat(t *testing.T) {
	ctx := gputest.New()
	ctx.Extensions = map[string]bool{}

	_, err := New(ctx, gpu.SurfaceFunc(func() (int, int) { return 1, 1 }))
	var rce *ResourceCreationError
	require.ErrorAs(t, err, &rce)
	assert.Equal(t, "extension EXT_color_buffer_float", rce.Resource)
}

func TestScreen(t *testing.T) {
	g, _ := newTestGL(t)
	assert.Equal(t, linalg.Size{W: 200, H: 100}, g.ScreenSize())
	assert.Equal(t, float32(2), g.AspectRatio())
	assert.Equal(t, g.Screen().Size(), g.ScreenSize())
	assert.Equal(t, RenderTarget(g.Screen()), g.Bound())
}

func TestFrameBufferLifecycle(t *testing.T) {
	g, ctx := newTestGL(t)

	fb, err := NewFrameBuffer(g, linalg.Size{W: 64, H: 32})
	require.NoError(t, err)
	assert.Equal(t, 1, ctx.Live(gputest.Framebuffer))
	assert.Equal(t, 1, ctx.Live(gputest.Renderbuffer))
	assert.Equal(t, 1, ctx.Live(gputest.Texture))
	assert.Equal(t, linalg.Size{W: 64, H: 32}, fb.Size())

	w, h := ctx.TextureSize(fb.Texture())
	assert.Equal(t, 64, w)
	assert.Equal(t, 32, h)
	// creation leaves the screen bound
	assert.Equal(t, gpu.Framebuffer(0), ctx.Framebuffer)

	fb.Release()
	fb.Release()
	assert.Empty(t, ctx.Leaks())
	assert.Empty(t, ctx.Misuse)
	assert.Equal(t, 1, ctx.Deleted[gputest.Framebuffer])
	assert.Equal(t, 1, ctx.Deleted[gputest.Renderbuffer])
	assert.Equal(t, 1, ctx.Deleted[gputest.Texture])
}

func TestFrameBufferPartialFailure(t *testing.T) {
	for _, kind := range []gputest.Kind{gputest.Texture, gputest.Renderbuffer, gputest.Framebuffer} {
		t.Run(string(kind), func(t *testing.T) {
			g, ctx := newTestGL(t)
			ctx.Refuse[kind] = true

			fb, err := NewFrameBuffer(g, linalg.Size{W: 8, H: 8})
			assert.Nil(t, fb)
			var rce *ResourceCreationError
			require.ErrorAs(t, err, &rce)
			assert.Equal(t, string(kind), rce.Resource)
			assert.Empty(t, ctx.Leaks())
			assert.Empty(t, ctx.Misuse)
		})
	}
}

func TestFrameBufferIncomplete(t *testing.T) {
	g, ctx := newTestGL(t)
	ctx.Incomplete = true

	_, err := NewFrameBuffer(g, linalg.Size{W: 8, H: 8})
	var rce *ResourceCreationError
	require.ErrorAs(t, err, &rce)
	assert.Equal(t, "framebuffer", rce.Resource)
	assert.Empty(t, ctx.Leaks())
}

func TestBindIsLastWriteWins(t *testing.T) {
	g, ctx := newTestGL(t)
	a, err := NewFrameBuffer(g, linalg.Size{W: 8, H: 8})
	require.NoError(t, err)
	defer a.Release()
	b, err := NewFrameBuffer(g, linalg.Size{W: 16, H: 4})
	require.NoError(t, err)
	defer b.Release()

	g.Bind(a)
	g.Bind(b)
	assert.Equal(t, RenderTarget(b), g.Bound())
	assert.Equal(t, b.fb, ctx.Framebuffer)
	assert.Equal(t, [4]int{0, 0, 16, 4}, ctx.ViewportRect)
}

func TestWithTargetRestores(t *testing.T) {
	g, ctx := newTestGL(t)
	fb, err := NewFrameBuffer(g, linalg.Size{W: 8, H: 8})
	require.NoError(t, err)
	defer fb.Release()

	boom := errors.New("boom")
	err = g.WithTarget(fb, func() error {
		assert.Equal(t, fb.fb, ctx.Framebuffer)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, gpu.Framebuffer(0), ctx.Framebuffer)
	assert.Equal(t, RenderTarget(g.Screen()), g.Bound())

	assert.Panics(t, func() {
		_ = g.WithTarget(fb, func() error { panic("draw failed") })
	})
	assert.Equal(t, gpu.Framebuffer(0), ctx.Framebuffer)
	assert.Equal(t, [4]int{0, 0, 200, 100}, ctx.ViewportRect)
}

func TestWithTargetSkipsReleasedPrevious(t *testing.T) {
	g, ctx := newTestGL(t)
	prev, err := NewFrameBuffer(g, linalg.Size{W: 8, H: 8})
	require.NoError(t, err)
	inner, err := NewFrameBuffer(g, linalg.Size{W: 16, H: 16})
	require.NoError(t, err)
	defer inner.Release()

	g.Bind(prev)
	require.NoError(t, g.WithTarget(inner, func() error {
		prev.Release()
		return nil
	}))
	assert.Equal(t, RenderTarget(g.Screen()), g.Bound())
	assert.Equal(t, gpu.Framebuffer(0), ctx.Framebuffer)
	assert.Equal(t, [4]int{0, 0, 200, 100}, ctx.ViewportRect)
	assert.Empty(t, ctx.Misuse)
}

func TestReleaseBoundFrameBufferRebindsScreen(t *testing.T) {
	g, ctx := newTestGL(t)
	fb, err := NewFrameBuffer(g, linalg.Size{W: 8, H: 8})
	require.NoError(t, err)

	g.Bind(fb)
	fb.Release()
	assert.Equal(t, RenderTarget(g.Screen()), g.Bound())
	assert.Equal(t, gpu.Framebuffer(0), ctx.Framebuffer)
	assert.Empty(t, ctx.Misuse)
}

func TestClear(t *testing.T) {
	g, ctx := newTestGL(t)

	g.Clear(linalg.Vec4(1, 0, 1, 0))
	g.ClearDepth(0)
	g.ClearStencil(1)
	assert.Equal(t, [4]float32{1, 0, 1, 0}, ctx.ClearValues.Color)
	assert.Equal(t, float32(0), ctx.ClearValues.Depth)
	assert.Equal(t, int32(1), ctx.ClearValues.Stencil)
	assert.Equal(t, []gpu.ClearMask{gpu.ColorBuffer, gpu.DepthBuffer, gpu.StencilBuffer}, ctx.Cleared)

	g.ClearAll(linalg.Vec4(0, 0, 0, 1), 1, 0)
	assert.Equal(t, gpu.ColorBuffer|gpu.DepthBuffer|gpu.StencilBuffer, ctx.Cleared[3])
}
