// Package graphics wraps a gpu.Context with lifetime-managed resources:
// render targets, geometry and shader programs.
//
// Every wrapper holds the *GL it was created from and must be released from
// the goroutine that owns the context.
package graphics

import (
	"log/slog"

	"spritegl/internal/gpu"
	"spritegl/internal/linalg"
)

var logger = slog.Default()

// SetLogger replaces the package logger; nil restores slog.Default.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	logger = l
}

// GL is the single owner of a rendering context and its binding state.
type GL struct {
	ctx     gpu.Context
	surface gpu.Surface
	screen  *Screen
	bound   RenderTarget
}

// New takes ownership of ctx. The screen starts out bound.
func New(ctx gpu.Context, surface gpu.Surface) (*GL, error) {
	if !ctx.HasExtension(gpu.ColorBufferFloat) {
		logger.Warn("required extension is disabled", "extension", gpu.ColorBufferFloat)
		return nil, &ResourceCreationError{Resource: "extension " + gpu.ColorBufferFloat}
	}
	g := &GL{ctx: ctx, surface: surface}
	g.screen = &Screen{gl: g}
	g.bound = g.screen
	return g, nil
}

func (g *GL) Context() gpu.Context { return g.ctx }

// Screen returns the default presentation target.
func (g *GL) Screen() *Screen { return g.screen }

// ScreenSize returns the current surface size in pixels.
func (g *GL) ScreenSize() linalg.Size {
	w, h := g.surface.Size()
	return linalg.Size{W: w, H: h}
}

func (g *GL) AspectRatio() float32 {
	return g.ScreenSize().AspectRatio()
}

// Bound returns the current render target.
func (g *GL) Bound() RenderTarget { return g.bound }

// Bind makes target current and sizes the viewport to it. Binding replaces
// whatever was bound before; there is no reference counting.
func (g *GL) Bind(target RenderTarget) {
	g.ctx.BindFramebuffer(target.frameBuffer())
	s := target.Size()
	g.ctx.Viewport(0, 0, s.W, s.H)
	g.bound = target
}

// WithTarget binds target for the duration of fn and rebinds the previous
// target afterwards, including when fn panics. If fn released the previous
// target, the screen is bound instead.
func (g *GL) WithTarget(target RenderTarget, fn func() error) error {
	prev := g.bound
	g.Bind(target)
	defer func() {
		if fb, ok := prev.(*FrameBuffer); ok && fb.released {
			prev = g.screen
		}
		g.Bind(prev)
	}()
	return fn()
}

// Clear resets the color buffer of the bound target.
func (g *GL) Clear(color linalg.Vector4) {
	g.ctx.ClearColor(color.X, color.Y, color.Z, color.W)
	g.ctx.Clear(gpu.ColorBuffer)
}

func (g *GL) ClearDepth(depth float32) {
	g.ctx.ClearDepth(depth)
	g.ctx.Clear(gpu.DepthBuffer)
}

func (g *GL) ClearStencil(stencil int32) {
	g.ctx.ClearStencil(stencil)
	g.ctx.Clear(gpu.StencilBuffer)
}

// ClearAll resets color, depth and stencil in one call.
func (g *GL) ClearAll(color linalg.Vector4, depth float32, stencil int32) {
	g.ctx.ClearColor(color.X, color.Y, color.Z, color.W)
	g.ctx.ClearDepth(depth)
	g.ctx.ClearStencil(stencil)
	g.ctx.Clear(gpu.ColorBuffer | gpu.DepthBuffer | gpu.StencilBuffer)
}

// RenderTarget is a destination for clears and draws: the Screen or a
// FrameBuffer.
type RenderTarget interface {
	Size() linalg.Size
	frameBuffer() gpu.Framebuffer
}

// Screen is the default presentation surface. It owns no GPU objects.
type Screen struct {
	gl *GL
}

func (s *Screen) Size() linalg.Size { return s.gl.ScreenSize() }

func (s *Screen) frameBuffer() gpu.Framebuffer { return 0 }

// Release is a no-op; the surface belongs to the window.
func (s *Screen) Release() {}

// FrameBuffer is an off-screen target with an RGBA32F color texture and a
// combined depth/stencil renderbuffer.
type FrameBuffer struct {
	gl       *GL
	fb       gpu.Framebuffer
	depth    gpu.Renderbuffer
	color    gpu.Texture
	size     linalg.Size
	released bool
}

// NewFrameBuffer allocates an off-screen target of fixed size. Whatever was
// allocated before a failing step is released again.
func NewFrameBuffer(g *GL, size linalg.Size) (*FrameBuffer, error) {
	ctx := g.ctx
	f := &FrameBuffer{gl: g, size: size}

	f.color = ctx.CreateTexture()
	if f.color == 0 {
		return nil, f.fail("texture")
	}
	ctx.BindTexture(f.color)
	ctx.TexImage2D(size.W, size.H, gpu.RGBA32F, nil)
	ctx.TexFilter(gpu.Linear)
	ctx.BindTexture(0)

	f.depth = ctx.CreateRenderbuffer()
	if f.depth == 0 {
		return nil, f.fail("renderbuffer")
	}
	ctx.BindRenderbuffer(f.depth)
	ctx.RenderbufferDepthStencil(size.W, size.H)
	ctx.BindRenderbuffer(0)

	f.fb = ctx.CreateFramebuffer()
	if f.fb == 0 {
		return nil, f.fail("framebuffer")
	}
	ctx.BindFramebuffer(f.fb)
	ctx.FramebufferTexture(f.color)
	ctx.FramebufferRenderbuffer(f.depth)
	complete := ctx.FramebufferComplete()
	ctx.BindFramebuffer(g.bound.frameBuffer())
	if !complete {
		return nil, f.fail("framebuffer")
	}

	logger.Debug("framebuffer created", "width", size.W, "height", size.H, "id", f.fb)
	return f, nil
}

func (f *FrameBuffer) fail(resource string) error {
	logger.Warn("framebuffer allocation refused", "resource", resource)
	f.Release()
	return &ResourceCreationError{Resource: resource}
}

func (f *FrameBuffer) Size() linalg.Size { return f.size }

func (f *FrameBuffer) frameBuffer() gpu.Framebuffer { return f.fb }

// Texture returns the color attachment for sampling.
func (f *FrameBuffer) Texture() gpu.Texture { return f.color }

// Release deletes the framebuffer, renderbuffer and texture. If the target
// is bound the screen is bound in its place. Safe to call more than once.
func (f *FrameBuffer) Release() {
	if f.released {
		return
	}
	f.released = true
	ctx := f.gl.ctx
	if f.gl.bound == RenderTarget(f) {
		f.gl.Bind(f.gl.screen)
	}
	if f.fb != 0 {
		ctx.DeleteFramebuffer(f.fb)
	}
	if f.depth != 0 {
		ctx.DeleteRenderbuffer(f.depth)
	}
	if f.color != 0 {
		ctx.DeleteTexture(f.color)
	}
	logger.Debug("framebuffer released", "id", f.fb)
}
