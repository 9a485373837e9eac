// Package glctx implements gpu.Context on top of go-gl's OpenGL 4.1 core
// bindings. A window with a current 4.1 core context must exist before New
// is called, and every method must run on the thread that owns it.
package glctx

import (
	"fmt"
	"log/slog"
	"strings"

	"spritegl/internal/gpu"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Context is the go-gl backed gpu.Context.
type Context struct {
	extensions map[string]bool
	version    string
	logger     *slog.Logger
}

var _ gpu.Context = (*Context)(nil)

// New loads the GL function pointers for the current context.
func New(logger *slog.Logger) (*Context, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl init: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Context{
		extensions: make(map[string]bool),
		version:    gl.GoStr(gl.GetString(gl.VERSION)),
		logger:     logger,
	}

	var n int32
	gl.GetIntegerv(gl.NUM_EXTENSIONS, &n)
	for i := int32(0); i < n; i++ {
		c.extensions[gl.GoStr(gl.GetStringi(gl.EXTENSIONS, uint32(i)))] = true
	}
	// Float color attachments are core since OpenGL 3.0; the WebGL name is
	// kept so callers can ask for the capability portably.
	c.extensions[gpu.ColorBufferFloat] = true

	logger.Info("opengl context ready",
		"version", c.version,
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)),
		"extensions", n)
	return c, nil
}

// Version returns the GL_VERSION string.
func (c *Context) Version() string { return c.version }

// CheckError logs and returns any pending GL error.
func (c *Context) CheckError(label string) error {
	if e := gl.GetError(); e != gl.NO_ERROR {
		c.logger.Warn("gl error", "label", label, "code", fmt.Sprintf("0x%x", e))
		return fmt.Errorf("gl error %s: 0x%x", label, e)
	}
	return nil
}

func (c *Context) CreateBuffer() gpu.Buffer {
	var b uint32
	gl.GenBuffers(1, &b)
	return gpu.Buffer(b)
}

func (c *Context) DeleteBuffer(b gpu.Buffer) {
	id := uint32(b)
	gl.DeleteBuffers(1, &id)
}

func (c *Context) BindBuffer(b gpu.Buffer) {
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(b))
}

func (c *Context) BufferData(data []float32, usage gpu.Usage) {
	if len(data) == 0 {
		gl.BufferData(gl.ARRAY_BUFFER, 0, nil, glUsage(usage))
		return
	}
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), glUsage(usage))
}

func (c *Context) CreateVertexArray() gpu.VertexArray {
	var v uint32
	gl.GenVertexArrays(1, &v)
	return gpu.VertexArray(v)
}

func (c *Context) DeleteVertexArray(v gpu.VertexArray) {
	id := uint32(v)
	gl.DeleteVertexArrays(1, &id)
}

func (c *Context) BindVertexArray(v gpu.VertexArray) {
	gl.BindVertexArray(uint32(v))
}

func (c *Context) VertexAttribPointer(loc gpu.AttribLocation, size, stride, offset int) {
	gl.VertexAttribPointerWithOffset(uint32(loc), int32(size), gl.FLOAT, false, int32(stride), uintptr(offset))
}

func (c *Context) EnableVertexAttribArray(loc gpu.AttribLocation) {
	gl.EnableVertexAttribArray(uint32(loc))
}

func (c *Context) CreateTexture() gpu.Texture {
	var t uint32
	gl.GenTextures(1, &t)
	return gpu.Texture(t)
}

func (c *Context) DeleteTexture(t gpu.Texture) {
	id := uint32(t)
	gl.DeleteTextures(1, &id)
}

func (c *Context) BindTexture(t gpu.Texture) {
	gl.BindTexture(gl.TEXTURE_2D, uint32(t))
}

func (c *Context) ActiveTexture(unit int) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
}

func (c *Context) TexImage2D(width, height int, format gpu.TextureFormat, pixels []byte) {
	var ptr = gl.Ptr(nil)
	if len(pixels) > 0 {
		ptr = gl.Ptr(pixels)
	}
	switch format {
	case gpu.RGBA32F:
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA32F, int32(width), int32(height), 0, gl.RGBA, gl.FLOAT, ptr)
	default:
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, ptr)
	}
}

func (c *Context) TexFilter(filter gpu.Filter) {
	f := int32(gl.NEAREST)
	if filter == gpu.Linear {
		f = gl.LINEAR
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, f)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, f)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
}

func (c *Context) CreateRenderbuffer() gpu.Renderbuffer {
	var r uint32
	gl.GenRenderbuffers(1, &r)
	return gpu.Renderbuffer(r)
}

func (c *Context) DeleteRenderbuffer(r gpu.Renderbuffer) {
	id := uint32(r)
	gl.DeleteRenderbuffers(1, &id)
}

func (c *Context) BindRenderbuffer(r gpu.Renderbuffer) {
	gl.BindRenderbuffer(gl.RENDERBUFFER, uint32(r))
}

func (c *Context) RenderbufferDepthStencil(width, height int) {
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH24_STENCIL8, int32(width), int32(height))
}

func (c *Context) CreateFramebuffer() gpu.Framebuffer {
	var f uint32
	gl.GenFramebuffers(1, &f)
	return gpu.Framebuffer(f)
}

func (c *Context) DeleteFramebuffer(f gpu.Framebuffer) {
	id := uint32(f)
	gl.DeleteFramebuffers(1, &id)
}

func (c *Context) BindFramebuffer(f gpu.Framebuffer) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(f))
}

func (c *Context) FramebufferTexture(t gpu.Texture) {
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, uint32(t), 0)
}

func (c *Context) FramebufferRenderbuffer(r gpu.Renderbuffer) {
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_STENCIL_ATTACHMENT, gl.RENDERBUFFER, uint32(r))
}

func (c *Context) FramebufferComplete() bool {
	return gl.CheckFramebufferStatus(gl.FRAMEBUFFER) == gl.FRAMEBUFFER_COMPLETE
}

func (c *Context) CreateShader(stage gpu.ShaderStage) gpu.Shader {
	switch stage {
	case gpu.VertexStage:
		return gpu.Shader(gl.CreateShader(gl.VERTEX_SHADER))
	case gpu.FragmentStage:
		return gpu.Shader(gl.CreateShader(gl.FRAGMENT_SHADER))
	}
	return 0
}

func (c *Context) DeleteShader(s gpu.Shader) {
	gl.DeleteShader(uint32(s))
}

func (c *Context) ShaderSource(s gpu.Shader, source string) {
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(uint32(s), 1, csources, nil)
	free()
}

func (c *Context) CompileShader(s gpu.Shader) {
	gl.CompileShader(uint32(s))
}

func (c *Context) ShaderCompiled(s gpu.Shader) bool {
	var status int32
	gl.GetShaderiv(uint32(s), gl.COMPILE_STATUS, &status)
	return status != gl.FALSE
}

func (c *Context) ShaderInfoLog(s gpu.Shader) string {
	var logLength int32
	gl.GetShaderiv(uint32(s), gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetShaderInfoLog(uint32(s), logLength, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (c *Context) CreateProgram() gpu.Program {
	return gpu.Program(gl.CreateProgram())
}

func (c *Context) DeleteProgram(p gpu.Program) {
	gl.DeleteProgram(uint32(p))
}

func (c *Context) AttachShader(p gpu.Program, s gpu.Shader) {
	gl.AttachShader(uint32(p), uint32(s))
}

func (c *Context) LinkProgram(p gpu.Program) {
	gl.LinkProgram(uint32(p))
}

func (c *Context) ProgramLinked(p gpu.Program) bool {
	var status int32
	gl.GetProgramiv(uint32(p), gl.LINK_STATUS, &status)
	return status != gl.FALSE
}

func (c *Context) ProgramInfoLog(p gpu.Program) string {
	var logLength int32
	gl.GetProgramiv(uint32(p), gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(uint32(p), logLength, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (c *Context) UseProgram(p gpu.Program) {
	gl.UseProgram(uint32(p))
}

func (c *Context) AttribLocation(p gpu.Program, name string) gpu.AttribLocation {
	return gpu.AttribLocation(gl.GetAttribLocation(uint32(p), gl.Str(name+"\x00")))
}

func (c *Context) UniformLocation(p gpu.Program, name string) gpu.UniformLocation {
	return gpu.UniformLocation(gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00")))
}

func (c *Context) UniformMatrix4(loc gpu.UniformLocation, rowMajor *[16]float32) {
	gl.UniformMatrix4fv(int32(loc), 1, true, &rowMajor[0])
}

func (c *Context) Uniform1i(loc gpu.UniformLocation, v int32) {
	gl.Uniform1i(int32(loc), v)
}

func (c *Context) Uniform4f(loc gpu.UniformLocation, x, y, z, w float32) {
	gl.Uniform4f(int32(loc), x, y, z, w)
}

func (c *Context) DrawArrays(mode gpu.Topology, first, count int) {
	gl.DrawArrays(glTopology(mode), int32(first), int32(count))
}

func (c *Context) ClearColor(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
}

func (c *Context) ClearDepth(d float32) {
	gl.ClearDepthf(d)
}

func (c *Context) ClearStencil(s int32) {
	gl.ClearStencil(s)
}

func (c *Context) Clear(mask gpu.ClearMask) {
	var bits uint32
	if mask&gpu.ColorBuffer != 0 {
		bits |= gl.COLOR_BUFFER_BIT
	}
	if mask&gpu.DepthBuffer != 0 {
		bits |= gl.DEPTH_BUFFER_BIT
	}
	if mask&gpu.StencilBuffer != 0 {
		bits |= gl.STENCIL_BUFFER_BIT
	}
	gl.Clear(bits)
}

func (c *Context) Enable(cp gpu.Capability) {
	gl.Enable(glCapability(cp))
}

func (c *Context) Disable(cp gpu.Capability) {
	gl.Disable(glCapability(cp))
}

func (c *Context) BlendAlpha() {
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
}

func (c *Context) Viewport(x, y, width, height int) {
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
}

func (c *Context) Finish() {
	gl.Finish()
}

func (c *Context) HasExtension(name string) bool {
	return c.extensions[name]
}

func glUsage(u gpu.Usage) uint32 {
	if u == gpu.DynamicDraw {
		return gl.DYNAMIC_DRAW
	}
	return gl.STATIC_DRAW
}

func glTopology(t gpu.Topology) uint32 {
	if t == gpu.Triangles {
		return gl.TRIANGLES
	}
	return gl.TRIANGLE_STRIP
}

func glCapability(cp gpu.Capability) uint32 {
	switch cp {
	case gpu.CullFace:
		return gl.CULL_FACE
	case gpu.Blend:
		return gl.BLEND
	}
	return gl.DEPTH_TEST
}
