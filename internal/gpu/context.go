// Package gpu describes the immediate-mode rendering context the graphics
// layer drives. It mirrors the subset of OpenGL 4.1 core / WebGL2 the
// retained wrappers need, so that the wrappers can be exercised against a
// recording context in tests and against go-gl in production (see glctx).
//
// All calls must be issued from the thread that owns the context. Binding
// state (current program, vertex array, texture, framebuffer) is global to
// the context and follows last-write-wins semantics.
package gpu

// Object handles. The zero value of every handle means "none"; a Create call
// returning zero means the driver refused the allocation.
type (
	Buffer       uint32
	VertexArray  uint32
	Texture      uint32
	Renderbuffer uint32
	Framebuffer  uint32
	Shader       uint32
	Program      uint32
)

// AttribLocation is a vertex input binding index. Negative means the name is
// not an active input of the program.
type AttribLocation int32

// UniformLocation is a uniform binding index. Negative means the name is not
// an active uniform of the program.
type UniformLocation int32

// Found reports whether the lookup resolved to an active input.
func (l AttribLocation) Found() bool { return l >= 0 }

// Found reports whether the lookup resolved to an active uniform.
func (l UniformLocation) Found() bool { return l >= 0 }

// Context is a rendering context handle.
type Context interface {
	CreateBuffer() Buffer
	DeleteBuffer(Buffer)
	// BindBuffer binds b as the array buffer; zero unbinds.
	BindBuffer(b Buffer)
	// BufferData replaces the whole contents of the bound array buffer.
	BufferData(data []float32, usage Usage)

	CreateVertexArray() VertexArray
	DeleteVertexArray(VertexArray)
	BindVertexArray(VertexArray)
	// VertexAttribPointer describes float attribute data in the bound
	// buffer; size is in components, stride and offset are in bytes.
	VertexAttribPointer(loc AttribLocation, size, stride, offset int)
	EnableVertexAttribArray(loc AttribLocation)

	CreateTexture() Texture
	DeleteTexture(Texture)
	BindTexture(Texture)
	// ActiveTexture selects the texture unit subsequent BindTexture calls affect.
	ActiveTexture(unit int)
	// TexImage2D allocates storage for the bound 2D texture. pixels may be
	// nil to leave the contents undefined.
	TexImage2D(width, height int, format TextureFormat, pixels []byte)
	// TexFilter sets min/mag filtering and clamps both wrap modes to edge.
	TexFilter(filter Filter)

	CreateRenderbuffer() Renderbuffer
	DeleteRenderbuffer(Renderbuffer)
	BindRenderbuffer(Renderbuffer)
	// RenderbufferDepthStencil allocates combined depth/stencil storage for
	// the bound renderbuffer.
	RenderbufferDepthStencil(width, height int)

	CreateFramebuffer() Framebuffer
	DeleteFramebuffer(Framebuffer)
	// BindFramebuffer makes fb the draw target; zero selects the default
	// presentation surface.
	BindFramebuffer(fb Framebuffer)
	FramebufferTexture(tex Texture)
	FramebufferRenderbuffer(rb Renderbuffer)
	FramebufferComplete() bool

	CreateShader(stage ShaderStage) Shader
	DeleteShader(Shader)
	ShaderSource(s Shader, source string)
	CompileShader(Shader)
	ShaderCompiled(Shader) bool
	ShaderInfoLog(Shader) string

	CreateProgram() Program
	DeleteProgram(Program)
	AttachShader(Program, Shader)
	LinkProgram(Program)
	ProgramLinked(Program) bool
	ProgramInfoLog(Program) string
	// UseProgram makes p current; zero unbinds.
	UseProgram(p Program)
	AttribLocation(p Program, name string) AttribLocation
	UniformLocation(p Program, name string) UniformLocation

	// UniformMatrix4 uploads a row-major matrix to the current program.
	UniformMatrix4(loc UniformLocation, rowMajor *[16]float32)
	Uniform1i(loc UniformLocation, v int32)
	Uniform4f(loc UniformLocation, x, y, z, w float32)

	DrawArrays(mode Topology, first, count int)

	ClearColor(r, g, b, a float32)
	ClearDepth(d float32)
	ClearStencil(s int32)
	Clear(mask ClearMask)
	Enable(Capability)
	Disable(Capability)
	BlendAlpha()
	Viewport(x, y, width, height int)
	Finish()

	HasExtension(name string) bool
}

// Surface reports the current drawable size of the presentation surface in
// pixels.
type Surface interface {
	Size() (width, height int)
}

// SurfaceFunc adapts a function to Surface.
type SurfaceFunc func() (width, height int)

func (f SurfaceFunc) Size() (int, int) { return f() }
