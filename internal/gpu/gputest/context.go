// Package gputest provides a recording gpu.Context for tests. It keeps
// per-kind create/delete counts, the bound state of the context, every draw
// with a snapshot of the state it used, and can be told to refuse
// allocations or fail compiles and links.
package gputest

import (
	"fmt"
	"maps"
	"regexp"
	"slices"

	"spritegl/internal/gpu"
)

// Kind names a GPU object type.
type Kind string

const (
	Buffer       Kind = "buffer"
	VertexArray  Kind = "vertex array"
	Texture      Kind = "texture"
	Renderbuffer Kind = "renderbuffer"
	Framebuffer  Kind = "framebuffer"
	Shader       Kind = "shader"
	Program      Kind = "program"
)

// AttribPointer is a recorded VertexAttribPointer call.
type AttribPointer struct {
	Size, Stride, Offset int
	Buffer               gpu.Buffer
	Enabled              bool
}

// Draw is a recorded DrawArrays call with the state it was issued under.
type Draw struct {
	Mode        gpu.Topology
	First       int
	Count       int
	Program     gpu.Program
	VertexArray gpu.VertexArray
	Texture     gpu.Texture
	Framebuffer gpu.Framebuffer
	// Data is a copy of the array buffer attached to the vertex array.
	Data     []float32
	Attribs  map[string]AttribPointer
	Uniforms map[string]any
	Enabled  map[gpu.Capability]bool
}

type program struct {
	shaders  []gpu.Shader
	attribs  []string
	uniforms []string
	linked   bool
	log      string
	values   map[string]any
}

type shader struct {
	stage    gpu.ShaderStage
	source   string
	compiled bool
	log      string
}

var (
	inputDecl   = regexp.MustCompile(`(?m)^\s*(?:layout\s*\([^)]*\)\s*)?in\s+\w+\s+(\w+)\s*;`)
	uniformDecl = regexp.MustCompile(`(?m)^\s*uniform\s+\w+\s+(\w+)\s*;`)
)

// Context is a recording gpu.Context. The zero value is not usable, call New.
type Context struct {
	// Refuse makes Create calls of the kind return the zero handle.
	Refuse map[Kind]bool
	// CompileErrors makes compiles of the stage fail with the given log.
	CompileErrors map[gpu.ShaderStage]string
	// LinkError, when set, makes LinkProgram fail with this log.
	LinkError string
	// Incomplete makes FramebufferComplete report false.
	Incomplete bool
	Extensions map[string]bool

	Created map[Kind]int
	Deleted map[Kind]int
	// Misuse collects calls on unknown, deleted or unbound objects.
	Misuse []string
	Calls  []string
	Draws  []Draw

	next     uint32
	live     map[Kind]map[uint32]bool
	buffers  map[gpu.Buffer][]float32
	vaos     map[gpu.VertexArray]map[gpu.AttribLocation]AttribPointer
	programs map[gpu.Program]*program
	shaders  map[gpu.Shader]*shader
	textures map[gpu.Texture][2]int

	Program     gpu.Program
	VertexArray gpu.VertexArray
	Buffer      gpu.Buffer
	Texture     gpu.Texture
	Framebuffer gpu.Framebuffer
	ActiveUnit  int
	Enabled     map[gpu.Capability]bool
	ClearValues struct {
		Color   [4]float32
		Depth   float32
		Stencil int32
	}
	Cleared      []gpu.ClearMask
	ViewportRect [4]int
}

var _ gpu.Context = (*Context)(nil)

// New returns a context that supports gpu.ColorBufferFloat.
func New() *Context {
	return &Context{
		Refuse:        make(map[Kind]bool),
		CompileErrors: make(map[gpu.ShaderStage]string),
		Extensions:    map[string]bool{gpu.ColorBufferFloat: true},
		Created:       make(map[Kind]int),
		Deleted:       make(map[Kind]int),
		live:          make(map[Kind]map[uint32]bool),
		buffers:       make(map[gpu.Buffer][]float32),
		vaos:          make(map[gpu.VertexArray]map[gpu.AttribLocation]AttribPointer),
		programs:      make(map[gpu.Program]*program),
		shaders:       make(map[gpu.Shader]*shader),
		textures:      make(map[gpu.Texture][2]int),
		Enabled:       make(map[gpu.Capability]bool),
	}
}

// Live returns how many objects of kind were created and not yet deleted.
func (c *Context) Live(kind Kind) int {
	return len(c.live[kind])
}

// Leaks returns the kinds with live objects.
func (c *Context) Leaks() map[Kind]int {
	out := make(map[Kind]int)
	for k, set := range c.live {
		if len(set) > 0 {
			out[k] = len(set)
		}
	}
	return out
}

// BufferContents returns a copy of b's contents.
func (c *Context) BufferContents(b gpu.Buffer) []float32 {
	return slices.Clone(c.buffers[b])
}

// TextureSize returns the storage size allocated for t.
func (c *Context) TextureSize(t gpu.Texture) (int, int) {
	s := c.textures[t]
	return s[0], s[1]
}

func (c *Context) record(format string, args ...any) {
	c.Calls = append(c.Calls, fmt.Sprintf(format, args...))
}

func (c *Context) misuse(format string, args ...any) {
	c.Misuse = append(c.Misuse, fmt.Sprintf(format, args...))
}

func (c *Context) create(kind Kind) uint32 {
	if c.Refuse[kind] {
		c.record("Create %s refused", kind)
		return 0
	}
	c.next++
	id := c.next
	if c.live[kind] == nil {
		c.live[kind] = make(map[uint32]bool)
	}
	c.live[kind][id] = true
	c.Created[kind]++
	c.record("Create %s %d", kind, id)
	return id
}

func (c *Context) delete(kind Kind, id uint32) bool {
	if id == 0 {
		return false
	}
	if !c.live[kind][id] {
		c.misuse("delete of unknown or deleted %s %d", kind, id)
		return false
	}
	delete(c.live[kind], id)
	c.Deleted[kind]++
	c.record("Delete %s %d", kind, id)
	return true
}

func (c *Context) isLive(kind Kind, id uint32) bool {
	return c.live[kind][id]
}

func (c *Context) CreateBuffer() gpu.Buffer { return gpu.Buffer(c.create(Buffer)) }

func (c *Context) DeleteBuffer(b gpu.Buffer) {
	if c.delete(Buffer, uint32(b)) {
		delete(c.buffers, b)
		if c.Buffer == b {
			c.Buffer = 0
		}
	}
}

func (c *Context) BindBuffer(b gpu.Buffer) {
	if b != 0 && !c.isLive(Buffer, uint32(b)) {
		c.misuse("bind of dead buffer %d", b)
	}
	c.Buffer = b
	c.record("BindBuffer %d", b)
}

func (c *Context) BufferData(data []float32, usage gpu.Usage) {
	if c.Buffer == 0 {
		c.misuse("BufferData with no buffer bound")
		return
	}
	c.buffers[c.Buffer] = slices.Clone(data)
	c.record("BufferData %d floats", len(data))
}

func (c *Context) CreateVertexArray() gpu.VertexArray {
	return gpu.VertexArray(c.create(VertexArray))
}

func (c *Context) DeleteVertexArray(v gpu.VertexArray) {
	if c.delete(VertexArray, uint32(v)) {
		delete(c.vaos, v)
		if c.VertexArray == v {
			c.VertexArray = 0
		}
	}
}

func (c *Context) BindVertexArray(v gpu.VertexArray) {
	if v != 0 && !c.isLive(VertexArray, uint32(v)) {
		c.misuse("bind of dead vertex array %d", v)
	}
	c.VertexArray = v
	c.record("BindVertexArray %d", v)
}

func (c *Context) VertexAttribPointer(loc gpu.AttribLocation, size, stride, offset int) {
	if c.VertexArray == 0 {
		c.misuse("VertexAttribPointer with no vertex array bound")
		return
	}
	if c.vaos[c.VertexArray] == nil {
		c.vaos[c.VertexArray] = make(map[gpu.AttribLocation]AttribPointer)
	}
	p := c.vaos[c.VertexArray][loc]
	p.Size, p.Stride, p.Offset, p.Buffer = size, stride, offset, c.Buffer
	c.vaos[c.VertexArray][loc] = p
	c.record("VertexAttribPointer %d size=%d stride=%d offset=%d", loc, size, stride, offset)
}

func (c *Context) EnableVertexAttribArray(loc gpu.AttribLocation) {
	if c.VertexArray == 0 {
		c.misuse("EnableVertexAttribArray with no vertex array bound")
		return
	}
	if c.vaos[c.VertexArray] == nil {
		c.vaos[c.VertexArray] = make(map[gpu.AttribLocation]AttribPointer)
	}
	p := c.vaos[c.VertexArray][loc]
	p.Enabled = true
	c.vaos[c.VertexArray][loc] = p
	c.record("EnableVertexAttribArray %d", loc)
}

func (c *Context) CreateTexture() gpu.Texture { return gpu.Texture(c.create(Texture)) }

func (c *Context) DeleteTexture(t gpu.Texture) {
	if c.delete(Texture, uint32(t)) {
		delete(c.textures, t)
		if c.Texture == t {
			c.Texture = 0
		}
	}
}

func (c *Context) BindTexture(t gpu.Texture) {
	if t != 0 && !c.isLive(Texture, uint32(t)) {
		c.misuse("bind of dead texture %d", t)
	}
	c.Texture = t
	c.record("BindTexture %d", t)
}

func (c *Context) ActiveTexture(unit int) {
	c.ActiveUnit = unit
	c.record("ActiveTexture %d", unit)
}

func (c *Context) TexImage2D(width, height int, format gpu.TextureFormat, pixels []byte) {
	if c.Texture == 0 {
		c.misuse("TexImage2D with no texture bound")
		return
	}
	if format == gpu.RGBA8 && pixels != nil && len(pixels) != width*height*4 {
		c.misuse("TexImage2D %dx%d with %d bytes", width, height, len(pixels))
	}
	c.textures[c.Texture] = [2]int{width, height}
	c.record("TexImage2D %dx%d format=%d", width, height, format)
}

func (c *Context) TexFilter(filter gpu.Filter) {
	c.record("TexFilter %d", filter)
}

func (c *Context) CreateRenderbuffer() gpu.Renderbuffer {
	return gpu.Renderbuffer(c.create(Renderbuffer))
}

func (c *Context) DeleteRenderbuffer(r gpu.Renderbuffer) { c.delete(Renderbuffer, uint32(r)) }

func (c *Context) BindRenderbuffer(r gpu.Renderbuffer) {
	c.record("BindRenderbuffer %d", r)
}

func (c *Context) RenderbufferDepthStencil(width, height int) {
	c.record("RenderbufferDepthStencil %dx%d", width, height)
}

func (c *Context) CreateFramebuffer() gpu.Framebuffer {
	return gpu.Framebuffer(c.create(Framebuffer))
}

func (c *Context) DeleteFramebuffer(f gpu.Framebuffer) {
	if c.delete(Framebuffer, uint32(f)) && c.Framebuffer == f {
		c.Framebuffer = 0
	}
}

func (c *Context) BindFramebuffer(f gpu.Framebuffer) {
	if f != 0 && !c.isLive(Framebuffer, uint32(f)) {
		c.misuse("bind of dead framebuffer %d", f)
	}
	c.Framebuffer = f
	c.record("BindFramebuffer %d", f)
}

func (c *Context) FramebufferTexture(t gpu.Texture) {
	c.record("FramebufferTexture %d", t)
}

func (c *Context) FramebufferRenderbuffer(r gpu.Renderbuffer) {
	c.record("FramebufferRenderbuffer %d", r)
}

func (c *Context) FramebufferComplete() bool { return !c.Incomplete }

func (c *Context) CreateShader(stage gpu.ShaderStage) gpu.Shader {
	s := gpu.Shader(c.create(Shader))
	if s != 0 {
		c.shaders[s] = &shader{stage: stage}
	}
	return s
}

func (c *Context) DeleteShader(s gpu.Shader) {
	if c.delete(Shader, uint32(s)) {
		delete(c.shaders, s)
	}
}

func (c *Context) ShaderSource(s gpu.Shader, source string) {
	sh, ok := c.shaders[s]
	if !ok {
		c.misuse("ShaderSource on unknown shader %d", s)
		return
	}
	sh.source = source
}

func (c *Context) CompileShader(s gpu.Shader) {
	sh, ok := c.shaders[s]
	if !ok {
		c.misuse("CompileShader on unknown shader %d", s)
		return
	}
	if msg, fail := c.CompileErrors[sh.stage]; fail {
		sh.compiled, sh.log = false, msg
		return
	}
	sh.compiled = true
}

func (c *Context) ShaderCompiled(s gpu.Shader) bool {
	sh, ok := c.shaders[s]
	return ok && sh.compiled
}

func (c *Context) ShaderInfoLog(s gpu.Shader) string {
	if sh, ok := c.shaders[s]; ok {
		return sh.log
	}
	return ""
}

func (c *Context) CreateProgram() gpu.Program {
	p := gpu.Program(c.create(Program))
	if p != 0 {
		c.programs[p] = &program{values: make(map[string]any)}
	}
	return p
}

func (c *Context) DeleteProgram(p gpu.Program) {
	if c.delete(Program, uint32(p)) {
		delete(c.programs, p)
		if c.Program == p {
			c.Program = 0
		}
	}
}

func (c *Context) AttachShader(p gpu.Program, s gpu.Shader) {
	pr, ok := c.programs[p]
	if !ok || !c.isLive(Shader, uint32(s)) {
		c.misuse("AttachShader %d to %d", s, p)
		return
	}
	pr.shaders = append(pr.shaders, s)
}

// LinkProgram collects the program's inputs from the vertex stage's `in`
// declarations and its uniforms from every stage.
func (c *Context) LinkProgram(p gpu.Program) {
	pr, ok := c.programs[p]
	if !ok {
		c.misuse("LinkProgram on unknown program %d", p)
		return
	}
	if c.LinkError != "" {
		pr.linked, pr.log = false, c.LinkError
		return
	}
	pr.attribs, pr.uniforms = nil, nil
	for _, s := range pr.shaders {
		sh := c.shaders[s]
		if sh == nil || !sh.compiled {
			pr.linked, pr.log = false, fmt.Sprintf("shader %d not compiled", s)
			return
		}
		if sh.stage == gpu.VertexStage {
			for _, m := range inputDecl.FindAllStringSubmatch(sh.source, -1) {
				pr.attribs = append(pr.attribs, m[1])
			}
		}
		for _, m := range uniformDecl.FindAllStringSubmatch(sh.source, -1) {
			if !slices.Contains(pr.uniforms, m[1]) {
				pr.uniforms = append(pr.uniforms, m[1])
			}
		}
	}
	pr.linked = true
}

func (c *Context) ProgramLinked(p gpu.Program) bool {
	pr, ok := c.programs[p]
	return ok && pr.linked
}

func (c *Context) ProgramInfoLog(p gpu.Program) string {
	if pr, ok := c.programs[p]; ok {
		return pr.log
	}
	return ""
}

func (c *Context) UseProgram(p gpu.Program) {
	if p != 0 {
		pr, ok := c.programs[p]
		if !ok || !pr.linked {
			c.misuse("UseProgram on unlinked program %d", p)
		}
	}
	c.Program = p
	c.record("UseProgram %d", p)
}

func (c *Context) AttribLocation(p gpu.Program, name string) gpu.AttribLocation {
	pr, ok := c.programs[p]
	if !ok {
		c.misuse("AttribLocation on unknown program %d", p)
		return -1
	}
	return gpu.AttribLocation(slices.Index(pr.attribs, name))
}

func (c *Context) UniformLocation(p gpu.Program, name string) gpu.UniformLocation {
	pr, ok := c.programs[p]
	if !ok {
		c.misuse("UniformLocation on unknown program %d", p)
		return -1
	}
	return gpu.UniformLocation(slices.Index(pr.uniforms, name))
}

func (c *Context) setUniform(loc gpu.UniformLocation, v any) {
	if !loc.Found() {
		return
	}
	pr, ok := c.programs[c.Program]
	if !ok {
		c.misuse("uniform upload with no program bound")
		return
	}
	if int(loc) >= len(pr.uniforms) {
		c.misuse("uniform location %d out of range", loc)
		return
	}
	name := pr.uniforms[loc]
	pr.values[name] = v
	c.record("Uniform %s", name)
}

func (c *Context) UniformMatrix4(loc gpu.UniformLocation, rowMajor *[16]float32) {
	c.setUniform(loc, *rowMajor)
}

func (c *Context) Uniform1i(loc gpu.UniformLocation, v int32) {
	c.setUniform(loc, v)
}

func (c *Context) Uniform4f(loc gpu.UniformLocation, x, y, z, w float32) {
	c.setUniform(loc, [4]float32{x, y, z, w})
}

// UniformValue returns the last value uploaded to the named uniform of p.
func (c *Context) UniformValue(p gpu.Program, name string) (any, bool) {
	pr, ok := c.programs[p]
	if !ok {
		return nil, false
	}
	v, ok := pr.values[name]
	return v, ok
}

func (c *Context) DrawArrays(mode gpu.Topology, first, count int) {
	if c.Program == 0 {
		c.misuse("DrawArrays with no program bound")
	}
	if c.VertexArray == 0 {
		c.misuse("DrawArrays with no vertex array bound")
	}
	d := Draw{
		Mode:        mode,
		First:       first,
		Count:       count,
		Program:     c.Program,
		VertexArray: c.VertexArray,
		Texture:     c.Texture,
		Framebuffer: c.Framebuffer,
		Attribs:     make(map[string]AttribPointer),
		Enabled:     maps.Clone(c.Enabled),
	}
	if pr, ok := c.programs[c.Program]; ok {
		d.Uniforms = maps.Clone(pr.values)
		for loc, ptr := range c.vaos[c.VertexArray] {
			if int(loc) < len(pr.attribs) {
				d.Attribs[pr.attribs[loc]] = ptr
			}
			if d.Data == nil {
				d.Data = slices.Clone(c.buffers[ptr.Buffer])
			}
		}
	}
	c.Draws = append(c.Draws, d)
	c.record("DrawArrays %s %d %d", mode, first, count)
}

func (c *Context) ClearColor(r, g, b, a float32) {
	c.ClearValues.Color = [4]float32{r, g, b, a}
}

func (c *Context) ClearDepth(d float32) { c.ClearValues.Depth = d }

func (c *Context) ClearStencil(s int32) { c.ClearValues.Stencil = s }

func (c *Context) Clear(mask gpu.ClearMask) {
	c.Cleared = append(c.Cleared, mask)
	c.record("Clear %d framebuffer=%d", mask, c.Framebuffer)
}

func (c *Context) Enable(cp gpu.Capability) {
	c.Enabled[cp] = true
	c.record("Enable %s", cp)
}

func (c *Context) Disable(cp gpu.Capability) {
	c.Enabled[cp] = false
	c.record("Disable %s", cp)
}

func (c *Context) BlendAlpha() { c.record("BlendAlpha") }

func (c *Context) Viewport(x, y, width, height int) {
	c.ViewportRect = [4]int{x, y, width, height}
	c.record("Viewport %d %d %d %d", x, y, width, height)
}

func (c *Context) Finish() { c.record("Finish") }

func (c *Context) HasExtension(name string) bool { return c.Extensions[name] }
