package graphics

import (
	"spritegl/internal/gpu"
	"spritegl/internal/profiling"
)

// Drawable is geometry a Shader can bind and draw. Slots that report false
// are not part of the layout.
type Drawable interface {
	Topology() gpu.Topology
	Position() (VertexAttribute, bool)
	Color() (VertexAttribute, bool)
	TexCoord() (VertexAttribute, bool)
	VertexCount() int
	VertexArray() gpu.VertexArray
	// VertexBuffer is the buffer the attribute pointers refer to.
	VertexBuffer() gpu.Buffer
}

func transfer(ctx gpu.Context, vao gpu.VertexArray, buf gpu.Buffer, data []float32, usage gpu.Usage) {
	ctx.BindVertexArray(vao)
	ctx.BindBuffer(buf)
	ctx.BufferData(data, usage)
	ctx.BindVertexArray(0)
	profiling.Count("graphics.BufferData", 1)
}

// Primitive owns a vertex array and buffer uploaded once at creation.
type Primitive struct {
	gl       *GL
	vao      gpu.VertexArray
	buf      gpu.Buffer
	topology gpu.Topology
	format   VertexFormat
	count    int
	released bool
}

func NewPrimitive(g *GL, src VertexSource) (*Primitive, error) {
	if err := CheckVertexSource(src); err != nil {
		return nil, err
	}
	ctx := g.ctx
	vao := ctx.CreateVertexArray()
	if vao == 0 {
		logger.Warn("vertex array allocation refused")
		return nil, &ResourceCreationError{Resource: "vertex array"}
	}
	buf := ctx.CreateBuffer()
	if buf == 0 {
		ctx.DeleteVertexArray(vao)
		logger.Warn("buffer allocation refused")
		return nil, &ResourceCreationError{Resource: "buffer"}
	}
	transfer(ctx, vao, buf, src.Floats(), gpu.StaticDraw)

	return &Primitive{
		gl:       g,
		vao:      vao,
		buf:      buf,
		topology: src.Topology(),
		format:   src.Format(),
		count:    src.VertexCount(),
	}, nil
}

func (p *Primitive) Topology() gpu.Topology            { return p.topology }
func (p *Primitive) Position() (VertexAttribute, bool) { return p.format.Position() }
func (p *Primitive) Color() (VertexAttribute, bool)    { return p.format.Color() }
func (p *Primitive) TexCoord() (VertexAttribute, bool) { return p.format.TexCoord() }
func (p *Primitive) VertexCount() int                  { return p.count }
func (p *Primitive) VertexArray() gpu.VertexArray      { return p.vao }
func (p *Primitive) VertexBuffer() gpu.Buffer          { return p.buf }

// Release deletes the vertex array and buffer. Safe to call more than once.
func (p *Primitive) Release() {
	if p.released {
		return
	}
	p.released = true
	p.gl.ctx.DeleteVertexArray(p.vao)
	p.gl.ctx.DeleteBuffer(p.buf)
}

// VertexStream owns one vertex array and buffer that are refilled for every
// Transfer. It trades allocations for uploads when geometry changes every
// frame.
type VertexStream struct {
	gl       *GL
	vao      gpu.VertexArray
	buf      gpu.Buffer
	released bool
}

func NewVertexStream(g *GL) (*VertexStream, error) {
	ctx := g.ctx
	buf := ctx.CreateBuffer()
	if buf == 0 {
		return nil, &ResourceCreationError{Resource: "buffer"}
	}
	vao := ctx.CreateVertexArray()
	if vao == 0 {
		ctx.DeleteBuffer(buf)
		return nil, &ResourceCreationError{Resource: "vertex array"}
	}
	return &VertexStream{gl: g, vao: vao, buf: buf}, nil
}

// Transfer replaces the stream contents with src. Primitives returned by
// earlier calls now describe the new contents' storage, so only the latest
// one should be drawn. Panics with ErrStreamReleased after Release.
func (s *VertexStream) Transfer(src VertexSource) (*EphemeralPrimitive, error) {
	if s.released {
		panic(ErrStreamReleased)
	}
	if err := CheckVertexSource(src); err != nil {
		return nil, err
	}
	transfer(s.gl.ctx, s.vao, s.buf, src.Floats(), gpu.DynamicDraw)
	return &EphemeralPrimitive{
		stream:   s,
		topology: src.Topology(),
		format:   src.Format(),
		count:    src.VertexCount(),
	}, nil
}

// Release deletes the vertex array and buffer. Safe to call more than once.
func (s *VertexStream) Release() {
	if s.released {
		return
	}
	s.released = true
	s.gl.ctx.DeleteVertexArray(s.vao)
	s.gl.ctx.DeleteBuffer(s.buf)
}

// EphemeralPrimitive borrows its stream's objects. It never deletes them.
type EphemeralPrimitive struct {
	stream   *VertexStream
	topology gpu.Topology
	format   VertexFormat
	count    int
}

func (e *EphemeralPrimitive) Topology() gpu.Topology            { return e.topology }
func (e *EphemeralPrimitive) Position() (VertexAttribute, bool) { return e.format.Position() }
func (e *EphemeralPrimitive) Color() (VertexAttribute, bool)    { return e.format.Color() }
func (e *EphemeralPrimitive) TexCoord() (VertexAttribute, bool) { return e.format.TexCoord() }
func (e *EphemeralPrimitive) VertexCount() int                  { return e.count }

func (e *EphemeralPrimitive) VertexArray() gpu.VertexArray {
	e.check()
	return e.stream.vao
}

func (e *EphemeralPrimitive) VertexBuffer() gpu.Buffer {
	e.check()
	return e.stream.buf
}

func (e *EphemeralPrimitive) check() {
	if e.stream.released {
		panic(ErrStreamReleased)
	}
}
