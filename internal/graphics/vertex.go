package graphics

import (
	"fmt"

	"spritegl/internal/gpu"
	"spritegl/internal/linalg"
)

const floatSize = 4

// VertexAttribute locates one attribute inside a vertex buffer. Offset and
// Stride are in bytes, Size in float components. A zero stride means tightly
// packed.
type VertexAttribute struct {
	Offset int
	Size   int
	Stride int
}

// VertexFormat is one of the supported interleaved layouts.
type VertexFormat int

const (
	// FormatColored is position xyz followed by color rgba.
	FormatColored VertexFormat = iota
	// FormatTextured is position xyz followed by texture coordinate uv.
	FormatTextured
	// FormatPosition is bare, tightly packed position xyz.
	FormatPosition
)

func (f VertexFormat) String() string {
	switch f {
	case FormatColored:
		return "colored"
	case FormatTextured:
		return "textured"
	case FormatPosition:
		return "position"
	}
	return fmt.Sprintf("VertexFormat(%d)", int(f))
}

func (f VertexFormat) FloatsPerVertex() int {
	switch f {
	case FormatColored:
		return 7
	case FormatTextured:
		return 5
	default:
		return 3
	}
}

func (f VertexFormat) Position() (VertexAttribute, bool) {
	switch f {
	case FormatColored:
		return VertexAttribute{Offset: 0, Size: 3, Stride: 28}, true
	case FormatTextured:
		return VertexAttribute{Offset: 0, Size: 3, Stride: 20}, true
	default:
		return VertexAttribute{Offset: 0, Size: 3, Stride: 0}, true
	}
}

func (f VertexFormat) Color() (VertexAttribute, bool) {
	if f == FormatColored {
		return VertexAttribute{Offset: 3 * floatSize, Size: 4, Stride: 28}, true
	}
	return VertexAttribute{}, false
}

func (f VertexFormat) TexCoord() (VertexAttribute, bool) {
	if f == FormatTextured {
		return VertexAttribute{Offset: 3 * floatSize, Size: 2, Stride: 20}, true
	}
	return VertexAttribute{}, false
}

// ColoredVertex is one FormatColored vertex.
type ColoredVertex struct {
	Position linalg.Vector3
	Color    linalg.Vector4
}

func (v ColoredVertex) AppendFloats(dst []float32) []float32 {
	p, c := v.Position, v.Color
	return append(dst, p.X, p.Y, p.Z, c.X, c.Y, c.Z, c.W)
}

// TexturedVertex is one FormatTextured vertex.
type TexturedVertex struct {
	Position linalg.Vector3
	UV       linalg.Vector2
}

func (v TexturedVertex) AppendFloats(dst []float32) []float32 {
	p := v.Position
	return append(dst, p.X, p.Y, p.Z, v.UV.X, v.UV.Y)
}

// VertexSource supplies vertex data to upload together with its layout.
type VertexSource interface {
	Topology() gpu.Topology
	Format() VertexFormat
	Floats() []float32
	VertexCount() int
}

// CheckVertexSource reports ErrLayoutMismatch when the float data does not
// hold exactly VertexCount vertices of the source's format.
func CheckVertexSource(src VertexSource) error {
	want := src.VertexCount() * src.Format().FloatsPerVertex()
	if got := len(src.Floats()); got != want {
		return fmt.Errorf("%w: %s source has %d floats for %d vertices, want %d",
			ErrLayoutMismatch, src.Format(), got, src.VertexCount(), want)
	}
	return nil
}

// ColoredStrip is a triangle strip of colored vertices.
type ColoredStrip []ColoredVertex

func (s ColoredStrip) Topology() gpu.Topology { return gpu.TriangleStrip }
func (s ColoredStrip) Format() VertexFormat   { return FormatColored }
func (s ColoredStrip) VertexCount() int       { return len(s) }

func (s ColoredStrip) Floats() []float32 {
	out := make([]float32, 0, len(s)*FormatColored.FloatsPerVertex())
	for _, v := range s {
		out = v.AppendFloats(out)
	}
	return out
}

// TexturedStrip is a triangle strip of textured vertices.
type TexturedStrip []TexturedVertex

func (s TexturedStrip) Topology() gpu.Topology { return gpu.TriangleStrip }
func (s TexturedStrip) Format() VertexFormat   { return FormatTextured }
func (s TexturedStrip) VertexCount() int       { return len(s) }
func (s TexturedStrip) Floats() []float32      { return texturedFloats(s) }

// TexturedList is a flat triangle list of textured vertices.
type TexturedList []TexturedVertex

func (s TexturedList) Topology() gpu.Topology { return gpu.Triangles }
func (s TexturedList) Format() VertexFormat   { return FormatTextured }
func (s TexturedList) VertexCount() int       { return len(s) }
func (s TexturedList) Floats() []float32      { return texturedFloats(s) }

func texturedFloats(vs []TexturedVertex) []float32 {
	out := make([]float32, 0, len(vs)*FormatTextured.FloatsPerVertex())
	for _, v := range vs {
		out = v.AppendFloats(out)
	}
	return out
}

// PositionStrip is a triangle strip of raw xyz floats.
type PositionStrip []float32

func (s PositionStrip) Topology() gpu.Topology { return gpu.TriangleStrip }
func (s PositionStrip) Format() VertexFormat   { return FormatPosition }
func (s PositionStrip) VertexCount() int       { return len(s) / 3 }
func (s PositionStrip) Floats() []float32      { return s }
