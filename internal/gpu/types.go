package gpu

import "fmt"

// Topology is the primitive assembly mode of a non-indexed draw.
type Topology int

const (
	TriangleStrip Topology = iota
	Triangles
)

func (t Topology) String() string {
	switch t {
	case TriangleStrip:
		return "triangle-strip"
	case Triangles:
		return "triangles"
	}
	return fmt.Sprintf("Topology(%d)", int(t))
}

// ShaderStage identifies a programmable pipeline stage.
type ShaderStage int

const (
	VertexStage ShaderStage = iota
	FragmentStage
)

func (s ShaderStage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	}
	return fmt.Sprintf("ShaderStage(%d)", int(s))
}

// Capability is a fixed-function state toggle.
type Capability int

const (
	DepthTest Capability = iota
	CullFace
	Blend
)

func (c Capability) String() string {
	switch c {
	case DepthTest:
		return "depth-test"
	case CullFace:
		return "cull-face"
	case Blend:
		return "blend"
	}
	return fmt.Sprintf("Capability(%d)", int(c))
}

// ClearMask selects the buffers Clear resets.
type ClearMask uint32

const (
	ColorBuffer ClearMask = 1 << iota
	DepthBuffer
	StencilBuffer
)

// Usage hints how often buffer contents change.
type Usage int

const (
	StaticDraw Usage = iota
	DynamicDraw
)

// TextureFormat is the internal storage format of a texture.
type TextureFormat int

const (
	// RGBA8 stores 8-bit normalized channels; uploads are 4 bytes per pixel.
	RGBA8 TextureFormat = iota
	// RGBA32F stores 32-bit float channels. Uploads are not supported,
	// it is used for render target color attachments.
	RGBA32F
)

// Filter selects texture sampling.
type Filter int

const (
	Nearest Filter = iota
	Linear
)

// ColorBufferFloat is the capability required to render into RGBA32F
// color attachments.
const ColorBufferFloat = "EXT_color_buffer_float"
