package graphics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spritegl/internal/gpu"
	"spritegl/internal/gpu/gputest"
	"spritegl/internal/linalg"
)

const (
	testVertexSrc = `#version 410 core
in vec3 position;
in vec2 textureCoord;
uniform mat4 mvp;
out vec2 vTextureCoord;
void main() {
	gl_Position = mvp * vec4(position, 1.0);
	vTextureCoord = textureCoord;
}
`
	testFragmentSrc = `#version 410 core
in vec2 vTextureCoord;
uniform sampler2D texture0;
uniform vec4 tint;
out vec4 outColor;
void main() {
	outColor = tint * texture(texture0, vTextureCoord);
}
`
)

func TestShaderLifecycle(t *testing.T) {
	g, ctx := newTestGL(t)

	s, err := NewShader(g, testVertexSrc, testFragmentSrc)
	require.NoError(t, err)
	assert.Equal(t, 1, ctx.Live(gputest.Program))
	assert.Equal(t, 2, ctx.Live(gputest.Shader))

	s.Release()
	s.Release()
	assert.Empty(t, ctx.Leaks())
	assert.Empty(t, ctx.Misuse)
	assert.Equal(t, 1, ctx.Deleted[gputest.Program])
	assert.Equal(t, 2, ctx.Deleted[gputest.Shader])
}

func TestShaderCompileErrorCarriesLog(t *testing.T) {
	for _, stage := range []gpu.ShaderStage{gpu.VertexStage, gpu.FragmentStage} {
		t.Run(stage.String(), func(t *testing.T) {
			g, ctx := newTestGL(t)
			ctx.CompileErrors[stage] = "0:3(1): error: syntax error, unexpected '}'"

			_, err := NewShader(g, testVertexSrc, testFragmentSrc)
			var ce *ShaderCompileError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, stage, ce.Stage)
			assert.Equal(t, "0:3(1): error: syntax error, unexpected '}'", ce.Log)
			assert.Empty(t, ctx.Leaks())
		})
	}
}

func TestShaderLinkError(t *testing.T) {
	g, ctx := newTestGL(t)
	ctx.LinkError = "error: vTextureCoord not written by vertex shader"

	_, err := NewShader(g, testVertexSrc, testFragmentSrc)
	var le *ProgramLinkError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ctx.LinkError, le.Log)
	assert.Empty(t, ctx.Leaks())
}

func TestShaderObjectRefused(t *testing.T) {
	g, ctx := newTestGL(t)
	ctx.Refuse[gputest.Program] = true

	_, err := NewShader(g, testVertexSrc, testFragmentSrc)
	var rce *ResourceCreationError
	require.ErrorAs(t, err, &rce)
	assert.Equal(t, "program", rce.Resource)

	ctx.Refuse[gputest.Program] = false
	ctx.Refuse[gputest.Shader] = true
	_, err = NewShader(g, testVertexSrc, testFragmentSrc)
	require.ErrorAs(t, err, &rce)
	assert.Equal(t, "vertex shader", rce.Resource)
	assert.Empty(t, ctx.Leaks())
}

func TestEnableVertexAttributeSkipsMissingInputs(t *testing.T) {
	g, ctx := newTestGL(t)
	s, err := NewShader(g, testVertexSrc, testFragmentSrc)
	require.NoError(t, err)
	defer s.Release()

	// colored geometry through a textured program: color has no input
	p, err := NewPrimitive(g, ColoredStrip{
		{Position: linalg.Vec3(0, 0, 0), Color: linalg.Vec4(1, 0, 0, 1)},
		{Position: linalg.Vec3(1, 0, 0), Color: linalg.Vec4(0, 1, 0, 1)},
		{Position: linalg.Vec3(0, 1, 0), Color: linalg.Vec4(0, 0, 1, 1)},
	})
	require.NoError(t, err)
	defer p.Release()

	require.NoError(t, s.EnableVertexAttribute(p))
	s.Use(func() { s.Draw(p) })

	require.Len(t, ctx.Draws, 1)
	d := ctx.Draws[0]
	assert.Equal(t, gpu.TriangleStrip, d.Mode)
	assert.Equal(t, 3, d.Count)
	assert.Equal(t, s.Program(), d.Program)
	assert.Equal(t, gputest.AttribPointer{Size: 3, Stride: 28, Offset: 0, Buffer: p.VertexBuffer(), Enabled: true}, d.Attribs["position"])
	assert.Len(t, d.Attribs, 1)
	assert.Equal(t, gpu.Program(0), ctx.Program)
	assert.Equal(t, gpu.VertexArray(0), ctx.VertexArray)
	assert.Empty(t, ctx.Misuse)
}

func TestStrictShaderReportsMissingInput(t *testing.T) {
	g, _ := newTestGL(t)
	s, err := NewShaderWithOptions(g, testVertexSrc, testFragmentSrc, ShaderOptions{StrictAttributes: true})
	require.NoError(t, err)
	defer s.Release()

	p, err := NewPrimitive(g, ColoredStrip{{Position: linalg.Vec3(0, 0, 0)}})
	require.NoError(t, err)
	defer p.Release()

	err = s.EnableVertexAttribute(p)
	var mb *MissingBindingError
	require.ErrorAs(t, err, &mb)
	assert.Equal(t, "color", mb.Name)
}

func TestUniforms(t *testing.T) {
	g, ctx := newTestGL(t)
	s, err := NewShader(g, testVertexSrc, testFragmentSrc)
	require.NoError(t, err)
	defer s.Release()

	m := linalg.Translation(1, 2, 3)
	s.Use(func() {
		s.SetUniformModelViewPerspective(m)
		s.SetUniformTexture(0)
		s.SetUniformColor("tint", linalg.Vec4(1, 1, 1, 0.5))
		// absent names are ignored
		s.SetUniformMatrix4("model", m)
		s.SetUniformSamplerUnit("normals", 1)
	})

	v, ok := ctx.UniformValue(s.Program(), "mvp")
	require.True(t, ok)
	assert.Equal(t, [16]float32(m), v)
	v, _ = ctx.UniformValue(s.Program(), "texture0")
	assert.Equal(t, int32(0), v)
	v, _ = ctx.UniformValue(s.Program(), "tint")
	assert.Equal(t, [4]float32{1, 1, 1, 0.5}, v)
	_, ok = ctx.UniformValue(s.Program(), "model")
	assert.False(t, ok)
	assert.Empty(t, ctx.Misuse)
}

func TestAttribLocation(t *testing.T) {
	g, _ := newTestGL(t)
	s, err := NewShader(g, testVertexSrc, testFragmentSrc)
	require.NoError(t, err)
	defer s.Release()

	_, ok := s.AttribLocation("textureCoord")
	assert.True(t, ok)
	_, ok = s.AttribLocation("color")
	assert.False(t, ok)
}
