// Package sprite draws batches of textured screen-space rectangles with one
// draw call per run of matching adds.
package sprite

import (
	"fmt"

	"spritegl/internal/gpu"
	"spritegl/internal/graphics"
	"spritegl/internal/linalg"
	"spritegl/internal/profiling"
)

const (
	vertexSource = `#version 410 core
in vec4 position;
in vec2 textureCoord;
uniform mat4 mvp;
out vec2 vTextureCoord;
void main() {
	gl_Position = mvp * vec4(position.xy, 0.0, 1.0);
	vTextureCoord = textureCoord;
}
`
	fragmentSource = `#version 410 core
in vec2 vTextureCoord;
uniform sampler2D texture0;
out vec4 outColor;
void main() {
	outColor = texture(texture0, vTextureCoord);
}
`
)

// Sprite owns the sprite program and the stream every batch is replayed
// through.
type Sprite struct {
	gl         *graphics.GL
	shader     *graphics.Shader
	stream     *graphics.VertexStream
	screenSize linalg.Size
}

func New(g *graphics.GL, screenSize linalg.Size) (*Sprite, error) {
	shader, err := graphics.NewShader(g, vertexSource, fragmentSource)
	if err != nil {
		return nil, fmt.Errorf("sprite shader: %w", err)
	}
	stream, err := graphics.NewVertexStream(g)
	if err != nil {
		shader.Release()
		return nil, fmt.Errorf("sprite stream: %w", err)
	}
	return &Sprite{gl: g, shader: shader, stream: stream, screenSize: screenSize}, nil
}

// Normalizer maps pixel coordinates with a top-left origin to clip space:
// (0, 0) to (-1, 1) and (W, H) to (1, -1). Z is dropped.
func Normalizer(size linalg.Size) linalg.Matrix4 {
	w, h := float32(size.W), float32(size.H)
	return linalg.NewMatrix4(
		2/w, 0, 0, -1,
		0, -2/h, 0, 1,
		0, 0, 0, 0,
		0, 0, 0, 1,
	)
}

func (s *Sprite) SetScreenSize(size linalg.Size) { s.screenSize = size }

func (s *Sprite) ScreenSize() linalg.Size { return s.screenSize }

// Draw replays b onto the bound target, one draw call per command, with
// depth testing and culling disabled. The batch is spent afterwards. Nothing
// is drawn while the screen size is empty.
func (s *Sprite) Draw(b *Batch) (int, error) {
	defer profiling.Track("sprite.Draw")()
	if b.spent {
		return 0, ErrBatchSpent
	}
	commands := b.commands
	b.spent, b.commands = true, nil
	if s.screenSize.Empty() {
		return 0, nil
	}

	ctx := s.gl.Context()
	ctx.Disable(gpu.DepthTest)
	ctx.Disable(gpu.CullFace)
	transform := Normalizer(s.screenSize)

	calls := 0
	for _, cmd := range commands {
		obj, err := s.stream.Transfer(graphics.TexturedList(cmd.Vertices))
		if err != nil {
			return calls, err
		}
		if err := s.shader.EnableVertexAttribute(obj); err != nil {
			return calls, err
		}

		ctx.ActiveTexture(0)
		ctx.BindTexture(cmd.Texture)
		s.shader.Use(func() {
			s.shader.SetUniformModelViewPerspective(transform)
			s.shader.SetUniformTexture(0)
			s.shader.Draw(obj)
		})
		ctx.BindTexture(0)
		calls++
	}
	profiling.Count("sprite.DrawCalls", calls)
	return calls, nil
}

// Release deletes the program and the stream.
func (s *Sprite) Release() {
	s.stream.Release()
	s.shader.Release()
}
