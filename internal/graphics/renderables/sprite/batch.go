package sprite

import (
	"errors"

	"spritegl/internal/gpu"
	"spritegl/internal/graphics"
	"spritegl/internal/linalg"
)

// ErrBatchSpent is returned by Sprite.Draw, and is the panic value of
// Batch.Add, once a batch has been drawn.
var ErrBatchSpent = errors.New("sprite batch already drawn")

// VerticesPerRect is the number of vertices one Add contributes.
const VerticesPerRect = 6

// Command is one draw call: every rectangle in a run of adds sharing a
// texture and source rectangle.
type Command struct {
	Texture  gpu.Texture
	Source   linalg.Vector4
	Vertices []graphics.TexturedVertex
}

// Batch accumulates textured rectangles for a single Sprite.Draw. Build a
// new one every frame.
type Batch struct {
	commands []Command
	spent    bool
}

func NewBatch() *Batch {
	return &Batch{}
}

// Add queues the source rectangle of tex, given in UV space as
// (u1, v1, u2, v2), to be drawn into dst, given in pixels with a top-left
// origin. It extends the last command when texture and source both match,
// otherwise it starts a new one, so submission order is draw order.
func (b *Batch) Add(tex gpu.Texture, source linalg.Vector4, dst linalg.Rectangle) {
	if b.spent {
		panic(ErrBatchSpent)
	}
	if n := len(b.commands); n > 0 {
		last := &b.commands[n-1]
		if last.Texture == tex && last.Source == source {
			last.Vertices = appendRect(last.Vertices, source, dst)
			return
		}
	}
	b.commands = append(b.commands, Command{
		Texture:  tex,
		Source:   source,
		Vertices: appendRect(make([]graphics.TexturedVertex, 0, VerticesPerRect), source, dst),
	})
}

// Commands returns the queued commands in draw order.
func (b *Batch) Commands() []Command { return b.commands }

// Len returns the number of draw calls the batch will issue.
func (b *Batch) Len() int { return len(b.commands) }

func (b *Batch) Spent() bool { return b.spent }

// appendRect emits two triangles, TL BL TR and BR TR BL. Destination y grows
// downward while v grows upward, so the top edge samples v2. The order is
// counter-clockwise once Normalizer flips y.
func appendRect(v []graphics.TexturedVertex, source linalg.Vector4, dst linalg.Rectangle) []graphics.TexturedVertex {
	x, y := float32(dst.X), float32(dst.Y)
	w, h := float32(dst.W), float32(dst.H)

	tl := linalg.Vec3(x, y, 0)
	tr := linalg.Vec3(x+w, y, 0)
	bl := linalg.Vec3(x, y+h, 0)
	br := linalg.Vec3(x+w, y+h, 0)

	u1, v1, u2, v2 := source.X, source.Y, source.Z, source.W
	stl := linalg.Vec2(u1, v2)
	str := linalg.Vec2(u2, v2)
	sbl := linalg.Vec2(u1, v1)
	sbr := linalg.Vec2(u2, v1)

	return append(v,
		graphics.TexturedVertex{Position: tl, UV: stl},
		graphics.TexturedVertex{Position: bl, UV: sbl},
		graphics.TexturedVertex{Position: tr, UV: str},

		graphics.TexturedVertex{Position: br, UV: sbr},
		graphics.TexturedVertex{Position: tr, UV: str},
		graphics.TexturedVertex{Position: bl, UV: sbl},
	)
}
