package sprite

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spritegl/internal/gpu"
	"spritegl/internal/gpu/gputest"
	"spritegl/internal/graphics"
	"spritegl/internal/linalg"
)

var full = linalg.Vec4(0, 0, 1, 1)

func newTestSprite(t *testing.T) (*Sprite, *graphics.GL, *gputest.Context) {
	t.Helper()
	ctx := gputest.New()
	g, err := graphics.New(ctx, gpu.SurfaceFunc(func() (int, int) { return 200, 100 }))
	require.NoError(t, err)
	s, err := New(g, g.ScreenSize())
	require.NoError(t, err)
	return s, g, ctx
}

func TestAddMergesAdjacentRuns(t *testing.T) {
	b := NewBatch()
	b.Add(3, full, linalg.Rect(0, 0, 10, 10))
	b.Add(3, full, linalg.Rect(20, 0, 10, 10))
	require.Equal(t, 1, b.Len())
	assert.Len(t, b.Commands()[0].Vertices, 12)

	b.Add(4, full, linalg.Rect(0, 0, 10, 10))
	assert.Equal(t, 2, b.Len())
}

func TestAddIsNotGroupBy(t *testing.T) {
	b := NewBatch()
	b.Add(1, full, linalg.Rect(0, 0, 1, 1))
	b.Add(2, full, linalg.Rect(0, 0, 1, 1))
	b.Add(1, full, linalg.Rect(0, 0, 1, 1))
	assert.Equal(t, 3, b.Len())

	// same texture, different source starts a new run
	b.Add(1, linalg.Vec4(0, 0, 0.5, 0.5), linalg.Rect(0, 0, 1, 1))
	assert.Equal(t, 4, b.Len())
}

func TestRectVertexOrder(t *testing.T) {
	b := NewBatch()
	b.Add(1, linalg.Vec4(0.1, 0.2, 0.3, 0.4), linalg.Rect(10, 20, 30, 40))

	tl := graphics.TexturedVertex{Position: linalg.Vec3(10, 20, 0), UV: linalg.Vec2(0.1, 0.4)}
	tr := graphics.TexturedVertex{Position: linalg.Vec3(40, 20, 0), UV: linalg.Vec2(0.3, 0.4)}
	bl := graphics.TexturedVertex{Position: linalg.Vec3(10, 60, 0), UV: linalg.Vec2(0.1, 0.2)}
	br := graphics.TexturedVertex{Position: linalg.Vec3(40, 60, 0), UV: linalg.Vec2(0.3, 0.2)}
	assert.Equal(t, []graphics.TexturedVertex{tl, bl, tr, br, tr, bl}, b.Commands()[0].Vertices)
}

func TestUnitRectVertices(t *testing.T) {
	b := NewBatch()
	b.Add(1, full, linalg.Rect(0, 0, 10, 10))

	var got []linalg.Vector3
	for _, v := range b.Commands()[0].Vertices {
		got = append(got, v.Position)
	}
	assert.Equal(t, []linalg.Vector3{
		linalg.Vec3(0, 0, 0), linalg.Vec3(0, 10, 0), linalg.Vec3(10, 0, 0),
		linalg.Vec3(10, 10, 0), linalg.Vec3(10, 0, 0), linalg.Vec3(0, 10, 0),
	}, got)
}

// signedArea is positive for counter-clockwise triangles.
func signedArea(a, b, c linalg.Vector3) float32 {
	return (b.X-a.X)*(c.Y-a.Y) - (c.X-a.X)*(b.Y-a.Y)
}

func TestRectsFaceFrontAfterNormalizer(t *testing.T) {
	b := NewBatch()
	b.Add(1, full, linalg.Rect(10, 10, 50, 30))
	n := Normalizer(linalg.Size{W: 200, H: 100})

	vs := b.Commands()[0].Vertices
	for i := 0; i < len(vs); i += 3 {
		a := n.MulVec3(vs[i].Position)
		bb := n.MulVec3(vs[i+1].Position)
		c := n.MulVec3(vs[i+2].Position)
		assert.Greater(t, signedArea(a, bb, c), float32(0), "triangle %d", i/3)
	}
}

func TestNormalizerMapsScreenCorners(t *testing.T) {
	n := Normalizer(linalg.Size{W: 200, H: 100})
	assert.Equal(t, linalg.Vec3(-1, 1, 0), n.MulVec3(linalg.Vec3(0, 0, 0)))

	// 2/200 is not exact in float32; allow for fused multiply-add
	br := n.MulVec3(linalg.Vec3(200, 100, 0))
	assert.InDelta(t, 1, br.X, 1e-6)
	assert.InDelta(t, -1, br.Y, 1e-6)
	assert.Zero(t, br.Z)
}

func TestNormalizer(t *testing.T) {
	n := Normalizer(linalg.Size{W: 256, H: 128})
	assert.Equal(t, linalg.Vec3(-1, 1, 0), n.MulVec3(linalg.Vec3(0, 0, 0)))
	assert.Equal(t, linalg.Vec3(1, -1, 0), n.MulVec3(linalg.Vec3(256, 128, 0)))
	assert.Equal(t, linalg.Vec3(0, 0, 0), n.MulVec3(linalg.Vec3(128, 64, 7)))
	assert.Equal(t, linalg.Vec3(-0.5, 0.5, 0), n.MulVec3(linalg.Vec3(64, 32, 0)))
}

func TestDrawIssuesOneCallPerCommand(t *testing.T) {
	s, _, ctx := newTestSprite(t)
	defer s.Release()

	ctx.Enabled[gpu.DepthTest] = true
	ctx.Enabled[gpu.CullFace] = true

	cube, label := ctx.CreateTexture(), ctx.CreateTexture()
	b := NewBatch()
	b.Add(cube, full, linalg.Rect(0, 0, 256, 256))
	b.Add(cube, full, linalg.Rect(256, 0, 256, 256))
	b.Add(label, full, linalg.Rect(0, 0, 16, 16))
	want := b.Commands()

	calls, err := s.Draw(b)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, ctx.Draws, 2)

	wantTransform := [16]float32(Normalizer(linalg.Size{W: 200, H: 100}))
	for i, d := range ctx.Draws {
		assert.Equal(t, gpu.Triangles, d.Mode)
		assert.Equal(t, len(want[i].Vertices), d.Count)
		assert.Equal(t, want[i].Texture, d.Texture)
		assert.Equal(t, graphics.TexturedList(want[i].Vertices).Floats(), d.Data)
		assert.Equal(t, wantTransform, d.Uniforms["mvp"])
		assert.Equal(t, int32(0), d.Uniforms["texture0"])
		assert.False(t, d.Enabled[gpu.DepthTest])
		assert.False(t, d.Enabled[gpu.CullFace])
		assert.Equal(t, 3, d.Attribs["position"].Size)
		assert.Equal(t, 20, d.Attribs["position"].Stride)
		assert.Equal(t, gputest.AttribPointer{Size: 2, Stride: 20, Offset: 12, Buffer: d.Attribs["position"].Buffer, Enabled: true}, d.Attribs["textureCoord"])
	}

	// every command leaves the program and texture unbound
	assert.Equal(t, gpu.Program(0), ctx.Program)
	assert.Equal(t, gpu.Texture(0), ctx.Texture)
	assert.Equal(t, 0, ctx.ActiveUnit)
	assert.Empty(t, ctx.Misuse)
}

func TestDrawSequence(t *testing.T) {
	s, _, ctx := newTestSprite(t)
	defer s.Release()

	tex := ctx.CreateTexture()
	bindTex := fmt.Sprintf("BindTexture %d", tex)
	b := NewBatch()
	b.Add(tex, full, linalg.Rect(0, 0, 8, 8))
	ctx.Calls = nil
	_, err := s.Draw(b)
	require.NoError(t, err)

	var seq []string
	for _, c := range ctx.Calls {
		switch {
		case c == "BufferData 30 floats",
			c == bindTex,
			c == "BindTexture 0",
			c == "Uniform mvp",
			c == "Uniform texture0",
			c == "DrawArrays triangles 0 6":
			seq = append(seq, c)
		case len(c) > 10 && c[:10] == "UseProgram":
			seq = append(seq, c[:10])
		}
	}
	assert.Equal(t, []string{
		"BufferData 30 floats",
		bindTex,
		"UseProgram",
		"Uniform mvp",
		"Uniform texture0",
		"DrawArrays triangles 0 6",
		"UseProgram",
		"BindTexture 0",
	}, seq)
}

func TestBatchIsSingleUse(t *testing.T) {
	s, _, ctx := newTestSprite(t)
	defer s.Release()

	b := NewBatch()
	b.Add(1, full, linalg.Rect(0, 0, 4, 4))
	_, err := s.Draw(b)
	require.NoError(t, err)
	assert.True(t, b.Spent())
	assert.Zero(t, b.Len())

	calls, err := s.Draw(b)
	assert.ErrorIs(t, err, ErrBatchSpent)
	assert.Zero(t, calls)
	assert.Len(t, ctx.Draws, 1)
	assert.PanicsWithValue(t, ErrBatchSpent, func() { b.Add(1, full, linalg.Rect(0, 0, 1, 1)) })
}

func TestEmptyBatchDrawsNothing(t *testing.T) {
	s, _, ctx := newTestSprite(t)
	defer s.Release()

	calls, err := s.Draw(NewBatch())
	require.NoError(t, err)
	assert.Zero(t, calls)
	assert.Empty(t, ctx.Draws)
}

func TestSetScreenSize(t *testing.T) {
	s, _, ctx := newTestSprite(t)
	defer s.Release()

	s.SetScreenSize(linalg.Size{W: 400, H: 300})
	b := NewBatch()
	b.Add(1, full, linalg.Rect(0, 0, 4, 4))
	_, err := s.Draw(b)
	require.NoError(t, err)
	assert.Equal(t, [16]float32(Normalizer(linalg.Size{W: 400, H: 300})), ctx.Draws[0].Uniforms["mvp"])
}

func TestNewAndRelease(t *testing.T) {
	s, _, ctx := newTestSprite(t)
	assert.Equal(t, 1, ctx.Live(gputest.Program))
	assert.Equal(t, 1, ctx.Live(gputest.Buffer))
	s.Release()
	assert.Empty(t, ctx.Leaks())
}

func TestNewReleasesShaderWhenStreamRefused(t *testing.T) {
	ctx := gputest.New()
	g, err := graphics.New(ctx, gpu.SurfaceFunc(func() (int, int) { return 1, 1 }))
	require.NoError(t, err)
	ctx.Refuse[gputest.Buffer] = true

	_, err = New(g, g.ScreenSize())
	var rce *graphics.ResourceCreationError
	require.ErrorAs(t, err, &rce)
	assert.Empty(t, ctx.Leaks())
}

func TestDrawSkipsEmptyScreen(t *testing.T) {
	ctx := gputest.New()
	g, err := graphics.New(ctx, gpu.SurfaceFunc(func() (int, int) { return 0, 0 }))
	require.NoError(t, err)
	s, err := New(g, g.ScreenSize())
	require.NoError(t, err)
	defer s.Release()

	b := NewBatch()
	b.Add(ctx.CreateTexture(), full, linalg.Rect(0, 0, 8, 8))
	calls, err := s.Draw(b)
	require.NoError(t, err)
	assert.Zero(t, calls)
	assert.Empty(t, ctx.Draws)
	assert.True(t, b.Spent())
}
