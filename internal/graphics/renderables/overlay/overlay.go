// Package overlay composites textures onto the screen through a sprite batch.
package overlay

import (
	"fmt"
	"image/color"
	"log/slog"

	"spritegl/internal/gpu"
	"spritegl/internal/graphics"
	renderer "spritegl/internal/graphics/renderer"
	"spritegl/internal/graphics/renderables/sprite"
	"spritegl/internal/linalg"
	"spritegl/internal/profiling"
)

const labelMargin = 8

// TextureSource provides a texture that may change between frames.
type TextureSource interface {
	Texture() gpu.Texture
}

// drawer replays sprite batches; *sprite.Sprite in production.
type drawer interface {
	Draw(b *sprite.Batch) (int, error)
	SetScreenSize(size linalg.Size)
	Release()
}

var (
	// Render-target textures have v = 0 at the bottom row.
	targetUV = linalg.Vec4(0, 0, 1, 1)
	// Image uploads have v = 0 at the top row.
	imageUV = linalg.Vec4(0, 1, 1, 0)
)

// Overlay draws a source texture into a fixed screen rectangle and a text
// label in the bottom-left corner.
type Overlay struct {
	gl     *graphics.GL
	source TextureSource
	sprite drawer

	image     *graphics.Texture
	imagePath string
	// ImageDest is where the image set by LoadImage lands, in pixels.
	ImageDest linalg.Rectangle

	label     *graphics.Texture
	labelText string
	pending   string

	// Dest is where the source texture lands, in pixels.
	Dest      linalg.Rectangle
	LabelFill color.Color

	lastDrawCalls int
}

func NewOverlay(g *graphics.GL, source TextureSource, dest linalg.Rectangle) *Overlay {
	return &Overlay{
		gl:        g,
		source:    source,
		Dest:      dest,
		LabelFill: color.White,
	}
}

func (o *Overlay) Init() error {
	s, err := sprite.New(o.gl, o.gl.ScreenSize())
	if err != nil {
		return fmt.Errorf("overlay sprite: %w", err)
	}
	o.sprite = s
	return nil
}

// LoadImage replaces the overlay image with the file at path. An empty path
// removes the image. On failure the previous image is kept.
func (o *Overlay) LoadImage(path string) error {
	if path == o.imagePath {
		return nil
	}
	if path == "" {
		o.releaseImage()
		return nil
	}
	tex, err := graphics.LoadTexture(o.gl, path)
	if err != nil {
		return fmt.Errorf("overlay image: %w", err)
	}
	o.releaseImage()
	o.image, o.imagePath = tex, path
	return nil
}

func (o *Overlay) releaseImage() {
	if o.image != nil {
		o.image.Release()
		o.image = nil
	}
	o.imagePath = ""
}

// SetLabel replaces the label text. The texture is rebuilt on the next
// Render; an empty string hides the label.
func (o *Overlay) SetLabel(text string) {
	o.pending = text
}

func (o *Overlay) refreshLabel() error {
	if o.pending == o.labelText {
		return nil
	}
	if o.label != nil {
		o.label.Release()
		o.label = nil
	}
	o.labelText = o.pending
	if o.labelText == "" {
		return nil
	}
	tex, err := graphics.NewTextureFromImage(o.gl, graphics.RenderLabel(o.labelText, o.LabelFill))
	if err != nil {
		return err
	}
	o.label = tex
	return nil
}

func (o *Overlay) Render(ctx renderer.RenderContext) {
	defer profiling.Track("overlay.Render")()

	if err := o.refreshLabel(); err != nil {
		slog.Warn("overlay label upload failed", "text", o.labelText, "err", err)
	}

	batch := sprite.NewBatch()
	if tex := o.source.Texture(); tex != 0 {
		batch.Add(tex, targetUV, o.Dest)
	}
	if o.image != nil {
		batch.Add(o.image.ID(), imageUV, o.ImageDest)
	}
	if o.label != nil {
		size := o.label.Size()
		screen := o.gl.ScreenSize()
		dst := linalg.Rect(labelMargin, screen.H-size.H-labelMargin, size.W, size.H)
		batch.Add(o.label.ID(), imageUV, dst)
	}

	gctx := o.gl.Context()
	gctx.Enable(gpu.Blend)
	gctx.BlendAlpha()
	calls, err := o.sprite.Draw(batch)
	gctx.Disable(gpu.Blend)
	o.lastDrawCalls = calls
	if err != nil {
		slog.Warn("overlay draw failed", "frame", ctx.Frame, "drawCalls", calls, "err", err)
	}
}

// DrawCalls returns how many draw calls the last Render issued.
func (o *Overlay) DrawCalls() int { return o.lastDrawCalls }

// SetViewport ignores empty sizes so a minimized window keeps the last
// usable projection.
func (o *Overlay) SetViewport(width, height int) {
	size := linalg.Size{W: width, H: height}
	if o.sprite == nil || size.Empty() {
		return
	}
	o.sprite.SetScreenSize(size)
}

func (o *Overlay) Dispose() {
	o.releaseImage()
	if o.label != nil {
		o.label.Release()
		o.label = nil
	}
	if o.sprite != nil {
		o.sprite.Release()
	}
}
