package graphics

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/png"
	"os"

	"spritegl/internal/gpu"
	"spritegl/internal/linalg"
)

// Texture is an RGBA8 texture uploaded from an image.
type Texture struct {
	gl       *GL
	id       gpu.Texture
	size     linalg.Size
	released bool
}

// LoadTexture decodes an image file and uploads it.
func LoadTexture(g *GL, path string) (*Texture, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture file: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return NewTextureFromImage(g, img)
}

// NewTextureFromImage uploads img with nearest filtering. Row 0 of the
// image lands at v = 0.
func NewTextureFromImage(g *GL, img image.Image) (*Texture, error) {
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) || rgba.Stride != 4*rgba.Rect.Dx() {
		rgba = image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	}

	ctx := g.ctx
	id := ctx.CreateTexture()
	if id == 0 {
		return nil, &ResourceCreationError{Resource: "texture"}
	}
	size := linalg.Size{W: rgba.Rect.Dx(), H: rgba.Rect.Dy()}
	ctx.BindTexture(id)
	ctx.TexFilter(gpu.Nearest)
	ctx.TexImage2D(size.W, size.H, gpu.RGBA8, rgba.Pix)
	ctx.BindTexture(0)

	return &Texture{gl: g, id: id, size: size}, nil
}

func (t *Texture) ID() gpu.Texture   { return t.id }
func (t *Texture) Size() linalg.Size { return t.size }

// Release deletes the texture. Safe to call more than once.
func (t *Texture) Release() {
	if t.released {
		return
	}
	t.released = true
	t.gl.ctx.DeleteTexture(t.id)
}
