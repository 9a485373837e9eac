package graphics

import (
	"spritegl/internal/gpu"
	"spritegl/internal/linalg"
	"spritegl/internal/profiling"
)

// Attribute input names matched against a Drawable's slots.
const (
	AttribPosition = "position"
	AttribColor    = "color"
	AttribTexCoord = "textureCoord"
)

// Uniform names used by the convenience setters.
const (
	UniformMVP     = "mvp"
	UniformTexture = "texture0"
)

type ShaderOptions struct {
	// StrictAttributes makes EnableVertexAttribute fail with a
	// *MissingBindingError when a declared slot has no matching input.
	// By default such slots are skipped.
	StrictAttributes bool
}

// Shader is a linked program together with its two stages.
type Shader struct {
	gl       *GL
	program  gpu.Program
	vertex   gpu.Shader
	fragment gpu.Shader
	opts     ShaderOptions
	released bool
}

// NewShader compiles and links a program from vertex and fragment source.
func NewShader(g *GL, vertexSrc, fragmentSrc string) (*Shader, error) {
	return NewShaderWithOptions(g, vertexSrc, fragmentSrc, ShaderOptions{})
}

func NewShaderWithOptions(g *GL, vertexSrc, fragmentSrc string, opts ShaderOptions) (*Shader, error) {
	ctx := g.ctx
	s := &Shader{gl: g, opts: opts}

	s.program = ctx.CreateProgram()
	if s.program == 0 {
		return nil, &ResourceCreationError{Resource: "program"}
	}

	var err error
	if s.vertex, err = compileShader(ctx, gpu.VertexStage, vertexSrc); err != nil {
		s.Release()
		return nil, err
	}
	if s.fragment, err = compileShader(ctx, gpu.FragmentStage, fragmentSrc); err != nil {
		s.Release()
		return nil, err
	}

	ctx.AttachShader(s.program, s.vertex)
	ctx.AttachShader(s.program, s.fragment)
	ctx.LinkProgram(s.program)
	if !ctx.ProgramLinked(s.program) {
		log := ctx.ProgramInfoLog(s.program)
		s.Release()
		logger.Warn("program link failed", "log", log)
		return nil, &ProgramLinkError{Log: log}
	}

	logger.Debug("shader program linked", "program", s.program)
	return s, nil
}

func compileShader(ctx gpu.Context, stage gpu.ShaderStage, source string) (gpu.Shader, error) {
	sh := ctx.CreateShader(stage)
	if sh == 0 {
		return 0, &ResourceCreationError{Resource: stage.String() + " shader"}
	}
	ctx.ShaderSource(sh, source)
	ctx.CompileShader(sh)
	if !ctx.ShaderCompiled(sh) {
		log := ctx.ShaderInfoLog(sh)
		ctx.DeleteShader(sh)
		logger.Warn("shader compile failed", "stage", stage, "log", log)
		return 0, &ShaderCompileError{Stage: stage, Log: log}
	}
	return sh, nil
}

func (s *Shader) Program() gpu.Program { return s.program }

// AttribLocation looks up an input of the linked program.
func (s *Shader) AttribLocation(name string) (gpu.AttribLocation, bool) {
	loc := s.gl.ctx.AttribLocation(s.program, name)
	return loc, loc.Found()
}

// EnableVertexAttribute points the program's position, color and
// textureCoord inputs at the slots d declares. Inputs the program lacks are
// skipped unless the shader is strict.
func (s *Shader) EnableVertexAttribute(d Drawable) error {
	ctx := s.gl.ctx
	ctx.BindVertexArray(d.VertexArray())
	defer ctx.BindVertexArray(0)
	ctx.BindBuffer(d.VertexBuffer())

	slots := []struct {
		name string
		get  func() (VertexAttribute, bool)
	}{
		{AttribPosition, d.Position},
		{AttribColor, d.Color},
		{AttribTexCoord, d.TexCoord},
	}
	for _, slot := range slots {
		attr, ok := slot.get()
		if !ok {
			continue
		}
		loc, found := s.AttribLocation(slot.name)
		if !found {
			if s.opts.StrictAttributes {
				return &MissingBindingError{Name: slot.name}
			}
			continue
		}
		ctx.VertexAttribPointer(loc, attr.Size, attr.Stride, attr.Offset)
		ctx.EnableVertexAttribArray(loc)
	}
	return nil
}

// Draw issues a non-indexed draw of d. The program must be enabled.
func (s *Shader) Draw(d Drawable) {
	ctx := s.gl.ctx
	ctx.BindVertexArray(d.VertexArray())
	ctx.DrawArrays(d.Topology(), 0, d.VertexCount())
	ctx.BindVertexArray(0)
	profiling.Count("graphics.DrawArrays", 1)
}

// Enable makes the program current.
func (s *Shader) Enable() { s.gl.ctx.UseProgram(s.program) }

// Disable unbinds any program.
func (s *Shader) Disable() { s.gl.ctx.UseProgram(0) }

// Use runs fn with the program current and always disables it afterwards.
func (s *Shader) Use(fn func()) {
	s.Enable()
	defer s.Disable()
	fn()
}

// SetUniformMatrix4 uploads m to the named uniform of the current program.
// Unknown names are ignored.
func (s *Shader) SetUniformMatrix4(name string, m linalg.Matrix4) {
	loc := s.gl.ctx.UniformLocation(s.program, name)
	if !loc.Found() {
		return
	}
	rows := [16]float32(m)
	s.gl.ctx.UniformMatrix4(loc, &rows)
}

func (s *Shader) SetUniformSamplerUnit(name string, unit int) {
	loc := s.gl.ctx.UniformLocation(s.program, name)
	if !loc.Found() {
		return
	}
	s.gl.ctx.Uniform1i(loc, int32(unit))
}

func (s *Shader) SetUniformColor(name string, c linalg.Vector4) {
	loc := s.gl.ctx.UniformLocation(s.program, name)
	if !loc.Found() {
		return
	}
	s.gl.ctx.Uniform4f(loc, c.X, c.Y, c.Z, c.W)
}

func (s *Shader) SetUniformModelViewPerspective(m linalg.Matrix4) {
	s.SetUniformMatrix4(UniformMVP, m)
}

func (s *Shader) SetUniformTexture(unit int) {
	s.SetUniformSamplerUnit(UniformTexture, unit)
}

// Release deletes the program and both stages. Safe to call more than once.
func (s *Shader) Release() {
	if s.released {
		return
	}
	s.released = true
	ctx := s.gl.ctx
	if s.program != 0 {
		ctx.DeleteProgram(s.program)
	}
	if s.vertex != 0 {
		ctx.DeleteShader(s.vertex)
	}
	if s.fragment != 0 {
		ctx.DeleteShader(s.fragment)
	}
}
