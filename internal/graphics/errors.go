package graphics

import (
	"errors"
	"fmt"

	"spritegl/internal/gpu"
)

var (
	// ErrLayoutMismatch is returned when a vertex source's float data does not
	// match its vertex count and format.
	ErrLayoutMismatch = errors.New("vertex data does not match layout")
	// ErrStreamReleased is the panic value when an ephemeral primitive is
	// used after its stream was released.
	ErrStreamReleased = errors.New("vertex stream released")
)

// ResourceCreationError reports that the context refused to create an object
// or a required capability is missing.
type ResourceCreationError struct {
	Resource string
}

func (e *ResourceCreationError) Error() string {
	return fmt.Sprintf("failed to create %s", e.Resource)
}

// ShaderCompileError carries the driver's info log verbatim.
type ShaderCompileError struct {
	Stage gpu.ShaderStage
	Log   string
}

func (e *ShaderCompileError) Error() string {
	return fmt.Sprintf("failed to compile %s shader: %s", e.Stage, e.Log)
}

// ProgramLinkError carries the driver's link log verbatim.
type ProgramLinkError struct {
	Log string
}

func (e *ProgramLinkError) Error() string {
	return fmt.Sprintf("failed to link program: %s", e.Log)
}

// MissingBindingError is returned by strict shaders when a drawable declares
// an attribute the program has no input for.
type MissingBindingError struct {
	Name string
}

func (e *MissingBindingError) Error() string {
	return fmt.Sprintf("program has no active attribute %q", e.Name)
}
