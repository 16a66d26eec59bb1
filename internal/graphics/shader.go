package graphics

import (
	"embed"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/pkg/errors"
)

//go:embed shaders/*.vert shaders/*.frag
var shaderFS embed.FS

// Shader represents an OpenGL shader program
type Shader struct {
	ID       uint32
	uniforms map[string]int32
}

// LoadShader compiles the embedded shader pair shaders/<name>.vert and
// shaders/<name>.frag.
func LoadShader(name string) (*Shader, error) {
	vertexSource, err := shaderFS.ReadFile("shaders/" + name + ".vert")
	if err != nil {
		return nil, errors.Wrapf(err, "read vertex shader %s", name)
	}
	fragmentSource, err := shaderFS.ReadFile("shaders/" + name + ".frag")
	if err != nil {
		return nil, errors.Wrapf(err, "read fragment shader %s", name)
	}
	s, err := NewShader(string(vertexSource), string(fragmentSource))
	if err != nil {
		return nil, errors.Wrapf(err, "shader %s", name)
	}
	return s, nil
}

// NewShader creates a new shader program from vertex and fragment sources
func NewShader(vertexSource, fragmentSource string) (*Shader, error) {
	program, err := compileProgram(vertexSource, fragmentSource)
	if err != nil {
		return nil, err
	}
	return &Shader{ID: program, uniforms: make(map[string]int32)}, nil
}

// Use activates the shader program
func (s *Shader) Use() {
	gl.UseProgram(s.ID)
}

// Delete frees the program.
func (s *Shader) Delete() {
	if s.ID != 0 {
		gl.DeleteProgram(s.ID)
		s.ID = 0
	}
}

func (s *Shader) location(name string) int32 {
	if loc, ok := s.uniforms[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(s.ID, gl.Str(name+"\x00"))
	s.uniforms[name] = loc
	return loc
}

// SetBool sets a boolean uniform
func (s *Shader) SetBool(name string, value bool) {
	var intValue int32
	if value {
		intValue = 1
	}
	gl.Uniform1i(s.location(name), intValue)
}

// SetInt sets an integer uniform
func (s *Shader) SetInt(name string, value int32) {
	gl.Uniform1i(s.location(name), value)
}

// SetFloat sets a float uniform
func (s *Shader) SetFloat(name string, value float32) {
	gl.Uniform1f(s.location(name), value)
}

// SetVector3 sets a vector3 uniform
func (s *Shader) SetVector3(name string, x, y, z float32) {
	gl.Uniform3f(s.location(name), x, y, z)
}

// SetVector4 sets a vector4 uniform
func (s *Shader) SetVector4(name string, x, y, z, w float32) {
	gl.Uniform4f(s.location(name), x, y, z, w)
}

// SetMatrix4 sets a 4x4 matrix uniform
func (s *Shader) SetMatrix4(name string, value *float32) {
	gl.UniformMatrix4fv(s.location(name), 1, false, value)
}

// Helper functions
func compileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertexShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)

		return 0, errors.Errorf("failed to link program: %v", log)
	}
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)

		return 0, errors.Errorf("failed to compile shader: %v", log)
	}
	return shader, nil
}
