// Package shader provides OpenGL shader compilation utilities.
package shader

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// BuildError reports a shader that failed to compile or a program that
// failed to link. Stage is "vertex", "fragment", "link" or "uniform".
type BuildError struct {
	Stage string
	Log   string
}

func (e *BuildError) Error() string {
	switch e.Stage {
	case "link":
		return fmt.Sprintf("shader link failed: %s", e.Log)
	case "uniform":
		return fmt.Sprintf("shader program incomplete: %s", e.Log)
	}
	return fmt.Sprintf("%s shader compile failed: %s", e.Stage, e.Log)
}

// CompileProgram compiles vertex and fragment shaders and links them into a program.
// Returns the program ID or a *BuildError if compilation/linking fails.
func CompileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	// Compile vertex shader
	vertShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertShader)

	// Compile fragment shader
	fragShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragShader)

	// Link program
	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetProgramInfoLog(program, logLen, nil, &log[0])
		gl.DeleteProgram(program)
		return 0, &BuildError{Stage: "link", Log: trimLog(log)}
	}

	return program, nil
}

// compileShader compiles a single shader of the given type.
func compileShader(source string, shaderType uint32, stage string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, &BuildError{Stage: stage, Log: trimLog(log)}
	}

	return shader, nil
}

// trimLog drops the NUL terminator and trailing newlines of an info log.
func trimLog(log []byte) string {
	end := len(log)
	for end > 0 && (log[end-1] == 0 || log[end-1] == '\n') {
		end--
	}
	return string(log[:end])
}

// UniformLocations resolves each named uniform of a linked program, in
// order. A missing or inactive uniform is a *BuildError with Stage "uniform".
func UniformLocations(program uint32, names ...string) ([]int32, error) {
	return resolveUniforms(program, names, func(program uint32, name string) int32 {
		return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
	})
}

func resolveUniforms(program uint32, names []string, lookup func(uint32, string) int32) ([]int32, error) {
	locs := make([]int32, len(names))
	for i, name := range names {
		loc := lookup(program, name)
		if loc < 0 {
			return nil, &BuildError{
				Stage: "uniform",
				Log:   fmt.Sprintf("uniform %q not found in program %d", name, program),
			}
		}
		locs[i] = loc
	}
	return locs, nil
}

// GetAttrib returns the attribute location for the given name, or -1.
func GetAttrib(program uint32, name string) int32 {
	return gl.GetAttribLocation(program, gl.Str(name+"\x00"))
}
