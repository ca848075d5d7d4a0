// Package renderer provides OpenGL rendering functionality.
package renderer

import (
	"fmt"
	"unsafe"

	"go.uber.org/zap"

	"github.com/Faultbox/objview/internal/engine/mesh"
	"github.com/Faultbox/objview/internal/engine/shader"
	"github.com/Faultbox/objview/internal/logger"
	"github.com/Faultbox/objview/pkg/math"
	"github.com/go-gl/gl/v4.1-core/gl"
)

// Color is an RGBA colour with components in [0, 1].
type Color [4]float32

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
}

// Renderer draws an uploaded mesh with the flat-colour program.
type Renderer struct {
	config Config

	// Flat-colour program
	program       uint32
	locProjection int32
	locModelView  int32
	locColor      int32

	// Mesh buffers
	vao         uint32
	vbo         uint32
	vertexCount int32
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
	}

	// Initialize OpenGL
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	// Log OpenGL info
	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	// Later draws win depth ties
	gl.ClearDepth(1.0)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)

	gl.Enable(gl.CULL_FACE)
	gl.FrontFace(gl.CCW)
	gl.CullFace(gl.BACK)

	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	var err error
	r.program, err = shader.CompileProgram(shader.FlatVertexShader, shader.FlatFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}
	gl.UseProgram(r.program)

	locs, err := shader.UniformLocations(r.program, "projectionMatrix", "modelViewMatrix", "fragmentColor")
	if err != nil {
		gl.DeleteProgram(r.program)
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}
	r.locProjection, r.locModelView, r.locColor = locs[0], locs[1], locs[2]

	logger.Debug("shader program created", zap.Uint32("program", r.program))
	return r, nil
}

// Upload copies the mesh into a vertex buffer. Only positions are bound to
// the program; normals ride along in the stride. An empty mesh uploads
// nothing and is not an error.
func (r *Renderer) Upload(m *mesh.Mesh) error {
	if m.VertexCount() == 0 {
		// Files with no faces are valid; every draw range is then empty.
		r.vertexCount = 0
		logger.Debug("mesh has no vertices, nothing to upload")
		return nil
	}

	attrib := shader.GetAttrib(r.program, "position")
	if attrib < 0 {
		return fmt.Errorf("attribute %q not found in program %d", "position", r.program)
	}

	if r.vao == 0 {
		gl.GenVertexArrays(1, &r.vao)
		gl.GenBuffers(1, &r.vbo)
	}

	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Data)*4, unsafe.Pointer(&m.Data[0]), gl.STATIC_DRAW)

	gl.VertexAttribPointer(uint32(attrib), 3, gl.FLOAT, false, mesh.Stride*4, nil)
	gl.EnableVertexAttribArray(uint32(attrib))

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	r.vertexCount = int32(m.VertexCount())
	logger.Debug("mesh uploaded",
		zap.Uint32("vao", r.vao),
		zap.Uint32("vbo", r.vbo),
		zap.Int32("vertices", r.vertexCount),
	)
	return nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
	}
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
	}
	if r.program != 0 {
		gl.DeleteProgram(r.program)
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// SetProjection uploads the projection matrix.
func (r *Renderer) SetProjection(m math.Mat4) {
	gl.UniformMatrix4fv(r.locProjection, 1, false, m.Ptr())
}

// SetModelView uploads the model-view matrix.
func (r *Renderer) SetModelView(m math.Mat4) {
	gl.UniformMatrix4fv(r.locModelView, 1, false, m.Ptr())
}

// Clear clears colour and depth.
func (r *Renderer) Clear(c Color) {
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// DrawRange draws count vertices starting at first as triangles in colour c.
func (r *Renderer) DrawRange(first, count int, c Color) {
	if count <= 0 {
		return
	}
	gl.Uniform4f(r.locColor, c[0], c[1], c[2], c[3])
	gl.BindVertexArray(r.vao)
	gl.DrawArrays(gl.TRIANGLES, int32(first), int32(count))
	gl.BindVertexArray(0)
}

// ReadPixels returns the back buffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	if len(pixels) == 0 {
		return pixels, w, h
	}
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return pixels, w, h
}
